package style

import (
	"fmt"
	"strconv"
	"strings"
)

// HexToRGBA converts "#rgb" or "#rrggbb" to an rgba() colour with the given
// alpha. Anything else is returned unchanged.
func HexToRGBA(hex string, alpha float64) string {
	clean := strings.TrimPrefix(hex, "#")
	if len(clean) == 3 {
		clean = string([]byte{clean[0], clean[0], clean[1], clean[1], clean[2], clean[2]})
	}
	if len(clean) != 6 {
		return hex
	}

	rgb, err := strconv.ParseUint(clean, 16, 32)
	if err != nil {
		return hex
	}
	r, g, b := rgb>>16&0xff, rgb>>8&0xff, rgb&0xff
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(alpha, 'f', -1, 64))
}
