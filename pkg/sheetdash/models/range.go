package models

// CellRange represents cell coordinate bounds inside a grid.
type CellRange struct {
	// R1 is the start row (1-based).
	R1 int `json:"r1"`
	// C1 is the start column (1-based).
	C1 int `json:"c1"`
	// R2 is the end row (1-based, inclusive). Zero means "to the last row".
	R2 int `json:"r2"`
	// C2 is the end column (1-based, inclusive). Zero means "to the last column".
	C2 int `json:"c2"`
}
