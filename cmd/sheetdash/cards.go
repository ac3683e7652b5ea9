package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetdash-go/internal/console"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/output"
)

var (
	cardsView   string
	cardsFormat string
	cardsPretty bool
	cardsList   bool
)

var cardsCmd = &cobra.Command{
	Use:   "cards [id...]",
	Short: "Load configured cards",
	Long: `Load the cards configured in the 'cards' section, concurrently, and print
each card's data or error. With no IDs every card is loaded.`,
	RunE: runCards,
}

func init() {
	rootCmd.AddCommand(cardsCmd)

	cardsCmd.Flags().StringVar(&cardsView, "view", "", "view for cards with a rollup: daily, weekly, monthly")
	cardsCmd.Flags().StringVarP(&cardsFormat, "format", "f", "", "output format: table, json, yaml (default from config)")
	cardsCmd.Flags().BoolVar(&cardsPretty, "pretty", false, "pretty-print JSON output")
	cardsCmd.Flags().BoolVarP(&cardsList, "list", "l", false, "list card configuration without loading")
}

func runCards(cmd *cobra.Command, args []string) error {
	if err := requireCards(cmd); err != nil {
		return err
	}
	format, err := output.ParseFormat(outputFormat(cardsFormat))
	if err != nil {
		return err
	}

	board, _, err := newBoard()
	if err != nil {
		return err
	}

	if cardsList {
		return listCards(cmd, board.Cards(), format)
	}

	data := board.LoadAll(cmd.Context(), cardsView)
	ids := args
	if len(ids) == 0 {
		for _, c := range board.Cards() {
			ids = append(ids, c.ID)
		}
	}

	selected := models.BoardData{Cards: make(map[string]models.CardData, len(ids))}
	for _, id := range ids {
		card, ok := data.Cards[id]
		if !ok {
			return fmt.Errorf("%w: %s", sheetdash.ErrCardNotFound, id)
		}
		selected.Cards[id] = card
	}

	if format != output.FormatTable {
		encoded, err := output.Encode(selected, format, cardsPretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
		return err
	}

	p := newPrinter(cmd)
	failed := 0
	for _, id := range ids {
		card := selected.Cards[id]
		if card.Error != "" {
			failed++
		}
		if err := console.RenderCard(cmd.OutOrStdout(), p, card); err != nil {
			return err
		}
	}
	p.Print("")
	if failed > 0 {
		p.Warning("%d of %d cards failed to load", failed, len(ids))
	} else {
		p.Success("loaded %d cards", len(ids))
	}
	return nil
}

func listCards(cmd *cobra.Command, cards []sheetdash.CardConfig, format output.Format) error {
	if format != output.FormatTable {
		encoded, err := output.Encode(cards, format, cardsPretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
		return err
	}

	t := console.NewTableWithWriter(cmd.OutOrStdout(), []string{"ID", "TYPE", "KIND", "CHART", "URL"})
	for _, c := range cards {
		view, err := sheetdash.ResolveView(c, "")
		if err != nil {
			return err
		}
		kind, err := sheetdash.ResolveKind(c, view)
		if err != nil {
			return err
		}
		t.AddRow([]string{c.ID, string(c.Type), string(kind), c.ChartType, c.CSVURL})
	}
	return t.Render()
}
