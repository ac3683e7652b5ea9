package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetdash-go/internal/server"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
)

var (
	serveAddr string
	serveWarm bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	Long: `Serve the configured cards, ad-hoc sheets and Prometheus metrics over HTTP.

Routes:
  GET    /healthz
  GET    /api/cards
  GET    /api/cards/:id?view=&wait=
  GET    /api/sheets?url=&kind=&view=&chart_type=&palette=
  DELETE /api/cache?url=&kind=
  GET    /metrics`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serveWarm, "warm", false, "load every card before accepting requests")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	board, cache, err := newBoard()
	if err != nil {
		return err
	}

	go cache.Run(ctx)

	if serveWarm {
		warm(ctx, board.LoadAll)
	}

	serverCfg := cfg.Server
	if serveAddr != "" {
		serverCfg.Addr = serveAddr
	}

	srv := server.New(serverCfg, board, cache,
		server.WithLogger(loggerOrDefault()),
		server.WithPalettes(cfg.Palettes),
	)
	err = srv.Run(ctx)
	board.Wait()
	return err
}

// warm loads every card once and logs the outcome.
func warm(ctx context.Context, loadAll func(context.Context, string) models.BoardData) {
	log := loggerOrDefault()
	data := loadAll(ctx, "")
	failed := 0
	for id, card := range data.Cards {
		if card.Error != "" {
			failed++
			log.Warn("card warm-up failed", "card", id, "error", card.Error)
		}
	}
	log.Info("cards warmed", "total", len(data.Cards), "failed", failed)
}
