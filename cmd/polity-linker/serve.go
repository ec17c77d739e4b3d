package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katakuxiko/polity-linker/internal/api"
	"github.com/katakuxiko/polity-linker/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web UI and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.ServerAddr = addr
		}

		// The book is loaded once per process. A missing book is shown to
		// users on every request rather than stopping the server.
		c, err := loadCorpus(cmd.Context(), cfg)
		if err != nil {
			logger.Warn("corpus unavailable", zap.Error(err))
		} else {
			logger.Info("corpus loaded",
				zap.String("source", c.Name()),
				zap.Int("bytes", len(c.Text())),
				zap.Int("chapters", len(c.Chapters())),
			)
		}

		h := api.NewHandler(api.Deps{
			Corpus:    c,
			CorpusErr: err,
			Retriever: service.NewRetriever(cfg.ContextWindow),
			Notes:     newNotesService(cfg, logger),
			APIKey:    cfg.APIKey,
			Log:       logger,
		})

		app := fiber.New(fiber.Config{DisableStartupMessage: true})
		api.RegisterRoutes(app, h)

		go func() {
			<-cmd.Context().Done()
			logger.Info("shutting down")
			_ = app.Shutdown()
		}()

		logger.Info("server started", zap.String("addr", cfg.ServerAddr), zap.String("provider", cfg.Provider))
		return app.Listen(cfg.ServerAddr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address, overrides server_addr")
}
