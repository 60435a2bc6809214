package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mhpenta/imageedit"
	"github.com/mhpenta/imageedit/internal/config"
	"github.com/mhpenta/imageedit/internal/logging"
	"github.com/mhpenta/imageedit/internal/preview"
	"github.com/mhpenta/imageedit/internal/server"
	"github.com/mhpenta/imageedit/internal/session"
	"github.com/mhpenta/imageedit/internal/shell"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the browser UI",
	Long: `Serve starts a local web server with the image editing UI.

Examples:
  imageedit serve
  imageedit serve --port 9090
  imageedit serve --model nano-banana-2 --validate-key`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().Bool("validate-key", false, "Check the API key with Gemini before serving")

	_ = v.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = v.BindPFlag("validate_key", serveCmd.Flags().Lookup("validate-key"))
}

func runServe(cmd *cobra.Command, args []string) error {
	start := time.Now()

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	logging.Init(cfg.LogLevel, cfg.LogConsole)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	previews := preview.NewRegistry()
	editCfg := imageedit.DefaultConfig()
	shellLogger := log.Logger.With().Str("component", "shell").Logger()

	store := session.NewStore(cfg.SessionTTL, func() *shell.Shell {
		return shell.New(svc, previews,
			shell.WithEditConfig(editCfg),
			shell.WithTimeout(cfg.RequestTimeout),
			shell.WithLogger(shellLogger),
		)
	}, log.Logger.With().Str("component", "session").Logger())

	srv := server.New(store, previews, server.Options{
		Addr:           cfg.Addr(),
		MaxUploadBytes: cfg.MaxUploadBytes,
		WriteTimeout:   cfg.RequestTimeout + 30*time.Second,
		GinMode:        cfg.GinMode,
		Logger:         log.Logger.With().Str("component", "http").Logger(),
	})

	logging.NewStartupLogger("serve").
		Version(version).
		Config("addr", cfg.Addr()).
		Config("model", string(svc.DefaultModel())).
		Config("sessionTTL", cfg.SessionTTL.String()).
		Config("requestTimeout", cfg.RequestTimeout.String()).
		Config("maxUploadBytes", strconv.FormatInt(cfg.MaxUploadBytes, 10)).
		Feature("validateKey", cfg.ValidateKey).
		Feature("customBaseURL", cfg.BaseURL != "").
		InitDuration(time.Since(start)).
		Log()

	fmt.Fprintf(cmd.OutOrStdout(), "\n  Image Edit UI: http://localhost:%d\n\n", cfg.Port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		store.Close()
		return err
	})

	return g.Wait()
}
