package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"art-showcase/pkg/config"
	"art-showcase/pkg/handlers"
	"art-showcase/pkg/manifest"
	"art-showcase/pkg/services"
)

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	var (
		watch     bool
		viewsDir  string
		publicDir string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the web server to serve the showcase via HTTP.
The page is available immediately; the manifest is loaded in the background.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, logger := mustLoad(cmd)
			svc := services.InitService(cfg, logger)
			h := handlers.New(svc, logger, viewsDir, publicDir)
			if err := serveWebsite(cmd.Context(), cfg, svc, h, logger, watch); err != nil {
				logger.Error("server error", "err", err)
				os.Exit(1)
			}
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the manifest when the local file changes")
	cmd.Flags().StringVar(&viewsDir, "views", "./views", "Directory holding the page templates")
	cmd.Flags().StringVar(&publicDir, "public", "./public", "Directory served under /public/")
	return cmd
}

// serveWebsite runs the web server until ctx is cancelled or a signal arrives
func serveWebsite(ctx context.Context, cfg *config.Config, svc *services.Service, h *handlers.Handlers, logger *log.Logger, watch bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watch {
		w, err := watchManifest(ctx, cfg, svc, logger)
		if err != nil {
			return err
		}
		if w != nil {
			defer w.Stop()
		}
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           h.Router(cfg.AdminPrefix()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		svc.Preload(ctx)
		return nil
	})
	g.Go(func() error {
		cfg.LogServerStart(logger)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	svc.Wait()
	return err
}

// watchManifest starts a file watcher when the manifest is a local file.
// It returns nil without error for remote manifests.
func watchManifest(ctx context.Context, cfg *config.Config, svc *services.Service, logger *log.Logger) (*manifest.Watcher, error) {
	if isRemote(cfg.ManifestURL) {
		logger.Warn("--watch only applies to local manifest files", "source", cfg.ManifestURL)
		return nil, nil
	}
	w, err := manifest.NewWatcher(cfg.ManifestURL, svc.Store(), logger, func(int) {
		svc.MarkFresh()
	})
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return nil, err
	}
	return w, nil
}

func isRemote(source string) bool {
	for _, scheme := range []string{"http://", "https://", "gs://"} {
		if strings.HasPrefix(source, scheme) {
			return true
		}
	}
	return false
}
