// Package httpd implements the HTTP server command.
package httpd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/philosophy/cmd/common"
	infracontext "github.com/jonesrussell/north-cloud/philosophy/infrastructure/context"
	infralogger "github.com/jonesrussell/north-cloud/philosophy/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/philosophy/infrastructure/profiling"
	"github.com/jonesrussell/north-cloud/philosophy/internal/bootstrap"
)

// Command returns the httpd command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Serve path discovery over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			app, err := common.Setup(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := common.Teardown(ctx, app); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			return run(ctx, app)
		},
	}
}

func run(ctx context.Context, app *bootstrap.App) error {
	log := app.Logger

	if pprofSrv := profiling.StartPprofServer(app.Config.Server.PprofPort, log); pprofSrv != nil {
		defer func() {
			shutdownCtx, cancel := infracontext.WithShutdownTimeout(ctx)
			defer cancel()
			_ = pprofSrv.Shutdown(shutdownCtx)
		}()
	}

	server := bootstrap.NewHTTPServer(app, common.Version)
	log.Info("Starting HTTP server",
		infralogger.String("host", app.Config.Server.Host),
		infralogger.Int("port", app.Config.Server.Port),
	)

	if err := server.RunWithGracefulShutdown(ctx); err != nil {
		log.Error("Server error", infralogger.Error(err))
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("Server exited")
	return nil
}
