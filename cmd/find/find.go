// Package find implements the single-traversal command.
package find

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/philosophy/cmd/common"
	infralogger "github.com/jonesrussell/north-cloud/philosophy/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathfinder"
)

// Command returns the find command.
func Command() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "find [start-url]",
		Short: "Follow first links from one article",
		Long: `Follow first links from start-url (a random article by default) until the
target, a dead end or a loop, printing one article title per line.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
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

			start := app.Config.Crawler.RandomStart
			if len(args) == 1 {
				start = args[0]
			}
			if target == "" {
				target = app.Config.Crawler.Target
			}

			res, findErr := app.Engine.FindPath(ctx, start, target)
			PrintResult(cmd.OutOrStdout(), res)
			if findErr != nil {
				app.Logger.Error("Traversal failed", infralogger.Error(findErr))
				return fmt.Errorf("find path: %w", findErr)
			}

			app.Logger.Info("Traversal finished",
				infralogger.String("outcome", string(res.Outcome)),
				infralogger.Int("length", len(res.Path)),
				infralogger.Bool("cached", res.Cached),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "target article URL (default from config)")
	return cmd
}

// PrintResult writes one title per line.
func PrintResult(w io.Writer, res *pathfinder.Result) {
	if res == nil {
		return
	}
	for _, title := range res.Path {
		fmt.Fprintln(w, title)
	}
}
