// Package batch implements the batch tester command.
package batch

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/philosophy/cmd/common"
	"github.com/jonesrussell/north-cloud/philosophy/internal/config"
	"github.com/jonesrussell/north-cloud/philosophy/internal/harness"
)

// Command returns the batch command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run many random-start traversals and summarize them",
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

			cfg, err := harnessConfig(cmd, app.Config)
			if err != nil {
				return err
			}

			runner := harness.NewRunner(harness.RunnerParams{Finder: app.Engine, Logger: app.Logger})
			report, runErr := runner.Run(ctx, cfg)
			if report != nil {
				harness.WriteReport(cmd.OutOrStdout(), report)
			}
			return runErr
		},
	}

	flags := cmd.Flags()
	flags.IntP("count", "n", 0, "number of traversals (default from config)")
	flags.IntP("concurrency", "c", 0, "traversals run at once (default from config)")
	flags.Duration("delay", 0, "pause between starting traversals (default from config)")
	flags.String("target", "", "target article URL (default from config)")
	return cmd
}

// harnessConfig builds the run configuration from cfg, letting explicitly
// set flags win.
func harnessConfig(cmd *cobra.Command, cfg *config.Config) (harness.Config, error) {
	hc := harness.Config{
		Count:       cfg.Batch.Count,
		Concurrency: cfg.Batch.Concurrency,
		Delay:       cfg.Batch.Delay,
		Start:       cfg.Crawler.RandomStart,
		Target:      cfg.Crawler.Target,
	}

	flags := cmd.Flags()
	var err error
	if flags.Changed("count") {
		if hc.Count, err = flags.GetInt("count"); err != nil {
			return hc, err
		}
	}
	if flags.Changed("concurrency") {
		if hc.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return hc, err
		}
	}
	if flags.Changed("delay") {
		if hc.Delay, err = flags.GetDuration("delay"); err != nil {
			return hc, err
		}
	}
	if target, _ := flags.GetString("target"); target != "" {
		hc.Target = target
	}

	if hc.Count <= 0 {
		return hc, errors.New("--count must be positive")
	}
	return hc, nil
}
