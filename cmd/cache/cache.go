// Package cache implements commands for inspecting the path cache.
package cache

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/philosophy/cmd/common"
	"github.com/jonesrussell/north-cloud/philosophy/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
)

const pathSeparator = " → "

var errNotConfirmed = errors.New("refusing to clear the cache without --yes")

// Command returns the cache command group.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or reset the path cache",
	}
	cmd.AddCommand(showCommand(), statsCommand(), clearCommand())
	return cmd
}

// withApp runs fn with a wired application and tears it down afterwards.
func withApp(cmd *cobra.Command, fn func(app *bootstrap.App) error) (err error) {
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
	return fn(app)
}

func showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [title...]",
		Short: "Print cached paths, all of them or the given titles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(app *bootstrap.App) error {
				paths := app.Cache.Snapshot()
				if len(args) > 0 {
					selected := make(map[string]domain.Path, len(args))
					for _, title := range args {
						if path, ok := paths[title]; ok {
							selected[title] = path
						}
					}
					if len(selected) == 0 {
						return fmt.Errorf("no cached path for %s", strings.Join(args, ", "))
					}
					paths = selected
				}
				RenderPaths(cmd.OutOrStdout(), paths)
				return nil
			})
		},
	}
}

func statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the cached paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(app *bootstrap.App) error {
				RenderStats(cmd.OutOrStdout(), app.Config.Cache.Backend, Summarize(app.Cache.Snapshot()))
				return nil
			})
		},
	}
}

func clearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errNotConfirmed
			}
			return withApp(cmd, func(app *bootstrap.App) error {
				n := app.Cache.Len()
				if err := app.Cache.Clear(cmd.Context()); err != nil {
					return err
				}
				cmd.Printf("Cleared %d cached paths\n", n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm clearing the cache")
	return cmd
}

// Stats summarizes a cache snapshot.
type Stats struct {
	Entries       int
	AverageLength float64
	Longest       domain.Path
	// Terminals counts how many cached paths end at each final article.
	Terminals map[string]int
}

// Summarize computes cache statistics.
func Summarize(paths map[string]domain.Path) Stats {
	s := Stats{Entries: len(paths), Terminals: make(map[string]int)}
	total := 0
	for _, path := range paths {
		total += len(path)
		s.Terminals[path.Last()]++
		if len(path) > len(s.Longest) || (len(path) == len(s.Longest) && path.Head() < s.Longest.Head()) {
			s.Longest = path
		}
	}
	if s.Entries > 0 {
		s.AverageLength = float64(total) / float64(s.Entries)
	}
	return s
}

// RenderPaths prints paths as a table sorted by title.
func RenderPaths(w io.Writer, paths map[string]domain.Path) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Title", "Length", "Path"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, WidthMax: 120},
	})
	for title, path := range paths {
		t.AppendRow(table.Row{title, len(path), strings.Join(path, pathSeparator)})
	}
	t.SortBy([]table.SortBy{{Number: 1, Mode: table.Asc}})
	t.AppendFooter(table.Row{"Total", len(paths), ""})
	t.Render()
}

// RenderStats prints a cache summary.
func RenderStats(w io.Writer, backend string, s Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Path cache (%s)", backend)
	t.AppendRows([]table.Row{
		{"Entries", s.Entries},
		{"Average length", fmt.Sprintf("%.2f", s.AverageLength)},
		{"Longest", strings.Join(s.Longest, pathSeparator)},
	})
	t.AppendSeparator()

	terminals := slices.Collect(maps.Keys(s.Terminals))
	slices.SortFunc(terminals, func(a, b string) int {
		if c := cmp.Compare(s.Terminals[b], s.Terminals[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	for _, terminal := range terminals {
		t.AppendRow(table.Row{"Ends at " + terminal, s.Terminals[terminal]})
	}
	t.Render()
}
