// Package cmd implements the wikipath command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/north-cloud/philosophy/cmd/batch"
	cmdcache "github.com/jonesrussell/north-cloud/philosophy/cmd/cache"
	"github.com/jonesrussell/north-cloud/philosophy/cmd/common"
	"github.com/jonesrussell/north-cloud/philosophy/cmd/find"
	"github.com/jonesrussell/north-cloud/philosophy/cmd/httpd"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "wikipath",
	Short: "Follow first links between encyclopedia articles",
	Long: `wikipath follows the first qualifying link of each article until it reaches
a target article (Philosophy by default), remembering every path it proves.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	_ = godotenv.Load()

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	// Interrupts cancel running traversals; commands still flush the cache on the way out.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String(common.KeyConfig, "", "config file (default is ./config.yml or $CONFIG_PATH)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("cache-backend", "", "path cache backend: file, redis, postgres, badger or memory")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("wikipath version %s\n", Version)
		},
	})

	common.Version = Version
	rootCmd.AddCommand(find.Command())
	rootCmd.AddCommand(batch.Command())
	rootCmd.AddCommand(httpd.Command())
	rootCmd.AddCommand(cmdcache.Command())
}

// initConfig binds flags and environment variables into viper. The typed
// configuration is loaded later by each command, with these values layered on top.
func initConfig() error {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	if err := viper.BindPFlag(common.KeyConfig, flags.Lookup(common.KeyConfig)); err != nil {
		return fmt.Errorf("failed to bind config flag: %w", err)
	}
	if err := viper.BindPFlag(common.KeyDebug, flags.Lookup("debug")); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}
	if err := viper.BindPFlag(common.KeyCacheBackend, flags.Lookup("cache-backend")); err != nil {
		return fmt.Errorf("failed to bind cache-backend flag: %w", err)
	}
	if err := viper.BindEnv(common.KeyConfig, "CONFIG_PATH"); err != nil {
		return fmt.Errorf("failed to bind CONFIG_PATH: %w", err)
	}
	if err := viper.BindEnv(common.KeyDebug, "APP_DEBUG"); err != nil {
		return fmt.Errorf("failed to bind APP_DEBUG: %w", err)
	}
	return nil
}
