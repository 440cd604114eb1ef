// Package cli implements the pageguard command tree.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pageguard/pageguard/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pageguard",
	Short: "PageGuard - real-time page content safety scanner",
	Long: `PageGuard scans web pages for content unsafe for young users:
profanity, hate speech, predatory messages, scams, explicit material
and more.

Obvious cases are caught instantly by local pattern tiers; ambiguous
content is classified remotely in bounded batches. Flagged elements
are blurred in place and each mitigation is reported once.

PageGuard hides content; it never decides what a platform should host.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("pageguard v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.pageguard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and PAGEGUARD_* environment variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.pageguard")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("PAGEGUARD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and environment over the defaults
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()
	if v := viper.GetString("service.base_url"); v != "" {
		cfg.Service.BaseURL = v
	}
	if v := viper.GetString("service.provider"); v != "" {
		cfg.Service.Provider = v
	}
	if v := viper.GetString("service.api_key"); v != "" {
		cfg.Service.APIKey = v
	}
	if v := viper.GetString("service.model"); v != "" {
		cfg.Service.Model = v
	}
	if v := viper.GetDuration("service.timeout"); v > 0 {
		cfg.Service.Timeout = v
	}
	if v := viper.GetDuration("scanner.maintainer_interval"); v > 0 {
		cfg.Scanner.MaintainerInterval = v
	}
	if viper.IsSet("scanner.batch_size") {
		cfg.Scanner.BatchSize = viper.GetInt("scanner.batch_size")
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if v := viper.GetDuration("cache.ttl"); v > 0 {
		cfg.Cache.TTL = v
	}
	cfg.Output.Verbose = verbose
	return cfg
}

// buildLogger picks the log level from verbosity
func buildLogger() *zap.Logger {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// resolveAPIKey falls back to the provider's conventional env var
func resolveAPIKey(cfg *model.Config) error {
	if cfg.Service.Provider != "openai" || cfg.Service.APIKey != "" {
		return nil
	}
	cfg.Service.APIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.Service.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	return nil
}

const defaultScanTimeout = 2 * time.Minute
