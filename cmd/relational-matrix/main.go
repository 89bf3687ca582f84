// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the relational-matrix CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/relational-matrix/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the relational-matrix CLI.
var rootCmd = &cobra.Command{
	Use:   "relational-matrix",
	Short: "Evidence verdicts for relations between socio-economic variables",
	Long: `relational-matrix answers "what is the impact of an independent variable
on a dependent variable at a level of analysis?" by collecting findings from six
evidence sources (estimated, literature, perceived, correlations, Granger
causalities, AI research), classifying them, and deriving per-source and overall
verdicts.

Evidence is read from a PostgreSQL or SQLite database, or from an .xlsx workbook
with one sheet per evidence table.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			slog.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./relational-matrix.yaml or ~/.config/relational-matrix/config.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("workbook", "", "read evidence from this .xlsx workbook instead of a database")
	pf.String("driver", "postgres", "database driver: postgres or sqlite3")
	pf.String("database-url", "", "database connection URL or SQLite file path")

	viper.BindPFlag("log_level", pf.Lookup("log-level"))
	viper.BindPFlag("workbook.path", pf.Lookup("workbook"))
	viper.BindPFlag("database.driver", pf.Lookup("driver"))
	viper.BindPFlag("database.url", pf.Lookup("database-url"))
}

func initConfig() {
	// A missing .env is normal; variables may come from the environment.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("relational-matrix")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "relational-matrix"))
		}
	}

	setDefaults()

	viper.SetEnvPrefix("RELMATRIX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	readErr := viper.ReadInConfig()

	slog.SetDefault(newLogger(viper.GetString("log_level")))
	if readErr == nil {
		slog.Info("using config file", "path", viper.ConfigFileUsed())
	}
}

// newLogger returns a text logger on stderr at the named level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
