// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/relational-matrix/internal/api"
	"github.com/pdiddy/relational-matrix/internal/repository"
	"github.com/pdiddy/relational-matrix/internal/repository/sqlstore"
	"github.com/pdiddy/relational-matrix/internal/repository/workbook"
	"github.com/pdiddy/relational-matrix/internal/secrets"
	"github.com/pdiddy/relational-matrix/internal/selector"
	"github.com/pdiddy/relational-matrix/pkg/types"
)

func setDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("database.driver", types.DriverPostgres)
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_idle_time", 5*time.Minute)
	viper.SetDefault("database.ping_retries", 5)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("engine.parallel", 1)
}

// appConfig assembles the configuration from viper (config file,
// environment, bound flags) and the loaded secrets.
func appConfig() (types.AppConfig, error) {
	cfg := types.AppConfig{
		Database: types.DatabaseConfig{
			Driver:          viper.GetString("database.driver"),
			URL:             viper.GetString("database.url"),
			MaxOpenConns:    viper.GetInt("database.max_open_conns"),
			MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
			ConnMaxIdleTime: viper.GetDuration("database.conn_max_idle_time"),
			PingRetries:     viper.GetInt("database.ping_retries"),
		},
		Workbook: types.WorkbookConfig{
			Path: viper.GetString("workbook.path"),
		},
		Server: types.ServerConfig{
			Addr:            viper.GetString("server.addr"),
			ReadTimeout:     viper.GetDuration("server.read_timeout"),
			WriteTimeout:    viper.GetDuration("server.write_timeout"),
			ShutdownTimeout: viper.GetDuration("server.shutdown_timeout"),
		},
		Engine: types.EngineConfig{
			Parallel: viper.GetInt("engine.parallel"),
		},
		LogLevel: viper.GetString("log_level"),
	}
	if err := secrets.ApplyDatabase(&cfg.Database, loadedSecrets); err != nil {
		return types.AppConfig{}, err
	}
	return cfg, nil
}

// dataSource is an opened evidence repository.
type dataSource struct {
	repo   selector.Repository
	health api.Pinger
	close  func() error
}

// openDataSource opens the workbook when one is configured, else the
// database.
func openDataSource(ctx context.Context, cfg types.AppConfig, logger *slog.Logger) (*dataSource, error) {
	if cfg.Workbook.Path != "" {
		ds, err := workbook.Load(cfg.Workbook.Path, logger)
		if err != nil {
			return nil, err
		}
		return &dataSource{
			repo:  repository.NewMemory(ds),
			close: func() error { return nil },
		}, nil
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("no evidence source: set --workbook or --database-url (or RELMATRIX_DATABASE_URL)")
	}
	store, err := sqlstore.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return &dataSource{repo: store, health: store, close: store.Close}, nil
}

// levelAliases are short names accepted by --level.
var levelAliases = map[string]types.Level{
	"national":   types.LevelNational,
	"regional":   types.LevelRegional,
	"survey":     types.LevelSurvey,
	"case-study": types.LevelCaseStudy,
	"case_study": types.LevelCaseStudy,
	"other":      types.LevelOther,
	"all":        types.LevelAll,
}

// parseLevel accepts a stored level name or one of its short aliases.
func parseLevel(s string) types.Level {
	if l, ok := levelAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l
	}
	return types.Level(s)
}

// addQueryFlags registers the query key flags on cmd.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("level", "all", "level of analysis: national, regional, survey, case-study, other, all, or a full level name")
	cmd.Flags().String("dependent", "", "dependent variable selection")
	cmd.Flags().String("dependent-other", "", "free text for an \"Other\" dependent variable")
	cmd.Flags().String("independent", "", "independent variable selection")
	cmd.Flags().String("independent-other", "", "free text for an \"Other\" independent variable")
}

// queryKeyFromFlags builds the query key from the flags of addQueryFlags.
func queryKeyFromFlags(cmd *cobra.Command) types.QueryKey {
	level, _ := cmd.Flags().GetString("level")
	dep, _ := cmd.Flags().GetString("dependent")
	depOther, _ := cmd.Flags().GetString("dependent-other")
	ind, _ := cmd.Flags().GetString("independent")
	indOther, _ := cmd.Flags().GetString("independent-other")

	return types.QueryKey{
		Level:       parseLevel(level),
		Dependent:   types.ParseVariable(dep, depOther),
		Independent: types.ParseVariable(ind, indOther),
	}
}

// outputFormat resolves --format and the --json shortcut.
func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("format")
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		format = "json"
	}
	switch format {
	case "", "table":
		return "table", nil
	case "json", "yaml":
		return format, nil
	}
	return "", fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "table", "output format: table, json, or yaml")
	cmd.Flags().Bool("json", false, "output as JSON (same as --format json)")
}
