// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the careerlink CLI, the operator tool
// that finds and removes duplicate records in the career-guidance
// platform's document store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/careerlink/internal/logging"
	"github.com/pdiddy/careerlink/internal/secrets"
	"github.com/pdiddy/careerlink/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Process-wide state prepared by PersistentPreRunE.
var (
	cfg      types.Config
	logger   *slog.Logger
	closeLog = func() error { return nil }
)

// rootCmd is the base command for the careerlink CLI.
var rootCmd = &cobra.Command{
	Use:   "careerlink",
	Short: "Find and reconcile duplicate records in the careerlink document store",
	Long: `careerlink scans the platform's collections (institutions, users, courses,
jobs, companies, applications) for records that describe the same entity,
proposes one record to keep per duplicate group, and deletes the rest after
explicit confirmation.

Scanning is read-only. Nothing is deleted until the operator has seen the
plan and confirmed the exact number of deletions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		used := secrets.Apply(&c, s)

		log, cleanup, err := logging.Setup(c.Logging, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		cfg, logger, closeLog = c, log, cleanup
		slog.SetDefault(logger)

		if len(used) > 0 {
			logger.Info("loaded secrets", "keys", used)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./careerlink.yaml or ~/.config/careerlink/careerlink.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "document store backend: sqlite, surrealdb, firestore or memory")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	viper.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("backend"))
	viper.BindPFlag("store.sqlite.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("careerlink")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "careerlink"))
		}
	}

	setDefaults()
	viper.SetEnvPrefix("CAREERLINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every scalar key so that environment variables
// such as CAREERLINK_STORE_BACKEND reach viper.Unmarshal.
func setDefaults() {
	d := types.DefaultConfig()
	defaults := map[string]any{
		"store.backend":                    string(d.Store.Backend),
		"store.sqlite.path":                d.Store.SQLite.Path,
		"store.surrealdb.url":              d.Store.SurrealDB.URL,
		"store.surrealdb.namespace":        d.Store.SurrealDB.Namespace,
		"store.surrealdb.database":         d.Store.SurrealDB.Database,
		"store.surrealdb.username":         d.Store.SurrealDB.Username,
		"store.surrealdb.password":         "",
		"store.surrealdb.auth_level":       d.Store.SurrealDB.AuthLevel,
		"store.firestore.project_id":       "",
		"store.firestore.database_id":      d.Store.Firestore.DatabaseID,
		"store.firestore.api_key":          "",
		"store.firestore.bearer_token":     "",
		"store.firestore.credentials_file": "",
		"store.firestore.emulator_host":    "",
		"store.firestore.timeout":          d.Store.Firestore.Timeout,
		"store.firestore.user_agent":       d.Store.Firestore.UserAgent,
		"reconcile.delete_rate":            d.Reconcile.DeleteRate,
		"reconcile.delete_burst":           d.Reconcile.DeleteBurst,
		"reconcile.export_dir":             d.Reconcile.ExportDir,
		"logging.file":                     d.Logging.File,
		"logging.level":                    d.Logging.Level,
	}
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// loadConfig decodes the merged viper settings into a Config.
func loadConfig() (types.Config, error) {
	var c types.Config
	if err := viper.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding configuration: %w", err)
	}
	return c.WithDefaults(), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
