package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"db-reconcile/internal/dialect"
	"db-reconcile/internal/reconcile"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	dsn        string
	DB         *sql.DB
	SchemaName string
	cfgFile    string
	DriverName string
	Dialect    *dialect.Dialect
	Registry   *dialect.Registry
	Logger     = zap.NewNop()
)

// offline commands need no database connection.
const offline = "offline"

var RootCmd = &cobra.Command{
	Use:   "db-reconcile",
	Short: "Reconcile a live database schema with a declared data model",
	Long: `
  ____  ____    ____  _____ ____ ___  _   _  ____ ___ _     _____
 |  _ \| __ )  |  _ \| ____/ ___/ _ \| \ | |/ ___|_ _| |   | ____|
 | | | |  _ \  | |_) |  _|| |  | | | |  \| | |    | || |   |  _|
 | |_| | |_) | |  _ <| |__| |__| |_| | |\  | |___ | || |___| |___
 |____/|____/  |_| \_\_____\____\___/|_| \_|\____|___|_____|_____|

DB RECONCILE - make the schema match the model, never drop a thing
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(viper.GetString("log.level"))
		if err != nil {
			return err
		}
		Logger = logger
		Registry = dialect.Default(Logger)

		if cmd.Annotations[offline] == "true" {
			return nil
		}
		return connect(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			DB.Close()
		}
		_ = Logger.Sync()
	},
}

// connect opens the active database and resolves its dialect and schema.
func connect(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	config, err := resolveDBConfig()
	if err != nil {
		return err
	}
	DriverName = config.Driver

	DB, err = sql.Open(DriverName, config.DSN)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	if err := DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}

	probe, err := dialect.ProbeConnection(ctx, DB, DriverName)
	if err == nil {
		Dialect, err = Registry.Detect(probe)
	}
	if err != nil {
		// An explicitly configured dialect is the way out of a failed detection.
		if config.Dialect == "" {
			return fmt.Errorf("failed to detect dialect (set database.dialect to override): %w", err)
		}
		Logger.Warn("dialect detection failed, using configured dialect",
			zap.String("dialect", config.Dialect), zap.Error(err))
	}
	if config.Dialect != "" && Dialect == nil {
		Dialect = Registry.Lookup(config.Dialect)
		if Dialect == nil {
			return fmt.Errorf("unknown dialect %q: %w", config.Dialect, dialect.ErrNotFound)
		}
	}

	SchemaName = config.Schema
	if SchemaName == "" {
		SchemaName = Dialect.SchemaName(probe)
	}
	Logger.Info("connected",
		zap.String("name", config.Name),
		zap.String("driver", DriverName),
		zap.String("dialect", Dialect.Name),
		zap.String("schema", SchemaName),
	)
	return nil
}

// resolveDBConfig prefers the active entry of the databases list and falls
// back to the single database section.
func resolveDBConfig() (*DBConfig, error) {
	config, err := GetActiveDBConfig()
	if err == nil {
		return config, nil
	}
	connStr := viper.GetString("database.dsn")
	if connStr == "" {
		return nil, fmt.Errorf("database.dsn is required (via flag or config): %w", err)
	}
	driver := viper.GetString("database.driver")
	if driver == "" {
		driver = guessDriver(connStr)
	}
	return &DBConfig{
		Name:    "CLI",
		Driver:  driver,
		DSN:     connStr,
		Dialect: viper.GetString("database.dialect"),
		Schema:  viper.GetString("database.schema"),
		Active:  true,
	}, nil
}

func guessDriver(connStr string) string {
	switch {
	case strings.HasPrefix(connStr, "postgres") || strings.Contains(connStr, "sslmode"):
		return "postgres"
	case strings.HasPrefix(connStr, "sqlserver://"):
		return "sqlserver"
	case strings.HasPrefix(connStr, "oracle://"):
		return "oracle"
	case strings.HasPrefix(connStr, "file:") || strings.HasSuffix(connStr, ".db") || connStr == ":memory:":
		return "sqlite"
	default:
		return "mysql"
	}
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log.level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	if lvl.Level() == zap.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		var fatal *reconcile.FatalError
		if errors.As(err, &fatal) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./db-reconcile.yaml)")
	RootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database Source Name (DSN)")
	RootCmd.PersistentFlags().String("driver", "", "database/sql driver name (postgres, mysql, sqlserver, oracle, sqlite)")
	RootCmd.PersistentFlags().String("dialect", "", "dialect to use when detection fails")
	RootCmd.PersistentFlags().String("schema", "", "schema to reconcile (default depends on the dialect)")
	RootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	viper.BindPFlag("database.dsn", RootCmd.PersistentFlags().Lookup("dsn"))
	viper.BindPFlag("database.driver", RootCmd.PersistentFlags().Lookup("driver"))
	viper.BindPFlag("database.dialect", RootCmd.PersistentFlags().Lookup("dialect"))
	viper.BindPFlag("database.schema", RootCmd.PersistentFlags().Lookup("schema"))
	viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetDefault("log.level", "info")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Executable directory first, then the current directory.
		ex, err := os.Executable()
		if err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")

		viper.SetConfigName("db-reconcile")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
