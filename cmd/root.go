package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	dbPath      string
	redisURL    string
	logLevel    string
	intakeDir   string
	metricsBind string
	actorName   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "issues",
	Short: "Terminal-first customer issue case manager",
	Long: `Issues is a terminal-first tool for recording and following up customer
reported issues (billing, metering, connection problems).

Features:
- Case list with year filter, field search and sorting
- Attachments, numbered correspondence and per-case audit history
- JSON/JSONL intake folder for cases produced by other systems
- Redis Streams change feed so every open console stays current
- SQLite storage`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.issues.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./data/issues.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis", "redis://localhost:6379", "Redis connection URL for the change feed")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&intakeDir, "intake-dir", "./data/intake", "Directory watched for JSON/JSONL case files")
	rootCmd.PersistentFlags().StringVar(&metricsBind, "metrics-bind", "", "Address to serve Prometheus metrics on, e.g. 127.0.0.1:9108 (disabled when empty)")
	rootCmd.PersistentFlags().StringVar(&actorName, "actor", "", "Employee name recorded on changes (default: $USER)")

	// Bind flags to viper
	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("redis.url", rootCmd.PersistentFlags().Lookup("redis"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("intake.dir", rootCmd.PersistentFlags().Lookup("intake-dir"))
	viper.BindPFlag("metrics.bind", rootCmd.PersistentFlags().Lookup("metrics-bind"))
	viper.BindPFlag("actor", rootCmd.PersistentFlags().Lookup("actor"))
}

// initConfig reads in config file, .env and ENV variables if set.
func initConfig() {
	// A missing .env is normal.
	_ = godotenv.Load(".env")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".issues" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".issues")
	}

	// ISSUES_DATABASE_PATH, ISSUES_REDIS_URL, ...
	viper.SetEnvPrefix("issues")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Set defaults
	viper.SetDefault("database.path", "./data/issues.db")
	viper.SetDefault("redis.url", "redis://localhost:6379")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("intake.dir", "./data/intake")
	viper.SetDefault("reports.dir", "./reports")
	viper.SetDefault("ui.theme", "dark")
}

// GetConfig returns the current configuration values
func GetConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Path: viper.GetString("database.path"),
		},
		Redis: RedisConfig{
			URL: viper.GetString("redis.url"),
		},
		Log: LogConfig{
			Level: viper.GetString("log.level"),
		},
		Intake: IntakeConfig{
			Dir: viper.GetString("intake.dir"),
		},
		Metrics: MetricsConfig{
			Bind: viper.GetString("metrics.bind"),
		},
		Reports: ReportsConfig{
			Dir: viper.GetString("reports.dir"),
		},
		UI: UIConfig{
			Theme: viper.GetString("ui.theme"),
		},
		Actor: resolveActorName(viper.GetString("actor")),
	}
}

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Intake   IntakeConfig   `mapstructure:"intake"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Reports  ReportsConfig  `mapstructure:"reports"`
	UI       UIConfig       `mapstructure:"ui"`
	Actor    string         `mapstructure:"actor"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type IntakeConfig struct {
	Dir string `mapstructure:"dir"`
}

type MetricsConfig struct {
	Bind string `mapstructure:"bind"`
}

type ReportsConfig struct {
	Dir string `mapstructure:"dir"`
}

type UIConfig struct {
	Theme string `mapstructure:"theme"`
}
