package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Notifier  NotifierConfig  `mapstructure:"notifier"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Environment  string `mapstructure:"environment"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	URI                  string `mapstructure:"uri"`
	Name                 string `mapstructure:"name"`
	JogCollection        string `mapstructure:"jog_collection"`
	StatsCollection      string `mapstructure:"stats_collection"`
	ConnectTimeout       int    `mapstructure:"connect_timeout"`
	OperationTimeout     int    `mapstructure:"operation_timeout"`
	MaxConnectRetryTime  int    `mapstructure:"max_connect_retry_time"`
	ChangeStreamsEnabled bool   `mapstructure:"change_streams_enabled"`
}

type NotifierConfig struct {
	GatewayURL string `mapstructure:"gateway_url"`
	Timeout    int    `mapstructure:"timeout"`
	BatchSize  int    `mapstructure:"batch_size"`
}

type PlannerConfig struct {
	APIEndpoint string `mapstructure:"api_endpoint"`
	APIKey      string `mapstructure:"api_key"`
	Timeout     int    `mapstructure:"timeout"`
	MaxRetries  int    `mapstructure:"max_retries"`
}

type SchedulerConfig struct {
	Enabled                bool   `mapstructure:"enabled"`
	Timezone               string `mapstructure:"timezone"`
	SweepInterval          int    `mapstructure:"sweep_interval"`
	GraceSeconds           int    `mapstructure:"grace_seconds"`
	SweepAdjustmentMinutes int    `mapstructure:"sweep_adjustment_minutes"`
	StreakRollupTime       string `mapstructure:"streak_rollup_time"`
	ShutdownTimeout        int    `mapstructure:"shutdown_timeout"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set defaults
	setDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)

	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "jogapp")
	viper.SetDefault("database.jog_collection", "jogs")
	viper.SetDefault("database.stats_collection", "user_stats")
	viper.SetDefault("database.connect_timeout", 10)
	viper.SetDefault("database.operation_timeout", 30)
	viper.SetDefault("database.max_connect_retry_time", 60)
	viper.SetDefault("database.change_streams_enabled", true)

	viper.SetDefault("notifier.gateway_url", "https://exp.host/--/api/v2/push/send")
	viper.SetDefault("notifier.timeout", 15)
	viper.SetDefault("notifier.batch_size", 100)

	viper.SetDefault("planner.api_endpoint", "")
	viper.SetDefault("planner.api_key", "")
	viper.SetDefault("planner.timeout", 30)
	viper.SetDefault("planner.max_retries", 3)

	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.timezone", "UTC")
	viper.SetDefault("scheduler.sweep_interval", 60)   // seconds between per-minute sweeps
	viper.SetDefault("scheduler.grace_seconds", 60)    // overdue promotion grace window
	viper.SetDefault("scheduler.sweep_adjustment_minutes", 1)
	viper.SetDefault("scheduler.streak_rollup_time", "23:55")
	viper.SetDefault("scheduler.shutdown_timeout", 30)
}
