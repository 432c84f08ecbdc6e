// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	DBDriver            string        `mapstructure:"DB_DRIVER"`
	DBSource            string        `mapstructure:"DB_SOURCE"`
	MigrationURL        string        `mapstructure:"MIGRATION_URL"`
	ServerAddress       string        `mapstructure:"SERVER_ADDRESS"`
	Environement        string        `mapstructure:"GO_ENV"`
	LedgerMaxRetries    uint64        `mapstructure:"LEDGER_MAX_RETRIES"`
	LedgerRetryInterval time.Duration `mapstructure:"LEDGER_RETRY_INTERVAL"`
	BreakerMaxFailures  uint32        `mapstructure:"BREAKER_MAX_FAILURES"`
	BreakerOpenTimeout  time.Duration `mapstructure:"BREAKER_OPEN_TIMEOUT"`
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("MIGRATION_URL", "file://configs/db/migration")
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("LEDGER_MAX_RETRIES", 3)
	v.SetDefault("LEDGER_RETRY_INTERVAL", 10*time.Millisecond)
	v.SetDefault("BREAKER_MAX_FAILURES", 5)
	v.SetDefault("BREAKER_OPEN_TIMEOUT", 30*time.Second)

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
