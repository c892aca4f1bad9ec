package config

import "github.com/spf13/viper"

// Config holds the application configuration.
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	PostgresConn  string `mapstructure:"POSTGRES_CONN"`
	PostgresUser  string `mapstructure:"POSTGRES_USERNAME"`
	PostgresPass  string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost  string `mapstructure:"POSTGRES_HOST"`
	PostgresPort  string `mapstructure:"POSTGRES_PORT"`
	PostgresDB    string `mapstructure:"POSTGRES_DATABASE"`
	MigrationURL  string `mapstructure:"MIGRATION_URL"`

	// Broker commercials. MarkupRate is the single markup constant used by
	// winner selection and amendment pricing; admin overrides are clamped to
	// [MarkupMin, MarkupMax] server-side.
	MarkupRate float64 `mapstructure:"MARKUP_RATE"`
	MarkupMin  float64 `mapstructure:"MARKUP_MIN"`
	MarkupMax  float64 `mapstructure:"MARKUP_MAX"`

	// Bidding window. Selection fires at MinBidsForSelection bids or once
	// BidWindowHours have elapsed, whichever comes first.
	BidWindowHours      int `mapstructure:"BID_WINDOW_HOURS"`
	MinBidsForSelection int `mapstructure:"MIN_BIDS_FOR_SELECTION"`
}

// LoadConfig loads the configuration from an env file.
func LoadConfig(path string) (cfg Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.SetDefault("SERVER_ADDRESS", ":8080")
	viper.SetDefault("MARKUP_RATE", 0.14)
	viper.SetDefault("MARKUP_MIN", 0.05)
	viper.SetDefault("MARKUP_MAX", 0.50)
	viper.SetDefault("BID_WINDOW_HOURS", 48)
	viper.SetDefault("MIN_BIDS_FOR_SELECTION", 3)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}
	err = viper.Unmarshal(&cfg)
	return
}
