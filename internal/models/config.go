package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	Region     string `mapstructure:"region"`
	BucketName string `mapstructure:"bucket_name"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnString builds a pgx-compatible connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type Config struct {
	Source          string        `mapstructure:"source"` // file path, http(s) URL or s3:// URI
	TopStationCount int           `mapstructure:"top_station_count"`
	GroupByRoute    bool          `mapstructure:"group_by_route"`
	CacheEnabled    bool          `mapstructure:"cache_enabled"`
	ShowProgress    bool          `mapstructure:"show_progress"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
	DownloadRetries int           `mapstructure:"download_retries"`

	OutputPath        string `mapstructure:"output_path"`
	OutputFolder      string `mapstructure:"output_folder"`
	OutputFormat      string `mapstructure:"output_format"`      // csv, json or parquet
	OutputDestination string `mapstructure:"output_destination"` // local or a cloud provider

	KafkaEnabled    bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList string `mapstructure:"kafka_broker_list"`

	CloudStorage CloudStorageConfig `mapstructure:"cloud_storage"`
	Database     DatabaseConfig     `mapstructure:"database"`

	// Synthetic dataset generation
	Seed         int       `mapstructure:"seed"`
	CityName     string    `mapstructure:"city_name"`
	CityLat      float64   `mapstructure:"city_latitude"`
	CityLng      float64   `mapstructure:"city_longitude"`
	UrbanRadius  float64   `mapstructure:"urban_radius"` // km
	StartDate    time.Time `mapstructure:"start_date"`
	EndDate      time.Time `mapstructure:"end_date"`
	StationCount int       `mapstructure:"station_count"`
	TripCount    int       `mapstructure:"trip_count"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Default config location
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	viper.SetDefault("top_station_count", 20)
	viper.SetDefault("download_timeout", "60s")
	viper.SetDefault("download_retries", 3)
	viper.SetDefault("cache_enabled", true)
	viper.SetDefault("show_progress", true)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}
