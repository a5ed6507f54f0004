package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/chrisdamba/tripdata/internal/analyzer"
	"github.com/chrisdamba/tripdata/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tripdata",
	Short: "Aggregates bike-share trip and weather data for dashboards",
	Long:  `tripdata is a CLI tool that loads a CSV of bike-share trips joined with daily weather and derives the tables a dashboard needs: top start stations by trip count, a daily trips-versus-temperature series, and per-station (or per-route) activity for map layers.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		a := analyzer.New(cfg)
		if err := a.Run(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")

	rootCmd.Flags().String("source", "", "Trip CSV source: file path, http(s) URL or s3:// URI")
	rootCmd.Flags().Int("top-station-count", 20, "Number of stations in the top-N ranking")
	rootCmd.Flags().Bool("group-by-route", false, "Aggregate the map layer by (start, end) route instead of start station")
	rootCmd.Flags().Bool("cache-enabled", true, "Reuse a loaded table while the source is unchanged")
	rootCmd.Flags().Bool("show-progress", true, "Show a progress bar while loading")
	rootCmd.Flags().Duration("download-timeout", 0, "Timeout for remote downloads")
	rootCmd.Flags().Int("download-retries", 3, "Retries for remote downloads")
	rootCmd.Flags().String("output-path", "", "Output directory (console output if empty)")
	rootCmd.Flags().String("output-format", "csv", "Output format: csv, json or parquet")
	rootCmd.Flags().Bool("kafka-enabled", false, "Enable Kafka output")
	rootCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")

	viper.BindPFlags(rootCmd.Flags())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("examples")
		viper.SetConfigType("json")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
