package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/chrisdamba/tripdata/internal/analyzer/producers"
	"github.com/chrisdamba/tripdata/internal/loader"
	"github.com/chrisdamba/tripdata/internal/models"
	"github.com/chrisdamba/tripdata/internal/pipeline"
)

// Analyzer ties the collaborators together: it loads a trip table once,
// runs the aggregation pipeline over the snapshot and hands the derived
// tables to the configured output destination.
type Analyzer struct {
	Config *models.Config
	Loader *loader.Loader
}

func New(config *models.Config) *Analyzer {
	var cache loader.Cache
	if config.CacheEnabled {
		cache = loader.NewMemoryCache()
	}
	return &Analyzer{
		Config: config,
		Loader: loader.New(config, cache),
	}
}

// Report is one pipeline invocation's immutable result set.
type Report struct {
	TopStations  []models.StationAggregate
	DailyMetrics []models.DailyMetric
	Map          *pipeline.MapAggregate
	Warnings     []models.PartialDataWarning
}

func (a *Analyzer) Run(ctx context.Context) error {
	table, err := a.Loader.Load(ctx, a.Config.Source)
	if err != nil {
		return err
	}

	report, err := a.Aggregate(table)
	if err != nil {
		return err
	}
	for _, w := range report.Warnings {
		log.Printf("Partial data: %s", w)
	}

	output, err := a.determineOutputDestination()
	if err != nil {
		return err
	}
	defer func() {
		if err := output.Close(); err != nil {
			log.Printf("Error closing output: %v", err)
		}
	}()

	if err := a.writeReport(output, report); err != nil {
		return err
	}

	if a.Config.Database.Enabled {
		if err := a.persist(ctx, report); err != nil {
			return err
		}
	}

	mapRows := len(report.Map.Stations) + len(report.Map.Routes)
	log.Printf("Aggregated %d trips into %d ranked stations, %d daily metrics, %d map rows",
		table.Len(), len(report.TopStations), len(report.DailyMetrics), mapRows)
	return nil
}

// Aggregate runs the three aggregations concurrently against the same
// snapshot. They share no state, so the only coordination needed is
// waiting for all of them.
func (a *Analyzer) Aggregate(table *models.TripTable) (*Report, error) {
	var (
		wg       sync.WaitGroup
		report   Report
		topErr   error
		dailyErr error
		mapErr   error

		dailyWarnings []models.PartialDataWarning
		mapWarnings   []models.PartialDataWarning
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		report.TopStations, topErr = pipeline.TopStations(table, a.Config.TopStationCount)
	}()
	go func() {
		defer wg.Done()
		report.DailyMetrics, dailyWarnings, dailyErr = pipeline.DailyTripsVsTemperature(table)
	}()
	go func() {
		defer wg.Done()
		report.Map, mapWarnings, mapErr = pipeline.StationMapAggregate(table, a.Config.GroupByRoute)
	}()
	wg.Wait()

	for _, err := range []error{topErr, dailyErr, mapErr} {
		if err != nil {
			return nil, err
		}
	}

	report.Warnings = append(report.Warnings, dailyWarnings...)
	report.Warnings = append(report.Warnings, mapWarnings...)
	return &report, nil
}

func (a *Analyzer) writeReport(output OutputDestination, report *Report) error {
	for _, row := range topStationRows(report.TopStations) {
		if err := writeRow(output, TopicTopStations, row); err != nil {
			return err
		}
	}
	for _, row := range dailyMetricRows(report.DailyMetrics) {
		if err := writeRow(output, TopicDailyMetrics, row); err != nil {
			return err
		}
	}
	for _, row := range stationActivityRows(report.Map.Stations) {
		if err := writeRow(output, TopicStationActivity, row); err != nil {
			return err
		}
	}
	for _, row := range routeActivityRows(report.Map.Routes) {
		if err := writeRow(output, TopicRouteActivity, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(output OutputDestination, topic string, row interface{}) error {
	msg, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to serialize %s row: %w", topic, err)
	}
	if err := output.WriteMessage(topic, msg); err != nil {
		return fmt.Errorf("failed to write %s row: %w", topic, err)
	}
	return nil
}

func (a *Analyzer) determineOutputDestination() (OutputDestination, error) {
	if a.Config.KafkaEnabled {
		producer, err := producers.NewSaramaProducer(a.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
		}
		return producer, nil
	} else if a.Config.OutputPath != "" {
		switch a.Config.OutputFormat {
		case "parquet":
			return NewParquetOutput(a.Config)
		case "json":
			return NewJSONOutput(a.Config.OutputPath, a.Config.OutputFolder), nil
		case "csv", "":
			return NewCSVOutput(a.Config.OutputPath, a.Config.OutputFolder), nil
		default:
			return nil, fmt.Errorf("unsupported output format: %s", a.Config.OutputFormat)
		}
	}
	return &ConsoleOutput{}, nil
}
