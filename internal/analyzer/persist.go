package analyzer

import (
	"context"
	"fmt"
	"log"

	"github.com/chrisdamba/tripdata/internal/repositories"
	"github.com/chrisdamba/tripdata/internal/repositories/postgres"
)

// persist replaces the stored aggregate snapshot with this run's result.
// Derived tables are recomputed fresh on every load, so each run truncates
// before inserting.
func (a *Analyzer) persist(ctx context.Context, report *Report) error {
	pool, err := postgres.NewPool(ctx, a.Config.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	var dailyRepo repositories.DailyMetricRepository = postgres.NewDailyMetricRepository(pool)
	if err := dailyRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear daily metrics: %w", err)
	}
	if err := dailyRepo.BulkCreate(ctx, report.DailyMetrics); err != nil {
		return fmt.Errorf("failed to store daily metrics: %w", err)
	}

	var stationRepo repositories.StationAggregateRepository = postgres.NewStationAggregateRepository(pool)
	if err := stationRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear station activity: %w", err)
	}
	if err := stationRepo.BulkCreate(ctx, report.Map.Stations); err != nil {
		return fmt.Errorf("failed to store station activity: %w", err)
	}

	var routeRepo repositories.RouteAggregateRepository = postgres.NewRouteAggregateRepository(pool)
	if err := routeRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear route activity: %w", err)
	}
	if err := routeRepo.BulkCreate(ctx, report.Map.Routes); err != nil {
		return fmt.Errorf("failed to store route activity: %w", err)
	}

	log.Printf("Persisted %d daily metrics, %d stations, %d routes",
		len(report.DailyMetrics), len(report.Map.Stations), len(report.Map.Routes))
	return nil
}
