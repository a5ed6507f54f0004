package repositories

import (
	"context"

	"github.com/chrisdamba/tripdata/internal/models"
)

type DailyMetricRepository interface {
	BulkCreate(ctx context.Context, metrics []models.DailyMetric) error
	GetAll(ctx context.Context) ([]models.DailyMetric, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type StationAggregateRepository interface {
	BulkCreate(ctx context.Context, stations []models.StationAggregate) error
	GetAll(ctx context.Context) ([]models.StationAggregate, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type RouteAggregateRepository interface {
	BulkCreate(ctx context.Context, routes []models.RouteAggregate) error
	GetAll(ctx context.Context) ([]models.RouteAggregate, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}
