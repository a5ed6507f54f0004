package postgres

import (
	"context"

	"github.com/chrisdamba/tripdata/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DailyMetricRepository struct {
	pool *pgxpool.Pool
}

func NewDailyMetricRepository(pool *pgxpool.Pool) *DailyMetricRepository {
	return &DailyMetricRepository{pool: pool}
}

func (r *DailyMetricRepository) BulkCreate(ctx context.Context, metrics []models.DailyMetric) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	stmt := `
        INSERT INTO daily_metrics (date, trip_count, avg_temperature)
        VALUES ($1, $2, $3)`

	for _, metric := range metrics {
		_, err = tx.Exec(ctx, stmt,
			metric.Date,
			metric.TripCount,
			metric.AvgTemperature,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *DailyMetricRepository) GetAll(ctx context.Context) ([]models.DailyMetric, error) {
	query := `
        SELECT date, trip_count, avg_temperature
        FROM daily_metrics
        ORDER BY date`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []models.DailyMetric
	for rows.Next() {
		var metric models.DailyMetric
		if err := rows.Scan(&metric.Date, &metric.TripCount, &metric.AvgTemperature); err != nil {
			return nil, err
		}
		metrics = append(metrics, metric)
	}
	return metrics, rows.Err()
}

func (r *DailyMetricRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM daily_metrics").Scan(&count)
	return count, err
}

func (r *DailyMetricRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE daily_metrics")
	return err
}
