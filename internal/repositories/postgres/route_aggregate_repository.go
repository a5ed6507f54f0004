package postgres

import (
	"context"

	"github.com/chrisdamba/tripdata/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RouteAggregateRepository struct {
	pool *pgxpool.Pool
}

func NewRouteAggregateRepository(pool *pgxpool.Pool) *RouteAggregateRepository {
	return &RouteAggregateRepository{pool: pool}
}

func (r *RouteAggregateRepository) BulkCreate(ctx context.Context, routes []models.RouteAggregate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	stmt := `
        INSERT INTO route_activity (
            start_station_name, end_station_name,
            start_lat, start_lng, end_lat, end_lng, trip_count
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, route := range routes {
		_, err = tx.Exec(ctx, stmt,
			route.StartStationName,
			route.EndStationName,
			route.StartLat,
			route.StartLng,
			route.EndLat,
			route.EndLng,
			route.TripCount,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *RouteAggregateRepository) GetAll(ctx context.Context) ([]models.RouteAggregate, error) {
	query := `
        SELECT start_station_name, end_station_name,
               start_lat, start_lng, end_lat, end_lng, trip_count
        FROM route_activity
        ORDER BY trip_count DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []models.RouteAggregate
	for rows.Next() {
		var route models.RouteAggregate
		err := rows.Scan(
			&route.StartStationName,
			&route.EndStationName,
			&route.StartLat,
			&route.StartLng,
			&route.EndLat,
			&route.EndLng,
			&route.TripCount,
		)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}

func (r *RouteAggregateRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM route_activity").Scan(&count)
	return count, err
}

func (r *RouteAggregateRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE route_activity")
	return err
}
