package postgres

import (
	"context"

	"github.com/chrisdamba/tripdata/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StationAggregateRepository struct {
	pool *pgxpool.Pool
}

func NewStationAggregateRepository(pool *pgxpool.Pool) *StationAggregateRepository {
	return &StationAggregateRepository{pool: pool}
}

func (r *StationAggregateRepository) BulkCreate(ctx context.Context, stations []models.StationAggregate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	stmt := `
        INSERT INTO station_activity (station_name, lat, lng, trip_count)
        VALUES ($1, $2, $3, $4)`

	for _, station := range stations {
		_, err = tx.Exec(ctx, stmt,
			station.StationName,
			station.Lat,
			station.Lng,
			station.TripCount,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *StationAggregateRepository) GetAll(ctx context.Context) ([]models.StationAggregate, error) {
	query := `
        SELECT station_name, lat, lng, trip_count
        FROM station_activity
        ORDER BY trip_count DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.StationAggregate
	for rows.Next() {
		var station models.StationAggregate
		if err := rows.Scan(&station.StationName, &station.Lat, &station.Lng, &station.TripCount); err != nil {
			return nil, err
		}
		stations = append(stations, station)
	}
	return stations, rows.Err()
}

func (r *StationAggregateRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM station_activity").Scan(&count)
	return count, err
}

func (r *StationAggregateRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE station_activity")
	return err
}
