package postgres

import (
	"context"
	"fmt"

	"github.com/chrisdamba/tripdata/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS daily_metrics (
    date            DATE PRIMARY KEY,
    trip_count      INTEGER NOT NULL,
    avg_temperature DOUBLE PRECISION
);
CREATE TABLE IF NOT EXISTS station_activity (
    station_name TEXT NOT NULL,
    lat          DOUBLE PRECISION NOT NULL,
    lng          DOUBLE PRECISION NOT NULL,
    trip_count   INTEGER NOT NULL,
    PRIMARY KEY (station_name, lat, lng)
);
CREATE TABLE IF NOT EXISTS route_activity (
    start_station_name TEXT NOT NULL,
    end_station_name   TEXT NOT NULL,
    start_lat          DOUBLE PRECISION NOT NULL,
    start_lng          DOUBLE PRECISION NOT NULL,
    end_lat            DOUBLE PRECISION NOT NULL,
    end_lng            DOUBLE PRECISION NOT NULL,
    trip_count         INTEGER NOT NULL,
    PRIMARY KEY (start_station_name, end_station_name, start_lat, start_lng, end_lat, end_lng)
);
`

// NewPool connects and makes sure the aggregate tables exist.
func NewPool(ctx context.Context, config models.DatabaseConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, config.ConnString())
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	return pool, nil
}
