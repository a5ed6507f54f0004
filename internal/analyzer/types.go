package analyzer

import (
	"fmt"
	"log"

	"github.com/chrisdamba/tripdata/internal/models"
	"github.com/xitongsys/parquet-go/schema"
)

// Topics under which the derived tables are written. Each topic maps to
// one file (or Kafka topic, or database table) at the output boundary.
const (
	TopicTopStations     = "top_stations"
	TopicDailyMetrics    = "daily_metrics"
	TopicStationActivity = "station_activity"
	TopicRouteActivity   = "route_activity"
)

// TopStationRow is one rank of the top-N station table
type TopStationRow struct {
	Rank        int32   `json:"rank" parquet:"name=rank,type=INT32"`
	StationName string  `json:"station_name" parquet:"name=station_name,type=BYTE_ARRAY,convertedtype=UTF8"`
	Lat         float64 `json:"lat" parquet:"name=lat,type=DOUBLE"`
	Lng         float64 `json:"lng" parquet:"name=lng,type=DOUBLE"`
	TripCount   int64   `json:"trip_count" parquet:"name=trip_count,type=INT64"`
}

// DailyMetricRow pairs a day's trip count with its mean temperature; the
// temperature is absent for days without weather data
type DailyMetricRow struct {
	Date           string   `json:"date" parquet:"name=date,type=BYTE_ARRAY,convertedtype=UTF8"`
	TripCount      int64    `json:"trip_count" parquet:"name=trip_count,type=INT64"`
	AvgTemperature *float64 `json:"avg_temperature" parquet:"name=avg_temperature,type=DOUBLE,repetitiontype=OPTIONAL"`
}

// StationActivityRow is one point of the station activity map layer
type StationActivityRow struct {
	StationName string  `json:"station_name" parquet:"name=station_name,type=BYTE_ARRAY,convertedtype=UTF8"`
	Lat         float64 `json:"lat" parquet:"name=lat,type=DOUBLE"`
	Lng         float64 `json:"lng" parquet:"name=lng,type=DOUBLE"`
	TripCount   int64   `json:"trip_count" parquet:"name=trip_count,type=INT64"`
}

// RouteActivityRow is one arc of the route activity map layer
type RouteActivityRow struct {
	StartStationName string  `json:"start_station_name" parquet:"name=start_station_name,type=BYTE_ARRAY,convertedtype=UTF8"`
	EndStationName   string  `json:"end_station_name" parquet:"name=end_station_name,type=BYTE_ARRAY,convertedtype=UTF8"`
	StartLat         float64 `json:"start_lat" parquet:"name=start_lat,type=DOUBLE"`
	StartLng         float64 `json:"start_lng" parquet:"name=start_lng,type=DOUBLE"`
	EndLat           float64 `json:"end_lat" parquet:"name=end_lat,type=DOUBLE"`
	EndLng           float64 `json:"end_lng" parquet:"name=end_lng,type=DOUBLE"`
	TripCount        int64   `json:"trip_count" parquet:"name=trip_count,type=INT64"`
}

func GetSchema(topic string) (*schema.SchemaHandler, error) {
	var sh *schema.SchemaHandler
	var err error

	switch topic {
	case TopicTopStations:
		sh, err = schema.NewSchemaHandlerFromStruct(new(TopStationRow))
	case TopicDailyMetrics:
		sh, err = schema.NewSchemaHandlerFromStruct(new(DailyMetricRow))
	case TopicStationActivity:
		sh, err = schema.NewSchemaHandlerFromStruct(new(StationActivityRow))
	case TopicRouteActivity:
		sh, err = schema.NewSchemaHandlerFromStruct(new(RouteActivityRow))
	default:
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}

	if err != nil {
		log.Printf("Error creating schema for %s: %v", topic, err)
		return nil, fmt.Errorf("error creating schema for %s: %w", topic, err)
	}

	return sh, nil
}

func newRow(topic string) (interface{}, error) {
	switch topic {
	case TopicTopStations:
		return new(TopStationRow), nil
	case TopicDailyMetrics:
		return new(DailyMetricRow), nil
	case TopicStationActivity:
		return new(StationActivityRow), nil
	case TopicRouteActivity:
		return new(RouteActivityRow), nil
	default:
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}
}

func topStationRows(stations []models.StationAggregate) []TopStationRow {
	rows := make([]TopStationRow, 0, len(stations))
	for i, s := range stations {
		rows = append(rows, TopStationRow{
			Rank:        int32(i + 1),
			StationName: s.StationName,
			Lat:         s.Lat,
			Lng:         s.Lng,
			TripCount:   int64(s.TripCount),
		})
	}
	return rows
}

func dailyMetricRows(metrics []models.DailyMetric) []DailyMetricRow {
	rows := make([]DailyMetricRow, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, DailyMetricRow{
			Date:           m.Date.Format("2006-01-02"),
			TripCount:      int64(m.TripCount),
			AvgTemperature: m.AvgTemperature,
		})
	}
	return rows
}

func stationActivityRows(stations []models.StationAggregate) []StationActivityRow {
	rows := make([]StationActivityRow, 0, len(stations))
	for _, s := range stations {
		rows = append(rows, StationActivityRow{
			StationName: s.StationName,
			Lat:         s.Lat,
			Lng:         s.Lng,
			TripCount:   int64(s.TripCount),
		})
	}
	return rows
}

func routeActivityRows(routes []models.RouteAggregate) []RouteActivityRow {
	rows := make([]RouteActivityRow, 0, len(routes))
	for _, r := range routes {
		rows = append(rows, RouteActivityRow{
			StartStationName: r.StartStationName,
			EndStationName:   r.EndStationName,
			StartLat:         r.StartLat,
			StartLng:         r.StartLng,
			EndLat:           r.EndLat,
			EndLng:           r.EndLng,
			TripCount:        int64(r.TripCount),
		})
	}
	return rows
}
