package models

import "time"

// DailyMetric is one calendar day's aggregate: how many trips started that
// day and the mean joined temperature. AvgTemperature is nil when no trip
// on that day carried a temperature value.
type DailyMetric struct {
	Date           time.Time `json:"date"`
	TripCount      int       `json:"trip_count"`
	AvgTemperature *float64  `json:"avg_temperature"`
}

// StationAggregate is a per-station trip count, used both for the top-N
// ranking and for sizing points on the activity map. For the ranking the
// coordinates are taken from the first trip at that station that carried
// them; they stay zero when no trip did.
type StationAggregate struct {
	StationName string  `json:"station_name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	TripCount   int     `json:"trip_count"`
}

// RouteAggregate is a per-route trip count keyed by both endpoints, used
// for arc layers on the activity map.
type RouteAggregate struct {
	StartStationName string  `json:"start_station_name"`
	EndStationName   string  `json:"end_station_name"`
	StartLat         float64 `json:"start_lat"`
	StartLng         float64 `json:"start_lng"`
	EndLat           float64 `json:"end_lat"`
	EndLng           float64 `json:"end_lng"`
	TripCount        int     `json:"trip_count"`
}
