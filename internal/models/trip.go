package models

import "time"

// Canonical column names of the joined trip/weather CSV, after header
// normalization (lower-cased, spaces replaced with underscores).
const (
	ColRideID       = "ride_id"
	ColRideableType = "rideable_type"
	ColStartedAt    = "started_at"
	ColDate         = "date"
	ColStartStation = "start_station_name"
	ColStartLat     = "start_lat"
	ColStartLng     = "start_lng"
	ColEndStation   = "end_station_name"
	ColEndLat       = "end_lat"
	ColEndLng       = "end_lng"
	ColMemberCasual = "member_casual"
	ColAvgTemp      = "avgtemp"
)

// AllColumns lists every column the loader knows how to map onto a TripRecord.
var AllColumns = []string{
	ColRideID,
	ColRideableType,
	ColStartedAt,
	ColDate,
	ColStartStation,
	ColStartLat,
	ColStartLng,
	ColEndStation,
	ColEndLat,
	ColEndLng,
	ColMemberCasual,
	ColAvgTemp,
}

// TripRecord is one bike-share ride joined with the daily average
// temperature for the day the ride started. Pointer fields are nil when
// the source row had no usable value; StartedAt is the zero time when the
// start timestamp was missing or unparseable. A record missing a field is
// still usable by any aggregate that does not need that field.
type TripRecord struct {
	RideID           string
	RideableType     string
	MemberCasual     string
	StartedAt        time.Time
	StartStationName string
	StartLat         *float64
	StartLng         *float64
	EndStationName   string
	EndLat           *float64
	EndLng           *float64
	AvgTemp          *float64 // °C
}

// TripTable is an immutable snapshot of loaded trips together with the set
// of columns the source actually provided. Column presence is what
// separates "this table cannot support the aggregate at all" from "some
// rows lack values" downstream.
type TripTable struct {
	Records     []TripRecord
	columns     map[string]bool
	SourceRows  int // data rows seen in the source, including unusable ones
	SkippedRows int // rows the loader could not parse at all
}

// NewTripTable builds a snapshot over records. A nil columns slice marks
// every canonical column as present, which is what in-memory callers
// (tests, the synthetic generator) want.
func NewTripTable(records []TripRecord, columns []string) *TripTable {
	if columns == nil {
		columns = AllColumns
	}
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}
	return &TripTable{
		Records:    records,
		columns:    set,
		SourceRows: len(records),
	}
}

// WithCounts returns the same table with loader-reported row accounting.
func (t *TripTable) WithCounts(sourceRows, skippedRows int) *TripTable {
	t.SourceRows = sourceRows
	t.SkippedRows = skippedRows
	return t
}

func (t *TripTable) HasColumn(name string) bool {
	return t.columns[name]
}

func (t *TripTable) Len() int {
	return len(t.Records)
}
