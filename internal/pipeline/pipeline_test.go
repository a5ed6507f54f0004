package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/chrisdamba/tripdata/internal/models"
)

func f64(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func trip(station string, started time.Time, temp *float64) models.TripRecord {
	return models.TripRecord{
		RideID:           "t",
		StartStationName: station,
		StartedAt:        started,
		StartLat:         f64(40.73),
		StartLng:         f64(-73.99),
		EndStationName:   "End St",
		EndLat:           f64(40.74),
		EndLng:           f64(-74.00),
		AvgTemp:          temp,
	}
}

func sampleTable() *models.TripTable {
	// 3 trips: station A twice on 2022-01-01 at 5°C, station B once on
	// 2022-01-02 at 10°C.
	return models.NewTripTable([]models.TripRecord{
		trip("A", time.Date(2022, 1, 1, 8, 30, 0, 0, time.UTC), f64(5)),
		trip("A", time.Date(2022, 1, 1, 17, 0, 0, 0, time.UTC), f64(5)),
		trip("B", time.Date(2022, 1, 2, 9, 15, 0, 0, time.UTC), f64(10)),
	}, nil)
}

func TestTopStationsSampleScenario(t *testing.T) {
	stations, err := TopStations(sampleTable(), 2)
	if err != nil {
		t.Fatalf("TopStations: %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(stations))
	}
	if stations[0].StationName != "A" || stations[0].TripCount != 2 {
		t.Errorf("rank 1: got (%s,%d), want (A,2)", stations[0].StationName, stations[0].TripCount)
	}
	if stations[1].StationName != "B" || stations[1].TripCount != 1 {
		t.Errorf("rank 2: got (%s,%d), want (B,1)", stations[1].StationName, stations[1].TripCount)
	}
	if stations[0].Lat != 40.73 || stations[0].Lng != -73.99 {
		t.Errorf("rank 1 coordinates: got (%f,%f)", stations[0].Lat, stations[0].Lng)
	}
}

func TestTopStationsLengthBound(t *testing.T) {
	table := sampleTable() // 2 distinct stations
	for _, n := range []int{0, 1, 2, 5, 100} {
		stations, err := TopStations(table, n)
		if err != nil {
			t.Fatalf("TopStations(%d): %v", n, err)
		}
		want := n
		if want > 2 {
			want = 2
		}
		if len(stations) != want {
			t.Errorf("TopStations(%d): got %d rows, want %d", n, len(stations), want)
		}
	}
}

func TestTopStationsDescendingCounts(t *testing.T) {
	records := []models.TripRecord{
		trip("A", day(2022, 3, 1), nil),
		trip("B", day(2022, 3, 1), nil),
		trip("B", day(2022, 3, 2), nil),
		trip("C", day(2022, 3, 2), nil),
		trip("C", day(2022, 3, 3), nil),
		trip("C", day(2022, 3, 4), nil),
	}
	stations, err := TopStations(models.NewTripTable(records, nil), 10)
	if err != nil {
		t.Fatalf("TopStations: %v", err)
	}
	for i := 1; i < len(stations); i++ {
		if stations[i-1].TripCount < stations[i].TripCount {
			t.Fatalf("counts not descending at %d: %d < %d", i, stations[i-1].TripCount, stations[i].TripCount)
		}
	}
}

func TestTopStationsTieBreakKeepsInputOrder(t *testing.T) {
	// Zulu first in the input, then Alpha, both with one trip: the tie must
	// resolve to input order, not lexical order.
	records := []models.TripRecord{
		trip("Zulu", day(2022, 5, 1), nil),
		trip("Alpha", day(2022, 5, 1), nil),
	}
	stations, err := TopStations(models.NewTripTable(records, nil), 2)
	if err != nil {
		t.Fatalf("TopStations: %v", err)
	}
	if stations[0].StationName != "Zulu" || stations[1].StationName != "Alpha" {
		t.Errorf("tie order: got [%s %s], want [Zulu Alpha]", stations[0].StationName, stations[1].StationName)
	}
}

func TestTopStationsNegativeN(t *testing.T) {
	stations, err := TopStations(sampleTable(), -3)
	if err != nil {
		t.Fatalf("TopStations: %v", err)
	}
	if len(stations) != 0 {
		t.Errorf("expected empty result for negative n, got %d rows", len(stations))
	}
}

func TestTopStationsMissingColumn(t *testing.T) {
	table := models.NewTripTable(nil, []string{models.ColStartedAt})
	_, err := TopStations(table, 5)
	var inputErr *models.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError, got %v", err)
	}
	if inputErr.Column != models.ColStartStation {
		t.Errorf("InputError column: got %q", inputErr.Column)
	}
}

func TestTopStationsSkipsBlankStationNames(t *testing.T) {
	records := []models.TripRecord{
		trip("A", day(2022, 1, 1), nil),
		trip("", day(2022, 1, 1), nil),
	}
	stations, err := TopStations(models.NewTripTable(records, nil), 10)
	if err != nil {
		t.Fatalf("TopStations: %v", err)
	}
	if len(stations) != 1 || stations[0].StationName != "A" {
		t.Errorf("blank station name should be excluded, got %+v", stations)
	}
}

func TestDailyTripsVsTemperatureSampleScenario(t *testing.T) {
	metrics, warnings, err := DailyTripsVsTemperature(sampleTable())
	if err != nil {
		t.Fatalf("DailyTripsVsTemperature: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(metrics) != 2 {
		t.Fatalf("expected 2 days, got %d", len(metrics))
	}
	if !metrics[0].Date.Equal(day(2022, 1, 1)) || metrics[0].TripCount != 2 {
		t.Errorf("day 1: got (%s,%d)", metrics[0].Date, metrics[0].TripCount)
	}
	if metrics[0].AvgTemperature == nil || *metrics[0].AvgTemperature != 5.0 {
		t.Errorf("day 1 temperature: got %v, want 5.0", metrics[0].AvgTemperature)
	}
	if !metrics[1].Date.Equal(day(2022, 1, 2)) || metrics[1].TripCount != 1 {
		t.Errorf("day 2: got (%s,%d)", metrics[1].Date, metrics[1].TripCount)
	}
	if metrics[1].AvgTemperature == nil || *metrics[1].AvgTemperature != 10.0 {
		t.Errorf("day 2 temperature: got %v, want 10.0", metrics[1].AvgTemperature)
	}
}

func TestDailyTripsCountConservation(t *testing.T) {
	records := []models.TripRecord{
		trip("A", day(2022, 1, 1), nil),
		trip("A", day(2022, 1, 3), nil),
		trip("B", time.Time{}, nil), // unparseable start
		trip("B", day(2022, 1, 1), nil),
	}
	metrics, warnings, err := DailyTripsVsTemperature(models.NewTripTable(records, nil))
	if err != nil {
		t.Fatalf("DailyTripsVsTemperature: %v", err)
	}
	total := 0
	for _, m := range metrics {
		total += m.TripCount
	}
	if total != 3 {
		t.Errorf("trip count sum: got %d, want 3 (rows with a parseable date)", total)
	}
	found := false
	for _, w := range warnings {
		if w.Rows == 1 && w.Aggregate == "daily_metrics" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning about the undated row, got %v", warnings)
	}
}

func TestDailyTripsDatesStrictlyIncreasing(t *testing.T) {
	records := []models.TripRecord{
		trip("A", time.Date(2022, 2, 3, 23, 59, 0, 0, time.UTC), nil),
		trip("A", time.Date(2022, 2, 1, 0, 1, 0, 0, time.UTC), nil),
		trip("A", time.Date(2022, 2, 3, 1, 0, 0, 0, time.UTC), nil),
		trip("A", time.Date(2022, 2, 2, 12, 0, 0, 0, time.UTC), nil),
	}
	metrics, _, err := DailyTripsVsTemperature(models.NewTripTable(records, nil))
	if err != nil {
		t.Fatalf("DailyTripsVsTemperature: %v", err)
	}
	for i := 1; i < len(metrics); i++ {
		if !metrics[i-1].Date.Before(metrics[i].Date) {
			t.Fatalf("dates not strictly increasing: %s then %s", metrics[i-1].Date, metrics[i].Date)
		}
	}
}

func TestDailyTripsWithoutAnyTemperature(t *testing.T) {
	records := []models.TripRecord{
		trip("A", day(2022, 6, 1), nil),
		trip("A", day(2022, 6, 2), nil),
	}
	metrics, warnings, err := DailyTripsVsTemperature(models.NewTripTable(records, nil))
	if err != nil {
		t.Fatalf("DailyTripsVsTemperature: %v", err)
	}
	for _, m := range metrics {
		if m.AvgTemperature != nil {
			t.Errorf("day %s: expected nil temperature", m.Date)
		}
	}
	if len(warnings) == 0 {
		t.Error("expected a warning about temperature-less days")
	}
}

func TestStationMapAggregateDropsMissingCoordinates(t *testing.T) {
	noLat := trip("C", day(2022, 1, 1), nil)
	noLat.StartLat = nil

	records := []models.TripRecord{
		trip("A", day(2022, 1, 1), nil),
		trip("A", day(2022, 1, 2), nil),
		noLat,
	}
	table := models.NewTripTable(records, nil)

	agg, warnings, err := StationMapAggregate(table, false)
	if err != nil {
		t.Fatalf("StationMapAggregate: %v", err)
	}
	total := 0
	for _, s := range agg.Stations {
		if s.StationName == "C" {
			t.Error("row with missing start_lat must not appear in the map aggregate")
		}
		total += s.TripCount
	}
	if total+agg.DroppedRows != table.Len() {
		t.Errorf("conservation: %d counted + %d dropped != %d input rows", total, agg.DroppedRows, table.Len())
	}
	if len(warnings) != 1 || warnings[0].Rows != 1 {
		t.Errorf("expected one dropped-row warning, got %v", warnings)
	}

	// The same row still counts for the other two aggregates.
	stations, err := TopStations(table, 10)
	if err != nil {
		t.Fatalf("TopStations: %v", err)
	}
	counted := 0
	for _, s := range stations {
		counted += s.TripCount
	}
	if counted != 3 {
		t.Errorf("TopStations should still count the coordinate-less row: got %d", counted)
	}
	metrics, _, err := DailyTripsVsTemperature(table)
	if err != nil {
		t.Fatalf("DailyTripsVsTemperature: %v", err)
	}
	counted = 0
	for _, m := range metrics {
		counted += m.TripCount
	}
	if counted != 3 {
		t.Errorf("daily series should still count the coordinate-less row: got %d", counted)
	}
}

func TestStationMapAggregateByRoute(t *testing.T) {
	a := trip("A", day(2022, 1, 1), nil)
	b := trip("A", day(2022, 1, 1), nil)
	c := trip("A", day(2022, 1, 2), nil)
	c.EndStationName = "Other St"

	agg, _, err := StationMapAggregate(models.NewTripTable([]models.TripRecord{a, b, c}, nil), true)
	if err != nil {
		t.Fatalf("StationMapAggregate: %v", err)
	}
	if len(agg.Routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(agg.Routes))
	}
	if agg.Routes[0].TripCount != 2 || agg.Routes[0].EndStationName != "End St" {
		t.Errorf("route 1: got %+v", agg.Routes[0])
	}
	if agg.Routes[1].TripCount != 1 || agg.Routes[1].EndStationName != "Other St" {
		t.Errorf("route 2: got %+v", agg.Routes[1])
	}
}

func TestStationMapAggregateMissingColumn(t *testing.T) {
	table := models.NewTripTable(nil, []string{models.ColStartStation, models.ColStartLat})
	_, _, err := StationMapAggregate(table, false)
	var inputErr *models.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError, got %v", err)
	}
}

func TestEmptyTableYieldsEmptyAggregates(t *testing.T) {
	table := models.NewTripTable(nil, nil)

	stations, err := TopStations(table, 20)
	if err != nil {
		t.Fatalf("TopStations: %v", err)
	}
	if len(stations) != 0 {
		t.Errorf("TopStations on empty table: got %d rows", len(stations))
	}

	metrics, warnings, err := DailyTripsVsTemperature(table)
	if err != nil {
		t.Fatalf("DailyTripsVsTemperature: %v", err)
	}
	if len(metrics) != 0 || len(warnings) != 0 {
		t.Errorf("daily series on empty table: got %d rows, %d warnings", len(metrics), len(warnings))
	}

	agg, _, err := StationMapAggregate(table, false)
	if err != nil {
		t.Fatalf("StationMapAggregate: %v", err)
	}
	if len(agg.Stations) != 0 || agg.DroppedRows != 0 {
		t.Errorf("map aggregate on empty table: got %+v", agg)
	}
}

func TestAggregationsDoNotMutateInput(t *testing.T) {
	table := sampleTable()
	before := make([]models.TripRecord, len(table.Records))
	copy(before, table.Records)

	if _, err := TopStations(table, 1); err != nil {
		t.Fatalf("TopStations: %v", err)
	}
	if _, _, err := DailyTripsVsTemperature(table); err != nil {
		t.Fatalf("DailyTripsVsTemperature: %v", err)
	}
	if _, _, err := StationMapAggregate(table, true); err != nil {
		t.Fatalf("StationMapAggregate: %v", err)
	}

	for i := range before {
		if before[i].StartStationName != table.Records[i].StartStationName ||
			!before[i].StartedAt.Equal(table.Records[i].StartedAt) {
			t.Fatalf("input table mutated at row %d", i)
		}
	}
}
