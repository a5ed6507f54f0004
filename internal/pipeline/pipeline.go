package pipeline

import (
	"sort"
	"time"

	"github.com/chrisdamba/tripdata/internal/models"
)

// The three aggregations below are pure and stateless: they never mutate
// the table they are given and are safe to run concurrently against the
// same snapshot. They fail with a models.InputError only when a required
// column is absent from the source; rows that merely lack a value are
// excluded from the one aggregate they cannot support.

const (
	aggTopStations  = "top_stations"
	aggDailyMetrics = "daily_metrics"
	aggStationMap   = "station_map"
)

// TopStations ranks start stations by trip count, descending. Ties keep
// first-encountered input order: counting is a single stable pass, so two
// stations with equal counts appear in the order their first trips did.
// n <= 0 yields an empty result, as does an empty table.
func TopStations(table *models.TripTable, n int) ([]models.StationAggregate, error) {
	if !table.HasColumn(models.ColStartStation) {
		return nil, models.MissingColumn(aggTopStations, models.ColStartStation)
	}

	counts := make(map[string]int)
	coords := make(map[string]models.Location)
	var order []string

	for _, trip := range table.Records {
		name := trip.StartStationName
		if name == "" {
			continue
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
		if _, ok := coords[name]; !ok && trip.StartLat != nil && trip.StartLng != nil {
			coords[name] = models.Location{Lat: *trip.StartLat, Lng: *trip.StartLng}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if n < 0 {
		n = 0
	}
	if n > len(order) {
		n = len(order)
	}

	result := make([]models.StationAggregate, 0, n)
	for _, name := range order[:n] {
		loc := coords[name]
		result = append(result, models.StationAggregate{
			StationName: name,
			Lat:         loc.Lat,
			Lng:         loc.Lng,
			TripCount:   counts[name],
		})
	}
	return result, nil
}

// DailyTripsVsTemperature groups trips by the calendar day (UTC) of their
// start timestamp and pairs each day's trip count with the mean of the
// per-trip temperature values. The temperature is expected constant within
// a day in the source data; the mean is taken defensively. Days with no
// temperature observations get a nil AvgTemperature. Trips without a
// parseable start timestamp are excluded and reported as a warning.
func DailyTripsVsTemperature(table *models.TripTable) ([]models.DailyMetric, []models.PartialDataWarning, error) {
	if !table.HasColumn(models.ColStartedAt) && !table.HasColumn(models.ColDate) {
		return nil, nil, models.MissingColumn(aggDailyMetrics, models.ColStartedAt)
	}

	type dayAccum struct {
		trips   int
		tempSum float64
		tempObs int
	}

	days := make(map[time.Time]*dayAccum)
	var undated int

	for _, trip := range table.Records {
		if trip.StartedAt.IsZero() {
			undated++
			continue
		}
		day := trip.StartedAt.UTC().Truncate(24 * time.Hour)
		acc, ok := days[day]
		if !ok {
			acc = &dayAccum{}
			days[day] = acc
		}
		acc.trips++
		if trip.AvgTemp != nil {
			acc.tempSum += *trip.AvgTemp
			acc.tempObs++
		}
	}

	dates := make([]time.Time, 0, len(days))
	for day := range days {
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	metrics := make([]models.DailyMetric, 0, len(dates))
	var templess int
	for _, day := range dates {
		acc := days[day]
		metric := models.DailyMetric{Date: day, TripCount: acc.trips}
		if acc.tempObs > 0 {
			mean := acc.tempSum / float64(acc.tempObs)
			metric.AvgTemperature = &mean
		} else {
			templess++
		}
		metrics = append(metrics, metric)
	}

	var warnings []models.PartialDataWarning
	if undated > 0 {
		warnings = append(warnings, models.PartialDataWarning{
			Aggregate: aggDailyMetrics,
			Reason:    "excluded for missing or unparseable start timestamp",
			Rows:      undated,
		})
	}
	if templess > 0 {
		warnings = append(warnings, models.PartialDataWarning{
			Aggregate: aggDailyMetrics,
			Reason:    "day(s) without any temperature observation",
			Rows:      templess,
		})
	}
	return metrics, warnings, nil
}

// MapAggregate is the geospatial view of station activity. Exactly one of
// Stations or Routes is populated, depending on the grouping requested.
// DroppedRows counts trips excluded for missing coordinates; the invariant
// sum(TripCount) + DroppedRows == table.Len() holds.
type MapAggregate struct {
	Stations    []models.StationAggregate
	Routes      []models.RouteAggregate
	DroppedRows int
}

// StationMapAggregate counts trips per start station keyed by name and
// coordinates, or per (start, end) route when groupByRoute is set. Trips
// missing any coordinate the grouping needs are dropped before grouping.
// Output keeps first-encountered input order; the map consumer is not
// order-sensitive but deterministic order keeps runs comparable.
func StationMapAggregate(table *models.TripTable, groupByRoute bool) (*MapAggregate, []models.PartialDataWarning, error) {
	for _, col := range []string{models.ColStartStation, models.ColStartLat, models.ColStartLng} {
		if !table.HasColumn(col) {
			return nil, nil, models.MissingColumn(aggStationMap, col)
		}
	}
	if groupByRoute {
		for _, col := range []string{models.ColEndStation, models.ColEndLat, models.ColEndLng} {
			if !table.HasColumn(col) {
				return nil, nil, models.MissingColumn(aggStationMap, col)
			}
		}
	}

	agg := &MapAggregate{}
	if groupByRoute {
		agg.Routes = routeActivity(table, &agg.DroppedRows)
	} else {
		agg.Stations = stationActivity(table, &agg.DroppedRows)
	}

	var warnings []models.PartialDataWarning
	if agg.DroppedRows > 0 {
		warnings = append(warnings, models.PartialDataWarning{
			Aggregate: aggStationMap,
			Reason:    "dropped for missing coordinates",
			Rows:      agg.DroppedRows,
		})
	}
	return agg, warnings, nil
}

func stationActivity(table *models.TripTable, dropped *int) []models.StationAggregate {
	type stationKey struct {
		name     string
		lat, lng float64
	}

	counts := make(map[stationKey]int)
	var order []stationKey

	for _, trip := range table.Records {
		if trip.StartStationName == "" || trip.StartLat == nil || trip.StartLng == nil {
			*dropped++
			continue
		}
		key := stationKey{trip.StartStationName, *trip.StartLat, *trip.StartLng}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	result := make([]models.StationAggregate, 0, len(order))
	for _, key := range order {
		result = append(result, models.StationAggregate{
			StationName: key.name,
			Lat:         key.lat,
			Lng:         key.lng,
			TripCount:   counts[key],
		})
	}
	return result
}

func routeActivity(table *models.TripTable, dropped *int) []models.RouteAggregate {
	type routeKey struct {
		startName, endName string
		startLat, startLng float64
		endLat, endLng     float64
	}

	counts := make(map[routeKey]int)
	var order []routeKey

	for _, trip := range table.Records {
		if trip.StartStationName == "" || trip.StartLat == nil || trip.StartLng == nil ||
			trip.EndStationName == "" || trip.EndLat == nil || trip.EndLng == nil {
			*dropped++
			continue
		}
		key := routeKey{
			startName: trip.StartStationName,
			endName:   trip.EndStationName,
			startLat:  *trip.StartLat,
			startLng:  *trip.StartLng,
			endLat:    *trip.EndLat,
			endLng:    *trip.EndLng,
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	result := make([]models.RouteAggregate, 0, len(order))
	for _, key := range order {
		result = append(result, models.RouteAggregate{
			StartStationName: key.startName,
			EndStationName:   key.endName,
			StartLat:         key.startLat,
			StartLng:         key.startLng,
			EndLat:           key.endLat,
			EndLng:           key.endLng,
			TripCount:        counts[key],
		})
	}
	return result
}
