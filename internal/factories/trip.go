package factories

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/chrisdamba/tripdata/internal/models"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

const earthRadiusKm = 6371.0

var rideableTypes = []string{"classic_bike", "electric_bike", "docked_bike"}
var riderCategories = []string{"member", "member", "member", "casual"}

// TripFactory generates plausible trip records around a city center, so
// the pipeline can be exercised without the real joined dataset. A fixed
// seed makes the output reproducible, station names included.
type TripFactory struct {
	rng  *rand.Rand
	fake faker.Faker
}

func NewTripFactory(seed int64) *TripFactory {
	return &TripFactory{
		rng:  rand.New(rand.NewSource(seed)),
		fake: faker.NewWithSeed(rand.NewSource(seed)),
	}
}

// CreateStations lays out n named docking stations uniformly within the
// configured urban radius.
func (tf *TripFactory) CreateStations(config *models.Config, n int) []models.Station {
	stations := make([]models.Station, 0, n)
	for i := 0; i < n; i++ {
		stations = append(stations, models.Station{
			Name:     fmt.Sprintf("%s & %s", tf.fake.Address().StreetName(), tf.fake.Address().StreetName()),
			Location: tf.randomLocation(config),
		})
	}
	return stations
}

// CreateTrips samples count trips between the given stations, spread over
// the configured date range with a seasonal temperature curve joined in.
func (tf *TripFactory) CreateTrips(config *models.Config, stations []models.Station, count int) []models.TripRecord {
	start := config.StartDate
	end := config.EndDate
	if !end.After(start) {
		end = start.AddDate(1, 0, 0)
	}
	window := end.Sub(start)

	trips := make([]models.TripRecord, 0, count)
	for i := 0; i < count; i++ {
		from := stations[tf.rng.Intn(len(stations))]
		to := stations[tf.rng.Intn(len(stations))]
		startedAt := start.Add(time.Duration(tf.rng.Int63n(int64(window))))
		temp := tf.dailyTemperature(startedAt)

		startLat, startLng := from.Location.Lat, from.Location.Lng
		endLat, endLng := to.Location.Lat, to.Location.Lng

		trips = append(trips, models.TripRecord{
			RideID:           cuid.New(),
			RideableType:     rideableTypes[tf.rng.Intn(len(rideableTypes))],
			MemberCasual:     riderCategories[tf.rng.Intn(len(riderCategories))],
			StartedAt:        startedAt,
			StartStationName: from.Name,
			StartLat:         &startLat,
			StartLng:         &startLng,
			EndStationName:   to.Name,
			EndLat:           &endLat,
			EndLng:           &endLng,
			AvgTemp:          &temp,
		})
	}
	return trips
}

func (tf *TripFactory) randomLocation(config *models.Config) models.Location {
	radius := config.UrbanRadius
	if radius <= 0 {
		radius = 5.0
	}
	// sqrt keeps the points uniform over the disk rather than clustered at
	// the center
	distance := radius * math.Sqrt(tf.rng.Float64())
	angle := tf.rng.Float64() * 2 * math.Pi

	latOffset := (distance / earthRadiusKm) * (180 / math.Pi)
	lngOffset := latOffset / math.Cos(config.CityLat*math.Pi/180)

	return models.Location{
		Lat: config.CityLat + latOffset*math.Sin(angle),
		Lng: config.CityLng + lngOffset*math.Cos(angle),
	}
}

// dailyTemperature approximates a northern-hemisphere seasonal curve with
// day-to-day jitter, keyed on the calendar day so every trip on one day
// sees the same value, matching the daily weather join of the real data.
func (tf *TripFactory) dailyTemperature(t time.Time) float64 {
	day := float64(t.YearDay())
	seasonal := 12.0 - 14.0*math.Cos(2*math.Pi*(day-15)/365.0)
	jitterSeed := rand.New(rand.NewSource(int64(t.Year())*1000 + int64(t.YearDay())))
	return math.Round((seasonal+jitterSeed.NormFloat64()*3.0)*10) / 10
}
