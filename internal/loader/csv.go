package loader

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chrisdamba/tripdata/internal/models"
)

// Start timestamps arrive in a handful of layouts depending on which
// export produced the file; a bare date is accepted as a last resort.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02",
}

func normalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// parseTrips decodes the joined trip/weather CSV. Parsing is lenient: a
// cell that cannot be parsed leaves the field empty and keeps the row, so
// each aggregate can still use whatever the row does carry. Only rows the
// CSV reader rejects outright are skipped (and counted).
func parseTrips(r io.Reader) (*models.TripTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &models.SourceError{Reason: "source is empty"}
	}
	if err != nil {
		return nil, &models.SourceError{Reason: "cannot read header row", Err: err}
	}

	index := make(map[string]int, len(header))
	var columns []string
	for i, h := range header {
		name := normalizeHeader(h)
		if _, dup := index[name]; dup {
			continue
		}
		index[name] = i
		columns = append(columns, name)
	}

	var records []models.TripRecord
	var sourceRows, skipped int

	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		sourceRows++
		if err != nil {
			skipped++
			continue
		}

		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[i])
		}

		record := models.TripRecord{
			RideID:           cell(models.ColRideID),
			RideableType:     cell(models.ColRideableType),
			MemberCasual:     cell(models.ColMemberCasual),
			StartStationName: cell(models.ColStartStation),
			EndStationName:   cell(models.ColEndStation),
			StartLat:         parseFloat(cell(models.ColStartLat)),
			StartLng:         parseFloat(cell(models.ColStartLng)),
			EndLat:           parseFloat(cell(models.ColEndLat)),
			EndLng:           parseFloat(cell(models.ColEndLng)),
			AvgTemp:          parseFloat(cell(models.ColAvgTemp)),
		}
		record.StartedAt = parseTime(cell(models.ColStartedAt))
		if record.StartedAt.IsZero() {
			// Some exports only carry the pre-joined calendar date.
			record.StartedAt = parseTime(cell(models.ColDate))
		}

		records = append(records, record)
	}

	return models.NewTripTable(records, columns).WithCounts(sourceRows, skipped), nil
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
