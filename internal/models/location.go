package models

type Location struct {
	Lat float64 `json:"lat" parquet:"name=lat,type=DOUBLE"`
	Lng float64 `json:"lng" parquet:"name=lng,type=DOUBLE"`
}

// Station is a named docking point, used by the synthetic data generator.
type Station struct {
	Name     string
	Location Location
}
