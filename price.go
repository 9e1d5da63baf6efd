package killboard

import "time"

// PricePoint is one day of observed market history for a type in a
// region. Reference data, read-only for the pipeline.
type PricePoint struct {
	TypeID   int32     `json:"type_id"`
	RegionID int32     `json:"region_id"`
	Date     time.Time `json:"date"`
	Average  float64   `json:"average"`
	Highest  float64   `json:"highest"`
	Lowest   float64   `json:"lowest"`
}
