package model

// GiniRecord is one row of the Gini table.
type GiniRecord struct {
	CountyID string  `json:"county_id"`
	Year     int     `json:"year"`
	Gini     float64 `json:"gini"`
	AreaName string  `json:"area_name"`
}
