package model

import (
	"github.com/twpayne/go-geom"
)

// JoinKeyLength is the number of trailing characters shared by town ids and
// Gini county ids.
const JoinKeyLength = 5

// Count is an integer property that may be missing from the source.
type Count struct {
	N     int64 `json:"n"`
	Valid bool  `json:"valid"`
}

// NewCount returns a valid Count.
func NewCount(n int64) Count {
	return Count{N: n, Valid: true}
}

// Town is one municipality from the boundary source. Towns are immutable
// after load.
type Town struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Pop1980  Count              `json:"pop_1980"`
	Pop2010  Count              `json:"pop_2010"`
	Geometry *geom.MultiPolygon `json:"-"`
}

// Change returns the 1980–2010 population change. ok is false when either
// population is missing.
func (t Town) Change() (change int64, ok bool) {
	if !t.Pop1980.Valid || !t.Pop2010.Valid {
		return 0, false
	}
	return t.Pop2010.N - t.Pop1980.N, true
}

// JoinKey returns the geographic join key for a raw identifier: its last
// JoinKeyLength characters, or the whole id when shorter.
func JoinKey(id string) string {
	if len(id) <= JoinKeyLength {
		return id
	}
	return id[len(id)-JoinKeyLength:]
}

// Change is the derived population change for one town.
type Change struct {
	ID     string `json:"id"`
	Change int64  `json:"change"`
}
