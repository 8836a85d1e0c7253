package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want Count
	}{
		{"json number", float64(562994), NewCount(562994)},
		{"int", 42, NewCount(42)},
		{"int64", int64(7), NewCount(7)},
		{"string", "617594", NewCount(617594)},
		{"string with separators", " 1,234 ", NewCount(1234)},
		{"float string", "12.0", NewCount(12)},
		{"empty string", "", Count{}},
		{"garbage", "n/a", Count{}},
		{"nil", nil, Count{}},
		{"nan", math.NaN(), Count{}},
		{"bool", true, Count{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseCount(tt.in))
		})
	}
}

func TestTownFromProperties(t *testing.T) {
	t.Parallel()

	props := map[string]any{"TOWN": "BOSTON ", "POP1980": float64(562994), "POP2010": "617594"}
	town := TownFromProperties("25025", props, DefaultTownColumns(), nil)

	assert.Equal(t, "25025", town.ID)
	assert.Equal(t, "BOSTON", town.Name)
	assert.Equal(t, NewCount(562994), town.Pop1980)
	assert.Equal(t, NewCount(617594), town.Pop2010)

	unnamed := TownFromProperties("1", map[string]any{"TOWN": 12}, DefaultTownColumns(), nil)
	assert.Equal(t, "12", unnamed.Name)
	assert.False(t, unnamed.Pop1980.Valid)
}
