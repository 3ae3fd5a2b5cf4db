package rating_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aurora/quote-engine/rating"
)

func TestDriverAge_BirthdayCorrection(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		dob  time.Time
		want int
	}{
		{"birthday earlier this year", time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC), 35},
		{"birthday later this year", time.Date(1990, time.November, 15, 0, 0, 0, 0, time.UTC), 34},
		{"birthday today", time.Date(1990, time.June, 1, 0, 0, 0, 0, time.UTC), 35},
		{"birthday tomorrow", time.Date(1990, time.June, 2, 0, 0, 0, 0, time.UTC), 34},
		{"same month earlier day", time.Date(1990, time.June, 30, 0, 0, 0, 0, time.UTC), 34},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rating.DriverAge(tc.dob, now))
		})
	}
}

func TestHistoryBandFor_PriorityOrder(t *testing.T) {
	// Accidents and violations together outrank either alone; claims never
	// change the classification.

	cases := []struct {
		name      string
		accidents int
		violation int
		claims    int
		want      rating.HistoryBandID
	}{
		{"clean", 0, 0, 0, rating.HistoryClean},
		{"clean despite claims", 0, 0, 3, rating.HistoryClean},
		{"violations only", 0, 2, 0, rating.HistoryMinorInfraction},
		{"accident only", 1, 0, 0, rating.HistoryAtFaultAccident},
		{"both", 1, 1, 0, rating.HistoryMultipleInfractions},
		{"both, many", 3, 5, 2, rating.HistoryMultipleInfractions},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := rating.DriverProfile{
				Accidents3Years:  tc.accidents,
				Violations3Years: tc.violation,
				Claims3Years:     tc.claims,
			}
			assert.Equal(t, tc.want, rating.HistoryBandFor(d))
		})
	}
}

func TestDriverFactors_Product(t *testing.T) {
	f := rating.DriverFactors{
		AgeGroup:   dec("1.8"),
		Experience: dec("1.5"),
		History:    dec("1.2"),
	}
	assert.True(t, f.Product().Equal(dec("3.24")))

	assert.True(t, rating.NeutralDriverFactors().Product().Equal(dec("1")))
}

func TestFindBand_ClosedIntervals(t *testing.T) {
	bands := []rating.Band{
		{ID: "a", Min: 16, Max: 24, Factor: dec("1.8")},
		{ID: "b", Min: 25, Max: 34, Factor: dec("1.2")},
	}

	assert.Equal(t, "a", rating.FindBand(bands, 16).ID)
	assert.Equal(t, "a", rating.FindBand(bands, 24).ID)
	assert.Equal(t, "b", rating.FindBand(bands, 25).ID)
	assert.Nil(t, rating.FindBand(bands, 35))
	assert.Nil(t, rating.FindBand(bands, 15))
}
