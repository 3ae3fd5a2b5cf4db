package rating_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aurora/quote-engine/rating"
)

func TestVehicleAgeFactor_Curve(t *testing.T) {
	cases := []struct {
		age  int
		want string
	}{
		{0, "1.5"},
		{1, "1.4"},
		{9, "0.8"},
		{10, "0.75"}, // floor
		{25, "0.75"},
		{-1, "1.5"}, // model year in the future clamps to new
	}

	for _, tc := range cases {
		got := rating.VehicleAgeFactor(tc.age)
		assert.True(t, got.Equal(dec(tc.want)), "age %d: got %s want %s", tc.age, got, tc.want)
	}
}

func TestSafetyFactor_Linear(t *testing.T) {
	assert.True(t, rating.SafetyFactor(dec("0")).Equal(dec("1.1")))
	assert.True(t, rating.SafetyFactor(dec("5")).Equal(dec("0.6")))
	assert.True(t, rating.SafetyFactor(dec("8.5")).Equal(dec("0.25")))
	assert.True(t, rating.SafetyFactor(dec("10")).Equal(dec("0.1")))
}

func TestFeatureFactor_Combinations(t *testing.T) {
	assert.True(t, rating.FeatureFactor(false, false).Equal(dec("1")))
	assert.True(t, rating.FeatureFactor(true, false).Equal(dec("0.95")))
	assert.True(t, rating.FeatureFactor(false, true).Equal(dec("0.97")))
	assert.True(t, rating.FeatureFactor(true, true).Equal(dec("0.9215")))
}

func TestParkingFactor_UnknownDefaultsToNeutral(t *testing.T) {
	assert.True(t, rating.ParkingFactor(rating.ParkingGarage).Equal(dec("0.9")))
	assert.True(t, rating.ParkingFactor(rating.ParkingDriveway).Equal(dec("0.95")))
	assert.True(t, rating.ParkingFactor(rating.ParkingStreet).Equal(dec("1.1")))
	assert.True(t, rating.ParkingFactor(rating.ParkingLot).Equal(dec("1.05")))
	assert.True(t, rating.ParkingFactor("").Equal(dec("1")))
	assert.True(t, rating.ParkingFactor("rooftop").Equal(dec("1")))
}

func TestGroupFactor_AllGroups(t *testing.T) {
	cases := map[rating.InsuranceGroup]string{
		rating.GroupCompact:  "1.0",
		rating.GroupMidsize:  "1.1",
		rating.GroupLuxury:   "1.4",
		rating.GroupSports:   "1.6",
		rating.GroupSUVSmall: "1.2",
		rating.GroupSUVLarge: "1.3",
		rating.GroupTruck:    "1.25",
		rating.GroupVan:      "1.15",
	}
	for group, want := range cases {
		assert.True(t, rating.GroupFactor(group).Equal(dec(want)), "group %s", group)
	}
	assert.True(t, rating.GroupFactor("hovercraft").Equal(dec("1")))
}

func TestResolveVehicleFactors_NilLookupsAreNeutral(t *testing.T) {
	// GIVEN: neither model nor usage resolved
	// WHEN:  resolving factors
	// THEN:  group, safety, and usage are neutral; age, features, and
	//        parking still come from the profile

	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	v := rating.VehicleProfile{
		Year:        2016,
		Parking:     rating.ParkingStreet,
		AntiTheft:   true,
		WinterTires: true,
	}

	f := rating.ResolveVehicleFactors(v, nil, nil, now)

	assert.True(t, f.Group.Equal(dec("1")))
	assert.True(t, f.Safety.Equal(dec("1")))
	assert.True(t, f.Usage.Equal(dec("1")))
	assert.True(t, f.VehicleAge.Equal(dec("0.8")))
	assert.True(t, f.Features.Equal(dec("0.9215")))
	assert.True(t, f.Parking.Equal(dec("1.1")))
}

func TestResolveVehicleFactors_FullProduct(t *testing.T) {
	// sports group 1.6, age 0 -> 1.5, usage 1.35, safety 9 -> 0.2,
	// no features, street 1.1

	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	model := &rating.Model{InsuranceGroup: rating.GroupSports, SafetyRating: dec("9")}
	usage := &rating.Usage{Factor: dec("1.35")}
	v := rating.VehicleProfile{Year: 2025, Parking: rating.ParkingStreet}

	f := rating.ResolveVehicleFactors(v, model, usage, now)

	want := dec("1.6").Mul(dec("1.5")).Mul(dec("1.35")).Mul(dec("0.2")).Mul(dec("1.1"))
	assert.True(t, f.Product().Equal(want))
}
