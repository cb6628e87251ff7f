package wardrive

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goodFix() *Fix {
	return &Fix{
		Valid:      true,
		Latitude:   37.7,
		Longitude:  -122.4,
		Date:       Date{Year: 24, Month: 5, Day: 17},
		Time:       TimeOfDay{Hour: 13, Minute: 4, Second: 59, Thousand: 120},
		Speed:      10,
		DOPH:       1.2,
		DOPP:       1.8,
		DOPV:       1.4,
		SatsInView: 9,
	}
}

func goodAP() Observation {
	return Observation{BSSID: "aa:bb:cc:dd:ee:ff", SSID: "HomeNet", RSSI: -61, Channel: 6, Encryption: "WPA2"}
}

func TestValidateAccepts(t *testing.T) {
	v := NewValidator()
	assert.Equal(t, Verdict{Accept, ReasonNone}, v.Validate(goodFix(), goodAP()))

	ref, ok := v.ReferenceDate()
	require.True(t, ok)
	assert.Equal(t, Date{Year: 24, Month: 5, Day: 17}, ref)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Fix, *Observation)
		want   Verdict
	}{
		{"no fix", func(f *Fix, _ *Observation) { f.Valid = false }, Verdict{SkipSilently, ReasonNoFix}},
		{"short ssid", func(_ *Fix, o *Observation) { o.SSID = "ab" }, Verdict{SkipSilently, ReasonShortSSID}},
		{"empty ssid", func(_ *Fix, o *Observation) { o.SSID = "" }, Verdict{SkipSilently, ReasonShortSSID}},
		{"hour", func(f *Fix, _ *Observation) { f.Time.Hour = 24 }, Verdict{SkipWithWarning, ReasonTime}},
		{"second", func(f *Fix, _ *Observation) { f.Time.Second = 60 }, Verdict{SkipWithWarning, ReasonTime}},
		{"latitude", func(f *Fix, _ *Observation) { f.Latitude = 91 }, Verdict{SkipWithWarning, ReasonCoordinates}},
		{"longitude", func(f *Fix, _ *Observation) { f.Longitude = -200 }, Verdict{SkipWithWarning, ReasonCoordinates}},
		{"nan latitude", func(f *Fix, _ *Observation) { f.Latitude = math.NaN() }, Verdict{SkipWithWarning, ReasonCoordinates}},
		{"negative speed", func(f *Fix, _ *Observation) { f.Speed = -1 }, Verdict{SkipWithWarning, ReasonSpeed}},
		{"fast", func(f *Fix, _ *Observation) { f.Speed = 341 }, Verdict{SkipWithWarning, ReasonSpeed}},
		{"hdop", func(f *Fix, _ *Observation) { f.DOPH = 51 }, Verdict{SkipWithWarning, ReasonDOP}},
		{"vdop", func(f *Fix, _ *Observation) { f.DOPV = -0.5 }, Verdict{SkipWithWarning, ReasonDOP}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix, ap := goodFix(), goodAP()
			tt.mutate(fix, &ap)
			assert.Equal(t, tt.want, NewValidator().Validate(fix, ap))
		})
	}
}

func TestValidateNilFix(t *testing.T) {
	assert.Equal(t, Verdict{SkipSilently, ReasonNoFix}, NewValidator().Validate(nil, goodAP()))
}

func TestValidateBoundaries(t *testing.T) {
	fix := goodFix()
	fix.Latitude, fix.Longitude = -90, 180
	fix.Speed = 340
	fix.DOPH, fix.DOPP, fix.DOPV = 50, 0, 50
	fix.Time = TimeOfDay{Hour: 23, Minute: 59, Second: 59}
	assert.Equal(t, Accept, NewValidator().Validate(fix, goodAP()).Action)
}

func TestValidateBadDateSilentThenWarns(t *testing.T) {
	v := NewValidator()
	fix := goodFix()
	fix.Date.Month = 13

	assert.Equal(t, Verdict{SkipSilently, ReasonDate}, v.Validate(fix, goodAP()))
	assert.Equal(t, Verdict{SkipWithWarning, ReasonDate}, v.Validate(fix, goodAP()))

	_, ok := v.ReferenceDate()
	assert.False(t, ok)

	v.Reset()
	assert.Equal(t, Verdict{SkipSilently, ReasonDate}, v.Validate(fix, goodAP()))
}

func TestValidateDateIgnoredOnceSeeded(t *testing.T) {
	v := NewValidator()
	require.Equal(t, Accept, v.Validate(goodFix(), goodAP()).Action)

	bad := goodFix()
	bad.Date = Date{Year: 150, Month: 13, Day: 0}
	assert.Equal(t, Verdict{Accept, ReasonNone}, v.Validate(bad, goodAP()))
	assert.Equal(t, Verdict{Accept, ReasonNone}, v.Validate(bad, goodAP()))

	ref, ok := v.ReferenceDate()
	require.True(t, ok)
	assert.Equal(t, goodFix().Date, ref)
}

func TestValidateBadDatesBeforeSeed(t *testing.T) {
	v := NewValidator()
	bad := goodFix()
	bad.Date.Day = 0
	assert.Equal(t, SkipSilently, v.Validate(bad, goodAP()).Action)
	assert.Equal(t, SkipWithWarning, v.Validate(bad, goodAP()).Action)

	require.Equal(t, Accept, v.Validate(goodFix(), goodAP()).Action)
	assert.Equal(t, Accept, v.Validate(bad, goodAP()).Action)
}

func TestValidateSSIDLengthInBytes(t *testing.T) {
	ap := goodAP()
	ap.SSID = "日本"
	assert.Equal(t, Accept, NewValidator().Validate(goodFix(), ap).Action)

	ap.SSID = "ab"
	assert.Equal(t, Verdict{SkipSilently, ReasonShortSSID}, NewValidator().Validate(goodFix(), ap))
}

func TestValidateSeedsOnlyOnce(t *testing.T) {
	v := NewValidator()
	first := goodFix()
	first.Latitude = 95 // rejected after the date check
	assert.Equal(t, ReasonCoordinates, v.Validate(first, goodAP()).Reason)

	second := goodFix()
	second.Date.Day = 18
	assert.Equal(t, Accept, v.Validate(second, goodAP()).Action)

	ref, ok := v.ReferenceDate()
	require.True(t, ok)
	assert.Equal(t, 17, ref.Day)
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, "2024-05-17 13:04:59.120", goodFix().Timestamp())
}
