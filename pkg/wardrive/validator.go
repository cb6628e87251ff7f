package wardrive

import (
	"sync"
)

// Action is what the caller should do with a sighting.
type Action int

const (
	Accept Action = iota
	SkipSilently
	SkipWithWarning
)

func (a Action) String() string {
	switch a {
	case Accept:
		return "accept"
	case SkipSilently:
		return "skip"
	default:
		return "warn"
	}
}

// Reason explains a skip.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonNoFix       Reason = "no gps fix"
	ReasonShortSSID   Reason = "ssid too short"
	ReasonDate        Reason = "gps date out of range"
	ReasonTime        Reason = "gps time invalid"
	ReasonCoordinates Reason = "gps coords out of range"
	ReasonSpeed       Reason = "gps speed out of range"
	ReasonDOP         Reason = "gps dop out of range"
)

// Verdict is the result of Validate.
type Verdict struct {
	Action Action
	Reason Reason
}

// Plausibility bounds.
const (
	minSSIDLen  = 3
	maxYear     = 100
	maxSpeedMPS = 340.0
	maxDOP      = 50.0
)

// Validator screens fix/sighting pairs. Dates are only checked until the
// first plausible one is seen; that date becomes the session reference and
// later fixes are not dropped for their date.
type Validator struct {
	mu          sync.Mutex
	reference   Date
	seeded      bool
	badDateSeen bool
}

// NewValidator returns a Validator for a new session.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks fix and ap in order, stopping at the first failure.
func (v *Validator) Validate(fix *Fix, ap Observation) Verdict {
	if fix == nil || !fix.Valid {
		return Verdict{SkipSilently, ReasonNoFix}
	}
	// SSID length is in bytes, as broadcast.
	if len(ap.SSID) < minSSIDLen {
		return Verdict{SkipSilently, ReasonShortSSID}
	}
	if verdict, ok := v.checkDate(fix.Date); !ok {
		return verdict
	}
	if !plausibleTime(fix.Time) {
		return Verdict{SkipWithWarning, ReasonTime}
	}
	if !inRange(fix.Latitude, -90, 90) || !inRange(fix.Longitude, -180, 180) {
		return Verdict{SkipWithWarning, ReasonCoordinates}
	}
	if !inRange(fix.Speed, 0, maxSpeedMPS) {
		return Verdict{SkipWithWarning, ReasonSpeed}
	}
	if !inRange(fix.DOPH, 0, maxDOP) || !inRange(fix.DOPP, 0, maxDOP) || !inRange(fix.DOPV, 0, maxDOP) {
		return Verdict{SkipWithWarning, ReasonDOP}
	}
	return Verdict{Accept, ReasonNone}
}

// checkDate passes every date once the reference is seeded. Before that an
// implausible date is skipped silently the first time and warned after.
func (v *Validator) checkDate(d Date) (Verdict, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seeded {
		return Verdict{}, true
	}
	if !plausibleDate(d) {
		if !v.badDateSeen {
			v.badDateSeen = true
			return Verdict{SkipSilently, ReasonDate}, false
		}
		return Verdict{SkipWithWarning, ReasonDate}, false
	}
	v.reference = d
	v.seeded = true
	return Verdict{}, true
}

// ReferenceDate returns the first plausible date seen this session.
func (v *Validator) ReferenceDate() (Date, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.reference, v.seeded
}

// Reset forgets session state.
func (v *Validator) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reference = Date{}
	v.seeded = false
	v.badDateSeen = false
}

func plausibleDate(d Date) bool {
	return d.Year >= 0 && d.Year <= maxYear &&
		d.Month >= 1 && d.Month <= 12 &&
		d.Day >= 1 && d.Day <= 31
}

func plausibleTime(t TimeOfDay) bool {
	return inRangeInt(t.Hour, 0, 23) && inRangeInt(t.Minute, 0, 59) && inRangeInt(t.Second, 0, 59)
}

// inRange is false for NaN.
func inRange(x, lo, hi float64) bool { return x >= lo && x <= hi }

func inRangeInt(x, lo, hi int) bool { return x >= lo && x <= hi }
