// Package wardrive screens GPS-tagged access point sightings and records
// the plausible ones as CSV rows.
package wardrive

import "fmt"

// Date is a GPS date. Year counts from 2000, as the GPS receiver reports it.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// TimeOfDay is a UTC GPS time.
type TimeOfDay struct {
	Hour     int `json:"hour"`
	Minute   int `json:"minute"`
	Second   int `json:"second"`
	Thousand int `json:"thousand"`
}

// Fix is the parsed GPS state at the moment of a sighting.
type Fix struct {
	Valid      bool      `json:"valid"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Date       Date      `json:"date"`
	Time       TimeOfDay `json:"time"`
	Speed      float64   `json:"speed"` // m/s
	DOPH       float64   `json:"dop_h"`
	DOPP       float64   `json:"dop_p"`
	DOPV       float64   `json:"dop_v"`
	SatsInView uint32    `json:"sats_in_view"`
}

// Timestamp formats the fix time as YYYY-MM-DD HH:MM:SS.mmm.
func (f *Fix) Timestamp() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%03d",
		2000+f.Date.Year, f.Date.Month, f.Date.Day,
		f.Time.Hour, f.Time.Minute, f.Time.Second, f.Time.Thousand)
}

// Observation is one access point seen by a scan.
type Observation struct {
	BSSID      string `json:"bssid"`
	SSID       string `json:"ssid"`
	RSSI       int32  `json:"rssi"`
	Channel    uint32 `json:"channel"`
	Encryption string `json:"encryption"`
}
