package uni

import "time"

// gpsEpoch is GPS week 0, time of week 0.
var gpsEpoch = time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC)

const msPerWeek = 604800000

// WeekTOW returns the GPS week number and time of week in milliseconds
// for t. No leap second correction is applied.
func WeekTOW(t time.Time) (wno uint16, tow uint32) {
	d := t.UTC().Sub(gpsEpoch)
	days := int64(d / (24 * time.Hour))
	week := days / 7
	ms := d.Milliseconds() - week*msPerWeek
	return uint16(week), uint32(ms)
}
