package nmea

import (
	"math"
	"strconv"
	"strings"
)

// Fix is the position carried by a GGA or RMC sentence. Optional values
// are nil when the sentence does not carry them.
type Fix struct {
	LatDeg     float64
	LonDeg     float64
	AltM       *float64
	GroundKt   *float64
	TrackDeg   *float64
	FixQuality *int
	Satellites *int
	HDOP       *float64
}

// Fix extracts a position from GGA and RMC sentences. It reports false for
// other sentence types, void RMC fixes and GGA fixes of quality 0.
func (s *Sentence) Fix() (Fix, bool) {
	// Fields here exclude the address, so indices are one less than the
	// NMEA field numbers.
	f := s.Fields
	switch s.Type {
	case "RMC":
		return fixRMC(f)
	case "GGA":
		return fixGGA(f)
	}
	return Fix{}, false
}

// RMC: Recommended Minimum Specific GNSS Data
//
//	0: time (hhmmss.sss)
//	1: status (A=active, V=void)
//	2: latitude (ddmm.mmmm)
//	3: N/S
//	4: longitude (dddmm.mmmm)
//	5: E/W
//	6: speed over ground (knots)
//	7: course over ground (deg)
//	8: date (ddmmyy)
func fixRMC(f []string) (Fix, bool) {
	if len(f) < 9 || strings.TrimSpace(f[1]) != "A" {
		return Fix{}, false
	}
	lat, latOK := parseLatLon(f[2], f[3])
	lon, lonOK := parseLatLon(f[4], f[5])
	if !latOK || !lonOK {
		return Fix{}, false
	}
	out := Fix{LatDeg: lat, LonDeg: lon}
	if gs, ok := parseFloat(f[6]); ok {
		out.GroundKt = &gs
	}
	if trk, ok := parseFloat(f[7]); ok {
		trk = math.Mod(trk+360.0, 360.0)
		out.TrackDeg = &trk
	}
	return out, true
}

// GGA: Global Positioning System Fix Data
//
//	0: time
//	1: latitude
//	2: N/S
//	3: longitude
//	4: E/W
//	5: fix quality (0=invalid)
//	6: number of satellites
//	7: HDOP
//	8: altitude (meters)
//	9: units (M)
func fixGGA(f []string) (Fix, bool) {
	if len(f) < 10 {
		return Fix{}, false
	}
	q, err := strconv.Atoi(strings.TrimSpace(f[5]))
	if err != nil || q == 0 {
		return Fix{}, false
	}
	lat, latOK := parseLatLon(f[1], f[2])
	lon, lonOK := parseLatLon(f[3], f[4])
	if !latOK || !lonOK {
		return Fix{}, false
	}
	out := Fix{LatDeg: lat, LonDeg: lon, FixQuality: &q}
	if sats, err := strconv.Atoi(strings.TrimSpace(f[6])); err == nil {
		out.Satellites = &sats
	}
	if hdop, ok := parseFloat(f[7]); ok {
		out.HDOP = &hdop
	}
	if alt, ok := parseFloat(f[8]); ok {
		out.AltM = &alt
	}
	return out, true
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseLatLon parses NMEA lat/lon in ddmm.mmmm or dddmm.mmmm plus hemisphere.
func parseLatLon(v string, hemi string) (float64, bool) {
	v = strings.TrimSpace(v)
	hemi = strings.TrimSpace(strings.ToUpper(hemi))
	if v == "" || (hemi != "N" && hemi != "S" && hemi != "E" && hemi != "W") {
		return 0, false
	}

	// The last two digits of the integer part are minutes.
	dot := strings.IndexByte(v, '.')
	intPart := v
	if dot != -1 {
		intPart = v[:dot]
	}
	if len(intPart) < 3 {
		return 0, false
	}

	deg, err := strconv.Atoi(intPart[:len(intPart)-2])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.ParseFloat(v[len(intPart)-2:], 64)
	if err != nil {
		return 0, false
	}

	dec := float64(deg) + (mins / 60.0)
	if hemi == "S" || hemi == "W" {
		dec = -dec
	}
	return dec, true
}
