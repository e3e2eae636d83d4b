package uni

import "fmt"

// Message identities by numeric message id.
//
// Ids in the 65000 range are nominal: those logs exist only in ASCII form
// on the receiver.
var msgIDs = map[uint16]string{
	17:     "VERSION",          // Version and Authorization
	12:     "OBSVM",            // Observation of the Main Antenna
	13:     "OBSVH",            // Observation of the 2nd Antenna
	138:    "OBSVMCMP",         // Compressed Observation of the Main Antenna
	139:    "OBSVHCMP",         // Compressed Observation of the 2nd Antenna
	284:    "OBSVBASE",         // Observation of the Base Station
	176:    "BASEINFO",         // Base Station Information
	8:      "GPSION",           // GPS Ionosphere Parameters
	21:     "BD3ION",           // BDS-3 Ionosphere Parameters
	4:      "BDSION",           // BDS Ionosphere Parameters
	9:      "GALION",           // Galileo Ionosphere Parameters
	19:     "GPSUTC",           // Conversion between GPS Time and UTC
	22:     "BD3UTC",           // Conversion between BDS-3 Time and UTC
	2012:   "BDSUTC",           // Conversion between BDS Time and UTC
	20:     "GALUTC",           // Conversion between Galileo Time and UTC
	106:    "GPSEPH",           // GPS Ephemeris
	110:    "QZSSEPH",          // QZSS Ephemeris
	2999:   "BD3EPH",           // BDS-3 Ephemeris
	108:    "BDSEPH",           // BDS Ephemeris
	107:    "GLOEPH",           // GLONASS Ephemeris
	109:    "GALEPH",           // Galileo Ephemeris
	112:    "IRNSSEPH",         // IRNSS Ephemeris
	11276:  "AGRIC",            // Position, velocity, serial no, heading and baseline information
	1021:   "PVTSLN",           // Position and Heading Information
	65001:  "UNILOGLIST",       // Output Log List (no binary version)
	2118:   "BESTNAV",          // Best Position and Velocity
	240:    "BESTNAVXYZ",       // Best Position and Velocity in ECEF
	2119:   "BESTNAVH",         // Best Position and Velocity (2nd Antenna)
	242:    "BESTNAVXYZH",      // Best Position and Velocity in ECEF (2nd Antenna)
	1041:   "BESTSAT",          // Satellites Used in Position Solution
	142:    "ADRNAV",           // RTK Position and Velocity
	2117:   "ADRNAVH",          // RTK Position and Velocity (2nd Antenna)
	1026:   "PPPNAV",           // Position and Velocity of PPP
	46:     "SPPNAV",           // Pseudorange Position and Velocity
	2116:   "SPPNAVH",          // Pseudorange Position and Velocity (2nd Antenna)
	954:    "STADOP",           // DOP of BESTNAV
	2122:   "STADOPH",          // DOP of BESTNAVH (2nd Antenna)
	953:    "ADRDOP",           // DOP of ADRNAV
	2121:   "ADRDOPH",          // DOP of ADRNAVH (2nd Antenna)
	1025:   "PPPDOP",           // DOP of PPPNAV
	173:    "SPPDOP",           // DOP of SPPNAV
	2120:   "SPPDOPH",          // DOP of SPPNAVH (2nd Antenna)
	2124:   "SATSINFO",         // Satellite Information
	49:     "BASEPOS",          // Position of the Base Station
	1042:   "SATELLITE",        // Visible Satellites
	2115:   "SATECEF",          // Satellite Coordinates in ECEF
	102:    "RECTIME",          // Time Information
	972:    "UNIHEADING",       // Heading Information
	1331:   "UNIHEADING2",      // Multi-Rover Heading Information
	521:    "HEADINGSTATUS",    // Heading Status
	509:    "RTKSTATUS",        // RTK Solution Status
	512:    "AGNSSSTATUS",      // AGNSS Status
	510:    "RTCSTATUS",        // RTC Initialization Status
	511:    "JAMSTATUS",        // Jamming Detection
	519:    "FREQJAMSTATUS",    // Frequency Jamming Status
	2125:   "RTCMSTATUS",       // RTCM Data Status
	218:    "HWSTATUS",         // Hardware Status
	220:    "AGC",              // Automatic Gain Control
	65002:  "KSXT",             // Positioning and Heading Data Output (no binary format)
	1019:   "INFOPART1",        // Read user-defined information in PART1
	1020:   "INFOPART2",        // Read user-defined information in PART2
	520:    "MSPOS",            // Best Position of Dual Antennas
	2318:   "TROPINFO",         // Zenith Tropospheric Delay
	2302:   "PPPB2BINFO1",      // Information Type 1
	2304:   "PPPB2BINFO2",      // Information Type 2
	2306:   "PPPB2BINFO3",      // Information Type 3
	2308:   "PPPB2BINFO4",      // Information Type 4
	2310:   "PPPB2BINFO5",      // Information Type 5
	2312:   "PPPB2BINFO6",      // Information Type 6
	2314:   "PPPB2BINFO7",      // Information Type 7
	2319:   "E6MASKBLOCK",      // Mask Block
	2320:   "E6ORBITBLOCK",     // Orbit Corrections Block
	2321:   "E6CLOCKFULLBLOCK", // Clock Full-Set Corrections Block
	2322:   "E6CLOCKSUBBLOCK",  // Clock Subset Corrections Block
	2323:   "E6CBIASBLOCK",     // Code Biases Block
	2324:   "E6PBIASBLOCK",     // Phase Biases Block
	1316:   "BSLNENUHD2",       // Heading2 Baseline in ENU Coordinate System
	1317:   "BSLNXYZHD2",       // Heading2 Baseline in XYZ Coordinate System
	1333:   "DOPHD2",           // DOP of Heading2
	0x1200: "TEST12",
	0x1400: "TEST14",
}

var msgNames = func() map[string]uint16 {
	m := make(map[string]uint16, len(msgIDs))
	for id, name := range msgIDs {
		m[name] = id
	}
	return m
}()

// Identity returns the symbolic name for a message id, or "<hex>-NOMINAL"
// when the id is not recognized.
func Identity(msgID uint16) string {
	if name, ok := msgIDs[msgID]; ok {
		return name
	}
	return nominalIdentity(msgID)
}

func nominalIdentity(msgID uint16) string {
	return fmt.Sprintf("%02x-%s", msgID, nominalSuffix)
}

const nominalSuffix = "NOMINAL"

// LookupID returns the message id registered for an identity.
func LookupID(identity string) (uint16, bool) {
	id, ok := msgNames[identity]
	return id, ok
}
