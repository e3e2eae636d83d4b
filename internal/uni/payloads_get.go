package uni

// Output (GET) payload definitions.
//
// Layouts follow the Unicore N4 high precision products reference manual.
// Identities listed with an empty schema are recognized but not yet
// described; their payload is kept verbatim and no attributes are exposed.
var payloadsGet = map[string]Schema{
	"VERSION": {
		F("device", U4),
		F("swversion", C33),
		F("authtype", C129),
		F("psn", C66),
		F("efuseid", C33),
		F("comptime", C43),
	},
	"OBSVM": obsvm,
	"OBSVH": obsvm,
	"BESTNAV": {
		F("psolstatus", U4),
		F("postype", U4),
		F("lat", R8),
		F("lon", R8),
		F("hgt", R8),
		F("undulation", R4),
		F("datumid", U4),
		F("latsigma", R4),
		F("lonsigma", R4),
		F("hgtsigma", R4),
		F("stnid", C4),
		F("diffage", R4),
		F("solage", R4),
		F("numsvs", U1),
		F("numsolnsvs", U1),
		F("reserved1", U1),
		F("reserved2", U1),
		F("reserved3", U1),
		BF("extsolstat", X1,
			B("solverified", 1),
			B("ionocorr", 3),
			B("reserved4", 1),
			B("antwarning", 1),
			B("reserved5", 2),
		),
		BF("galbdssigmask", X1,
			B("gale1", 1),
			B("gale5b", 1),
			B("gale5a", 1),
			B("reserved6", 1),
			B("bdsb1", 1),
			B("bdsb2", 1),
			B("bdsb3", 1),
			B("reserved7", 1),
		),
		BF("gpsglosigmask", X1,
			B("gpsl1", 1),
			B("gpsl2", 1),
			B("gpsl5", 1),
			B("reserved8", 1),
			B("glol1", 1),
			B("glol2", 1),
			B("reserved9", 2),
		),
		F("vsolstatus", U4),
		F("veltype", U4),
		F("latency", R4),
		F("age", R4),
		F("horspd", R8),
		F("trkgnd", R8),
		F("vertspd", R8),
		F("verspdstd", R4),
		F("horspdstd", R4),
	},
	"STADOP": {
		F("itow", U4),
		F("gdop", R4),
		F("pdop", R4),
		F("tdop", R4),
		F("vdop", R4),
		F("hdop", R4),
		F("ndop", R4),
		F("edop", R4),
		F("cutoff", R4),
		F("reserved", R4),
		F("numprn", U2),
		G("prns", FromSibling("numprn"),
			F("prn", U2),
		),
	},
	"RECTIME": {
		F("clockstatus", U4),
		F("offset", R8),
		F("offsetstd", R8),
		F("utcoffset", R8),
		F("utcyear", U4),
		F("utcmonth", U1),
		F("utcday", U1),
		F("utchour", U1),
		F("utcmin", U1),
		F("utcms", U4),
		F("utcstatus", U4),
	},
	"INFOPART1": {
		F("numpages", U1),
		V("data", XV, PerSibling{Sibling: "numpages", Unit: 53}),
	},
	"INFOPART2": {
		F("numpages", U1),
		V("data", XV, PerSibling{Sibling: "numpages", Unit: 53}),
	},
	"OBSVMCMP":         {},
	"OBSVHCMP":         {},
	"OBSVBASE":         {},
	"BASEINFO":         {},
	"GPSION":           {},
	"BD3ION":           {},
	"BDSION":           {},
	"GALION":           {},
	"GPSUTC":           {},
	"BD3UTC":           {},
	"BDSUTC":           {},
	"GALUTC":           {},
	"GPSEPH":           {},
	"QZSSEPH":          {},
	"BD3EPH":           {},
	"BDSEPH":           {},
	"GLOEPH":           {},
	"GALEPH":           {},
	"IRNSSEPH":         {},
	"AGRIC":            {},
	"PVTSLN":           {},
	"UNILOGLIST":       {},
	"BESTNAVXYZ":       {},
	"BESTNAVH":         {},
	"BESTNAVXYZH":      {},
	"BESTSAT":          {},
	"ADRNAV":           {},
	"ADRNAVH":          {},
	"PPPNAV":           {},
	"SPPNAV":           {},
	"SPPNAVH":          {},
	"STADOPH":          {},
	"ADRDOP":           {},
	"ADRDOPH":          {},
	"PPPDOP":           {},
	"SPPDOP":           {},
	"SPPDOPH":          {},
	"SATSINFO":         {},
	"BASEPOS":          {},
	"SATELLITE":        {},
	"SATECEF":          {},
	"UNIHEADING":       {},
	"UNIHEADING2":      {},
	"HEADINGSTATUS":    {},
	"RTKSTATUS":        {},
	"AGNSSSTATUS":      {},
	"RTCSTATUS":        {},
	"JAMSTATUS":        {},
	"FREQJAMSTATUS":    {},
	"RTCMSTATUS":       {},
	"HWSTATUS":         {},
	"AGC":              {},
	"KSXT":             {},
	"MSPOS":            {},
	"TROPINFO":         {},
	"PPPB2BINFO1":      {},
	"PPPB2BINFO2":      {},
	"PPPB2BINFO3":      {},
	"PPPB2BINFO4":      {},
	"PPPB2BINFO5":      {},
	"PPPB2BINFO6":      {},
	"PPPB2BINFO7":      {},
	"E6MASKBLOCK":      {},
	"E6ORBITBLOCK":     {},
	"E6CLOCKFULLBLOCK": {},
	"E6CLOCKSUBBLOCK":  {},
	"E6CBIASBLOCK":     {},
	"E6PBIASBLOCK":     {},
	"BSLNENUHD2":       {},
	"BSLNXYZHD2":       {},
	"DOPHD2":           {},
	"TEST12": {
		F("data", U3),
		F("mode", U2),
	},
	"TEST14": {
		F("data", U3),
		F("mode", U2),
		F("status", U2),
	},
}

var obsvm = Schema{
	F("numobs", U4),
	G("obs", FromSibling("numobs"),
		F("sysfreq", U2),
		F("prn", U2),
		F("psr", R8),
		F("adr", R8),
		SF("psrstd", U2, 0.01),
		SF("adrstd", U2, 0.0001),
		F("dopp", R4),
		SF("cn0", U2, 0.01),
		F("reserved", U2),
		F("locktime", R4),
		BF("chtrstatus", X4,
			B("trkstate", 5),
			B("reserved1", 5),
			B("phaselock", 1),
			B("parity", 1),
			B("codelock", 1),
			B("reserved2", 19),
		),
	),
}

// nominalSchema captures an unrecognized payload verbatim, one byte per
// group item.
var nominalSchema = Schema{
	G("group", FromRemainder(),
		F("data", X1),
	),
}
