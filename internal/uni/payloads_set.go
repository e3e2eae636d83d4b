package uni

// Command (SET) payload definitions.
//
// Most receiver commands are plain ASCII; only the binary forms are listed.
var payloadsSet = map[string]Schema{
	"TEST12": {
		F("data", U3),
		F("mode", U2),
	},
	"TEST14": {
		F("data", U3),
		F("mode", U2),
		F("status", U2),
	},
	"TEST14-SHORT": {
		F("data", U3),
		F("mode", U2),
	},
}
