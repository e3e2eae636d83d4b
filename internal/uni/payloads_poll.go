package uni

// Query (POLL) payload definitions.
var payloadsPoll = map[string]Schema{
	"TEST12": {},
	"TEST14": {},
	"TEST14-CH": {
		F("channel", U1),
	},
}
