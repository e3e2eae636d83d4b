package uni

type overrideKey struct {
	identity string
	mode     Mode
	length   uint16
}

// lengthOverrides selects an alternate payload definition for identities
// that document more than one layout, told apart only by payload length.
var lengthOverrides = map[overrideKey]string{
	{identity: "TEST14", mode: ModeSet, length: 5}:  "TEST14-SHORT",
	{identity: "TEST14", mode: ModePoll, length: 1}: "TEST14-CH",
}
