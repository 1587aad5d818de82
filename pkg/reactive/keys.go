package reactive

// Key identifies a tracked slot within a container. Object keys are strings,
// array indices are ints, and Map/Set keys are the raw (unwrapped) element
// values. Two synthetic keys cover whole-container reads.
type Key any

// iterateKey is the synthetic key tracked by key-enumeration and iteration
// reads (Keys, Values, ForEach, Map/Set Len). Structural mutations trigger
// it so enumerating readers re-run.
type iterateKey struct{}

// lengthKey is the synthetic key tracked by Array.Len.
type lengthKey struct{}

// derivedKey is the synthetic key a Computed publishes its value under.
type derivedKey struct{}

var (
	// KeyIterate is triggered whenever a container's key set or element
	// membership changes.
	KeyIterate Key = iterateKey{}

	// KeyLength is triggered whenever an array's length changes.
	KeyLength Key = lengthKey{}

	keyDerived Key = derivedKey{}
)

func (iterateKey) String() string { return "@iterate" }
func (lengthKey) String() string  { return "@length" }
func (derivedKey) String() string { return "@value" }
