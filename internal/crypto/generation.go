package crypto

import "fmt"

// Generation selects the compression and encryption rules of a connection.
// It is fixed right after the login handshake and never changes afterwards.
type Generation int

const (
	Gen1 Generation = iota + 1 // passthrough
	Gen2                       // zlib, no encryption
	Gen3                       // zlib + one filler byte spliced in
	Gen4                       // bzip2 + stream XOR
	Gen5                       // size-adaptive compression with a tag byte + stream XOR
	Gen6                       // passthrough
)

// Starting iterator values.
const (
	iteratorSeedZero    uint32 = 0
	iteratorSeedDefault uint32 = 0x4A80B38
)

// ParseGeneration converts a raw integer into a Generation, rejecting anything outside 1–6.
func ParseGeneration(v int) (Generation, error) {
	g := Generation(v)
	if g < Gen1 || g > Gen6 {
		return 0, fmt.Errorf("invalid generation %d", v)
	}
	return g, nil
}

// IteratorSeed returns the initial value of both cipher iterators for this generation.
func (g Generation) IteratorSeed() uint32 {
	switch g {
	case Gen3, Gen4, Gen5:
		return iteratorSeedDefault
	default:
		return iteratorSeedZero
	}
}

// Encrypted reports whether bundles of this generation carry the stream XOR.
func (g Generation) Encrypted() bool {
	return g == Gen4 || g == Gen5
}

func (g Generation) String() string {
	if g < Gen1 || g > Gen6 {
		return "GEN_UNKNOWN"
	}
	return fmt.Sprintf("GEN_%d", int(g))
}
