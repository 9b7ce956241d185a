package crypto

// iteratorMultiplier drives the linear congruential key stream.
const iteratorMultiplier uint32 = 0x8088405

// Unlimited disables the block limit of Cipher.Apply.
const Unlimited = -1

// Cipher is the stream XOR shared by generations 3–5.
//
// Every 4 bytes the 32-bit iterator advances (iterator = iterator*0x8088405 + key) and
// byte i of the region is XORed with byte i%4 of the iterator in little-endian order.
// Each connection owns two ciphers, one per direction; they must never be swapped.
type Cipher struct {
	iterator uint32
	key      byte
}

// NewCipher creates a cipher seeded with the iterator value of gen.
func NewCipher(gen Generation, key byte) *Cipher {
	return &Cipher{
		iterator: gen.IteratorSeed(),
		key:      key,
	}
}

// Iterator returns the current iterator value.
func (c *Cipher) Iterator() uint32 {
	return c.iterator
}

// Key returns the single-byte key received at login.
func (c *Cipher) Key() byte {
	return c.key
}

// Advance steps the iterator once and returns the new value.
func (c *Cipher) Advance() uint32 {
	c.iterator = c.iterator*iteratorMultiplier + uint32(c.key)
	return c.iterator
}

// Apply XORs data in place. limit counts 4-byte blocks: 0 leaves data untouched,
// a negative limit processes the whole slice. XOR is symmetric, so Apply both
// encrypts and decrypts.
func (c *Cipher) Apply(data []byte, limit int) {
	for i := range data {
		if i%4 == 0 {
			if limit == 0 {
				return
			}
			c.Advance()
			if limit > 0 {
				limit--
			}
		}
		data[i] ^= byte(c.iterator >> (8 * (i % 4)))
	}
}
