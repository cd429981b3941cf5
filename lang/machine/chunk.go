package machine

import "github.com/hinton-lang/hinton/lang/token"

// Chunk is a function body's compiled form: a flat instruction stream with
// a parallel, identically-sized vector of token indices used only when an
// error needs to be attributed back to source.
type Chunk struct {
	Instructions []byte
	Tokens       []token.Idx
}

// PushByte appends one byte tagged with the token that produced it.
func (c *Chunk) PushByte(b byte, tok token.Idx) int {
	c.Instructions = append(c.Instructions, b)
	c.Tokens = append(c.Tokens, tok)
	return len(c.Instructions) - 1
}

// PushShort appends a big-endian uint16, tagging both bytes with tok.
func (c *Chunk) PushShort(v uint16, tok token.Idx) int {
	start := c.PushByte(byte(v>>8), tok)
	c.PushByte(byte(v), tok)
	return start
}

// Patch overwrites the byte at offset, leaving its token annotation intact.
func (c *Chunk) Patch(offset int, b byte) {
	c.Instructions[offset] = b
}

// PatchShort overwrites the big-endian uint16 starting at offset.
func (c *Chunk) PatchShort(offset int, v uint16) {
	c.Instructions[offset] = byte(v >> 8)
	c.Instructions[offset+1] = byte(v)
}

// GetShort reads a big-endian uint16 starting at i.
func (c *Chunk) GetShort(i int) uint16 {
	return uint16(c.Instructions[i])<<8 | uint16(c.Instructions[i+1])
}

// Len returns the current instruction count.
func (c *Chunk) Len() int { return len(c.Instructions) }
