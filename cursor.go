package lillydap

import (
	ber "github.com/go-asn1-ber/asn1-ber"
)

// Cursor is the dercursor of the design: a view over a single decoded DER
// element, adapting go-asn1-ber's fully-materialized Packet tree to the
// sequential, arena-owned access pattern the dispatch pipeline's operation
// decoders use. Every byte Cursor hands back has been copied into the Pool
// passed to the decoder that produced the Cursor — callbacks never see a
// pointer into the original read buffer.
type Cursor struct {
	pkt  *ber.Packet
	pool *Pool
}

// ParseCursor decodes data as a single top-level BER element and returns a
// Cursor over it. data is the full TLV, tag included, for example the
// bytes of one LDAPMessage frame.
func ParseCursor(pool *Pool, data []byte) (*Cursor, error) {
	pkt := ber.DecodePacket(data)
	if pkt == nil {
		return nil, decodeErr("ParseCursor", errTruncated)
	}
	return &Cursor{pkt: pkt, pool: pool}, nil
}

var errTruncated = &simpleErr{"truncated or malformed DER element"}

type simpleErr struct{ s string }

func (e *simpleErr) Error() string { return e.s }

// Tag returns the element's tag number (APPLICATION/CONTEXT/UNIVERSAL tag
// value, independent of class).
func (c *Cursor) Tag() int { return int(c.pkt.Tag) }

// ClassType returns the element's tag class (ber.ClassApplication,
// ber.ClassContext, ber.ClassUniversal, ...).
func (c *Cursor) ClassType() ber.Class { return c.pkt.ClassType }

// Constructed reports whether the element was encoded as constructed
// (SEQUENCE/SET/choice-of-constructed) rather than primitive.
func (c *Cursor) Constructed() bool { return c.pkt.TagType == ber.TypeConstructed }

// Bytes returns the element's primitive content, copied into the arena.
func (c *Cursor) Bytes() []byte {
	if c.pkt.ByteValue != nil {
		return c.pool.Own(c.pkt.ByteValue)
	}
	return c.pool.Own(c.pkt.Data.Bytes())
}

// String is the element's content as a string. The string is an ordinary
// Go string, not arena memory: OwnString's conversion copies it out.
func (c *Cursor) String() string {
	return c.pool.OwnString(string(c.rawBytes()))
}

func (c *Cursor) rawBytes() []byte {
	if c.pkt.ByteValue != nil {
		return c.pkt.ByteValue
	}
	return c.pkt.Data.Bytes()
}

// Int64 returns the element's value interpreted as an INTEGER/ENUMERATED.
func (c *Cursor) Int64() int64 {
	if v, ok := c.pkt.Value.(int64); ok {
		return v
	}
	return parseBERInt(c.rawBytes())
}

// Bool returns the element's value interpreted as a BOOLEAN.
func (c *Cursor) Bool() bool {
	if v, ok := c.pkt.Value.(bool); ok {
		return v
	}
	b := c.rawBytes()
	return len(b) > 0 && b[0] != 0
}

// Children returns a SeqCursor over the element's constructed children,
// in wire order, for walking a SEQUENCE OF / SET OF.
func (c *Cursor) Children() *SeqCursor {
	return &SeqCursor{children: c.pkt.Children, pool: c.pool}
}

// Len reports the number of constructed children (0 for a primitive
// element).
func (c *Cursor) Len() int { return len(c.pkt.Children) }

// Packet exposes the underlying asn1-ber packet for callers that need
// library-level access (e.g. to hand off to go-ldap helpers).
func (c *Cursor) Packet() *ber.Packet { return c.pkt }

// SeqCursor walks the children of a constructed Cursor one at a time,
// matching the design's "Skip-style sequential iteration" requirement for
// SEQUENCE OF / SET OF content.
type SeqCursor struct {
	children []*ber.Packet
	pos      int
	pool     *Pool
}

// Next returns the next child as a Cursor, or ok=false when exhausted.
func (s *SeqCursor) Next() (cur *Cursor, ok bool) {
	if s.pos >= len(s.children) {
		return nil, false
	}
	p := s.children[s.pos]
	s.pos++
	return &Cursor{pkt: p, pool: s.pool}, true
}

// Skip advances n children without materializing them.
func (s *SeqCursor) Skip(n int) {
	s.pos += n
	if s.pos > len(s.children) {
		s.pos = len(s.children)
	}
}

// Remaining reports how many children have not yet been consumed.
func (s *SeqCursor) Remaining() int { return len(s.children) - s.pos }

func parseBERInt(b []byte) int64 {
	if len(b) == 0 {
		return 0
	}
	var v int64
	if b[0]&0x80 != 0 {
		v = -1
	}
	for _, x := range b {
		v = (v << 8) | int64(x)
	}
	return v
}
