package scale

// Cursor walks a byte buffer front-to-back, tracking the offset consumed
// so far so that decode errors can report where in the original input
// they occurred. It never copies the underlying buffer.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for sequential decoding.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the unconsumed tail of the buffer, without copying.
func (c *Cursor) Remaining() []byte { return c.buf[c.pos:] }

// AtEnd reports whether the entire buffer has been consumed.
func (c *Cursor) AtEnd() bool { return c.pos == len(c.buf) }

func (c *Cursor) withOffset(context string, err error) error {
	if e, ok := err.(*Error); ok {
		e.Context = context
		e.Offset = c.pos
		return e
	}
	return err
}

// LE64 reads 8 little-endian bytes, advancing the cursor.
func (c *Cursor) LE64(context string) (uint64, error) {
	v, rest, err := LE64(c.Remaining())
	if err != nil {
		return 0, c.withOffset(context, err)
	}
	c.pos += len(c.Remaining()) - len(rest)
	return v, nil
}

// CompactLen reads a SCALE compact-length integer, advancing the cursor.
func (c *Cursor) CompactLen(context string) (int, error) {
	before := c.Remaining()
	v, rest, err := CompactLen(before)
	if err != nil {
		return 0, c.withOffset(context, err)
	}
	c.pos += len(before) - len(rest)
	return v, nil
}

// VarsizeU64 reads exactly nBytes little-endian bytes, advancing the
// cursor.
func (c *Cursor) VarsizeU64(nBytes int, context string) (uint64, error) {
	before := c.Remaining()
	v, rest, err := VarsizeU64(nBytes, before)
	if err != nil {
		return 0, c.withOffset(context, err)
	}
	c.pos += len(before) - len(rest)
	return v, nil
}

// TakeExact borrows the next n bytes, advancing the cursor.
func (c *Cursor) TakeExact(n int, context string) ([]byte, error) {
	before := c.Remaining()
	v, rest, err := TakeExact(n, before)
	if err != nil {
		return nil, c.withOffset(context, err)
	}
	c.pos += len(before) - len(rest)
	return v, nil
}

// TakeBytes reads a compact-length-prefixed byte string: a compact_len N
// followed by N raw bytes.
func (c *Cursor) TakeBytes(context string) ([]byte, error) {
	n, err := c.CompactLen(context)
	if err != nil {
		return nil, err
	}
	return c.TakeExact(n, context)
}
