// wire.go - 32-bit little-endian word framing shared by driver and renderer
//
// Grounded in the teacher's own length-prefixed framing style in runtime_ipc.go
// (JSON length-implicit over a Unix socket) generalized to the fixed-width binary
// framing spec.md §4.9/§6 requires: first word is a command/signal tag, remaining
// words are the payload; variable-length payloads carry their word count as the
// second word.

package proto

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"
)

// Frame is one decoded message: a tag plus its payload words.
type Frame struct {
	Tag     int32
	Payload []int32
}

// Conn wraps a net.Conn with buffered word-oriented framing.
type Conn struct {
	nc net.Conn
	r  *bufio.Reader
	w  *bufio.Writer
}

// NewConn wraps an established connection.
func NewConn(nc net.Conn) *Conn {
	return &Conn{nc: nc, r: bufio.NewReaderSize(nc, 64*1024), w: bufio.NewWriterSize(nc, 64*1024)}
}

// SetDeadline forwards to the underlying connection, used by callers that poll
// the link at bounded resolution (spec.md §5: "no less than 1ms resolution").
func (c *Conn) SetDeadline(t time.Time) error { return c.nc.SetDeadline(t) }

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.nc.Close() }

func (c *Conn) readWord() (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(c.r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

func (c *Conn) writeWord(v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	_, err := c.w.Write(buf[:])
	return err
}

// ReadFixed reads a tag followed by exactly n fixed payload words (no explicit
// length prefix), for commands/signals whose arity is implied by the tag.
func (c *Conn) ReadFixed(n int) (Frame, error) {
	tag, err := c.readWord()
	if err != nil {
		return Frame{}, err
	}
	payload := make([]int32, n)
	for i := range payload {
		v, err := c.readWord()
		if err != nil {
			return Frame{}, err
		}
		payload[i] = v
	}
	return Frame{Tag: tag, Payload: payload}, nil
}

// ReadVariable reads a tag, then a word count, then that many payload words —
// the framing spec.md §6 describes for variable-length payloads such as file
// chunks and target-definition arrays.
func (c *Conn) ReadVariable() (Frame, error) {
	tag, err := c.readWord()
	if err != nil {
		return Frame{}, err
	}
	n, err := c.readWord()
	if err != nil {
		return Frame{}, err
	}
	if n < 0 || n > maxPayloadWords {
		return Frame{}, fmt.Errorf("proto: payload length %d out of bounds", n)
	}
	payload := make([]int32, n)
	for i := range payload {
		v, err := c.readWord()
		if err != nil {
			return Frame{}, err
		}
		payload[i] = v
	}
	return Frame{Tag: tag, Payload: payload}, nil
}

// maxPayloadWords bounds a single variable-length frame to guard against a
// corrupt or hostile peer driving unbounded allocation.
const maxPayloadWords = 1 << 20

// WriteFixed writes a tag and fixed payload with no length prefix.
func (c *Conn) WriteFixed(tag int32, payload ...int32) error {
	if err := c.writeWord(tag); err != nil {
		return err
	}
	for _, v := range payload {
		if err := c.writeWord(v); err != nil {
			return err
		}
	}
	return c.w.Flush()
}

// WriteVariable writes a tag, a word-count prefix, then the payload.
func (c *Conn) WriteVariable(tag int32, payload []int32) error {
	if err := c.writeWord(tag); err != nil {
		return err
	}
	if err := c.writeWord(int32(len(payload))); err != nil {
		return err
	}
	for _, v := range payload {
		if err := c.writeWord(v); err != nil {
			return err
		}
	}
	return c.w.Flush()
}
