package serial

import (
	"bufio"
	"bytes"
	"io"
)

var frameEnd = []byte(MarkClose + "\n")

// Decoder pulls framed chunks out of a console byte stream. Text printed to
// the console between frames is skipped.
//
// A payload that itself contains "[BUF/CLOSE]\n" cannot be told apart from
// the end of its frame; the firmware framing has no escaping.
type Decoder struct {
	r   *bufio.Reader
	buf []byte
}

// NewDecoder reads frames from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the payload of the next complete frame. It returns io.EOF
// when the stream ends between frames and io.ErrUnexpectedEOF when it ends
// inside one. The returned slice is valid until the next call.
func (d *Decoder) Next() ([]byte, error) {
	if err := d.seekBegin(); err != nil {
		return nil, err
	}
	d.buf = d.buf[:0]
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		d.buf = append(d.buf, b)
		if b == '\n' && bytes.HasSuffix(d.buf, frameEnd) {
			return d.buf[:len(d.buf)-len(frameEnd)], nil
		}
	}
}

func (d *Decoder) seekBegin() error {
	matched := 0
	for matched < len(MarkBegin) {
		b, err := d.r.ReadByte()
		if err != nil {
			return err
		}
		switch {
		case b == MarkBegin[matched]:
			matched++
		case b == MarkBegin[0]:
			matched = 1
		default:
			matched = 0
		}
	}
	return nil
}

// Unframe copies every frame payload from r to w, in order, and returns the
// number of frames copied.
func Unframe(w io.Writer, r io.Reader) (int, error) {
	d := NewDecoder(r)
	frames := 0
	for {
		p, err := d.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		if _, err := w.Write(p); err != nil {
			return frames, err
		}
		frames++
	}
}
