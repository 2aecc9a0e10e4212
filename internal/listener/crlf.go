package listener

import (
	"io"
)

// crlfConn normalises line endings for the line-based console. Input may end
// lines with \r\n (telnet), \r (ssh clients) or \n, and always reads as \n.
// Output \n becomes \r\n.
type crlfConn struct {
	rw io.ReadWriter

	// lastCR is set when the previous read ended on \r, so a \n opening
	// the next read belongs to the same line ending.
	lastCR bool
	// wroteCR mirrors lastCR for output already holding \r\n.
	wroteCR bool
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &crlfConn{rw: rw}
}

func (c *crlfConn) Read(p []byte) (int, error) {
	for {
		n, err := c.rw.Read(p)
		out := 0
		for _, b := range p[:n] {
			switch {
			case b == '\r':
				p[out] = '\n'
				out++
				c.lastCR = true
			case b == '\n' && c.lastCR:
				c.lastCR = false
			default:
				p[out] = b
				out++
				c.lastCR = false
			}
		}
		// A read of just the tail of a \r\n has nothing to hand back.
		if out > 0 || n == 0 || err != nil {
			return out, err
		}
	}
}

func (c *crlfConn) Write(p []byte) (int, error) {
	converted := make([]byte, 0, len(p)+8)
	for _, b := range p {
		if b == '\n' && !c.wroteCR {
			converted = append(converted, '\r')
		}
		converted = append(converted, b)
		c.wroteCR = b == '\r'
	}

	if _, err := c.rw.Write(converted); err != nil {
		return 0, err
	}
	return len(p), nil
}
