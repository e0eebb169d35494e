package iolib

import (
	"io"

	"github.com/pkg/errors"
)

var ErrTooLarge = errors.New("content exceeds size limit")

// ExactReader creates new [ExactLengthReader].
func ExactReader(r io.Reader, n uint) io.Reader { return &ExactLengthReader{r, n} }

// ExactLengthReader yields exactly N bytes of R, like a uint port of [io.LimitedReader]
// that also reports a source ending early as [io.ErrUnexpectedEOF].
type ExactLengthReader struct {
	R io.Reader // underlying reader
	N uint      // bytes remaining
}

func (l *ExactLengthReader) Read(p []byte) (n int, err error) {
	if l.N == 0 {
		return 0, io.EOF
	}
	if uint(len(p)) > l.N {
		p = p[:l.N]
	}
	n, err = l.R.Read(p)
	l.N -= uint(n)
	if err == io.EOF && l.N > 0 {
		err = io.ErrUnexpectedEOF
	}
	return
}

// ReadAllMax reads r until EOF. It fails with [ErrTooLarge] once more than max bytes are seen.
// A max of zero means no limit.
func ReadAllMax(r io.Reader, max uint) ([]byte, error) {
	if max == 0 {
		return io.ReadAll(r)
	}

	b, err := io.ReadAll(io.LimitReader(r, int64(max)+1))
	if err != nil {
		return b, err
	}
	if uint(len(b)) > max {
		return b[:max], errors.Wrapf(ErrTooLarge, "limit is %d bytes", max)
	}

	return b, nil
}
