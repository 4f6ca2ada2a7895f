package tape

import (
	"bufio"
	"io"

	"main/internal/model"
)

// Reader decodes tape records sequentially.
type Reader struct {
	r   *bufio.Reader
	buf [RecordSize]byte
}

// NewReader wraps an io.Reader with tape decoding.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next returns the next trade on the tape. It returns io.EOF at a clean
// end of input and io.ErrUnexpectedEOF on a truncated record.
func (r *Reader) Next() (model.Trade, error) {
	n, err := io.ReadFull(r.r, r.buf[:])
	if err != nil {
		if err == io.EOF && n == 0 {
			return model.Trade{}, io.EOF
		}
		if err == io.EOF {
			return model.Trade{}, io.ErrUnexpectedEOF
		}
		return model.Trade{}, err
	}

	record, err := DecodeRecord(r.buf[:])
	if err != nil {
		return model.Trade{}, err
	}
	return record.Trade(), nil
}
