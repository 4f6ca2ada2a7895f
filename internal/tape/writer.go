package tape

import (
	"bufio"
	"io"

	"main/internal/model"
)

// Writer appends packed trade records to an output stream.
type Writer struct {
	w   *bufio.Writer
	buf []byte
}

// NewWriter wraps an io.Writer with tape encoding.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:   bufio.NewWriter(w),
		buf: make([]byte, 0, RecordSize),
	}
}

// Append writes one record.
func (w *Writer) Append(r Record) error {
	w.buf = EncodeRecord(w.buf[:0], r)
	_, err := w.w.Write(w.buf)
	return err
}

// AppendTrade writes one trade after fixed-point scaling.
func (w *Writer) AppendTrade(t model.Trade) error {
	return w.Append(FromTrade(t))
}

// Flush drains buffered records to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
