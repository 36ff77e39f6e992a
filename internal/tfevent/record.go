package tfevent

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// Record decoding errors.
var (
	// ErrTruncated is returned when the stream ends inside a record. Writers
	// that are still flushing leave logs in this state.
	ErrTruncated = errors.New("tfevent: truncated record")

	// ErrCorrupt is returned when a length or data checksum does not match.
	ErrCorrupt = errors.New("tfevent: checksum mismatch")

	// ErrMalformed is returned when a record is not a valid Event message.
	ErrMalformed = errors.New("tfevent: malformed event")
)

const (
	headerSize = 12
	footerSize = 4

	// maxRecordSize bounds allocations driven by a (checksummed) length header.
	maxRecordSize = 1 << 30

	crcMaskDelta = 0xa282ead8
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// MaskedCRC returns the masked CRC32C used by TFRecord framing.
func MaskedCRC(b []byte) uint32 {
	c := crc32.Checksum(b, castagnoli)
	return ((c >> 15) | (c << 17)) + crcMaskDelta
}

// recordReader splits a stream into TFRecord payloads.
type recordReader struct {
	r      io.Reader
	header [headerSize]byte
}

// next returns the next payload, io.EOF at a clean end of stream.
func (rr *recordReader) next() ([]byte, error) {
	if _, err := io.ReadFull(rr.r, rr.header[:]); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return nil, io.EOF
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, ErrTruncated
		default:
			return nil, fmt.Errorf("tfevent: reading record header: %w", err)
		}
	}

	lengthBytes := rr.header[:8]
	if MaskedCRC(lengthBytes) != binary.LittleEndian.Uint32(rr.header[8:]) {
		return nil, fmt.Errorf("%w: record length", ErrCorrupt)
	}
	length := binary.LittleEndian.Uint64(lengthBytes)
	if length > maxRecordSize {
		return nil, fmt.Errorf("%w: record length %d exceeds limit", ErrCorrupt, length)
	}

	buf := make([]byte, int(length)+footerSize)
	if _, err := io.ReadFull(rr.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("tfevent: reading record data: %w", err)
	}

	data := buf[:length]
	if MaskedCRC(data) != binary.LittleEndian.Uint32(buf[length:]) {
		return nil, fmt.Errorf("%w: record data", ErrCorrupt)
	}
	return data, nil
}

// Reader decodes events from an event log stream.
type Reader struct {
	records recordReader
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	return &Reader{records: recordReader{r: r}}
}

// Next returns the next event. It returns io.EOF when the stream ends on a
// record boundary, ErrTruncated when it ends mid-record, ErrCorrupt on a
// checksum mismatch and an ErrMalformed wrap when the payload is not an Event.
func (r *Reader) Next() (*Event, error) {
	data, err := r.records.next()
	if err != nil {
		return nil, err
	}
	return UnmarshalEvent(data)
}

// Writer encodes events as TFRecord frames.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteRecord frames one raw payload.
func (w *Writer) WriteRecord(data []byte) error {
	var header [headerSize]byte
	binary.LittleEndian.PutUint64(header[:8], uint64(len(data)))
	binary.LittleEndian.PutUint32(header[8:], MaskedCRC(header[:8]))

	var footer [footerSize]byte
	binary.LittleEndian.PutUint32(footer[:], MaskedCRC(data))

	for _, part := range [][]byte{header[:], data, footer[:]} {
		if _, err := w.w.Write(part); err != nil {
			return fmt.Errorf("tfevent: writing record: %w", err)
		}
	}
	return nil
}

// WriteEvent serializes e and frames it.
func (w *Writer) WriteEvent(e *Event) error {
	return w.WriteRecord(MarshalEvent(e))
}
