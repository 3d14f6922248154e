package tensor

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Container layout, all integers little-endian:
//
//	magic "SPLC" (4) | version (1) | dtype (1) | ndim uint16 (2) |
//	dims int64 x ndim | payload (row-major element bytes)
const (
	codecVersion   = 1
	fixedHeaderLen = 8
	maxDims        = 64
)

var magic = [4]byte{'S', 'P', 'L', 'C'}

// Header describes a stored array without its payload.
type Header struct {
	DType DType
	Shape []int
}

// Len returns the encoded header length in bytes.
func (h Header) Len() int {
	return fixedHeaderLen + 8*len(h.Shape)
}

// PayloadLen returns the payload length in bytes implied by the header.
func (h Header) PayloadLen() int {
	return elemCount(h.Shape) * h.DType.Size()
}

// Encode serialises an array into the container form.
func Encode(a Array) ([]byte, error) {
	if a.IsZero() {
		return nil, fmt.Errorf("tensor: encode of empty array")
	}
	ndim := len(a.shape)
	buf := make([]byte, fixedHeaderLen+8*ndim+len(a.data))
	copy(buf[:4], magic[:])
	buf[4] = codecVersion
	buf[5] = byte(a.dtype)
	binary.LittleEndian.PutUint16(buf[6:8], uint16(ndim))
	for i, dim := range a.shape {
		binary.LittleEndian.PutUint64(buf[fixedHeaderLen+8*i:], uint64(dim))
	}
	copy(buf[fixedHeaderLen+8*ndim:], a.data)
	return buf, nil
}

// Decode parses a container back into an array.
func Decode(data []byte) (Array, error) {
	header, n, err := decodeHeader(data)
	if err != nil {
		return Array{}, err
	}
	want := header.PayloadLen()
	if len(data)-n != want {
		return Array{}, fmt.Errorf("tensor: payload length %d does not match header (%d bytes expected)", len(data)-n, want)
	}
	return New(header.DType, header.Shape, data[n:])
}

// ReadHeader reads and validates a container header from r, returning the
// header and its encoded length. The reader is left positioned at the start
// of the payload.
func ReadHeader(r io.Reader) (Header, int, error) {
	fixed := make([]byte, fixedHeaderLen)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return Header{}, 0, fmt.Errorf("tensor: read header: %w", err)
	}
	ndim, err := validateFixedHeader(fixed)
	if err != nil {
		return Header{}, 0, err
	}
	dims := make([]byte, 8*ndim)
	if _, err := io.ReadFull(r, dims); err != nil {
		return Header{}, 0, fmt.Errorf("tensor: read dims: %w", err)
	}
	shape := make([]int, ndim)
	for i := range shape {
		shape[i] = int(int64(binary.LittleEndian.Uint64(dims[8*i:])))
	}
	header := Header{DType: DType(fixed[5]), Shape: shape}
	if err := validShape(shape); err != nil {
		return Header{}, 0, err
	}
	return header, header.Len(), nil
}

func decodeHeader(data []byte) (Header, int, error) {
	if len(data) < fixedHeaderLen {
		return Header{}, 0, fmt.Errorf("tensor: container too short (%d bytes)", len(data))
	}
	ndim, err := validateFixedHeader(data[:fixedHeaderLen])
	if err != nil {
		return Header{}, 0, err
	}
	total := fixedHeaderLen + 8*ndim
	if len(data) < total {
		return Header{}, 0, fmt.Errorf("tensor: container truncated inside dims (%d bytes)", len(data))
	}
	shape := make([]int, ndim)
	for i := range shape {
		shape[i] = int(int64(binary.LittleEndian.Uint64(data[fixedHeaderLen+8*i:])))
	}
	if err := validShape(shape); err != nil {
		return Header{}, 0, err
	}
	return Header{DType: DType(data[5]), Shape: shape}, total, nil
}

func validateFixedHeader(fixed []byte) (int, error) {
	if fixed[0] != magic[0] || fixed[1] != magic[1] || fixed[2] != magic[2] || fixed[3] != magic[3] {
		return 0, fmt.Errorf("tensor: bad container magic %q", fixed[:4])
	}
	if fixed[4] != codecVersion {
		return 0, fmt.Errorf("tensor: unsupported container version %d", fixed[4])
	}
	if !DType(fixed[5]).Valid() {
		return 0, fmt.Errorf("tensor: container has invalid dtype %d", fixed[5])
	}
	ndim := int(binary.LittleEndian.Uint16(fixed[6:8]))
	if ndim > maxDims {
		return 0, fmt.Errorf("tensor: container claims %d dims (max %d)", ndim, maxDims)
	}
	return ndim, nil
}
