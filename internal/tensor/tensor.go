package tensor

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// DType identifies the element type of an array.
type DType uint8

const (
	// Float32 stores 4-byte IEEE 754 elements.
	Float32 DType = iota + 1
	// Float64 stores 8-byte IEEE 754 elements.
	Float64
	// Int32 stores 4-byte signed integer elements.
	Int32
	// Int64 stores 8-byte signed integer elements.
	Int64
)

// Size returns the width of one element in bytes.
func (d DType) Size() int {
	switch d {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	default:
		return 0
	}
}

// Valid reports whether d is a known element type.
func (d DType) Valid() bool {
	return d.Size() > 0
}

func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	default:
		return fmt.Sprintf("dtype(%d)", uint8(d))
	}
}

// ParseDType converts a dtype name into a DType.
func ParseDType(value string) (DType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "float32":
		return Float32, nil
	case "float64":
		return Float64, nil
	case "int32":
		return Int32, nil
	case "int64":
		return Int64, nil
	default:
		return 0, fmt.Errorf("tensor: unknown dtype %q", value)
	}
}

// Array is an immutable N-dimensional array. The zero value is empty and
// reports IsZero() == true.
type Array struct {
	dtype DType
	shape []int
	data  []byte // row-major, little-endian
}

func validShape(shape []int) error {
	for i, dim := range shape {
		if dim < 0 {
			return fmt.Errorf("tensor: negative dimension %d at axis %d", dim, i)
		}
	}
	return nil
}

func elemCount(shape []int) int {
	count := 1
	for _, dim := range shape {
		count *= dim
	}
	return count
}

// New builds an array from raw little-endian bytes. The byte length must
// equal the element count implied by shape times the dtype width.
func New(dtype DType, shape []int, data []byte) (Array, error) {
	if !dtype.Valid() {
		return Array{}, fmt.Errorf("tensor: invalid dtype %d", dtype)
	}
	if err := validShape(shape); err != nil {
		return Array{}, err
	}
	want := elemCount(shape) * dtype.Size()
	if len(data) != want {
		return Array{}, fmt.Errorf("tensor: data length %d does not match shape %v (%d bytes expected)", len(data), shape, want)
	}
	return Array{
		dtype: dtype,
		shape: append([]int(nil), shape...),
		data:  append([]byte(nil), data...),
	}, nil
}

// FromFloat32 builds a Float32 array from values laid out in row-major order.
func FromFloat32(shape []int, values []float32) (Array, error) {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return New(Float32, shape, buf)
}

// FromFloat64 builds a Float64 array from values laid out in row-major order.
func FromFloat64(shape []int, values []float64) (Array, error) {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return New(Float64, shape, buf)
}

// FromInt32 builds an Int32 array from values laid out in row-major order.
func FromInt32(shape []int, values []int32) (Array, error) {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return New(Int32, shape, buf)
}

// FromInt64 builds an Int64 array from values laid out in row-major order.
func FromInt64(shape []int, values []int64) (Array, error) {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	return New(Int64, shape, buf)
}

// Full builds an array with every element set to value, converted to dtype.
func Full(dtype DType, shape []int, value float64) (Array, error) {
	if !dtype.Valid() {
		return Array{}, fmt.Errorf("tensor: invalid dtype %d", dtype)
	}
	if err := validShape(shape); err != nil {
		return Array{}, err
	}
	elem := make([]byte, dtype.Size())
	switch dtype {
	case Float32:
		binary.LittleEndian.PutUint32(elem, math.Float32bits(float32(value)))
	case Float64:
		binary.LittleEndian.PutUint64(elem, math.Float64bits(value))
	case Int32:
		binary.LittleEndian.PutUint32(elem, uint32(int32(value)))
	case Int64:
		binary.LittleEndian.PutUint64(elem, uint64(int64(value)))
	}
	count := elemCount(shape)
	buf := make([]byte, 0, count*dtype.Size())
	for i := 0; i < count; i++ {
		buf = append(buf, elem...)
	}
	out, err := New(dtype, shape, buf)
	if err != nil {
		return Array{}, err
	}
	return out, nil
}

// Zeros builds an array with every element set to zero.
func Zeros(dtype DType, shape []int) (Array, error) {
	return Full(dtype, shape, 0)
}

// IsZero reports whether a is the empty zero value.
func (a Array) IsZero() bool {
	return a.dtype == 0
}

// DType returns the element type.
func (a Array) DType() DType { return a.dtype }

// Shape returns a copy of the dimensions.
func (a Array) Shape() []int {
	return append([]int(nil), a.shape...)
}

// NumDims returns the number of axes.
func (a Array) NumDims() int { return len(a.shape) }

// Dim returns the length of one axis.
func (a Array) Dim(axis int) int {
	if axis < 0 || axis >= len(a.shape) {
		return 0
	}
	return a.shape[axis]
}

// Len returns the total element count.
func (a Array) Len() int {
	if a.IsZero() {
		return 0
	}
	return elemCount(a.shape)
}

// Bytes returns a copy of the raw row-major payload.
func (a Array) Bytes() []byte {
	return append([]byte(nil), a.data...)
}

// Equal reports whether two arrays have the same dtype, shape, and payload.
func (a Array) Equal(b Array) bool {
	if a.dtype != b.dtype || len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	return bytes.Equal(a.data, b.data)
}

// Float32s decodes the payload as a flat []float32.
func (a Array) Float32s() ([]float32, error) {
	if a.dtype != Float32 {
		return nil, fmt.Errorf("tensor: dtype is %s, not float32", a.dtype)
	}
	out := make([]float32, a.Len())
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(a.data[i*4:]))
	}
	return out, nil
}

// Float64s decodes the payload as a flat []float64.
func (a Array) Float64s() ([]float64, error) {
	if a.dtype != Float64 {
		return nil, fmt.Errorf("tensor: dtype is %s, not float64", a.dtype)
	}
	out := make([]float64, a.Len())
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(a.data[i*8:]))
	}
	return out, nil
}

// Int32s decodes the payload as a flat []int32.
func (a Array) Int32s() ([]int32, error) {
	if a.dtype != Int32 {
		return nil, fmt.Errorf("tensor: dtype is %s, not int32", a.dtype)
	}
	out := make([]int32, a.Len())
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(a.data[i*4:]))
	}
	return out, nil
}

// Int64s decodes the payload as a flat []int64.
func (a Array) Int64s() ([]int64, error) {
	if a.dtype != Int64 {
		return nil, fmt.Errorf("tensor: dtype is %s, not int64", a.dtype)
	}
	out := make([]int64, a.Len())
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(a.data[i*8:]))
	}
	return out, nil
}

// Slice narrows the array to [lo, hi) along axis, returning a new array.
// The bounds must already be clamped into [0, Dim(axis)].
func (a Array) Slice(axis, lo, hi int) (Array, error) {
	if a.IsZero() {
		return Array{}, fmt.Errorf("tensor: slice of empty array")
	}
	if axis < 0 || axis >= len(a.shape) {
		return Array{}, fmt.Errorf("tensor: axis %d out of range for %d dims", axis, len(a.shape))
	}
	if lo < 0 || hi < lo || hi > a.shape[axis] {
		return Array{}, fmt.Errorf("tensor: slice bounds [%d, %d) invalid for axis length %d", lo, hi, a.shape[axis])
	}

	outShape := a.Shape()
	outShape[axis] = hi - lo

	// inner = bytes per index step along axis; outer = independent blocks.
	inner := a.dtype.Size()
	for _, dim := range a.shape[axis+1:] {
		inner *= dim
	}
	outer := 1
	for _, dim := range a.shape[:axis] {
		outer *= dim
	}

	srcBlock := a.shape[axis] * inner
	dstBlock := (hi - lo) * inner
	out := make([]byte, outer*dstBlock)
	for o := 0; o < outer; o++ {
		src := o*srcBlock + lo*inner
		copy(out[o*dstBlock:(o+1)*dstBlock], a.data[src:src+dstBlock])
	}
	return Array{dtype: a.dtype, shape: outShape, data: out}, nil
}

// Concat joins arrays along axis. Every part must share the dtype and agree
// on all non-axis dimensions. Parts with zero length along axis are allowed.
func Concat(axis int, parts ...Array) (Array, error) {
	if len(parts) == 0 {
		return Array{}, fmt.Errorf("tensor: concat of zero arrays")
	}
	first := parts[0]
	if first.IsZero() {
		return Array{}, fmt.Errorf("tensor: concat of empty array")
	}
	if axis < 0 || axis >= len(first.shape) {
		return Array{}, fmt.Errorf("tensor: axis %d out of range for %d dims", axis, len(first.shape))
	}

	total := 0
	for i, p := range parts {
		if p.dtype != first.dtype {
			return Array{}, fmt.Errorf("tensor: concat dtype mismatch at part %d: %s vs %s", i, p.dtype, first.dtype)
		}
		if len(p.shape) != len(first.shape) {
			return Array{}, fmt.Errorf("tensor: concat rank mismatch at part %d: %d vs %d", i, len(p.shape), len(first.shape))
		}
		for ax := range p.shape {
			if ax != axis && p.shape[ax] != first.shape[ax] {
				return Array{}, fmt.Errorf("tensor: concat shape mismatch at part %d axis %d: %d vs %d", i, ax, p.shape[ax], first.shape[ax])
			}
		}
		total += p.shape[axis]
	}

	outShape := first.Shape()
	outShape[axis] = total

	inner := first.dtype.Size()
	for _, dim := range first.shape[axis+1:] {
		inner *= dim
	}
	outer := 1
	for _, dim := range first.shape[:axis] {
		outer *= dim
	}

	out := make([]byte, outer*total*inner)
	dstBlock := total * inner
	for o := 0; o < outer; o++ {
		written := 0
		for _, p := range parts {
			block := p.shape[axis] * inner
			src := o * block
			copy(out[o*dstBlock+written:], p.data[src:src+block])
			written += block
		}
	}
	return Array{dtype: first.dtype, shape: outShape, data: out}, nil
}
