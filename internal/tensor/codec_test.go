package tensor_test

import (
	"bytes"
	"testing"

	"splice/internal/tensor"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		build func() (tensor.Array, error)
	}{
		{"float32 matrix", func() (tensor.Array, error) {
			return tensor.FromFloat32([]int{3, 2}, sequence32(6))
		}},
		{"float64 vector", func() (tensor.Array, error) {
			return tensor.FromFloat64([]int{4}, []float64{0.5, 1.5, 2.5, 3.5})
		}},
		{"int32 cube", func() (tensor.Array, error) {
			return tensor.FromInt32([]int{2, 2, 2}, []int32{1, 2, 3, 4, 5, 6, 7, 8})
		}},
		{"empty", func() (tensor.Array, error) {
			return tensor.FromInt64([]int{0}, nil)
		}},
	}
	for _, tc := range cases {
		original, err := tc.build()
		if err != nil {
			t.Fatalf("%s: build failed: %v", tc.name, err)
		}
		encoded, err := tensor.Encode(original)
		if err != nil {
			t.Fatalf("%s: Encode failed: %v", tc.name, err)
		}
		decoded, err := tensor.Decode(encoded)
		if err != nil {
			t.Fatalf("%s: Decode failed: %v", tc.name, err)
		}
		if !decoded.Equal(original) {
			t.Fatalf("%s: round trip changed the array", tc.name)
		}
	}
}

func TestDecodeRejectsCorruptContainers(t *testing.T) {
	arr, _ := tensor.FromFloat32([]int{2}, sequence32(2))
	good, err := tensor.Encode(arr)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	badMagic := append([]byte(nil), good...)
	badMagic[0] = 'X'
	if _, err := tensor.Decode(badMagic); err == nil {
		t.Fatal("expected error for bad magic")
	}

	badVersion := append([]byte(nil), good...)
	badVersion[4] = 99
	if _, err := tensor.Decode(badVersion); err == nil {
		t.Fatal("expected error for unknown version")
	}

	truncated := good[:len(good)-2]
	if _, err := tensor.Decode(truncated); err == nil {
		t.Fatal("expected error for truncated payload")
	}

	if _, err := tensor.Decode(good[:3]); err == nil {
		t.Fatal("expected error for short header")
	}
}

func TestReadHeaderStopsAtPayload(t *testing.T) {
	arr, err := tensor.FromFloat64([]int{2, 5}, []float64{
		0, 1, 2, 3, 4,
		5, 6, 7, 8, 9,
	})
	if err != nil {
		t.Fatalf("FromFloat64 failed: %v", err)
	}
	encoded, err := tensor.Encode(arr)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	r := bytes.NewReader(encoded)
	header, n, err := tensor.ReadHeader(r)
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if header.DType != tensor.Float64 {
		t.Fatalf("unexpected dtype: %s", header.DType)
	}
	if len(header.Shape) != 2 || header.Shape[0] != 2 || header.Shape[1] != 5 {
		t.Fatalf("unexpected shape: %v", header.Shape)
	}
	if header.Len() != 10 {
		t.Fatalf("Len = %d, want 10", header.Len())
	}
	if header.PayloadLen() != 80 {
		t.Fatalf("PayloadLen = %d, want 80", header.PayloadLen())
	}
	if remaining := r.Len(); remaining != header.PayloadLen() {
		t.Fatalf("reader has %d bytes after header, want %d", remaining, header.PayloadLen())
	}
	if n != len(encoded)-header.PayloadLen() {
		t.Fatalf("header length %d inconsistent with container size", n)
	}
}
