// 指示: miu200521358
package io_glb

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/merr"
)

func float32Bytes(values ...float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func TestReadTypedReturnsCountTimesComponents(t *testing.T) {
	blob := float32Bytes(1, 2, 3, 4, 5, 6, 7, 8, 9)
	view := scene.BufferView{ByteOffset: 0, ByteLength: len(blob)}

	values, err := ReadTyped(blob, view, 0, scene.ComponentFloat32, scene.ShapeVec3, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	floats, ok := values.(scene.Float32Array)
	if !ok {
		t.Fatalf("expected Float32Array: %T", values)
	}
	if len(floats) != 9 || floats[0] != 1 || floats[8] != 9 {
		t.Fatalf("values mismatch: %v", floats)
	}
}

func TestReadTypedExactFitSucceeds(t *testing.T) {
	blob := make([]byte, 16)
	view := scene.BufferView{ByteOffset: 4, ByteLength: 12}
	// accessor_offset + total_bytes == view length
	values, err := ReadTyped(blob, view, 4, scene.ComponentUint32, scene.ShapeVec2, 1)
	if err != nil {
		t.Fatalf("exact fit should succeed: %v", err)
	}
	if values.Len() != 2 {
		t.Fatalf("length mismatch: got=%d want=2", values.Len())
	}
}

func TestReadTypedOneByteOverIsOutOfBounds(t *testing.T) {
	blob := make([]byte, 16)
	view := scene.BufferView{ByteOffset: 4, ByteLength: 12}
	_, err := ReadTyped(blob, view, 5, scene.ComponentUint32, scene.ShapeVec2, 1)
	if !merr.IsKind(err, merr.KindOutOfBounds) {
		t.Fatalf("expected OutOfBounds: %v", err)
	}
}

func TestReadTypedViewBeyondBlobIsOutOfBounds(t *testing.T) {
	blob := make([]byte, 8)
	view := scene.BufferView{ByteOffset: 4, ByteLength: 8}
	_, err := ReadTyped(blob, view, 0, scene.ComponentUint8, scene.ShapeScalar, 1)
	if !merr.IsKind(err, merr.KindOutOfBounds) {
		t.Fatalf("expected OutOfBounds: %v", err)
	}
}

func TestReadTypedUint8AndUint32LittleEndian(t *testing.T) {
	blob := []byte{1, 2, 3, 0, 0x04, 0x03, 0x02, 0x01}
	u8, err := ReadTyped(blob, scene.BufferView{ByteLength: 3}, 0, scene.ComponentUint8, scene.ShapeScalar, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := u8.(scene.Uint8Array); got[0] != 1 || got[2] != 3 {
		t.Fatalf("u8 mismatch: %v", got)
	}
	u32, err := ReadTyped(blob, scene.BufferView{ByteOffset: 4, ByteLength: 4}, 0, scene.ComponentUint32, scene.ShapeScalar, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := u32.(scene.Uint32Array); got[0] != 0x01020304 {
		t.Fatalf("u32 mismatch: %#x", got[0])
	}
}

func TestReadTypedHonoursStride(t *testing.T) {
	// 2要素 VEC2 f32、各要素の後ろに4byteの詰め物
	blob := float32Bytes(1, 2, 99, 3, 4, 99)
	view := scene.BufferView{ByteLength: len(blob), ByteStride: 12}
	values, err := ReadTyped(blob, view, 0, scene.ComponentFloat32, scene.ShapeVec2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := values.(scene.Float32Array)
	want := []float32{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("strided values mismatch: got=%v want=%v", got, want)
		}
	}
}

func TestReadTypedZeroCount(t *testing.T) {
	values, err := ReadTyped(nil, scene.BufferView{}, 0, scene.ComponentFloat32, scene.ShapeVec3, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values.Len() != 0 {
		t.Fatalf("expected empty array")
	}
}

func TestReadAccessorRejectsMismatchedComponentType(t *testing.T) {
	view := 0
	s := &scene.Scene{
		Blob:        make([]byte, 12),
		BufferViews: []scene.BufferView{{ByteLength: 12}},
		Accessors: []scene.Accessor{{
			BufferView:    &view,
			ComponentCode: scene.ComponentCodeUnsignedInt,
			Count:         1,
			Shape:         scene.ShapeVec3,
			TypeName:      "VEC3",
		}},
	}
	_, err := ReadAccessor(s, 0, scene.ComponentFloat32, scene.ShapeVec3)
	if !merr.IsKind(err, merr.KindUnsupportedAttributeLayout) {
		t.Fatalf("expected UnsupportedAttributeLayout: %v", err)
	}
}

func TestReadAccessorReportsAccessorIndexOnOutOfBounds(t *testing.T) {
	view := 0
	s := &scene.Scene{
		Blob:        make([]byte, 8),
		BufferViews: []scene.BufferView{{ByteLength: 8}},
		Accessors: []scene.Accessor{
			{BufferView: &view, ComponentCode: scene.ComponentCodeFloat, Count: 1, Shape: scene.ShapeScalar, TypeName: "SCALAR"},
			{BufferView: &view, ComponentCode: scene.ComponentCodeFloat, Count: 1, Shape: scene.ShapeVec3, TypeName: "VEC3"},
		},
	}
	_, err := ReadAccessor(s, 1, scene.ComponentFloat32, scene.ShapeVec3)
	decodeErr, ok := merr.AsDecodeError(err)
	if !ok || decodeErr.Kind != merr.KindOutOfBounds || decodeErr.Index != 1 {
		t.Fatalf("expected OutOfBounds with accessor index 1: %v", err)
	}
}

func TestReadAccessorWithoutBufferViewIsUnsupported(t *testing.T) {
	s := &scene.Scene{
		Accessors: []scene.Accessor{{ComponentCode: scene.ComponentCodeFloat, Count: 1, Shape: scene.ShapeVec3, TypeName: "VEC3"}},
	}
	_, err := ReadAccessor(s, 0, scene.ComponentFloat32, scene.ShapeVec3)
	if !merr.IsKind(err, merr.KindUnsupportedAttributeLayout) {
		t.Fatalf("expected UnsupportedAttributeLayout: %v", err)
	}
}

func TestReadTypedHugeCountIsOutOfBounds(t *testing.T) {
	blob := make([]byte, 64)
	view := scene.BufferView{ByteLength: 64}
	for _, count := range []int{1 << 62, math.MaxInt} {
		_, err := ReadTyped(blob, view, 0, scene.ComponentFloat32, scene.ShapeVec3, count)
		if !merr.IsKind(err, merr.KindOutOfBounds) {
			t.Fatalf("count=%d expected OutOfBounds: %v", count, err)
		}
	}
}

func TestReadTypedHugeOffsetsAreOutOfBounds(t *testing.T) {
	blob := make([]byte, 64)
	if _, err := ReadTyped(blob, scene.BufferView{ByteOffset: math.MaxInt, ByteLength: 4}, 0, scene.ComponentUint8, scene.ShapeScalar, 1); !merr.IsKind(err, merr.KindOutOfBounds) {
		t.Fatalf("huge view offset expected OutOfBounds: %v", err)
	}
	if _, err := ReadTyped(blob, scene.BufferView{ByteLength: 64}, math.MaxInt, scene.ComponentUint8, scene.ShapeScalar, 1); !merr.IsKind(err, merr.KindOutOfBounds) {
		t.Fatalf("huge accessor offset expected OutOfBounds: %v", err)
	}
	if _, err := ReadTyped(blob, scene.BufferView{ByteLength: 64, ByteStride: math.MaxInt}, 0, scene.ComponentUint8, scene.ShapeScalar, 2); !merr.IsKind(err, merr.KindOutOfBounds) {
		t.Fatalf("huge stride expected OutOfBounds: %v", err)
	}
}

func TestImageBytesHugeViewOffsetIsOutOfBounds(t *testing.T) {
	view := 0
	s := &scene.Scene{
		Blob:        make([]byte, 16),
		BufferViews: []scene.BufferView{{ByteOffset: math.MaxInt, ByteLength: 4}},
	}
	_, err := ImageBytes(s, scene.ImageDef{BufferView: &view})
	if !merr.IsKind(err, merr.KindOutOfBounds) {
		t.Fatalf("expected OutOfBounds: %v", err)
	}
}
