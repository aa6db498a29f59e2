// 指示: miu200521358
package io_glb

import (
	"encoding/binary"
	"math"

	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/merr"
)

// readPlan は検証済みの読み取り範囲を表す。
type readPlan struct {
	componentType scene.ComponentType
	componentNum  int
	count         int
	stride        int
	baseOffset    int
}

// ReadTyped はbufferView上の要素列を型付き配列として読み取る。
// 範囲がbufferViewやBINを超える場合はOutOfBoundsを返す。
func ReadTyped(
	blob []byte,
	view scene.BufferView,
	accessorOffset int,
	componentType scene.ComponentType,
	shape scene.ElementShape,
	count int,
) (scene.TypedArray, error) {
	plan, err := prepareRead(merr.NoIndex, blob, view, accessorOffset, componentType, shape, count)
	if err != nil {
		return nil, err
	}
	return readPlanned(blob, plan), nil
}

// ReadAccessor はaccessor indexを指定して読み取る。
// 宣言componentTypeや形状がwantと異なる場合はUnsupportedAttributeLayoutを返し、拡幅しない。
func ReadAccessor(
	s *scene.Scene,
	accessorIndex int,
	want scene.ComponentType,
	shape scene.ElementShape,
) (scene.TypedArray, error) {
	accessor, err := LookupAccessor(s, accessorIndex)
	if err != nil {
		return nil, err
	}
	declared, ok := accessor.ComponentType()
	if !ok || declared != want {
		return nil, merr.NewUnsupportedAttributeLayout(
			accessorIndex,
			"accessor.componentType が要求と一致しません: declared=%d want=%s",
			accessor.ComponentCode,
			want,
		)
	}
	if accessor.Shape != shape {
		return nil, merr.NewUnsupportedAttributeLayout(
			accessorIndex,
			"accessor.type が要求と一致しません: declared=%s want=%s",
			accessor.TypeName,
			shape,
		)
	}
	return ReadAccessorAs(s, accessorIndex, declared)
}

// ReadAccessorAs は宣言形状のままaccessorを指定componentTypeで読み取る。
func ReadAccessorAs(s *scene.Scene, accessorIndex int, componentType scene.ComponentType) (scene.TypedArray, error) {
	accessor, err := LookupAccessor(s, accessorIndex)
	if err != nil {
		return nil, err
	}
	if accessor.BufferView == nil {
		return nil, merr.NewUnsupportedAttributeLayout(accessorIndex, "sparse accessor は未対応です")
	}
	if accessor.Shape == 0 {
		return nil, merr.NewUnsupportedAttributeLayout(accessorIndex, "accessor.type が未対応です: %s", accessor.TypeName)
	}
	view := s.BufferViews[*accessor.BufferView]
	plan, err := prepareRead(accessorIndex, s.Blob, view, accessor.ByteOffset, componentType, accessor.Shape, accessor.Count)
	if err != nil {
		return nil, err
	}
	return readPlanned(s.Blob, plan), nil
}

// LookupAccessor はaccessor indexを検証して返す。
func LookupAccessor(s *scene.Scene, accessorIndex int) (scene.Accessor, error) {
	if s == nil {
		return scene.Accessor{}, merr.NewMalformedContainer("シーンが未設定です", nil)
	}
	if accessorIndex < 0 || accessorIndex >= len(s.Accessors) {
		return scene.Accessor{}, merr.NewMalformedContainer("accessor index が不正です: %d", nil, accessorIndex)
	}
	return s.Accessors[accessorIndex], nil
}

// prepareRead は読み取り範囲を検証する。
func prepareRead(
	accessorIndex int,
	blob []byte,
	view scene.BufferView,
	accessorOffset int,
	componentType scene.ComponentType,
	shape scene.ElementShape,
	count int,
) (readPlan, error) {
	if !viewWithinBlob(view, len(blob)) {
		return readPlan{}, merr.NewOutOfBounds(
			accessorIndex,
			"bufferView 範囲がBINチャンク外です: offset=%d length=%d bin=%d",
			view.ByteOffset,
			view.ByteLength,
			len(blob),
		)
	}
	if accessorOffset < 0 || count < 0 {
		return readPlan{}, merr.NewOutOfBounds(accessorIndex, "accessor の byteOffset/count が不正です")
	}
	componentNum := shape.Components()
	if componentNum <= 0 {
		return readPlan{}, merr.NewUnsupportedAttributeLayout(accessorIndex, "accessor.type が未対応です: %s", shape)
	}
	elementSize := componentType.Size() * componentNum
	stride := view.ByteStride
	if stride <= 0 {
		stride = elementSize
	}
	if stride < elementSize {
		return readPlan{}, merr.NewOutOfBounds(accessorIndex, "bufferView.byteStride が要素サイズより小さいです: stride=%d element=%d", stride, elementSize)
	}
	// end = accessorOffset + (count-1)*stride + elementSize を桁あふれさせずに比較する
	if count > 0 && (accessorOffset > view.ByteLength-elementSize ||
		count-1 > (view.ByteLength-elementSize-accessorOffset)/stride) {
		return readPlan{}, merr.NewOutOfBounds(
			accessorIndex,
			"accessor 範囲がbufferViewを超えています: offset=%d count=%d stride=%d length=%d",
			accessorOffset,
			count,
			stride,
			view.ByteLength,
		)
	}
	return readPlan{
		componentType: componentType,
		componentNum:  componentNum,
		count:         count,
		stride:        stride,
		baseOffset:    view.ByteOffset + accessorOffset,
	}, nil
}

// viewWithinBlob はbufferViewがBINチャンクに収まるかを返す。
func viewWithinBlob(view scene.BufferView, blobLength int) bool {
	return view.ByteOffset >= 0 && view.ByteLength >= 0 && view.ByteOffset <= blobLength-view.ByteLength
}

// readPlanned は検証済み範囲をリトルエンディアンで読み取る。
func readPlanned(blob []byte, plan readPlan) scene.TypedArray {
	total := plan.count * plan.componentNum
	size := plan.componentType.Size()
	switch plan.componentType {
	case scene.ComponentUint8:
		out := make(scene.Uint8Array, 0, total)
		for i := 0; i < plan.count; i++ {
			base := plan.baseOffset + i*plan.stride
			out = append(out, blob[base:base+plan.componentNum]...)
		}
		return out
	case scene.ComponentUint32:
		out := make(scene.Uint32Array, 0, total)
		for i := 0; i < plan.count; i++ {
			base := plan.baseOffset + i*plan.stride
			for c := 0; c < plan.componentNum; c++ {
				offset := base + c*size
				out = append(out, binary.LittleEndian.Uint32(blob[offset:offset+4]))
			}
		}
		return out
	case scene.ComponentFloat32:
		out := make(scene.Float32Array, 0, total)
		for i := 0; i < plan.count; i++ {
			base := plan.baseOffset + i*plan.stride
			for c := 0; c < plan.componentNum; c++ {
				offset := base + c*size
				out = append(out, math.Float32frombits(binary.LittleEndian.Uint32(blob[offset:offset+4])))
			}
		}
		return out
	}
	panic("io_glb: 不正なComponentType")
}
