// 指示: miu200521358
package scene

import "fmt"

// glTF componentType の数値コード。
const (
	ComponentCodeByte          = 5120
	ComponentCodeUnsignedByte  = 5121
	ComponentCodeShort         = 5122
	ComponentCodeUnsignedShort = 5123
	ComponentCodeUnsignedInt   = 5125
	ComponentCodeFloat         = 5126
)

// ComponentType は読み取り対応する成分型の閉じた列挙を表す。
type ComponentType int

const (
	// ComponentUint8 は符号なし8bit整数を表す。
	ComponentUint8 ComponentType = iota + 1
	// ComponentUint32 は符号なし32bit整数を表す。
	ComponentUint32
	// ComponentFloat32 は32bit浮動小数を表す。
	ComponentFloat32
)

// ComponentTypeFromCode はglTFのcomponentTypeコードを対応列挙へ変換する。
func ComponentTypeFromCode(code int) (ComponentType, bool) {
	switch code {
	case ComponentCodeUnsignedByte:
		return ComponentUint8, true
	case ComponentCodeUnsignedInt:
		return ComponentUint32, true
	case ComponentCodeFloat:
		return ComponentFloat32, true
	}
	return 0, false
}

// Size は1成分のバイト幅を返す。
func (c ComponentType) Size() int {
	switch c {
	case ComponentUint8:
		return 1
	case ComponentUint32, ComponentFloat32:
		return 4
	}
	panic(fmt.Sprintf("scene: 不正なComponentType %d", int(c)))
}

// Code はglTFのcomponentTypeコードを返す。
func (c ComponentType) Code() int {
	switch c {
	case ComponentUint8:
		return ComponentCodeUnsignedByte
	case ComponentUint32:
		return ComponentCodeUnsignedInt
	case ComponentFloat32:
		return ComponentCodeFloat
	}
	panic(fmt.Sprintf("scene: 不正なComponentType %d", int(c)))
}

// String は列挙名を返す。
func (c ComponentType) String() string {
	switch c {
	case ComponentUint8:
		return "u8"
	case ComponentUint32:
		return "u32"
	case ComponentFloat32:
		return "f32"
	}
	return fmt.Sprintf("ComponentType(%d)", int(c))
}

// ElementShape は要素の形状を表す。値は成分数と一致する。
type ElementShape int

const (
	// ShapeScalar はスカラーを表す。
	ShapeScalar ElementShape = 1
	// ShapeVec2 は2次元ベクトルを表す。
	ShapeVec2 ElementShape = 2
	// ShapeVec3 は3次元ベクトルを表す。
	ShapeVec3 ElementShape = 3
	// ShapeVec4 は4次元ベクトルを表す。
	ShapeVec4 ElementShape = 4
)

// ElementShapeFromName はaccessor.typeから形状を返す。
func ElementShapeFromName(name string) (ElementShape, bool) {
	switch name {
	case "SCALAR":
		return ShapeScalar, true
	case "VEC2":
		return ShapeVec2, true
	case "VEC3":
		return ShapeVec3, true
	case "VEC4":
		return ShapeVec4, true
	}
	return 0, false
}

// Components は1要素あたりの成分数を返す。
func (s ElementShape) Components() int {
	return int(s)
}

// String はaccessor.type表記を返す。
func (s ElementShape) String() string {
	switch s {
	case ShapeScalar:
		return "SCALAR"
	case ShapeVec2:
		return "VEC2"
	case ShapeVec3:
		return "VEC3"
	case ShapeVec4:
		return "VEC4"
	}
	return fmt.Sprintf("ElementShape(%d)", int(s))
}

// TypedArray は成分型ごとの平坦な値配列を表す。
// 実装はUint8Array、Uint32Array、Float32Arrayに限られる。
type TypedArray interface {
	Len() int
	ComponentType() ComponentType
	typedArray()
}

// Uint8Array はu8成分配列を表す。
type Uint8Array []uint8

// Uint32Array はu32成分配列を表す。
type Uint32Array []uint32

// Float32Array はf32成分配列を表す。
type Float32Array []float32

func (a Uint8Array) Len() int                     { return len(a) }
func (a Uint8Array) ComponentType() ComponentType { return ComponentUint8 }
func (Uint8Array) typedArray()                    {}

func (a Uint32Array) Len() int                     { return len(a) }
func (a Uint32Array) ComponentType() ComponentType { return ComponentUint32 }
func (Uint32Array) typedArray()                    {}

func (a Float32Array) Len() int                     { return len(a) }
func (a Float32Array) ComponentType() ComponentType { return ComponentFloat32 }
func (Float32Array) typedArray()                    {}
