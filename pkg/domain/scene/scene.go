// 指示: miu200521358
// Package scene はGLBシーンのデコード前後のデータモデルを提供する。
package scene

import (
	"image"

	"github.com/go-gl/mathgl/mgl64"
)

// glTF primitive mode。
const (
	PrimitiveModePoints        = 0
	PrimitiveModeLines         = 1
	PrimitiveModeLineLoop      = 2
	PrimitiveModeLineStrip     = 3
	PrimitiveModeTriangles     = 4
	PrimitiveModeTriangleStrip = 5
	PrimitiveModeTriangleFan   = 6
)

// Scene はコンテナ解析後の不変なシーンを表す。
type Scene struct {
	Name        string
	SourceDir   string
	Nodes       []Node
	Meshes      []MeshDef
	Materials   []MaterialDef
	Accessors   []Accessor
	BufferViews []BufferView
	Textures    []TextureDef
	Images      []ImageDef
	Blob        []byte
	RootIndices []int
}

// Node はノード階層の1要素を表す。
// Matrixがある場合はTRSより優先する。
type Node struct {
	Name        string
	Matrix      *mgl64.Mat4
	Translation *mgl64.Vec3
	Rotation    *mgl64.Quat
	Scale       *mgl64.Vec3
	Mesh        *int
	Children    []int
}

// BufferView はBINチャンク内のバイト範囲を表す。
type BufferView struct {
	ByteOffset int
	ByteLength int
	ByteStride int
}

// Accessor はbufferView上の型付き要素列を表す。
type Accessor struct {
	BufferView    *int
	ByteOffset    int
	ComponentCode int
	Count         int
	Shape         ElementShape
	TypeName      string
}

// ComponentType はcomponentTypeコードを対応列挙へ変換する。
func (a Accessor) ComponentType() (ComponentType, bool) {
	return ComponentTypeFromCode(a.ComponentCode)
}

// MeshDef はメッシュのprimitive 0を表す。
type MeshDef struct {
	Name           string
	Position       *int
	Normal         *int
	TexCoord0      *int
	Color0         *int
	Indices        *int
	Material       *int
	Mode           int
	PrimitiveCount int
}

// MaterialDef はPBR metallic-roughness材質を表す。
// nilの要素は未指定を表す。
type MaterialDef struct {
	Name                     string
	BaseColorTexture         *int
	BaseColorFactor          *[4]float64
	MetallicRoughnessTexture *int
	MetallicFactor           *float64
	RoughnessFactor          *float64
}

// TextureDef はテクスチャ参照を表す。
type TextureDef struct {
	Source *int
}

// ImageDef は画像ソースを表す。
type ImageDef struct {
	Name       string
	URI        string
	BufferView *int
	MimeType   string
}

// DecodedObject は1メッシュインスタンスのデコード結果を表す。
type DecodedObject struct {
	Ordinal              int
	MeshIndex            int
	NodeIndex            int
	Vertices             []mgl64.Vec3
	Faces                [][3]uint32
	Normals              []mgl64.Vec3
	NormalsReconstructed bool
	UVs                  []mgl64.Vec2
	Colors               [][4]uint8
	ColorComponents      int
	MaterialIndex        *int
}

// HasUVs はUVを持つか判定する。
func (o *DecodedObject) HasUVs() bool {
	return o != nil && len(o.UVs) > 0
}

// HasColors は頂点色を持つか判定する。
func (o *DecodedObject) HasColors() bool {
	return o != nil && len(o.Colors) > 0
}

// DecodedMaterial は材質のチャンネル画像を表す。
// 各チャンネルは元テクスチャも係数もない場合nilになる。
type DecodedMaterial struct {
	Index     int
	Color     *image.NRGBA
	Metallic  *image.Gray
	Roughness *image.Gray
}

// IsEmpty は出力すべきチャンネルを持たないか判定する。
func (m *DecodedMaterial) IsEmpty() bool {
	return m == nil || (m.Color == nil && m.Metallic == nil && m.Roughness == nil)
}
