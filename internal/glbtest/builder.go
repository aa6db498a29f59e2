// 指示: miu200521358
// Package glbtest はテスト用GLBバイト列の組み立てを提供する。
package glbtest

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/png"
	"math"
	"os"
	"testing"
)

const (
	glbMagic         = 0x46546C67
	glbJSONChunkType = 0x4E4F534A
	glbBINChunkType  = 0x004E4942
)

// Builder はBINチャンクとglTF JSONを組み立てる。
type Builder struct {
	bin         []byte
	BufferViews []map[string]any
	Accessors   []map[string]any
	Meshes      []map[string]any
	Nodes       []map[string]any
	Materials   []map[string]any
	Textures    []map[string]any
	Images      []map[string]any
	Scenes      []map[string]any
	Scene       *int
}

// New はBuilderを生成する。
func New() *Builder {
	return &Builder{}
}

// appendView はバイト列を4byte境界に揃えて追加し、bufferView indexを返す。
func (b *Builder) appendView(data []byte, stride int) int {
	for len(b.bin)%4 != 0 {
		b.bin = append(b.bin, 0)
	}
	view := map[string]any{
		"buffer":     0,
		"byteOffset": len(b.bin),
		"byteLength": len(data),
	}
	if stride > 0 {
		view["byteStride"] = stride
	}
	b.bin = append(b.bin, data...)
	b.BufferViews = append(b.BufferViews, view)
	return len(b.BufferViews) - 1
}

// AddAccessorRaw はbufferViewとaccessorを追加し、accessor indexを返す。
func (b *Builder) AddAccessorRaw(data []byte, componentType int, typeName string, count int, stride int) int {
	view := b.appendView(data, stride)
	b.Accessors = append(b.Accessors, map[string]any{
		"bufferView":    view,
		"componentType": componentType,
		"count":         count,
		"type":          typeName,
	})
	return len(b.Accessors) - 1
}

// AddFloat32 はf32 accessorを追加する。
func (b *Builder) AddFloat32(values []float32, typeName string) int {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return b.AddAccessorRaw(data, 5126, typeName, len(values)/componentsOf(typeName), 0)
}

// AddUint8 はu8 accessorを追加する。
func (b *Builder) AddUint8(values []uint8, typeName string) int {
	return b.AddAccessorRaw(append([]byte(nil), values...), 5121, typeName, len(values)/componentsOf(typeName), 0)
}

// AddUint16 はu16 accessorを追加する。
func (b *Builder) AddUint16(values []uint16, typeName string) int {
	data := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(data[i*2:], v)
	}
	return b.AddAccessorRaw(data, 5123, typeName, len(values)/componentsOf(typeName), 0)
}

// AddUint32 はu32 accessorを追加する。
func (b *Builder) AddUint32(values []uint32, typeName string) int {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], v)
	}
	return b.AddAccessorRaw(data, 5125, typeName, len(values)/componentsOf(typeName), 0)
}

// AddImage はbufferView埋め込み画像とテクスチャを追加し、texture indexを返す。
func (b *Builder) AddImage(data []byte, mimeType string) int {
	view := b.appendView(data, 0)
	b.Images = append(b.Images, map[string]any{
		"bufferView": view,
		"mimeType":   mimeType,
	})
	return b.AddTexture(len(b.Images) - 1)
}

// AddImageURI はURI参照画像とテクスチャを追加し、texture indexを返す。
func (b *Builder) AddImageURI(uri string) int {
	b.Images = append(b.Images, map[string]any{"uri": uri})
	return b.AddTexture(len(b.Images) - 1)
}

// AddTexture はテクスチャを追加する。
func (b *Builder) AddTexture(imageIndex int) int {
	b.Textures = append(b.Textures, map[string]any{"source": imageIndex})
	return len(b.Textures) - 1
}

// AddMaterial はpbrMetallicRoughnessを持つ材質を追加する。
func (b *Builder) AddMaterial(pbr map[string]any) int {
	b.Materials = append(b.Materials, map[string]any{"pbrMetallicRoughness": pbr})
	return len(b.Materials) - 1
}

// AddMesh はprimitive 1件のメッシュを追加する。
func (b *Builder) AddMesh(primitive map[string]any) int {
	b.Meshes = append(b.Meshes, map[string]any{"primitives": []any{primitive}})
	return len(b.Meshes) - 1
}

// AddNode はノードを追加する。
func (b *Builder) AddNode(node map[string]any) int {
	b.Nodes = append(b.Nodes, node)
	return len(b.Nodes) - 1
}

// SetScene はシーンのルートノードを設定する。
func (b *Builder) SetScene(roots ...int) {
	b.Scenes = []map[string]any{{"nodes": roots}}
	zero := 0
	b.Scene = &zero
}

// BinChunk はBINチャンクを返す。
func (b *Builder) BinChunk() []byte {
	return append([]byte(nil), b.bin...)
}

// Document はglTF JSON文書を返す。
func (b *Builder) Document() map[string]any {
	doc := map[string]any{
		"asset": map[string]any{"version": "2.0", "generator": "glbtest"},
	}
	if len(b.bin) > 0 {
		doc["buffers"] = []any{map[string]any{"byteLength": len(b.bin)}}
	}
	put := func(key string, values []map[string]any) {
		if len(values) > 0 {
			doc[key] = values
		}
	}
	put("bufferViews", b.BufferViews)
	put("accessors", b.Accessors)
	put("meshes", b.Meshes)
	put("nodes", b.Nodes)
	put("materials", b.Materials)
	put("textures", b.Textures)
	put("images", b.Images)
	put("scenes", b.Scenes)
	if b.Scene != nil {
		doc["scene"] = *b.Scene
	}
	return doc
}

// Bytes はGLBバイト列を返す。
func (b *Builder) Bytes() ([]byte, error) {
	return EncodeGLB(b.Document(), b.bin)
}

// MustBytes はGLBバイト列を返し、失敗時はテストを止める。
func (b *Builder) MustBytes(t testing.TB) []byte {
	t.Helper()
	out, err := b.Bytes()
	if err != nil {
		t.Fatalf("encode glb failed: %v", err)
	}
	return out
}

// EncodeGLB はJSON文書とBINチャンクをGLBへ組み立てる。
func EncodeGLB(doc map[string]any, binChunk []byte) ([]byte, error) {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	jsonPadSize := (4 - (len(jsonBytes) % 4)) % 4
	if jsonPadSize > 0 {
		jsonBytes = append(jsonBytes, bytes.Repeat([]byte(" "), jsonPadSize)...)
	}
	binBytes := append([]byte(nil), binChunk...)
	if len(binBytes) > 0 {
		binPadSize := (4 - (len(binBytes) % 4)) % 4
		if binPadSize > 0 {
			binBytes = append(binBytes, bytes.Repeat([]byte{0x00}, binPadSize)...)
		}
	}

	totalLength := uint32(12 + 8 + len(jsonBytes))
	if len(binBytes) > 0 {
		totalLength += uint32(8 + len(binBytes))
	}
	var buf bytes.Buffer
	for _, v := range []uint32{glbMagic, 2, totalLength, uint32(len(jsonBytes)), glbJSONChunkType} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}
	buf.Write(jsonBytes)
	if len(binBytes) > 0 {
		for _, v := range []uint32{uint32(len(binBytes)), glbBINChunkType} {
			if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
				return nil, err
			}
		}
		buf.Write(binBytes)
	}
	return buf.Bytes(), nil
}

// WriteFile はバイト列をファイルへ書き込む。
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write file failed: %v", err)
	}
}

// EncodePNG は画像をPNGバイト列へ変換する。
func EncodePNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png failed: %v", err)
	}
	return buf.Bytes()
}

// Vec3 はVEC3要素のfloat配列を組み立てる。
func Vec3(values ...[3]float32) []float32 {
	out := make([]float32, 0, len(values)*3)
	for _, v := range values {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

func componentsOf(typeName string) int {
	switch typeName {
	case "VEC2":
		return 2
	case "VEC3":
		return 3
	case "VEC4":
		return 4
	default:
		return 1
	}
}
