// 指示: miu200521358
package io_glb

import "encoding/json"

// gltfDocument はデコードに必要なglTFトップレベル要素を表す。
type gltfDocument struct {
	Asset          gltfAsset                  `json:"asset"`
	Buffers        []gltfBuffer               `json:"buffers"`
	BufferViews    []gltfBufferView           `json:"bufferViews"`
	Accessors      []gltfAccessor             `json:"accessors"`
	Meshes         []gltfMesh                 `json:"meshes"`
	Materials      []gltfMaterial             `json:"materials"`
	Textures       []gltfTexture              `json:"textures"`
	Images         []gltfImage                `json:"images"`
	Nodes          []gltfNode                 `json:"nodes"`
	Scenes         []gltfScene                `json:"scenes"`
	Scene          *int                       `json:"scene"`
	ExtensionsUsed []string                   `json:"extensionsUsed"`
	Extensions     map[string]json.RawMessage `json:"extensions"`
}

// gltfAsset はglTF asset要素を表す。
type gltfAsset struct {
	Version   string `json:"version"`
	Generator string `json:"generator"`
}

// gltfScene はglTF scene要素を表す。
type gltfScene struct {
	Name  string `json:"name"`
	Nodes []int  `json:"nodes"`
}

// gltfNode はglTF node要素を表す。
type gltfNode struct {
	Name        string    `json:"name"`
	Mesh        *int      `json:"mesh"`
	Children    []int     `json:"children"`
	Matrix      []float64 `json:"matrix"`
	Translation []float64 `json:"translation"`
	Rotation    []float64 `json:"rotation"`
	Scale       []float64 `json:"scale"`
}

// gltfBuffer はglTF buffer要素を表す。
type gltfBuffer struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri"`
}

// gltfBufferView はglTF bufferView要素を表す。
type gltfBufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride"`
}

// gltfAccessor はglTF accessor要素を表す。
type gltfAccessor struct {
	BufferView    *int   `json:"bufferView"`
	ByteOffset    int    `json:"byteOffset"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
}

// gltfMesh はglTF mesh要素を表す。
type gltfMesh struct {
	Name       string          `json:"name"`
	Primitives []gltfPrimitive `json:"primitives"`
}

// gltfPrimitive はglTF mesh primitive要素を表す。
type gltfPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices"`
	Material   *int           `json:"material"`
	Mode       *int           `json:"mode"`
}

// gltfMaterial はglTF material要素を表す。
type gltfMaterial struct {
	Name                 string                    `json:"name"`
	PbrMetallicRoughness *gltfPbrMetallicRoughness `json:"pbrMetallicRoughness"`
}

// gltfPbrMetallicRoughness はPBR metallic-roughness要素を表す。
// 係数の有無を区別するためポインタで受ける。
type gltfPbrMetallicRoughness struct {
	BaseColorFactor          []float64       `json:"baseColorFactor"`
	BaseColorTexture         *gltfTextureRef `json:"baseColorTexture"`
	MetallicFactor           *float64        `json:"metallicFactor"`
	RoughnessFactor          *float64        `json:"roughnessFactor"`
	MetallicRoughnessTexture *gltfTextureRef `json:"metallicRoughnessTexture"`
}

// gltfTextureRef は材質から参照されるテクスチャ参照を表す。
type gltfTextureRef struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord"`
}

// gltfTexture はglTF texture要素を表す。
type gltfTexture struct {
	Source *int `json:"source"`
}

// gltfImage はglTF image要素を表す。
type gltfImage struct {
	Name       string `json:"name"`
	URI        string `json:"uri"`
	BufferView *int   `json:"bufferView"`
	MimeType   string `json:"mimeType"`
}
