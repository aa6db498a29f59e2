// 指示: miu200521358
package io_glb

import (
	"encoding/binary"
	"encoding/json"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/merr"
	"github.com/qmuntal/gltf"
)

const (
	glbHeaderLength   = 12
	glbChunkHeadSize  = 8
	glbMagic          = 0x46546C67
	glbVersion        = 2
	glbJSONChunkType  = 0x4E4F534A
	glbBINChunkType   = 0x004E4942
	glbMinValidLength = glbHeaderLength + glbChunkHeadSize
)

// parseGLBChunks はGLBバイト列からJSON/BINチャンクを抽出する。
func parseGLBChunks(b []byte) ([]byte, []byte, error) {
	if len(b) < glbMinValidLength {
		return nil, nil, merr.NewMalformedContainer("GLBヘッダが不足しています: bytes=%d", nil, len(b))
	}
	if binary.LittleEndian.Uint32(b[0:4]) != glbMagic {
		return nil, nil, merr.NewMalformedContainer("GLBマジックが不正です", nil)
	}
	if version := binary.LittleEndian.Uint32(b[4:8]); version != glbVersion {
		return nil, nil, merr.NewMalformedContainer("GLBバージョンが未対応です: %d", nil, version)
	}
	totalLength := int(binary.LittleEndian.Uint32(b[8:12]))
	if totalLength < glbMinValidLength || totalLength > len(b) {
		return nil, nil, merr.NewMalformedContainer("GLB全体長が不正です: %d", nil, totalLength)
	}

	var jsonChunk []byte
	var binChunk []byte
	offset := glbHeaderLength
	for offset+glbChunkHeadSize <= totalLength {
		chunkLength := int(binary.LittleEndian.Uint32(b[offset : offset+4]))
		chunkType := binary.LittleEndian.Uint32(b[offset+4 : offset+8])
		chunkStart := offset + glbChunkHeadSize
		chunkEnd := chunkStart + chunkLength
		if chunkLength < 0 || chunkEnd > totalLength {
			return nil, nil, merr.NewMalformedContainer("GLBチャンク長が不正です: offset=%d length=%d", nil, offset, chunkLength)
		}
		switch chunkType {
		case glbJSONChunkType:
			if jsonChunk == nil {
				jsonChunk = b[chunkStart:chunkEnd]
			}
		case glbBINChunkType:
			if binChunk == nil {
				binChunk = b[chunkStart:chunkEnd]
			}
		}
		offset = chunkEnd
	}
	if len(jsonChunk) == 0 {
		return nil, nil, merr.NewMalformedContainer("GLB JSONチャンクが見つかりません", nil)
	}
	return jsonChunk, binChunk, nil
}

// Parse はGLBバイト列をシーンへ変換する。
// sourceDirは外部参照画像の解決に使う。
func Parse(b []byte, sourceDir string) (*scene.Scene, error) {
	jsonChunk, binChunk, err := parseGLBChunks(b)
	if err != nil {
		return nil, err
	}
	doc := gltfDocument{}
	if err := json.Unmarshal(jsonChunk, &doc); err != nil {
		return nil, merr.NewMalformedContainer("GLB JSONチャンクの解析に失敗しました", err)
	}
	s, err := buildScene(&doc, binChunk)
	if err != nil {
		return nil, err
	}
	s.SourceDir = sourceDir
	return s, nil
}

// buildScene はglTF文書からシーンを構築する。
func buildScene(doc *gltfDocument, binChunk []byte) (*scene.Scene, error) {
	s := &scene.Scene{
		Blob:        binChunk,
		Nodes:       make([]scene.Node, len(doc.Nodes)),
		Meshes:      make([]scene.MeshDef, len(doc.Meshes)),
		Materials:   make([]scene.MaterialDef, len(doc.Materials)),
		Accessors:   make([]scene.Accessor, len(doc.Accessors)),
		BufferViews: make([]scene.BufferView, len(doc.BufferViews)),
		Textures:    make([]scene.TextureDef, len(doc.Textures)),
		Images:      make([]scene.ImageDef, len(doc.Images)),
	}

	for i, view := range doc.BufferViews {
		if view.Buffer != 0 {
			return nil, merr.NewMalformedContainer("bufferView.buffer が未対応です: bufferView=%d buffer=%d", nil, i, view.Buffer)
		}
		if view.ByteOffset < 0 || view.ByteLength < 0 || view.ByteStride < 0 {
			return nil, merr.NewMalformedContainer("bufferView の byteOffset/byteLength/byteStride が不正です: %d", nil, i)
		}
		s.BufferViews[i] = scene.BufferView{
			ByteOffset: view.ByteOffset,
			ByteLength: view.ByteLength,
			ByteStride: view.ByteStride,
		}
	}

	for i, accessor := range doc.Accessors {
		if accessor.Count < 0 || accessor.ByteOffset < 0 {
			return nil, merr.NewMalformedContainer("accessor の count/byteOffset が不正です: %d", nil, i)
		}
		if accessor.BufferView != nil && (*accessor.BufferView < 0 || *accessor.BufferView >= len(s.BufferViews)) {
			return nil, merr.NewMalformedContainer("accessor.bufferView が不正です: accessor=%d bufferView=%d", nil, i, *accessor.BufferView)
		}
		shape, _ := scene.ElementShapeFromName(accessor.Type)
		s.Accessors[i] = scene.Accessor{
			BufferView:    accessor.BufferView,
			ByteOffset:    accessor.ByteOffset,
			ComponentCode: accessor.ComponentType,
			Count:         accessor.Count,
			Shape:         shape,
			TypeName:      accessor.Type,
		}
	}

	for i, node := range doc.Nodes {
		built, err := buildNode(node)
		if err != nil {
			return nil, err
		}
		for _, child := range node.Children {
			if child < 0 || child >= len(doc.Nodes) {
				return nil, merr.NewMalformedContainer("node.children のindexが不正です: node=%d child=%d", nil, i, child)
			}
		}
		if node.Mesh != nil && (*node.Mesh < 0 || *node.Mesh >= len(doc.Meshes)) {
			return nil, merr.NewMalformedContainer("node.mesh が不正です: node=%d mesh=%d", nil, i, *node.Mesh)
		}
		s.Nodes[i] = built
	}

	for i, mesh := range doc.Meshes {
		s.Meshes[i] = buildMesh(mesh)
	}
	for i, material := range doc.Materials {
		built, err := buildMaterial(material)
		if err != nil {
			return nil, merr.NewMalformedContainer("material の解析に失敗しました: %d", err, i)
		}
		built.Name = material.Name
		s.Materials[i] = built
	}
	for i, texture := range doc.Textures {
		s.Textures[i] = scene.TextureDef{Source: texture.Source}
	}
	for i, image := range doc.Images {
		s.Images[i] = scene.ImageDef{
			Name:       image.Name,
			URI:        image.URI,
			BufferView: image.BufferView,
			MimeType:   image.MimeType,
		}
	}

	roots, err := resolveRootIndices(doc)
	if err != nil {
		return nil, err
	}
	s.RootIndices = roots
	return s, nil
}

// resolveRootIndices は走査起点ノードを決定する。
// scenesが無い場合は親を持たないノードを宣言順に使う。
func resolveRootIndices(doc *gltfDocument) ([]int, error) {
	if len(doc.Scenes) == 0 {
		parents := buildNodeParentIndexes(doc.Nodes)
		roots := make([]int, 0, len(doc.Nodes))
		for i, parent := range parents {
			if parent < 0 {
				roots = append(roots, i)
			}
		}
		return roots, nil
	}
	sceneIndex := 0
	if doc.Scene != nil {
		sceneIndex = *doc.Scene
	}
	if sceneIndex < 0 || sceneIndex >= len(doc.Scenes) {
		return nil, merr.NewMalformedContainer("scene index が不正です: %d", nil, sceneIndex)
	}
	roots := append([]int(nil), doc.Scenes[sceneIndex].Nodes...)
	for _, root := range roots {
		if root < 0 || root >= len(doc.Nodes) {
			return nil, merr.NewMalformedContainer("scene.nodes のindexが不正です: %d", nil, root)
		}
	}
	return roots, nil
}

// buildNodeParentIndexes はnode配列から親インデックス配列を生成する。
// children のindexは呼び出し前に検証済みであること。
func buildNodeParentIndexes(nodes []gltfNode) []int {
	parentIndexes := make([]int, len(nodes))
	for i := range parentIndexes {
		parentIndexes[i] = -1
	}
	for parentIndex, node := range nodes {
		for _, childIndex := range node.Children {
			if parentIndexes[childIndex] == -1 {
				parentIndexes[childIndex] = parentIndex
			}
		}
	}
	return parentIndexes
}

// buildNode はnode要素をシーンノードへ変換する。
func buildNode(node gltfNode) (scene.Node, error) {
	out := scene.Node{
		Name:     node.Name,
		Mesh:     node.Mesh,
		Children: append([]int(nil), node.Children...),
	}
	if len(node.Matrix) > 0 {
		if len(node.Matrix) != 16 {
			return scene.Node{}, merr.NewMalformedContainer("node.matrix の要素数が不正です: %d", nil, len(node.Matrix))
		}
		// glTF の matrix は列優先で、mgl64.Mat4 の並びと一致する。
		var m mgl64.Mat4
		copy(m[:], node.Matrix)
		out.Matrix = &m
		return out, nil
	}
	translation, err := parseVec3(node.Translation, "node.translation")
	if err != nil {
		return scene.Node{}, err
	}
	scale, err := parseVec3(node.Scale, "node.scale")
	if err != nil {
		return scene.Node{}, err
	}
	rotation, err := parseQuaternion(node.Rotation)
	if err != nil {
		return scene.Node{}, err
	}
	out.Translation = translation
	out.Rotation = rotation
	out.Scale = scale
	return out, nil
}

// parseVec3 はスライスをVec3へ変換する。未指定はnilを返す。
func parseVec3(values []float64, label string) (*mgl64.Vec3, error) {
	if len(values) == 0 {
		return nil, nil
	}
	if len(values) != 3 {
		return nil, merr.NewMalformedContainer("%s の要素数が不正です: %d", nil, label, len(values))
	}
	v := mgl64.Vec3{values[0], values[1], values[2]}
	return &v, nil
}

// parseQuaternion は[x,y,z,w]をQuatへ変換する。未指定はnilを返す。
func parseQuaternion(values []float64) (*mgl64.Quat, error) {
	if len(values) == 0 {
		return nil, nil
	}
	if len(values) != 4 {
		return nil, merr.NewMalformedContainer("node.rotation の要素数が不正です: %d", nil, len(values))
	}
	q := mgl64.Quat{W: values[3], V: mgl64.Vec3{values[0], values[1], values[2]}}
	return &q, nil
}

// buildMesh はmesh要素のprimitive 0をメッシュ定義へ変換する。
func buildMesh(mesh gltfMesh) scene.MeshDef {
	out := scene.MeshDef{
		Name:           mesh.Name,
		Mode:           scene.PrimitiveModeTriangles,
		PrimitiveCount: len(mesh.Primitives),
	}
	if len(mesh.Primitives) == 0 {
		return out
	}
	primitive := mesh.Primitives[0]
	out.Position = attributeIndex(primitive.Attributes, gltf.POSITION)
	out.Normal = attributeIndex(primitive.Attributes, gltf.NORMAL)
	out.TexCoord0 = attributeIndex(primitive.Attributes, gltf.TEXCOORD_0)
	out.Color0 = attributeIndex(primitive.Attributes, gltf.COLOR_0)
	out.Indices = primitive.Indices
	out.Material = primitive.Material
	if primitive.Mode != nil {
		out.Mode = *primitive.Mode
	}
	return out
}

// attributeIndex は属性名に対応するaccessor indexを返す。
func attributeIndex(attributes map[string]int, name string) *int {
	index, ok := attributes[name]
	if !ok {
		return nil
	}
	return &index
}

// buildMaterial はmaterial要素を材質定義へ変換する。
func buildMaterial(material gltfMaterial) (scene.MaterialDef, error) {
	out := scene.MaterialDef{}
	pbr := material.PbrMetallicRoughness
	if pbr == nil {
		return out, nil
	}
	if len(pbr.BaseColorFactor) > 0 {
		if len(pbr.BaseColorFactor) != 4 {
			return out, merr.NewMalformedContainer("baseColorFactor の要素数が不正です: %d", nil, len(pbr.BaseColorFactor))
		}
		factor := [4]float64{pbr.BaseColorFactor[0], pbr.BaseColorFactor[1], pbr.BaseColorFactor[2], pbr.BaseColorFactor[3]}
		out.BaseColorFactor = &factor
	}
	if pbr.BaseColorTexture != nil {
		index := pbr.BaseColorTexture.Index
		out.BaseColorTexture = &index
	}
	if pbr.MetallicRoughnessTexture != nil {
		index := pbr.MetallicRoughnessTexture.Index
		out.MetallicRoughnessTexture = &index
	}
	out.MetallicFactor = pbr.MetallicFactor
	out.RoughnessFactor = pbr.RoughnessFactor
	return out, nil
}
