// 指示: miu200521358
package decoder

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_glb2obj/pkg/adapter/io_glb"
	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
	"github.com/miu200521358/mu_glb2obj/pkg/domain/transform"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/merr"
	"github.com/tiendc/go-deepcopy"
)

// UpAxis は出力座標系の上方向を表す。
type UpAxis string

const (
	// UpAxisY はglTFと同じY-upを表す。
	UpAxisY UpAxis = "y"
	// UpAxisZ はZ-upへ変換することを表す。
	UpAxisZ UpAxis = "z"
)

// DecodeMesh はメッシュのprimitive 0をローカル座標のまま読み取る。
func DecodeMesh(s *scene.Scene, meshIndex int) (*scene.DecodedObject, error) {
	if meshIndex < 0 || meshIndex >= len(s.Meshes) {
		return nil, merr.NewMalformedContainer("mesh index が不正です: %d", nil, meshIndex)
	}
	mesh := s.Meshes[meshIndex]
	if mesh.Position == nil {
		return nil, merr.NewMissingMandatoryAttribute(meshIndex, "POSITION")
	}
	if mesh.Indices == nil {
		return nil, merr.NewMissingMandatoryAttribute(meshIndex, "indices")
	}

	vertices, err := readVec3Attribute(s, *mesh.Position)
	if err != nil {
		return nil, err
	}
	indices, err := readIndices(s, *mesh.Indices)
	if err != nil {
		return nil, err
	}
	faces, err := triangulateIndices(meshIndex, indices, mesh.Mode)
	if err != nil {
		return nil, err
	}
	for _, face := range faces {
		for _, vertexIndex := range face {
			if int(vertexIndex) >= len(vertices) {
				return nil, merr.NewInvalidFaceIndex(meshIndex, vertexIndex, len(vertices))
			}
		}
	}

	out := &scene.DecodedObject{
		MeshIndex: meshIndex,
		NodeIndex: -1,
		Vertices:  vertices,
		Faces:     faces,
	}

	if mesh.Normal != nil {
		normals, err := readVec3Attribute(s, *mesh.Normal)
		if err != nil {
			return nil, err
		}
		if err := checkAttributeCount(*mesh.Normal, "NORMAL", len(normals), len(vertices)); err != nil {
			return nil, err
		}
		out.Normals = normals
	} else {
		out.Normals = ReconstructNormals(vertices, faces)
		out.NormalsReconstructed = true
	}

	if mesh.TexCoord0 != nil {
		uvs, err := readTexCoords(s, *mesh.TexCoord0)
		if err != nil {
			return nil, err
		}
		if err := checkAttributeCount(*mesh.TexCoord0, "TEXCOORD_0", len(uvs), len(vertices)); err != nil {
			return nil, err
		}
		out.UVs = uvs
	}

	if mesh.Color0 != nil {
		colors, components, err := readColors(s, *mesh.Color0)
		if err != nil {
			return nil, err
		}
		if err := checkAttributeCount(*mesh.Color0, "COLOR_0", len(colors), len(vertices)); err != nil {
			return nil, err
		}
		out.Colors = colors
		out.ColorComponents = components
	}

	if mesh.Material != nil {
		material := *mesh.Material
		out.MaterialIndex = &material
	}
	return out, nil
}

// Instantiate はローカル座標のメッシュを複製し、インスタンスのワールド行列を適用する。
// 位置はw=1、法線はw=0で変換し、UVと頂点色は変換しない。
func Instantiate(local *scene.DecodedObject, instance transform.MeshInstance, upAxis UpAxis) (*scene.DecodedObject, error) {
	out := scene.DecodedObject{}
	if err := deepcopy.Copy(&out, *local); err != nil {
		return nil, err
	}
	out.Ordinal = instance.Ordinal
	out.NodeIndex = instance.NodeIndex
	for i, v := range out.Vertices {
		out.Vertices[i] = convertUpAxis(transform.TransformPoint(instance.World, v), upAxis)
	}
	for i, n := range out.Normals {
		out.Normals[i] = convertUpAxis(transform.TransformDirection(instance.World, n), upAxis)
	}
	return &out, nil
}

// convertUpAxis はY-upをZ-upへ変換する。
func convertUpAxis(v mgl64.Vec3, upAxis UpAxis) mgl64.Vec3 {
	if upAxis != UpAxisZ {
		return v
	}
	return mgl64.Vec3{v[0], -v[2], v[1]}
}

// readVec3Attribute はf32 VEC3属性を読み取る。
func readVec3Attribute(s *scene.Scene, accessorIndex int) ([]mgl64.Vec3, error) {
	values, err := io_glb.ReadAccessor(s, accessorIndex, scene.ComponentFloat32, scene.ShapeVec3)
	if err != nil {
		return nil, err
	}
	floats := values.(scene.Float32Array)
	out := make([]mgl64.Vec3, len(floats)/3)
	for i := range out {
		out[i] = mgl64.Vec3{float64(floats[i*3]), float64(floats[i*3+1]), float64(floats[i*3+2])}
	}
	return out, nil
}

// readTexCoords はf32 VEC2のUVを読み取り、v' = 1 - v で上下反転する。
func readTexCoords(s *scene.Scene, accessorIndex int) ([]mgl64.Vec2, error) {
	values, err := io_glb.ReadAccessor(s, accessorIndex, scene.ComponentFloat32, scene.ShapeVec2)
	if err != nil {
		return nil, err
	}
	floats := values.(scene.Float32Array)
	out := make([]mgl64.Vec2, len(floats)/2)
	for i := range out {
		out[i] = FlipV(mgl64.Vec2{float64(floats[i*2]), float64(floats[i*2+1])})
	}
	return out, nil
}

// FlipV はUVのv成分を反転する。
func FlipV(uv mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{uv[0], 1 - uv[1]}
}

// readIndices はu8/u32のindexをu32へ正規化する。
func readIndices(s *scene.Scene, accessorIndex int) ([]uint32, error) {
	accessor, err := io_glb.LookupAccessor(s, accessorIndex)
	if err != nil {
		return nil, err
	}
	componentType, ok := accessor.ComponentType()
	if !ok || componentType == scene.ComponentFloat32 {
		return nil, merr.NewUnsupportedIndexWidth(accessorIndex, accessor.ComponentCode)
	}
	if accessor.Shape != scene.ShapeScalar {
		return nil, merr.NewUnsupportedAttributeLayout(accessorIndex, "indices は SCALAR である必要があります: %s", accessor.TypeName)
	}
	values, err := io_glb.ReadAccessorAs(s, accessorIndex, componentType)
	if err != nil {
		return nil, err
	}
	switch typed := values.(type) {
	case scene.Uint8Array:
		out := make([]uint32, len(typed))
		for i, v := range typed {
			out[i] = uint32(v)
		}
		return out, nil
	case scene.Uint32Array:
		return []uint32(typed), nil
	}
	return nil, merr.NewUnsupportedIndexWidth(accessorIndex, accessor.ComponentCode)
}

// readColors はu8/f32のVEC3/VEC4頂点色をu8 RGBAへ正規化する。
// VEC3のalphaは255で埋め、成分数を合わせて返す。
func readColors(s *scene.Scene, accessorIndex int) ([][4]uint8, int, error) {
	accessor, err := io_glb.LookupAccessor(s, accessorIndex)
	if err != nil {
		return nil, 0, err
	}
	componentType, ok := accessor.ComponentType()
	if !ok || componentType == scene.ComponentUint32 {
		return nil, 0, merr.NewUnsupportedColorLayout(accessorIndex, "COLOR_0 の componentType が未対応です: %d", accessor.ComponentCode)
	}
	if accessor.Shape != scene.ShapeVec3 && accessor.Shape != scene.ShapeVec4 {
		return nil, 0, merr.NewUnsupportedColorLayout(accessorIndex, "COLOR_0 の type が未対応です: %s", accessor.TypeName)
	}
	values, err := io_glb.ReadAccessorAs(s, accessorIndex, componentType)
	if err != nil {
		return nil, 0, err
	}
	components := accessor.Shape.Components()
	out := make([][4]uint8, accessor.Count)
	for i := range out {
		out[i] = [4]uint8{0, 0, 0, 255}
	}
	switch typed := values.(type) {
	case scene.Uint8Array:
		for i := range out {
			copy(out[i][:components], typed[i*components:(i+1)*components])
		}
	case scene.Float32Array:
		for i := range out {
			for c := 0; c < components; c++ {
				out[i][c] = ColorByte(float64(typed[i*components+c]))
			}
		}
	}
	return out, components, nil
}

// ColorByte は[0,1]の色成分を round(c*255) で[0,255]へ変換する。
func ColorByte(c float64) uint8 {
	return clampByte(math.Round(c * 255))
}

// clampByte は値を[0,255]へ丸める。NaNは0とする。
func clampByte(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// checkAttributeCount は属性要素数が頂点数と一致するか検証する。
func checkAttributeCount(accessorIndex int, name string, got int, want int) error {
	if got == want {
		return nil
	}
	return merr.NewUnsupportedAttributeLayout(accessorIndex, "%s の要素数が頂点数と一致しません: got=%d want=%d", name, got, want)
}

// triangulateIndices はprimitive modeに従って三角形indexへ変換する。
func triangulateIndices(meshIndex int, indexes []uint32, mode int) ([][3]uint32, error) {
	switch mode {
	case scene.PrimitiveModeTriangles:
		if len(indexes)%3 != 0 {
			return nil, merr.NewUnsupportedAttributeLayout(meshIndex, "index数が3の倍数ではありません: %d", len(indexes))
		}
		out := make([][3]uint32, 0, len(indexes)/3)
		for i := 0; i+2 < len(indexes); i += 3 {
			out = append(out, [3]uint32{indexes[i], indexes[i+1], indexes[i+2]})
		}
		return out, nil
	case scene.PrimitiveModeTriangleStrip:
		out := make([][3]uint32, 0, max(len(indexes)-2, 0))
		for i := 0; i+2 < len(indexes); i++ {
			if i%2 == 0 {
				out = append(out, [3]uint32{indexes[i], indexes[i+1], indexes[i+2]})
			} else {
				out = append(out, [3]uint32{indexes[i+1], indexes[i], indexes[i+2]})
			}
		}
		return out, nil
	case scene.PrimitiveModeTriangleFan:
		out := make([][3]uint32, 0, max(len(indexes)-2, 0))
		for i := 1; i+1 < len(indexes); i++ {
			out = append(out, [3]uint32{indexes[0], indexes[i], indexes[i+1]})
		}
		return out, nil
	default:
		return nil, merr.NewUnsupportedPrimitiveMode(meshIndex, mode)
	}
}
