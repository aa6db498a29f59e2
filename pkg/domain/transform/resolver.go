// 指示: miu200521358
// Package transform はノード階層からメッシュインスタンスのワールド行列を解決する。
package transform

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/merr"
)

// MeshInstance はメッシュを持つノードの出現1件を表す。
type MeshInstance struct {
	Ordinal   int
	MeshIndex int
	NodeIndex int
	World     mgl64.Mat4
}

const (
	nodeStateUnvisited = iota
	nodeStateOnPath
)

// Resolve はルートから深さ優先で辿り、メッシュを持つノードを訪問順に返す。
// 同じノードが複数の親から参照される場合は参照ごとに出力する。
func Resolve(nodes []scene.Node, roots []int) ([]MeshInstance, error) {
	state := make([]int, len(nodes))
	instances := make([]MeshInstance, 0, len(nodes))
	for _, root := range roots {
		var err error
		instances, err = visit(nodes, root, mgl64.Ident4(), state, instances)
		if err != nil {
			return nil, err
		}
	}
	return instances, nil
}

// visit はノードのワールド行列を求め、子へ再帰する。
func visit(
	nodes []scene.Node,
	nodeIndex int,
	parentWorld mgl64.Mat4,
	state []int,
	instances []MeshInstance,
) ([]MeshInstance, error) {
	if nodeIndex < 0 || nodeIndex >= len(nodes) {
		return nil, merr.NewMalformedContainer("node index が不正です: %d", nil, nodeIndex)
	}
	if state[nodeIndex] == nodeStateOnPath {
		return nil, merr.NewMalformedContainer("node親子関係に循環があります: %d", nil, nodeIndex)
	}
	state[nodeIndex] = nodeStateOnPath
	defer func() { state[nodeIndex] = nodeStateUnvisited }()

	node := nodes[nodeIndex]
	world := parentWorld.Mul4(LocalMatrix(node))
	if node.Mesh != nil {
		instances = append(instances, MeshInstance{
			Ordinal:   len(instances),
			MeshIndex: *node.Mesh,
			NodeIndex: nodeIndex,
			World:     world,
		})
	}
	for _, child := range node.Children {
		var err error
		instances, err = visit(nodes, child, world, state, instances)
		if err != nil {
			return nil, err
		}
	}
	return instances, nil
}

// LocalMatrix はノードのローカル行列を返す。
// 明示行列があればそのまま使い、なければ T・R・S を合成する。
func LocalMatrix(node scene.Node) mgl64.Mat4 {
	if node.Matrix != nil {
		return *node.Matrix
	}
	translation := mgl64.Vec3{}
	if node.Translation != nil {
		translation = *node.Translation
	}
	rotation := mgl64.QuatIdent()
	if node.Rotation != nil {
		rotation = node.Rotation.Normalize()
	}
	scale := mgl64.Vec3{1, 1, 1}
	if node.Scale != nil {
		scale = *node.Scale
	}
	return mgl64.Translate3D(translation[0], translation[1], translation[2]).
		Mul4(rotation.Mat4()).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
}

// TransformPoint は位置(w=1)を変換する。
func TransformPoint(m mgl64.Mat4, v mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(v.Vec4(1)).Vec3()
}

// TransformDirection は方向(w=0)を変換する。
func TransformDirection(m mgl64.Mat4, v mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(v.Vec4(0)).Vec3()
}
