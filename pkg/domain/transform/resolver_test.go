// 指示: miu200521358
package transform

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/merr"
)

func intPtr(v int) *int {
	return &v
}

func vec3Ptr(x, y, z float64) *mgl64.Vec3 {
	v := mgl64.Vec3{x, y, z}
	return &v
}

func TestResolveTranslationChain(t *testing.T) {
	nodes := []scene.Node{
		{Translation: vec3Ptr(1, 0, 0), Children: []int{1}},
		{Translation: vec3Ptr(0, 2, 0), Children: []int{2}},
		{Translation: vec3Ptr(0, 0, 3), Mesh: intPtr(0)},
	}
	instances, err := Resolve(nodes, []int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(instances) != 1 {
		t.Fatalf("instance count mismatch: got=%d want=1", len(instances))
	}
	got := TransformPoint(instances[0].World, mgl64.Vec3{})
	if !got.ApproxEqual(mgl64.Vec3{1, 2, 3}) {
		t.Fatalf("world origin mismatch: got=%v want=(1,2,3)", got)
	}
}

func TestResolveTranslationChainIndependentOfGrouping(t *testing.T) {
	nested := []scene.Node{
		{Translation: vec3Ptr(1, 0, 0), Children: []int{1}},
		{Translation: vec3Ptr(0, 2, 3), Mesh: intPtr(0)},
	}
	flat := []scene.Node{
		{Translation: vec3Ptr(1, 2, 3), Mesh: intPtr(0)},
	}
	a, err := Resolve(nested, []int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Resolve(flat, []int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a[0].World.ApproxEqual(b[0].World) {
		t.Fatalf("world mismatch: nested=%v flat=%v", a[0].World, b[0].World)
	}
}

func TestLocalMatrixExplicitIdentityEqualsAbsentTRS(t *testing.T) {
	identity := mgl64.Ident4()
	explicit := LocalMatrix(scene.Node{Matrix: &identity})
	absent := LocalMatrix(scene.Node{})
	if !explicit.ApproxEqual(absent) {
		t.Fatalf("explicit identity should equal absent TRS: explicit=%v absent=%v", explicit, absent)
	}
}

func TestLocalMatrixExplicitMatrixWinsOverTRS(t *testing.T) {
	matrix := mgl64.Translate3D(5, 0, 0)
	local := LocalMatrix(scene.Node{Matrix: &matrix, Translation: vec3Ptr(0, 9, 0)})
	got := TransformPoint(local, mgl64.Vec3{})
	if !got.ApproxEqual(mgl64.Vec3{5, 0, 0}) {
		t.Fatalf("explicit matrix should win: got=%v", got)
	}
}

func TestLocalMatrixRotateThenScaleCubeCorner(t *testing.T) {
	half := math.Pi / 4
	rotation := mgl64.Quat{W: math.Cos(half), V: mgl64.Vec3{0, 0, math.Sin(half)}}
	node := scene.Node{Rotation: &rotation, Scale: vec3Ptr(2, 2, 2)}

	got := TransformPoint(LocalMatrix(node), mgl64.Vec3{1, 1, 1})
	if !got.ApproxEqualThreshold(mgl64.Vec3{-2, 2, 2}, 1e-9) {
		t.Fatalf("corner mismatch: got=%v want=(-2,2,2)", got)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := mgl64.Translate3D(10, 20, 30)
	got := TransformDirection(m, mgl64.Vec3{0, 1, 0})
	if !got.ApproxEqual(mgl64.Vec3{0, 1, 0}) {
		t.Fatalf("direction should not be translated: got=%v", got)
	}
}

func TestResolveDepthFirstOrderAndRepeatedReferences(t *testing.T) {
	nodes := []scene.Node{
		{Children: []int{1, 3}},
		{Mesh: intPtr(10), Children: []int{2}},
		{Mesh: intPtr(11)},
		{Mesh: intPtr(12), Children: []int{2}},
	}
	instances, err := Resolve(nodes, []int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantMeshes := []int{10, 11, 12, 11}
	if len(instances) != len(wantMeshes) {
		t.Fatalf("instance count mismatch: got=%d want=%d", len(instances), len(wantMeshes))
	}
	for i, want := range wantMeshes {
		if instances[i].MeshIndex != want || instances[i].Ordinal != i {
			t.Fatalf("instance %d mismatch: mesh=%d ordinal=%d want mesh=%d", i, instances[i].MeshIndex, instances[i].Ordinal, want)
		}
	}
}

func TestResolveDetectsCycle(t *testing.T) {
	nodes := []scene.Node{
		{Children: []int{1}},
		{Children: []int{0}},
	}
	_, err := Resolve(nodes, []int{0})
	if !merr.IsKind(err, merr.KindMalformedContainer) {
		t.Fatalf("cycle should be MalformedContainer: %v", err)
	}
}

func TestResolveRejectsInvalidChildIndex(t *testing.T) {
	nodes := []scene.Node{{Children: []int{5}}}
	_, err := Resolve(nodes, []int{0})
	if !merr.IsKind(err, merr.KindMalformedContainer) {
		t.Fatalf("invalid child should be MalformedContainer: %v", err)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	half := math.Pi / 8
	rotation := mgl64.Quat{W: math.Cos(half), V: mgl64.Vec3{math.Sin(half), 0, 0}}
	nodes := []scene.Node{
		{Rotation: &rotation, Children: []int{1}},
		{Translation: vec3Ptr(0.1, 0.2, 0.3), Scale: vec3Ptr(1, 3, 1), Mesh: intPtr(0)},
	}
	first, err := Resolve(nodes, []int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Resolve(nodes, []int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first[0].World != second[0].World {
		t.Fatalf("resolve should be bit-identical across runs")
	}
}
