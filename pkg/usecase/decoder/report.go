// 指示: miu200521358
package decoder

import (
	"github.com/miu200521358/mu_glb2obj/pkg/domain/model"
	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
)

// Unit はデコード失敗の単位を表す。
type Unit string

const (
	// UnitMesh はメッシュインスタンス単位を表す。
	UnitMesh Unit = "mesh"
	// UnitMaterial は材質単位を表す。
	UnitMaterial Unit = "material"
)

// Failure は単位ごとのデコード失敗を表す。
// メッシュの場合 Index はインスタンス順序、材質の場合は材質indexを表す。
type Failure struct {
	Unit      Unit
	Index     int
	MeshIndex int
	Err       error
}

// Report はシーンデコード結果を表す。
type Report struct {
	Objects       []*scene.DecodedObject
	Materials     []*scene.DecodedMaterial
	Failures      []Failure
	Warnings      []model.Warning
	InstanceCount int
}

// HasFailures は失敗があるか判定する。
func (r *Report) HasFailures() bool {
	return r != nil && len(r.Failures) > 0
}

// FailuresOf は指定単位の失敗を返す。
func (r *Report) FailuresOf(unit Unit) []Failure {
	if r == nil {
		return nil
	}
	out := make([]Failure, 0, len(r.Failures))
	for _, failure := range r.Failures {
		if failure.Unit == unit {
			out = append(out, failure)
		}
	}
	return out
}

// DecodedMaterialCount はデコードに成功した材質数を返す。
func (r *Report) DecodedMaterialCount() int {
	if r == nil {
		return 0
	}
	count := 0
	for _, material := range r.Materials {
		if material != nil {
			count++
		}
	}
	return count
}

func (r *Report) warn(id string, unit Unit, index int) {
	r.Warnings = append(r.Warnings, model.Warning{ID: id, Unit: string(unit), Index: index})
}
