// 指示: miu200521358
// Package decoder はシーンからOBJ出力用のジオメトリと材質チャンネル画像をデコードする。
package decoder

import (
	"context"
	"runtime"

	"github.com/miu200521358/mu_glb2obj/pkg/adapter/io_glb"
	"github.com/miu200521358/mu_glb2obj/pkg/domain/model"
	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
	"github.com/miu200521358/mu_glb2obj/pkg/domain/transform"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/logging"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/merr"
	"golang.org/x/sync/errgroup"
)

// Options はデコード設定を表す。
type Options struct {
	Workers int
	UpAxis  UpAxis
}

// DefaultOptions は既定のデコード設定を返す。
func DefaultOptions() Options {
	return Options{Workers: runtime.NumCPU(), UpAxis: UpAxisY}
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

// meshSlot は一意メッシュのデコード結果を保持する。
type meshSlot struct {
	object *scene.DecodedObject
	err    error
}

// materialSlot は材質のデコード結果を保持する。
type materialSlot struct {
	result *MaterialDecodeResult
	err    error
}

// Decode はシーンを解決し、メッシュインスタンスと材質をデコードする。
// 単位ごとの失敗はReportへ集約し、シーン全体に及ぶ失敗とcontextのキャンセルのみエラーを返す。
func Decode(ctx context.Context, s *scene.Scene, opts Options) (*Report, error) {
	if s == nil {
		return nil, merr.NewMalformedContainer("シーンが未設定です", nil)
	}
	instances, err := transform.Resolve(s.Nodes, s.RootIndices)
	if err != nil {
		return nil, err
	}
	logDecodeInfo("デコード開始: instances=%d meshes=%d materials=%d workers=%d", len(instances), len(s.Meshes), len(s.Materials), opts.workers())

	meshes, err := decodeMeshes(ctx, s, instances, opts)
	if err != nil {
		return nil, err
	}
	objects, err := instantiate(ctx, meshes, instances, opts)
	if err != nil {
		return nil, err
	}
	materials, err := decodeMaterials(ctx, s, opts)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Objects:       make([]*scene.DecodedObject, 0, len(instances)),
		Materials:     make([]*scene.DecodedMaterial, len(s.Materials)),
		InstanceCount: len(instances),
	}
	collectMeshWarnings(report, s, instances, meshes)
	for i, instance := range instances {
		slot := objects[i]
		if slot.err != nil {
			report.Failures = append(report.Failures, Failure{Unit: UnitMesh, Index: instance.Ordinal, MeshIndex: instance.MeshIndex, Err: slot.err})
			logDecodeWarn("メッシュデコード失敗: object=%d mesh=%d err=%v", instance.Ordinal, instance.MeshIndex, slot.err)
			continue
		}
		object := slot.object
		if object.MaterialIndex != nil && (*object.MaterialIndex < 0 || *object.MaterialIndex >= len(s.Materials)) {
			report.warn(model.WarningMaterialIndexInvalid, UnitMesh, object.Ordinal)
			logDecodeWarn("材質参照が範囲外です: object=%d material=%d", object.Ordinal, *object.MaterialIndex)
			object.MaterialIndex = nil
		}
		report.Objects = append(report.Objects, object)
	}
	for i, slot := range materials {
		if slot.err != nil {
			report.Failures = append(report.Failures, Failure{Unit: UnitMaterial, Index: i, MeshIndex: merr.NoIndex, Err: slot.err})
			logDecodeWarn("材質デコード失敗: material=%d err=%v", i, slot.err)
			continue
		}
		result := slot.result
		if result.GrayscaleMRTexture {
			report.warn(model.WarningGrayscaleMetallicRoughness, UnitMaterial, i)
		}
		if result.Material.IsEmpty() {
			report.warn(model.WarningMaterialWithoutChannels, UnitMaterial, i)
		}
		report.Materials[i] = result.Material
	}

	logDecodeInfo(
		"デコード完了: objects=%d materials=%d failures=%d warnings=%d",
		len(report.Objects),
		report.DecodedMaterialCount(),
		len(report.Failures),
		len(report.Warnings),
	)
	return report, nil
}

// decodeMeshes はインスタンスが参照する一意メッシュをローカル座標でデコードする。
func decodeMeshes(ctx context.Context, s *scene.Scene, instances []transform.MeshInstance, opts Options) (map[int]*meshSlot, error) {
	slots := map[int]*meshSlot{}
	order := make([]int, 0, len(s.Meshes))
	for _, instance := range instances {
		if _, ok := slots[instance.MeshIndex]; ok {
			continue
		}
		slots[instance.MeshIndex] = &meshSlot{}
		order = append(order, instance.MeshIndex)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.workers())
	for _, meshIndex := range order {
		slot := slots[meshIndex]
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			object, err := DecodeMesh(s, meshIndex)
			if err != nil && merr.IsSceneFatal(err) {
				return err
			}
			slot.object, slot.err = object, err
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return slots, ctx.Err()
}

// instantiate はインスタンスごとにメッシュを複製してワールド行列を適用する。
func instantiate(ctx context.Context, meshes map[int]*meshSlot, instances []transform.MeshInstance, opts Options) ([]meshSlot, error) {
	out := make([]meshSlot, len(instances))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.workers())
	for i, instance := range instances {
		local := meshes[instance.MeshIndex]
		if local.err != nil {
			out[i].err = local.err
			continue
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			object, err := Instantiate(local.object, instance, opts.UpAxis)
			out[i] = meshSlot{object: object, err: err}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, ctx.Err()
}

// decodeMaterials は全材質をデコードする。画像はデコード1回につき1度だけ展開する。
func decodeMaterials(ctx context.Context, s *scene.Scene, opts Options) ([]materialSlot, error) {
	textures := io_glb.NewImageSource(s)
	out := make([]materialSlot, len(s.Materials))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.workers())
	for i, def := range s.Materials {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result, err := DecodeMaterial(i, def, textures)
			if err != nil && merr.IsSceneFatal(err) {
				return err
			}
			out[i] = materialSlot{result: result, err: err}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, ctx.Err()
}

// collectMeshWarnings は一意メッシュ単位の警告を記録する。
func collectMeshWarnings(report *Report, s *scene.Scene, instances []transform.MeshInstance, meshes map[int]*meshSlot) {
	seen := map[int]struct{}{}
	for _, instance := range instances {
		meshIndex := instance.MeshIndex
		if _, ok := seen[meshIndex]; ok {
			continue
		}
		seen[meshIndex] = struct{}{}
		if s.Meshes[meshIndex].PrimitiveCount > 1 {
			report.warn(model.WarningExtraPrimitivesIgnored, UnitMesh, meshIndex)
		}
		slot := meshes[meshIndex]
		if slot.err == nil && slot.object.NormalsReconstructed {
			report.warn(model.WarningNormalsReconstructed, UnitMesh, meshIndex)
			logDecodeDebug("法線を再計算しました: mesh=%d", meshIndex)
		}
	}
}

// logDecodeInfo はデコードのINFOログを出力する。
func logDecodeInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logDecodeDebug はデコードのデバッグログを出力する。
func logDecodeDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logDecodeWarn はデコードの警告ログを出力する。
func logDecodeWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
