// 指示: miu200521358
package minteractor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/miu200521358/mu_glb2obj/internal/glbtest"
	"github.com/miu200521358/mu_glb2obj/pkg/adapter/io_glb"
	"github.com/miu200521358/mu_glb2obj/pkg/adapter/io_image"
	"github.com/miu200521358/mu_glb2obj/pkg/adapter/io_obj"
	"github.com/miu200521358/mu_glb2obj/pkg/domain/model"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/merr"
	"github.com/miu200521358/mu_glb2obj/pkg/usecase/decoder"
)

// newTestUsecase は実リポジトリで構成したユースケースを返す。
func newTestUsecase() *Glb2ObjUsecase {
	return NewGlb2ObjUsecase(Glb2ObjUsecaseDeps{
		SceneReader:  io_glb.NewGlbRepository(),
		ObjectWriter: io_obj.NewObjRepository(false),
		ImageWriter:  io_image.NewImageRepository(io_image.FormatPNG, 0),
	})
}

// writeSampleGLB は2インスタンス・1失敗メッシュ・材質2件を持つGLBを保存する。
func writeSampleGLB(t *testing.T, path string) {
	t.Helper()
	b := glbtest.New()

	mr := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			mr.SetNRGBA(x, y, color.NRGBA{R: 0, G: 200, B: 40, A: 255})
		}
	}
	mrTexture := b.AddImage(glbtest.EncodePNG(t, mr), "image/png")
	textured := b.AddMaterial(map[string]any{
		"baseColorFactor":          []float64{1, 0, 0, 1},
		"metallicRoughnessTexture": map[string]any{"index": mrTexture},
	})
	b.AddMaterial(map[string]any{})

	mesh := b.AddMesh(map[string]any{
		"attributes": map[string]any{
			"POSITION":   b.AddFloat32(glbtest.Vec3([3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}), "VEC3"),
			"TEXCOORD_0": b.AddFloat32([]float32{0, 0, 1, 0, 0, 1}, "VEC2"),
		},
		"indices":  b.AddUint32([]uint32{0, 1, 2}, "SCALAR"),
		"material": textured,
	})
	broken := b.AddMesh(map[string]any{
		"attributes": map[string]any{
			"POSITION": b.AddFloat32(glbtest.Vec3([3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}), "VEC3"),
		},
		"indices": b.AddUint16([]uint16{0, 1, 2}, "SCALAR"),
	})
	b.SetScene(
		b.AddNode(map[string]any{"mesh": mesh}),
		b.AddNode(map[string]any{"mesh": broken}),
		b.AddNode(map[string]any{"mesh": mesh, "translation": []float64{0, 0, 3}}),
	)
	glbtest.WriteFile(t, path, b.MustBytes(t))
}

// listFiles は出力ディレクトリ配下の相対パスを列挙する。
func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	sort.Strings(out)
	return out
}

type progressRecorder struct {
	events []ConvertProgressEventType
}

func (r *progressRecorder) ReportConvertProgress(event ConvertProgressEvent) {
	r.events = append(r.events, event.Type)
}

func TestGlb2ObjUsecaseConvertWritesObjectsTexturesAndManifest(t *testing.T) {
	tempDir := t.TempDir()
	inPath := filepath.Join(tempDir, "sample.glb")
	writeSampleGLB(t, inPath)

	recorder := &progressRecorder{}
	result, err := newTestUsecase().Convert(context.Background(), ConvertRequest{
		InputPath:        inPath,
		DecodeOptions:    decoder.Options{Workers: 2},
		ProgressReporter: recorder,
	})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if result.OutputDir != filepath.Join(tempDir, "sample") {
		t.Fatalf("unexpected output dir: %s", result.OutputDir)
	}

	files := listFiles(t, result.OutputDir)
	want := []string{
		"manifest.yaml",
		"objects/object_0.obj",
		"objects/object_2.obj",
		"textures/color_0.png",
		"textures/metallic_0.png",
		"textures/roughness_0.png",
	}
	if len(files) != len(want) {
		t.Fatalf("unexpected files: got=%v want=%v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("unexpected files: got=%v want=%v", files, want)
		}
	}
	if result.Export.FileCount != len(want) {
		t.Fatalf("unexpected file count: %d", result.Export.FileCount)
	}

	manifest, err := ReadManifest(filepath.Join(result.OutputDir, "manifest.yaml"))
	if err != nil {
		t.Fatalf("read manifest failed: %v", err)
	}
	if manifest.Source != "sample" || manifest.UpAxis != "y" {
		t.Fatalf("unexpected manifest header: %+v", manifest)
	}
	if len(manifest.Objects) != 2 || manifest.Objects[1].Ordinal != 2 || manifest.Objects[1].Path != "objects/object_2.obj" {
		t.Fatalf("unexpected manifest objects: %+v", manifest.Objects)
	}
	if manifest.Objects[0].Material == nil || *manifest.Objects[0].Material != 0 {
		t.Fatalf("object material should be 0: %+v", manifest.Objects[0])
	}
	if len(manifest.Materials) != 1 || manifest.Materials[0].Roughness != "textures/roughness_0.png" {
		t.Fatalf("unexpected manifest materials: %+v", manifest.Materials)
	}
	if len(manifest.Failures) != 1 {
		t.Fatalf("expected 1 failure: %+v", manifest.Failures)
	}
	failure := manifest.Failures[0]
	if failure.Unit != "mesh" || failure.Index != 1 || failure.ErrorID != merr.UnsupportedIndexWidthErrorID {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	hasEmptyMaterialWarning := false
	for _, warning := range manifest.Warnings {
		if warning.ID == model.WarningMaterialWithoutChannels && warning.Index == 1 {
			hasEmptyMaterialWarning = true
		}
	}
	if !hasEmptyMaterialWarning {
		t.Fatalf("empty material warning not found: %+v", manifest.Warnings)
	}
	raw, err := os.ReadFile(filepath.Join(result.OutputDir, "manifest.yaml"))
	if err != nil {
		t.Fatalf("read manifest failed: %v", err)
	}
	if !bytes.Contains(raw, []byte("\nMU_GLB2OBJ_warnings:\n")) {
		t.Fatalf("warnings key missing: %s", raw)
	}

	wantEvents := []ConvertProgressEventType{
		ConvertProgressEventTypeInputValidated,
		ConvertProgressEventTypeOutputPathResolved,
		ConvertProgressEventTypeSceneLoaded,
		ConvertProgressEventTypeSceneDecoded,
		ConvertProgressEventTypeExported,
	}
	if len(recorder.events) != len(wantEvents) {
		t.Fatalf("unexpected events: %v", recorder.events)
	}
	for i := range wantEvents {
		if recorder.events[i] != wantEvents[i] {
			t.Fatalf("unexpected events: %v", recorder.events)
		}
	}
}

func TestGlb2ObjUsecaseConvertIsIdempotent(t *testing.T) {
	tempDir := t.TempDir()
	inPath := filepath.Join(tempDir, "sample.glb")
	outDir := filepath.Join(tempDir, "out")
	writeSampleGLB(t, inPath)
	uc := newTestUsecase()

	snapshot := func() map[string][]byte {
		out := map[string][]byte{}
		for _, rel := range listFiles(t, outDir) {
			data, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(rel)))
			if err != nil {
				t.Fatalf("read failed: %v", err)
			}
			out[rel] = data
		}
		return out
	}

	if _, err := uc.Convert(context.Background(), ConvertRequest{InputPath: inPath, OutputDir: outDir, DecodeOptions: decoder.Options{Workers: 1}}); err != nil {
		t.Fatalf("first convert failed: %v", err)
	}
	first := snapshot()

	stale := filepath.Join(outDir, "objects", "object_99.obj")
	glbtest.WriteFile(t, stale, []byte("v 0 0 0\n"))

	if _, err := uc.Convert(context.Background(), ConvertRequest{InputPath: inPath, OutputDir: outDir, DecodeOptions: decoder.Options{Workers: 8}}); err != nil {
		t.Fatalf("second convert failed: %v", err)
	}
	second := snapshot()

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale output should be removed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("file set changed: first=%d second=%d", len(first), len(second))
	}
	for rel, data := range first {
		if !bytes.Equal(data, second[rel]) {
			t.Fatalf("output differs between runs: %s", rel)
		}
	}
}

func TestGlb2ObjUsecaseConvertRejectsUnsupportedExtension(t *testing.T) {
	_, err := newTestUsecase().Convert(context.Background(), ConvertRequest{
		InputPath: filepath.Join(t.TempDir(), "sample.fbx"),
	})
	if !merr.IsKind(err, merr.KindExtInvalid) {
		t.Fatalf("expected ext invalid error: %v", err)
	}
}

func TestGlb2ObjUsecaseConvertAbortsOnMalformedContainer(t *testing.T) {
	tempDir := t.TempDir()
	inPath := filepath.Join(tempDir, "broken.glb")
	glbtest.WriteFile(t, inPath, []byte("not a glb file"))

	_, err := newTestUsecase().Convert(context.Background(), ConvertRequest{InputPath: inPath})
	if !merr.IsSceneFatal(err) {
		t.Fatalf("expected scene fatal error: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(tempDir, "broken")); !os.IsNotExist(statErr) {
		t.Fatalf("output dir should not be created: %v", statErr)
	}
}

func TestGlb2ObjUsecaseConvertRequiresInput(t *testing.T) {
	if _, err := newTestUsecase().Convert(context.Background(), ConvertRequest{}); err == nil {
		t.Fatalf("expected error")
	}
}
