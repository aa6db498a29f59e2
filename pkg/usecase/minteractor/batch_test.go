// 指示: miu200521358
package minteractor

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/miu200521358/mu_glb2obj/internal/glbtest"
	"github.com/miu200521358/mu_glb2obj/pkg/usecase/decoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// prepareBatchSource は正常2件・破損1件・対象外1件の入力ディレクトリを作る。
func prepareBatchSource(t *testing.T) string {
	t.Helper()
	srcDir := t.TempDir()
	nested := filepath.Join(srcDir, "props")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeSampleGLB(t, filepath.Join(srcDir, "chair.glb"))
	writeSampleGLB(t, filepath.Join(nested, "table.GLB"))
	glbtest.WriteFile(t, filepath.Join(srcDir, "broken.glb"), []byte("broken"))
	glbtest.WriteFile(t, filepath.Join(srcDir, "readme.txt"), []byte("skip"))
	return srcDir
}

func TestFindSourceFilesFiltersAndSorts(t *testing.T) {
	srcDir := prepareBatchSource(t)

	files, err := FindSourceFiles(srcDir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(srcDir, "broken.glb"),
		filepath.Join(srcDir, "chair.glb"),
		filepath.Join(srcDir, "props", "table.GLB"),
	}, files)
}

func TestBuildBatchOutputDirMirrorsRelativePath(t *testing.T) {
	got := BuildBatchOutputDir(filepath.Join("in"), filepath.Join("out"), filepath.Join("in", "props", "table.glb"))
	assert.Equal(t, filepath.Join("out", "props", "table"), got)
}

func TestBatchConvertsEachFileIndependently(t *testing.T) {
	srcDir := prepareBatchSource(t)
	dstDir := t.TempDir()
	var notified atomic.Int32

	result, err := newTestUsecase().Batch(context.Background(), BatchRequest{
		SrcDir:        srcDir,
		DstDir:        dstDir,
		Concurrency:   3,
		DecodeOptions: decoder.Options{Workers: 2},
		OnItem: func(item BatchItem) {
			notified.Add(1)
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.EqualValues(t, 3, notified.Load())

	assert.Equal(t, BatchStatusFailed, result.Items[0].Status)
	assert.Error(t, result.Items[0].Err)
	// サンプルは破損メッシュを1件含むため部分成功になる。
	assert.Equal(t, BatchStatusPartial, result.Items[1].Status)
	assert.Equal(t, 2, result.Items[1].ObjectCount)
	assert.Equal(t, 1, result.Items[1].FailureCount)
	assert.Equal(t, BatchStatusPartial, result.Items[2].Status)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 2, result.Partial)
	assert.Equal(t, 1, result.Failed)

	assert.FileExists(t, filepath.Join(dstDir, "chair", "manifest.yaml"))
	assert.FileExists(t, filepath.Join(dstDir, "props", "table", "objects", "object_0.obj"))
	assert.NoDirExists(t, filepath.Join(dstDir, "broken"))
}

func TestBatchDryRunWritesNothing(t *testing.T) {
	srcDir := prepareBatchSource(t)
	dstDir := filepath.Join(t.TempDir(), "out")

	result, err := newTestUsecase().Batch(context.Background(), BatchRequest{
		SrcDir: srcDir,
		DstDir: dstDir,
		DryRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.DryRun)
	assert.Equal(t, filepath.Join(dstDir, "chair"), result.Items[1].OutputDir)
	assert.NoDirExists(t, dstDir)
}

func TestBatchRequiresDirectories(t *testing.T) {
	_, err := newTestUsecase().Batch(context.Background(), BatchRequest{DstDir: "out"})
	assert.Error(t, err)
	_, err = newTestUsecase().Batch(context.Background(), BatchRequest{SrcDir: "in"})
	assert.Error(t, err)
}

func TestBatchSeparatesInputsSharingStem(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	writeSampleGLB(t, filepath.Join(srcDir, "a.glb"))
	writeSampleGLB(t, filepath.Join(srcDir, "a.vrm"))
	writeSampleGLB(t, filepath.Join(srcDir, "b.glb"))

	result, err := newTestUsecase().Batch(context.Background(), BatchRequest{
		SrcDir:      srcDir,
		DstDir:      dstDir,
		Concurrency: 3,
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.Equal(t, filepath.Join(dstDir, "a_glb"), result.Items[0].OutputDir)
	assert.Equal(t, filepath.Join(dstDir, "a_vrm"), result.Items[1].OutputDir)
	assert.Equal(t, filepath.Join(dstDir, "b"), result.Items[2].OutputDir)
	assert.Equal(t, 0, result.Failed)
	for _, item := range result.Items {
		assert.FileExists(t, filepath.Join(item.OutputDir, "manifest.yaml"))
	}
	assert.NoDirExists(t, filepath.Join(dstDir, "a"))
}

func TestPlanBatchOutputDirsFailsUnresolvableOverlap(t *testing.T) {
	srcDir := filepath.Join("in")
	files := []string{
		filepath.Join(srcDir, "a.glb"),
		filepath.Join(srcDir, "a.GLB"),
		filepath.Join(srcDir, "c.glb"),
	}
	dirs, errs := planBatchOutputDirs(srcDir, "out", files)
	assert.Equal(t, filepath.Join("out", "a_glb"), dirs[0])
	assert.Equal(t, filepath.Join("out", "a_glb"), dirs[1])
	assert.Equal(t, filepath.Join("out", "c"), dirs[2])
	assert.Error(t, errs[0])
	assert.Error(t, errs[1])
	assert.NoError(t, errs[2])
}
