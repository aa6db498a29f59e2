// 指示: miu200521358
package minteractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_glb2obj/pkg/adapter/io_glb"
	"github.com/miu200521358/mu_glb2obj/pkg/usecase/decoder"
	"golang.org/x/sync/errgroup"
)

// BatchStatus はバッチ1件の結果種別を表す。
type BatchStatus string

const (
	// BatchStatusSucceeded は全単位の変換成功を表す。
	BatchStatusSucceeded BatchStatus = "succeeded"
	// BatchStatusPartial は出力はできたが一部単位が失敗したことを表す。
	BatchStatusPartial BatchStatus = "partial"
	// BatchStatusFailed はシーン単位の失敗を表す。
	BatchStatusFailed BatchStatus = "failed"
	// BatchStatusDryRun は出力先の計画のみを表す。
	BatchStatusDryRun BatchStatus = "dry_run"
)

// BatchRequest はディレクトリ一括変換要求を表す。
type BatchRequest struct {
	SrcDir        string
	DstDir        string
	Concurrency   int
	DryRun        bool
	DecodeOptions decoder.Options
	// OnItem は1件完了ごとに呼ばれる。複数goroutineから呼ばれる。
	OnItem func(item BatchItem)
}

// BatchItem は入力1件分の変換結果を表す。
type BatchItem struct {
	Index        int
	SourcePath   string
	OutputDir    string
	Status       BatchStatus
	Duration     time.Duration
	ObjectCount  int
	FailureCount int
	Err          error
}

// BatchResult は一括変換結果を表す。
type BatchResult struct {
	Items     []BatchItem
	Succeeded int
	Partial   int
	Failed    int
	DryRun    int
}

// FindSourceFiles は入力ディレクトリ配下の読み込み対象ファイルを列挙する。
func FindSourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && io_glb.IsSupportedPath(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("入力ディレクトリの走査に失敗しました: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// BuildBatchOutputDir は入力ディレクトリからの相対位置を保った出力先を返す。
func BuildBatchOutputDir(srcDir, dstDir, sourcePath string) string {
	return batchOutputDir(srcDir, dstDir, sourcePath, false)
}

func batchOutputDir(srcDir, dstDir, sourcePath string, withExt bool) string {
	relPath, err := filepath.Rel(srcDir, sourcePath)
	if err != nil {
		relPath = filepath.Base(sourcePath)
	}
	name := sanitizePathComponent(outputDirName(relPath, withExt))
	return filepath.Join(dstDir, filepath.Dir(relPath), name)
}

// planBatchOutputDirs は入力ごとの出力先を決める。
// 出力先が重なる入力は拡張子付きの名前にし、それでも重なる入力にはエラーを返す。
func planBatchOutputDirs(srcDir, dstDir string, files []string) ([]string, []error) {
	dirs := make([]string, len(files))
	for i, file := range files {
		dirs[i] = batchOutputDir(srcDir, dstDir, file, false)
	}
	for i, shared := range duplicateIndexes(dirs) {
		if shared {
			dirs[i] = batchOutputDir(srcDir, dstDir, files[i], true)
		}
	}
	errs := make([]error, len(files))
	for i, shared := range duplicateIndexes(dirs) {
		if shared {
			errs[i] = fmt.Errorf("出力先が他の入力と重複しています: %s", dirs[i])
		}
	}
	return dirs, errs
}

// duplicateIndexes は他の要素と値が重なる位置をtrueで返す。
func duplicateIndexes(values []string) []bool {
	counts := make(map[string]int, len(values))
	for _, value := range values {
		counts[value]++
	}
	out := make([]bool, len(values))
	for i, value := range values {
		out[i] = counts[value] > 1
	}
	return out
}

// Batch は入力ディレクトリ内のGLBを並列に変換する。
// 1件の失敗は他の変換を止めない。各タスクはnilを返すため兄弟タスクは中断されない。
func (uc *Glb2ObjUsecase) Batch(ctx context.Context, request BatchRequest) (*BatchResult, error) {
	srcDir := strings.TrimSpace(request.SrcDir)
	dstDir := strings.TrimSpace(request.DstDir)
	if srcDir == "" {
		return nil, fmt.Errorf("入力ディレクトリが未指定です")
	}
	if dstDir == "" {
		return nil, fmt.Errorf("出力ディレクトリが未指定です")
	}
	files, err := FindSourceFiles(srcDir)
	if err != nil {
		return nil, err
	}
	concurrency := request.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	logExportInfo("バッチ変換開始: src=%s dst=%s files=%d concurrency=%d", srcDir, dstDir, len(files), concurrency)

	outputDirs, planErrs := planBatchOutputDirs(srcDir, dstDir, files)
	items := make([]BatchItem, len(files))
	var group errgroup.Group
	group.SetLimit(concurrency)
	for i := range files {
		group.Go(func() error {
			item := uc.convertBatchItem(ctx, request, i, files[i], outputDirs[i], planErrs[i])
			items[i] = item
			if request.OnItem != nil {
				request.OnItem(item)
			}
			return nil
		})
	}
	_ = group.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &BatchResult{Items: items}
	for _, item := range items {
		switch item.Status {
		case BatchStatusSucceeded:
			result.Succeeded++
		case BatchStatusPartial:
			result.Partial++
		case BatchStatusDryRun:
			result.DryRun++
		default:
			result.Failed++
		}
	}
	logExportInfo(
		"バッチ変換サマリ: total=%d succeeded=%d partial=%d failed=%d dry_run=%d",
		len(items), result.Succeeded, result.Partial, result.Failed, result.DryRun,
	)
	return result, nil
}

// convertBatchItem は1件分の変換を実行する。
func (uc *Glb2ObjUsecase) convertBatchItem(
	ctx context.Context,
	request BatchRequest,
	index int,
	sourcePath string,
	outputDir string,
	planErr error,
) BatchItem {
	item := BatchItem{
		Index:      index,
		SourcePath: sourcePath,
		OutputDir:  outputDir,
		Status:     BatchStatusFailed,
	}
	if planErr != nil {
		item.Err = planErr
		return item
	}
	if request.DryRun {
		item.Status = BatchStatusDryRun
		return item
	}
	if err := ctx.Err(); err != nil {
		item.Err = err
		return item
	}
	startedAt := time.Now()
	converted, err := uc.Convert(ctx, ConvertRequest{
		InputPath:     sourcePath,
		OutputDir:     outputDir,
		DecodeOptions: request.DecodeOptions,
	})
	item.Duration = time.Since(startedAt)
	if err != nil {
		item.Err = err
		return item
	}
	item.ObjectCount = len(converted.Report.Objects)
	item.FailureCount = len(converted.Report.Failures)
	if converted.Report.HasFailures() {
		item.Status = BatchStatusPartial
	} else {
		item.Status = BatchStatusSucceeded
	}
	return item
}
