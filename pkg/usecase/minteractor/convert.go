// 指示: miu200521358
package minteractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/miu200521358/mu_glb2obj/pkg/usecase/decoder"
)

// Convert はGLB入力を読み込み、OBJとチャンネル画像として保存する。
// 単位ごとのデコード失敗はマニフェストへ記録し、エラーにはしない。
func (uc *Glb2ObjUsecase) Convert(ctx context.Context, request ConvertRequest) (*ConvertResult, error) {
	if strings.TrimSpace(request.InputPath) == "" && request.Scene == nil {
		return nil, fmt.Errorf("入力GLBパスが未指定です")
	}
	reportConvertProgress(request.ProgressReporter, ConvertProgressEvent{Type: ConvertProgressEventTypeInputValidated})

	outputDir := strings.TrimSpace(request.OutputDir)
	if outputDir == "" {
		outputDir = BuildDefaultOutputDir(request.InputPath)
	}
	if outputDir == "" {
		return nil, fmt.Errorf("保存先ディレクトリが未指定です")
	}
	reportConvertProgress(request.ProgressReporter, ConvertProgressEvent{Type: ConvertProgressEventTypeOutputPathResolved})

	s := request.Scene
	if s == nil {
		loaded, err := uc.LoadScene(request.Reader, request.InputPath)
		if err != nil {
			return nil, err
		}
		s = loaded
	}
	reportConvertProgress(request.ProgressReporter, ConvertProgressEvent{
		Type:          ConvertProgressEventTypeSceneLoaded,
		MaterialCount: len(s.Materials),
	})

	opts := request.DecodeOptions
	report, err := decoder.Decode(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	reportConvertProgress(request.ProgressReporter, ConvertProgressEvent{
		Type:          ConvertProgressEventTypeSceneDecoded,
		ObjectCount:   len(report.Objects),
		MaterialCount: report.DecodedMaterialCount(),
		FailureCount:  len(report.Failures),
	})

	exported, err := uc.Export(ctx, report.Objects, report.Materials, outputDir, ExportOptions{
		Source:   s.Name,
		UpAxis:   opts.UpAxis,
		Workers:  opts.Workers,
		Failures: report.Failures,
		Warnings: report.Warnings,
	})
	if err != nil {
		return nil, err
	}
	reportConvertProgress(request.ProgressReporter, ConvertProgressEvent{
		Type:          ConvertProgressEventTypeExported,
		ObjectCount:   len(report.Objects),
		MaterialCount: report.DecodedMaterialCount(),
		FailureCount:  len(report.Failures),
		FileCount:     exported.FileCount,
	})
	return &ConvertResult{
		Scene:     s,
		Report:    report,
		Export:    exported,
		OutputDir: outputDir,
	}, nil
}
