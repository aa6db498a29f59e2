// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
	"github.com/miu200521358/mu_glb2obj/pkg/usecase/decoder"
	"github.com/miu200521358/mu_glb2obj/pkg/usecase/port/moutput"
)

// ConvertProgressEventType は変換処理の進捗イベント種別を表す。
type ConvertProgressEventType string

const (
	// ConvertProgressEventTypeInputValidated は入力検証完了イベントを表す。
	ConvertProgressEventTypeInputValidated ConvertProgressEventType = "input_validated"
	// ConvertProgressEventTypeOutputPathResolved は出力先解決完了イベントを表す。
	ConvertProgressEventTypeOutputPathResolved ConvertProgressEventType = "output_path_resolved"
	// ConvertProgressEventTypeSceneLoaded はシーン読み込み完了イベントを表す。
	ConvertProgressEventTypeSceneLoaded ConvertProgressEventType = "scene_loaded"
	// ConvertProgressEventTypeSceneDecoded はシーンデコード完了イベントを表す。
	ConvertProgressEventTypeSceneDecoded ConvertProgressEventType = "scene_decoded"
	// ConvertProgressEventTypeExported は出力完了イベントを表す。
	ConvertProgressEventTypeExported ConvertProgressEventType = "exported"
)

// ConvertProgressEvent は変換処理の進捗イベントを表す。
type ConvertProgressEvent struct {
	Type          ConvertProgressEventType
	ObjectCount   int
	MaterialCount int
	FailureCount  int
	FileCount     int
}

// IConvertProgressReporter は変換処理の進捗通知契約を表す。
type IConvertProgressReporter interface {
	// ReportConvertProgress は変換処理進捗を通知する。
	ReportConvertProgress(event ConvertProgressEvent)
}

// ConvertRequest はGLB変換要求を表す。
type ConvertRequest struct {
	InputPath        string
	OutputDir        string
	Scene            *scene.Scene
	Reader           moutput.ISceneReader
	DecodeOptions    decoder.Options
	ProgressReporter IConvertProgressReporter
}

// ConvertResult はGLB変換結果を表す。
type ConvertResult struct {
	Scene     *scene.Scene
	Report    *decoder.Report
	Export    *ExportResult
	OutputDir string
}

// reportConvertProgress は進捗通知先があれば通知する。
func reportConvertProgress(reporter IConvertProgressReporter, event ConvertProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportConvertProgress(event)
}
