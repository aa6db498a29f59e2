// 指示: miu200521358
// Package io_glb はGLB/VRM/NTSM入力をシーンへ変換する。
package io_glb

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/logging"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/merr"
)

// LoadProgressEventType はGLB読込進捗イベント種別を表す。
type LoadProgressEventType string

const (
	// LoadProgressEventTypeFileReadComplete はファイル読込完了イベントを表す。
	LoadProgressEventTypeFileReadComplete LoadProgressEventType = "file_read_complete"
	// LoadProgressEventTypeSceneParsed はシーン解析完了イベントを表す。
	LoadProgressEventTypeSceneParsed LoadProgressEventType = "scene_parsed"
)

// LoadProgressEvent はGLB読込進捗イベントを表す。
type LoadProgressEvent struct {
	Type          LoadProgressEventType
	FileSizeBytes int
	NodeCount     int
	MeshCount     int
	MaterialCount int
	AccessorCount int
}

var supportedExtensions = []string{".glb", ".vrm", ".ntsm"}

// GlbRepository はGLB入力の読み込み契約を表す。
type GlbRepository struct {
	loadProgressReporter func(LoadProgressEvent)
}

// NewGlbRepository はGlbRepositoryを生成する。
func NewGlbRepository() *GlbRepository {
	return &GlbRepository{}
}

// SetLoadProgressReporter は読込進捗受信コールバックを設定する。
func (r *GlbRepository) SetLoadProgressReporter(reporter func(LoadProgressEvent)) {
	if r == nil {
		return
	}
	r.loadProgressReporter = reporter
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *GlbRepository) CanLoad(path string) bool {
	return IsSupportedPath(path)
}

// IsSupportedPath は読み込み対象の拡張子か判定する。
func IsSupportedPath(path string) bool {
	ext := filepath.Ext(path)
	for _, supported := range supportedExtensions {
		if strings.EqualFold(ext, supported) {
			return true
		}
	}
	return false
}

// InferName はパスから表示名を推定する。
func (r *GlbRepository) InferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// Load はGLBを読み込みシーンを返す。
func (r *GlbRepository) Load(path string) (*scene.Scene, error) {
	if !r.CanLoad(path) {
		return nil, merr.NewExtInvalid(path)
	}
	loadTargetName := filepath.Base(path)
	logGlbInfo("GLB読込開始: file=%s", loadTargetName)

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, merr.NewFileNotFound(path, err)
		}
		return nil, merr.NewMalformedContainer("GLBファイルの読み取りに失敗しました", err)
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeFileReadComplete,
		FileSizeBytes: len(b),
	})
	logGlbDebug("GLB読込ステップ: ファイル読み取り完了 bytes=%d", len(b))

	s, err := r.LoadBytes(b, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	s.Name = r.InferName(path)
	logGlbInfo("GLB読込完了: file=%s", loadTargetName)
	return s, nil
}

// LoadBytes はバイト列を解析してシーンを返す。NTSMラッパーは自動で外す。
func (r *GlbRepository) LoadBytes(b []byte, sourceDir string) (*scene.Scene, error) {
	if IsNtsm(b) {
		header, glb, err := UnwrapNtsm(b)
		if err != nil {
			return nil, err
		}
		logGlbInfo("NTSMラッパー検出: name=%s version=%d glbBytes=%d", header.ItemName(), header.Version, len(glb))
		if count := header.ParticleCount(); count > 0 {
			logGlbWarn("NTSMパーティクル定義は出力対象外です: emitters=%d", count)
		}
		b = glb
	}

	s, err := Parse(b, sourceDir)
	if err != nil {
		return nil, err
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeSceneParsed,
		FileSizeBytes: len(b),
		NodeCount:     len(s.Nodes),
		MeshCount:     len(s.Meshes),
		MaterialCount: len(s.Materials),
		AccessorCount: len(s.Accessors),
	})
	logGlbInfo(
		"GLB読込ステップ: シーン解析完了 nodes=%d meshes=%d materials=%d accessors=%d roots=%d",
		len(s.Nodes),
		len(s.Meshes),
		len(s.Materials),
		len(s.Accessors),
		len(s.RootIndices),
	)
	for i, mesh := range s.Meshes {
		if mesh.PrimitiveCount > 1 {
			logGlbWarn("primitive 0 以外は読み込みません: mesh=%d primitives=%d", i, mesh.PrimitiveCount)
		}
	}
	return s, nil
}

// reportLoadProgress は読込進捗イベントを通知する。
func (r *GlbRepository) reportLoadProgress(event LoadProgressEvent) {
	if r == nil || r.loadProgressReporter == nil {
		return
	}
	r.loadProgressReporter(event)
}

// logGlbInfo はGLB読込のINFOログを出力する。
func logGlbInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logGlbDebug はGLB読込のデバッグログを出力する。
func logGlbDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logGlbWarn はGLB読込の警告ログを出力する。
func logGlbWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
