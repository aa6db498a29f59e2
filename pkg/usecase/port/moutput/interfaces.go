// 指示: miu200521358
package moutput

import (
	"image"

	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
)

// ISceneReader はシーン入力の読み込み契約を表す。
type ISceneReader interface {
	// CanLoad は読み込み可否を判定する。
	CanLoad(path string) bool
	// Load はシーンを読み込む。
	Load(path string) (*scene.Scene, error)
}

// IObjectWriter はジオメトリ出力の書き込み契約を表す。
type IObjectWriter interface {
	// Ext は保存拡張子を返す。
	Ext() string
	// Save はオブジェクトを保存する。
	Save(path string, object *scene.DecodedObject) error
}

// IImageWriter はチャンネル画像出力の書き込み契約を表す。
type IImageWriter interface {
	// Ext は保存拡張子を返す。
	Ext() string
	// Save は画像を保存し、縮小した場合は真を返す。
	Save(path string, img image.Image) (bool, error)
}
