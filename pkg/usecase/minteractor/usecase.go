// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_glb2obj/pkg/usecase/port/moutput"

// Glb2ObjUsecaseDeps はGLB変換ユースケースの依存を表す。
type Glb2ObjUsecaseDeps struct {
	SceneReader  moutput.ISceneReader
	ObjectWriter moutput.IObjectWriter
	ImageWriter  moutput.IImageWriter
}

// Glb2ObjUsecase はGLBからOBJとチャンネル画像への変換処理をまとめたユースケースを表す。
type Glb2ObjUsecase struct {
	sceneReader  moutput.ISceneReader
	objectWriter moutput.IObjectWriter
	imageWriter  moutput.IImageWriter
}

// NewGlb2ObjUsecase はGLB変換ユースケースを生成する。
func NewGlb2ObjUsecase(deps Glb2ObjUsecaseDeps) *Glb2ObjUsecase {
	return &Glb2ObjUsecase{
		sceneReader:  deps.SceneReader,
		objectWriter: deps.ObjectWriter,
		imageWriter:  deps.ImageWriter,
	}
}
