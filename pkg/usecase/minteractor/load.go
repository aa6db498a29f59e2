// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/merr"
	"github.com/miu200521358/mu_glb2obj/pkg/usecase/port/moutput"
)

// LoadScene はGLBシーンを読み込む。
func (uc *Glb2ObjUsecase) LoadScene(rep moutput.ISceneReader, path string) (*scene.Scene, error) {
	repo := rep
	if repo == nil {
		repo = uc.sceneReader
	}
	if repo == nil {
		return nil, fmt.Errorf("シーン読み込みリポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("入力パスが未指定です")
	}
	if !repo.CanLoad(path) {
		return nil, merr.NewExtInvalid(path)
	}
	loaded, err := repo.Load(path)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return nil, fmt.Errorf("シーン読み込み結果が空です")
	}
	return loaded, nil
}
