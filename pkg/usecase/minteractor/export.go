// 指示: miu200521358
package minteractor

import (
	"context"
	"fmt"
	"image"
	"path"
	"path/filepath"
	"runtime"

	"github.com/miu200521358/mu_glb2obj/pkg/domain/model"
	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/logging"
	"github.com/miu200521358/mu_glb2obj/pkg/usecase/decoder"
	"golang.org/x/sync/errgroup"
)

// ExportOptions は出力時のオプションを表す。
type ExportOptions struct {
	Source   string
	UpAxis   decoder.UpAxis
	Workers  int
	Failures []decoder.Failure
	Warnings []model.Warning
}

// ExportResult は出力結果を表す。
type ExportResult struct {
	Destination  string
	ManifestPath string
	Manifest     *Manifest
	FileCount    int
}

// channelImage は出力対象のチャンネル画像1件を表す。
type channelImage struct {
	channel Channel
	image   image.Image
}

// channelsOf は材質の非nilチャンネルを固定順で返す。
func channelsOf(material *scene.DecodedMaterial) []channelImage {
	out := make([]channelImage, 0, 3)
	if material.Color != nil {
		out = append(out, channelImage{channel: ChannelColor, image: material.Color})
	}
	if material.Metallic != nil {
		out = append(out, channelImage{channel: ChannelMetallic, image: material.Metallic})
	}
	if material.Roughness != nil {
		out = append(out, channelImage{channel: ChannelRoughness, image: material.Roughness})
	}
	return out
}

// Export はオブジェクトをOBJ、材質チャンネルを画像として保存し、マニフェストを書き出す。
// ファイル名は順序とindexのみから決まり、同じ入力からは同じファイル群を出力する。
func (uc *Glb2ObjUsecase) Export(
	ctx context.Context,
	objects []*scene.DecodedObject,
	materials []*scene.DecodedMaterial,
	destination string,
	opts ExportOptions,
) (*ExportResult, error) {
	if uc.objectWriter == nil {
		return nil, fmt.Errorf("OBJ保存リポジトリが設定されていません")
	}
	if uc.imageWriter == nil {
		return nil, fmt.Errorf("画像保存リポジトリが設定されていません")
	}
	objectsDir, texturesDir, err := createOutputDirs(destination)
	if err != nil {
		return nil, err
	}

	upAxis := opts.UpAxis
	if upAxis == "" {
		upAxis = decoder.UpAxisY
	}
	manifest := &Manifest{
		Source:    opts.Source,
		UpAxis:    string(upAxis),
		Objects:   make([]ManifestObject, len(objects)),
		Materials: make([]ManifestMaterial, 0, len(materials)),
		Failures:  newManifestFailures(opts.Failures),
		Warnings:  append([]model.Warning(nil), opts.Warnings...),
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, object := range objects {
		fileName := ObjectFileName(object.Ordinal, uc.objectWriter.Ext())
		manifest.Objects[i] = ManifestObject{
			Ordinal:              object.Ordinal,
			Path:                 path.Join(objectsDirName, fileName),
			MeshIndex:            object.MeshIndex,
			NodeIndex:            object.NodeIndex,
			Material:             object.MaterialIndex,
			Vertices:             len(object.Vertices),
			Faces:                len(object.Faces),
			NormalsReconstructed: object.NormalsReconstructed,
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			if err := uc.objectWriter.Save(filepath.Join(objectsDir, fileName), object); err != nil {
				return fmt.Errorf("オブジェクトの保存に失敗しました: object=%d: %w", object.Ordinal, err)
			}
			return nil
		})
	}

	downscaled := make([][]bool, len(materials))
	fileCount := len(objects)
	for i, material := range materials {
		if material == nil || material.IsEmpty() {
			continue
		}
		entry := ManifestMaterial{Index: material.Index}
		channels := channelsOf(material)
		downscaled[i] = make([]bool, len(channels))
		for c, channel := range channels {
			fileName := TextureFileName(channel.channel, material.Index, uc.imageWriter.Ext())
			relPath := path.Join(texturesDirName, fileName)
			switch channel.channel {
			case ChannelColor:
				entry.Color = relPath
			case ChannelMetallic:
				entry.Metallic = relPath
			case ChannelRoughness:
				entry.Roughness = relPath
			}
			fileCount++
			group.Go(func() error {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				resized, err := uc.imageWriter.Save(filepath.Join(texturesDir, fileName), channel.image)
				if err != nil {
					return fmt.Errorf("チャンネル画像の保存に失敗しました: material=%d channel=%s: %w", material.Index, channel.channel, err)
				}
				downscaled[i][c] = resized
				return nil
			})
		}
		manifest.Materials = append(manifest.Materials, entry)
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, flags := range downscaled {
		for _, resized := range flags {
			if resized {
				manifest.Warnings = append(manifest.Warnings, model.Warning{
					ID:    model.WarningTextureDownscaled,
					Unit:  string(decoder.UnitMaterial),
					Index: materials[i].Index,
				})
				break
			}
		}
	}

	manifestPath := filepath.Join(destination, manifestFileName)
	if err := writeManifest(manifestPath, manifest); err != nil {
		return nil, err
	}
	logExportInfo("出力完了: dest=%s objects=%d textures=%d", destination, len(objects), fileCount-len(objects))
	return &ExportResult{
		Destination:  destination,
		ManifestPath: manifestPath,
		Manifest:     manifest,
		FileCount:    fileCount + 1,
	}, nil
}

// logExportInfo は出力のINFOログを出力する。
func logExportInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logExportWarn は出力の警告ログを出力する。
func logExportWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
