// 指示: miu200521358
package io_glb

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/merr"
	"github.com/qmuntal/gltf"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ImageSource はシーン内画像をデコードし、画像index単位でキャッシュする。
type ImageSource struct {
	scene *scene.Scene
	mu    sync.Mutex
	slots map[int]*imageSlot
}

// imageSlot は1画像のデコード結果を保持する。
type imageSlot struct {
	once sync.Once
	img  image.Image
	err  error
}

// NewImageSource はImageSourceを生成する。
func NewImageSource(s *scene.Scene) *ImageSource {
	return &ImageSource{
		scene: s,
		slots: map[int]*imageSlot{},
	}
}

// TextureImage はテクスチャindexから画像を解決する。
func (s *ImageSource) TextureImage(textureIndex int) (image.Image, error) {
	if textureIndex < 0 || textureIndex >= len(s.scene.Textures) {
		return nil, merr.NewImageDecodeFailed(merr.NoIndex, fmt.Errorf("texture index が不正です: %d", textureIndex))
	}
	source := s.scene.Textures[textureIndex].Source
	if source == nil {
		return nil, merr.NewImageDecodeFailed(merr.NoIndex, fmt.Errorf("texture.source が未設定です: %d", textureIndex))
	}
	return s.Image(*source)
}

// Image は画像indexから画像をデコードする。同じindexは1度だけデコードする。
func (s *ImageSource) Image(imageIndex int) (image.Image, error) {
	s.mu.Lock()
	slot, ok := s.slots[imageIndex]
	if !ok {
		slot = &imageSlot{}
		s.slots[imageIndex] = slot
	}
	s.mu.Unlock()

	slot.once.Do(func() {
		slot.img, slot.err = s.decode(imageIndex)
	})
	return slot.img, slot.err
}

func (s *ImageSource) decode(imageIndex int) (image.Image, error) {
	if imageIndex < 0 || imageIndex >= len(s.scene.Images) {
		return nil, merr.NewImageDecodeFailed(imageIndex, fmt.Errorf("image index が不正です"))
	}
	def := s.scene.Images[imageIndex]
	data, err := ImageBytes(s.scene, def)
	if err != nil {
		if merr.IsSceneFatal(err) {
			return nil, err
		}
		return nil, merr.NewImageDecodeFailed(imageIndex, err)
	}
	img, err := DecodeImage(data, def.MimeType, def.URI)
	if err != nil {
		return nil, merr.NewImageDecodeFailed(imageIndex, err)
	}
	logGlbDebug("画像デコード完了: image=%d size=%dx%d", imageIndex, img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}

// ImageBytes は画像定義からバイト列を解決する。
// bufferView、data URI、ソースファイルからの相対パスの順に解決する。
func ImageBytes(s *scene.Scene, def scene.ImageDef) ([]byte, error) {
	if def.BufferView != nil {
		viewIndex := *def.BufferView
		if viewIndex < 0 || viewIndex >= len(s.BufferViews) {
			return nil, merr.NewMalformedContainer("image.bufferView が不正です: %d", nil, viewIndex)
		}
		view := s.BufferViews[viewIndex]
		if !viewWithinBlob(view, len(s.Blob)) {
			return nil, merr.NewOutOfBounds(merr.NoIndex, "画像bufferView範囲がBINチャンク外です: bufferView=%d", viewIndex)
		}
		return s.Blob[view.ByteOffset : view.ByteOffset+view.ByteLength], nil
	}

	uri := strings.TrimSpace(def.URI)
	if uri == "" {
		return nil, fmt.Errorf("画像ソースが未指定です")
	}
	if strings.HasPrefix(uri, "data:") {
		data, err := (&gltf.Image{URI: uri}).MarshalData()
		if err != nil {
			return nil, fmt.Errorf("data URI のデコードに失敗しました: %w", err)
		}
		if len(data) == 0 {
			// png/jpeg/octet-stream 以外のMIMEは gltf 側で展開されない
			data, err = decodeBase64DataURI(uri)
			if err != nil {
				return nil, fmt.Errorf("data URI のデコードに失敗しました: %w", err)
			}
		}
		return data, nil
	}

	sourcePath := filepath.FromSlash(uri)
	if !filepath.IsAbs(sourcePath) {
		sourcePath = filepath.Join(s.SourceDir, sourcePath)
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("外部画像の読み取りに失敗しました: %w", err)
	}
	return data, nil
}

// decodeBase64DataURI はbase64形式のdata URIを展開する。
func decodeBase64DataURI(uri string) ([]byte, error) {
	commaIndex := strings.Index(uri, ",")
	if commaIndex <= 0 {
		return nil, fmt.Errorf("data URI の形式が不正です")
	}
	if !strings.HasSuffix(uri[:commaIndex], ";base64") {
		return nil, fmt.Errorf("base64 以外の data URI は未対応です")
	}
	return base64.StdEncoding.DecodeString(uri[commaIndex+1:])
}

// DecodeImage は画像バイト列をデコードする。
// 形式はシグネチャで判定し、TGAはシグネチャを持たないためMIMEタイプか拡張子で判定する。
// tgaは空マジックで登録されるため image.Decode は使わない。
func DecodeImage(data []byte, mimeType string, uri string) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("画像データが空です")
	}
	mime := sniffMime(data)
	decode := imageDecoderByMime(mime)
	if decode == nil {
		if !isTgaHint(mimeType, uri) {
			return nil, fmt.Errorf("画像形式を判別できません(%s)", mime)
		}
		mime = "image/x-tga"
		decode = tga.Decode
	}
	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像のデコードに失敗しました(%s): %w", mime, err)
	}
	return img, nil
}

// imageDecoderByMime はMIMEタイプに対応するデコーダーを返す。未対応ならnil。
func imageDecoderByMime(mime string) func(io.Reader) (image.Image, error) {
	switch mime {
	case "image/png":
		return png.Decode
	case "image/jpeg":
		return jpeg.Decode
	case "image/webp":
		return webp.Decode
	case "image/bmp":
		return bmp.Decode
	case "image/tiff":
		return tiff.Decode
	default:
		return nil
	}
}

// sniffMime はシグネチャから推定したMIMEタイプを返す。
func sniffMime(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return "unknown"
	}
	return kind.MIME.Value
}

func isTgaHint(mimeType string, uri string) bool {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/tga", "image/x-tga", "image/x-targa":
		return true
	}
	return strings.EqualFold(filepath.Ext(uri), ".tga")
}
