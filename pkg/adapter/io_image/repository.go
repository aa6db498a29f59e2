// 指示: miu200521358
// Package io_image は材質チャンネル画像をファイルへ保存する。
package io_image

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/ftrvxmtrx/tga"
	"github.com/nfnt/resize"
)

const (
	saveFileMode       = 0o644
	defaultJPEGQuality = 95
)

// Format は出力画像形式を表す。
type Format string

const (
	// FormatPNG はPNG形式を表す。
	FormatPNG Format = "png"
	// FormatBMP はBMP形式を表す。
	FormatBMP Format = "bmp"
	// FormatTGA はTGA形式を表す。
	FormatTGA Format = "tga"
	// FormatJPEG はJPEG形式を表す。
	FormatJPEG Format = "jpeg"
)

// ParseFormat は形式名を出力画像形式へ変換する。
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tga":
		return FormatTGA, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("未対応の画像形式です: %s", name)
	}
}

// Ext は形式の拡張子を返す。
func (f Format) Ext() string {
	switch f {
	case FormatBMP:
		return ".bmp"
	case FormatTGA:
		return ".tga"
	case FormatJPEG:
		return ".jpg"
	default:
		return ".png"
	}
}

// encoder は形式に対応するエンコーダーを返す。
func (f Format) encoder() imgio.Encoder {
	switch f {
	case FormatBMP:
		return imgio.BMPEncoder()
	case FormatTGA:
		return tga.Encode
	case FormatJPEG:
		return imgio.JPEGEncoder(defaultJPEGQuality)
	default:
		return imgio.PNGEncoder()
	}
}

// ImageRepository はチャンネル画像保存の契約を表す。
type ImageRepository struct {
	format         Format
	maxTextureSize int
}

// NewImageRepository はImageRepositoryを生成する。
// maxTextureSize が正の場合、長辺がそれを超える画像は縦横比を保って縮小する。
func NewImageRepository(format Format, maxTextureSize int) *ImageRepository {
	if format == "" {
		format = FormatPNG
	}
	return &ImageRepository{format: format, maxTextureSize: maxTextureSize}
}

// Ext は保存拡張子を返す。
func (r *ImageRepository) Ext() string {
	return r.format.Ext()
}

// Save は画像を保存し、縮小した場合は真を返す。
func (r *ImageRepository) Save(path string, img image.Image) (bool, error) {
	if strings.TrimSpace(path) == "" {
		return false, fmt.Errorf("画像保存先パスが未指定です")
	}
	if img == nil {
		return false, fmt.Errorf("保存対象画像が未設定です")
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, saveFileMode)
	if err != nil {
		return false, fmt.Errorf("画像ファイルの作成に失敗しました: %w", err)
	}
	downscaled, err := r.Encode(file, img)
	if err != nil {
		_ = file.Close()
		return false, err
	}
	if err := file.Close(); err != nil {
		return false, fmt.Errorf("画像ファイルのクローズに失敗しました: %w", err)
	}
	return downscaled, nil
}

// Encode は画像を出力形式で書き出し、縮小した場合は真を返す。
func (r *ImageRepository) Encode(w io.Writer, img image.Image) (bool, error) {
	prepared, downscaled := FitMaxSize(img, r.maxTextureSize)
	out := bufio.NewWriter(w)
	if err := r.format.encoder()(out, prepared); err != nil {
		return false, fmt.Errorf("画像のエンコードに失敗しました(%s): %w", r.format, err)
	}
	if err := out.Flush(); err != nil {
		return false, fmt.Errorf("画像の書き込みに失敗しました: %w", err)
	}
	return downscaled, nil
}

// FitMaxSize は長辺がmaxSizeを超える画像をLanczos3で縮小する。
func FitMaxSize(img image.Image, maxSize int) (image.Image, bool) {
	if maxSize <= 0 {
		return img, false
	}
	size := img.Bounds().Size()
	if size.X <= maxSize && size.Y <= maxSize {
		return img, false
	}
	return resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Lanczos3), true
}
