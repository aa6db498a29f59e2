// 指示: miu200521358
package io_image

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func gradientGray(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	return img
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":     FormatPNG,
		"PNG":  FormatPNG,
		"bmp":  FormatBMP,
		"tga":  FormatTGA,
		"jpg":  FormatJPEG,
		"jpeg": FormatJPEG,
	}
	for name, want := range cases {
		got, err := ParseFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseFormat("exr")
	assert.Error(t, err)
	assert.Equal(t, ".jpg", FormatJPEG.Ext())
	assert.Equal(t, ".png", NewImageRepository("", 0).Ext())
}

func TestEncodePNGKeepsGrayPixels(t *testing.T) {
	src := gradientGray(3, 2)
	var buf bytes.Buffer
	downscaled, err := NewImageRepository(FormatPNG, 0).Encode(&buf, src)
	require.NoError(t, err)
	assert.False(t, downscaled)

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	gray, ok := decoded.(*image.Gray)
	require.True(t, ok, "gray channel should stay single-channel: %T", decoded)
	assert.Equal(t, src.Pix, gray.Pix)
}

func TestEncodeBMPAndTGA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		src.SetNRGBA(i%2, i/2, color.NRGBA{R: uint8(40 * i), G: 10, B: 200, A: 255})
	}

	var bmpBuf bytes.Buffer
	_, err := NewImageRepository(FormatBMP, 0).Encode(&bmpBuf, src)
	require.NoError(t, err)
	decodedBMP, err := bmp.Decode(&bmpBuf)
	require.NoError(t, err)
	r, _, _, _ := decodedBMP.At(1, 1).RGBA()
	assert.Equal(t, uint32(120), r>>8)

	var tgaBuf bytes.Buffer
	_, err = NewImageRepository(FormatTGA, 0).Encode(&tgaBuf, src)
	require.NoError(t, err)
	decodedTGA, err := tga.Decode(&tgaBuf)
	require.NoError(t, err)
	_, _, b, _ := decodedTGA.At(0, 1).RGBA()
	assert.Equal(t, uint32(200), b>>8)
}

func TestFitMaxSizeKeepsAspectRatio(t *testing.T) {
	src := gradientGray(8, 4)
	resized, downscaled := FitMaxSize(src, 4)
	assert.True(t, downscaled)
	assert.Equal(t, image.Pt(4, 2), resized.Bounds().Size())

	same, downscaled := FitMaxSize(src, 8)
	assert.False(t, downscaled)
	assert.Same(t, src, same)

	unlimited, downscaled := FitMaxSize(src, 0)
	assert.False(t, downscaled)
	assert.Same(t, src, unlimited)
}

func TestSaveIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	repo := NewImageRepository(FormatPNG, 2)
	path := filepath.Join(dir, "roughness_0.png")

	downscaled, err := repo.Save(path, gradientGray(4, 4))
	require.NoError(t, err)
	assert.True(t, downscaled)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = repo.Save(path, gradientGray(4, 4))
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = repo.Save("", gradientGray(1, 1))
	assert.Error(t, err)
	_, err = repo.Save(path, nil)
	assert.Error(t, err)
}
