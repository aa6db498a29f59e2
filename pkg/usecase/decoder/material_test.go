// 指示: miu200521358
package decoder

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTextures はテクスチャindexごとの画像を返す。
type stubTextures map[int]image.Image

func (s stubTextures) TextureImage(textureIndex int) (image.Image, error) {
	img, ok := s[textureIndex]
	if !ok {
		return nil, errors.New("texture not found")
	}
	return img, nil
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

func filledNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDecodeMaterialBaseFactorWithoutTexture(t *testing.T) {
	def := scene.MaterialDef{BaseColorFactor: &[4]float64{0.5, 1, 1, 1}}
	got, err := DecodeMaterial(0, def, stubTextures{})
	require.NoError(t, err)

	colorImage := got.Material.Color
	require.NotNil(t, colorImage)
	assert.Equal(t, image.Rect(0, 0, 1, 1), colorImage.Bounds())
	px := colorImage.NRGBAAt(0, 0)
	assert.GreaterOrEqual(t, px.R, uint8(127))
	assert.LessOrEqual(t, px.R, uint8(128))
	assert.Equal(t, uint8(255), px.G)
	assert.Equal(t, uint8(255), px.B)
	assert.Equal(t, uint8(255), px.A)
	assert.Nil(t, got.Material.Metallic)
	assert.Nil(t, got.Material.Roughness)
}

func TestDecodeMaterialBaseFactorMultipliesTexture(t *testing.T) {
	textures := stubTextures{0: filledNRGBA(2, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 255})}
	def := scene.MaterialDef{
		BaseColorTexture: intPtr(0),
		BaseColorFactor:  &[4]float64{0.5, 0.5, 2, 0.5},
	}
	got, err := DecodeMaterial(0, def, textures)
	require.NoError(t, err)
	require.Equal(t, 2, got.Material.Color.Bounds().Dx())
	assert.Equal(t, color.NRGBA{R: 100, G: 50, B: 100, A: 128}, got.Material.Color.NRGBAAt(1, 1))
}

func TestDecodeMaterialMetallicFactorZeroClearsChannel(t *testing.T) {
	textures := stubTextures{3: filledNRGBA(2, 2, color.NRGBA{R: 0, G: 180, B: 90, A: 255})}
	def := scene.MaterialDef{
		MetallicRoughnessTexture: intPtr(3),
		MetallicFactor:           floatPtr(0),
	}
	got, err := DecodeMaterial(1, def, textures)
	require.NoError(t, err)
	require.NotNil(t, got.Material.Metallic)
	for _, v := range got.Material.Metallic.Pix {
		assert.Equal(t, uint8(0), v)
	}
	require.NotNil(t, got.Material.Roughness)
	assert.Equal(t, uint8(90), got.Material.Roughness.GrayAt(0, 0).Y)
}

func TestDecodeMaterialSplitsGreenAndBlueWithoutPremultiply(t *testing.T) {
	textures := stubTextures{0: filledNRGBA(1, 1, color.NRGBA{R: 10, G: 120, B: 240, A: 0})}
	def := scene.MaterialDef{MetallicRoughnessTexture: intPtr(0)}
	got, err := DecodeMaterial(0, def, textures)
	require.NoError(t, err)
	assert.Equal(t, uint8(120), got.Material.Metallic.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(240), got.Material.Roughness.GrayAt(0, 0).Y)
	assert.Nil(t, got.Material.Color)
}

func TestDecodeMaterialGrayscaleTextureIsRoughnessOnly(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.Pix[0] = 40
	gray.Pix[1] = 200
	def := scene.MaterialDef{MetallicRoughnessTexture: intPtr(0)}
	got, err := DecodeMaterial(0, def, stubTextures{0: gray})
	require.NoError(t, err)
	assert.True(t, got.GrayscaleMRTexture)
	assert.Nil(t, got.Material.Metallic)
	require.NotNil(t, got.Material.Roughness)
	assert.Equal(t, []uint8{40, 200}, got.Material.Roughness.Pix)
}

func TestDecodeMaterialGrayscaleTextureWithMetallicFactor(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	def := scene.MaterialDef{
		MetallicRoughnessTexture: intPtr(0),
		MetallicFactor:           floatPtr(0.5),
	}
	got, err := DecodeMaterial(0, def, stubTextures{0: gray})
	require.NoError(t, err)
	assert.True(t, got.MetallicFromFactor)
	require.NotNil(t, got.Material.Metallic)
	assert.Equal(t, image.Rect(0, 0, 1, 1), got.Material.Metallic.Bounds())
	assert.Equal(t, uint8(128), got.Material.Metallic.Pix[0])
}

func TestDecodeMaterialFactorsWithoutTexture(t *testing.T) {
	def := scene.MaterialDef{
		MetallicFactor:  floatPtr(1),
		RoughnessFactor: floatPtr(0.25),
	}
	got, err := DecodeMaterial(0, def, stubTextures{})
	require.NoError(t, err)
	assert.True(t, got.MetallicFromFactor)
	assert.True(t, got.RoughnessFromFactor)
	assert.Equal(t, uint8(255), got.Material.Metallic.Pix[0])
	assert.Equal(t, uint8(64), got.Material.Roughness.Pix[0])
}

func TestDecodeMaterialWithoutSourcesSynthesizesNothing(t *testing.T) {
	got, err := DecodeMaterial(4, scene.MaterialDef{}, stubTextures{})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Material.Index)
	assert.True(t, got.Material.IsEmpty())
}

func TestDecodeMaterialPropagatesTextureError(t *testing.T) {
	def := scene.MaterialDef{BaseColorTexture: intPtr(9)}
	_, err := DecodeMaterial(0, def, stubTextures{})
	assert.Error(t, err)
}
