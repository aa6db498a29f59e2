// 指示: miu200521358
package decoder

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/channel"
	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
	"golang.org/x/image/draw"
)

// ITextureSource はテクスチャindexから画像を取得する契約を表す。
type ITextureSource interface {
	// TextureImage はテクスチャindexの画像を返す。
	TextureImage(textureIndex int) (image.Image, error)
}

// MaterialDecodeResult は材質デコード結果と補足情報を表す。
type MaterialDecodeResult struct {
	Material            *scene.DecodedMaterial
	GrayscaleMRTexture  bool
	MetallicFromFactor  bool
	RoughnessFromFactor bool
}

// DecodeMaterial は材質をcolor/metallic/roughnessのチャンネル画像へ分解する。
// 係数はテクスチャ、またはテクスチャが無い場合は1x1画像へ乗算する。
func DecodeMaterial(index int, def scene.MaterialDef, textures ITextureSource) (*MaterialDecodeResult, error) {
	result := &MaterialDecodeResult{
		Material: &scene.DecodedMaterial{Index: index},
	}

	baseColor, err := decodeBaseColor(def, textures)
	if err != nil {
		return nil, err
	}
	result.Material.Color = baseColor

	var metallic, roughness *image.Gray
	if def.MetallicRoughnessTexture != nil {
		img, err := textures.TextureImage(*def.MetallicRoughnessTexture)
		if err != nil {
			return nil, err
		}
		if IsGrayscale(img) {
			roughness = toGray(img)
			result.GrayscaleMRTexture = true
		} else {
			metallic, roughness = splitMetallicRoughness(toNRGBA(img))
		}
	}
	if def.MetallicFactor != nil {
		if metallic == nil {
			metallic = solidGray(255)
			result.MetallicFromFactor = true
		}
		scaleGray(metallic, *def.MetallicFactor)
	}
	if def.RoughnessFactor != nil {
		if roughness == nil {
			roughness = solidGray(255)
			result.RoughnessFromFactor = true
		}
		scaleGray(roughness, *def.RoughnessFactor)
	}
	result.Material.Metallic = metallic
	result.Material.Roughness = roughness
	return result, nil
}

// decodeBaseColor はベースカラー画像を求める。
func decodeBaseColor(def scene.MaterialDef, textures ITextureSource) (*image.NRGBA, error) {
	var out *image.NRGBA
	if def.BaseColorTexture != nil {
		img, err := textures.TextureImage(*def.BaseColorTexture)
		if err != nil {
			return nil, err
		}
		out = toNRGBA(img)
	}
	if def.BaseColorFactor == nil {
		return out, nil
	}
	if out == nil {
		out = image.NewNRGBA(image.Rect(0, 0, 1, 1))
		out.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	}
	factor := def.BaseColorFactor
	for i := 0; i < len(out.Pix); i += 4 {
		for c := 0; c < 4; c++ {
			out.Pix[i+c] = scaleByte(out.Pix[i+c], factor[c])
		}
	}
	return out, nil
}

// splitMetallicRoughness はGチャンネルをmetallic、Bチャンネルをroughnessとして取り出す。
func splitMetallicRoughness(img *image.NRGBA) (*image.Gray, *image.Gray) {
	// Pixをそのまま読ませて乗算済みalphaへの変換を避ける
	raw := &image.RGBA{Pix: img.Pix, Stride: img.Stride, Rect: img.Rect}
	return channel.Extract(raw, channel.Green), channel.Extract(raw, channel.Blue)
}

// IsGrayscale は単チャンネル画像か判定する。
func IsGrayscale(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	return false
}

// toNRGBA は画像を非乗算RGBAへ複製する。
// NRGBA入力は透明画素の色を保ったまま行単位で複製する。
func toNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < bounds.Dy(); y++ {
			start := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(out.Pix[y*out.Stride:(y+1)*out.Stride], src.Pix[start:start+bounds.Dx()*4])
		}
		return out
	}
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out
}

// toGray は画像をGrayへ複製する。
func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out
}

// solidGray は1x1の単色Gray画像を返す。
func solidGray(value uint8) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, 1, 1))
	out.Pix[0] = value
	return out
}

// scaleGray は全画素へ係数を乗算する。
func scaleGray(img *image.Gray, factor float64) {
	for i, v := range img.Pix {
		img.Pix[i] = scaleByte(v, factor)
	}
}

// scaleByte は clamp(round(v*factor)) を返す。
func scaleByte(v uint8, factor float64) uint8 {
	return clampByte(math.Round(float64(v) * factor))
}
