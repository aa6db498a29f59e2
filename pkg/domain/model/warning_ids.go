// 指示: miu200521358
package model

const (
	// WarningExtraPrimitivesIgnored は primitive 0 以外を読み捨てた警告。
	WarningExtraPrimitivesIgnored = "WarningExtraPrimitivesIgnored"
	// WarningNormalsReconstructed は法線を再計算した警告。
	WarningNormalsReconstructed = "WarningNormalsReconstructed"
	// WarningMaterialIndexInvalid はメッシュの材質参照が範囲外だった警告。
	WarningMaterialIndexInvalid = "WarningMaterialIndexInvalid"
	// WarningGrayscaleMetallicRoughness は単チャンネル metallic-roughness テクスチャを roughness のみとして扱った警告。
	WarningGrayscaleMetallicRoughness = "WarningGrayscaleMetallicRoughness"
	// WarningMaterialWithoutChannels は出力チャンネルを持たない材質の警告。
	WarningMaterialWithoutChannels = "WarningMaterialWithoutChannels"
	// WarningTextureDownscaled はテクスチャを上限サイズへ縮小した警告。
	WarningTextureDownscaled = "WarningTextureDownscaled"
)

// Warning はデコード中の警告1件を表す。
type Warning struct {
	ID    string `yaml:"id"`
	Unit  string `yaml:"unit"`
	Index int    `yaml:"index"`
}
