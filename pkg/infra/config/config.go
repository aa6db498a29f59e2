// 指示: miu200521358
// Package config はCLI実行設定の既定値・TOMLファイル・フラグの合成を提供する。
// 優先度は 既定値 < TOML < 明示指定フラグ。
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/miu200521358/mu_glb2obj/pkg/adapter/io_image"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/logging"
	"github.com/miu200521358/mu_glb2obj/pkg/usecase/decoder"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
)

// フラグ名。
const (
	FlagConfig         = "config"
	FlagLogLevel       = "log-level"
	FlagWorkers        = "workers"
	FlagImageFormat    = "image-format"
	FlagMaxTextureSize = "max-texture-size"
	FlagUpAxis         = "up-axis"
	FlagVertexColors   = "vertex-colors"
	FlagStrict         = "strict"
)

// Config は実行設定全体を表す。
type Config struct {
	Log    LogConfig    `toml:"log"`
	Decode DecodeConfig `toml:"decode"`
	Output OutputConfig `toml:"output"`
}

// LogConfig はログ設定を表す。
type LogConfig struct {
	Level string `toml:"level"`
}

// DecodeConfig はデコード設定を表す。
type DecodeConfig struct {
	// Workers は並列数。0はCPU数。
	Workers int    `toml:"workers"`
	UpAxis  string `toml:"up_axis"`
}

// OutputConfig は出力設定を表す。
type OutputConfig struct {
	ImageFormat string `toml:"image_format"`
	// MaxTextureSize はチャンネル画像の最大辺。0は無制限。
	MaxTextureSize int  `toml:"max_texture_size"`
	VertexColors   bool `toml:"vertex_colors"`
	Strict         bool `toml:"strict"`
}

// Default は既定設定を返す。
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info"},
		Decode: DecodeConfig{Workers: 0, UpAxis: string(decoder.UpAxisY)},
		Output: OutputConfig{ImageFormat: string(io_image.FormatPNG)},
	}
}

// Load は既定値にTOMLファイルを重ねて返す。pathが空なら既定値のみ。
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("設定ファイルの読み取りに失敗しました: %w", err)
	}
	if err := Decode(bytes.NewReader(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("設定ファイルの解析に失敗しました: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode はTOMLをcfgへ重ねる。未知のキーはエラーにする。
func Decode(r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return fmt.Errorf("未知の設定キーがあります: %s", strictErr.String())
		}
		return err
	}
	return nil
}

// RegisterFlags は設定を上書きするフラグを登録する。
func RegisterFlags(fs *pflag.FlagSet) {
	defaults := Default()
	fs.String(FlagConfig, "", "TOML設定ファイルパス")
	fs.String(FlagLogLevel, defaults.Log.Level, "ログレベル (debug|info|warn|error)")
	fs.Int(FlagWorkers, defaults.Decode.Workers, "デコード並列数 (0はCPU数)")
	fs.String(FlagUpAxis, defaults.Decode.UpAxis, "出力の上方向 (y|z)")
	fs.String(FlagImageFormat, defaults.Output.ImageFormat, "チャンネル画像形式 (png|bmp|tga|jpeg)")
	fs.Int(FlagMaxTextureSize, defaults.Output.MaxTextureSize, "チャンネル画像の最大辺 (0は無制限)")
	fs.Bool(FlagVertexColors, defaults.Output.VertexColors, "OBJへ頂点色を書き出す")
	fs.Bool(FlagStrict, defaults.Output.Strict, "単位ごとの失敗があれば終了コード1にする")
}

// ApplyFlags は明示指定されたフラグのみcfgへ反映する。
func ApplyFlags(fs *pflag.FlagSet, cfg *Config) error {
	var err error
	if fs.Changed(FlagLogLevel) {
		if cfg.Log.Level, err = fs.GetString(FlagLogLevel); err != nil {
			return err
		}
	}
	if fs.Changed(FlagWorkers) {
		if cfg.Decode.Workers, err = fs.GetInt(FlagWorkers); err != nil {
			return err
		}
	}
	if fs.Changed(FlagUpAxis) {
		if cfg.Decode.UpAxis, err = fs.GetString(FlagUpAxis); err != nil {
			return err
		}
	}
	if fs.Changed(FlagImageFormat) {
		if cfg.Output.ImageFormat, err = fs.GetString(FlagImageFormat); err != nil {
			return err
		}
	}
	if fs.Changed(FlagMaxTextureSize) {
		if cfg.Output.MaxTextureSize, err = fs.GetInt(FlagMaxTextureSize); err != nil {
			return err
		}
	}
	if fs.Changed(FlagVertexColors) {
		if cfg.Output.VertexColors, err = fs.GetBool(FlagVertexColors); err != nil {
			return err
		}
	}
	if fs.Changed(FlagStrict) {
		if cfg.Output.Strict, err = fs.GetBool(FlagStrict); err != nil {
			return err
		}
	}
	return nil
}

// Resolve は既定値・--configのTOML・明示フラグを合成して検証済み設定を返す。
func Resolve(fs *pflag.FlagSet) (Config, error) {
	path, err := fs.GetString(FlagConfig)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, err
	}
	if err := ApplyFlags(fs, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は設定値を検証する。
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Decode.Workers < 0 {
		return fmt.Errorf("workers は0以上で指定してください: %d", c.Decode.Workers)
	}
	if _, err := c.UpAxis(); err != nil {
		return err
	}
	if _, err := io_image.ParseFormat(c.Output.ImageFormat); err != nil {
		return err
	}
	if c.Output.MaxTextureSize < 0 {
		return fmt.Errorf("max_texture_size は0以上で指定してください: %d", c.Output.MaxTextureSize)
	}
	return nil
}

// UpAxis は上方向設定を返す。
func (c Config) UpAxis() (decoder.UpAxis, error) {
	switch strings.ToLower(strings.TrimSpace(c.Decode.UpAxis)) {
	case "", string(decoder.UpAxisY):
		return decoder.UpAxisY, nil
	case string(decoder.UpAxisZ):
		return decoder.UpAxisZ, nil
	default:
		return "", fmt.Errorf("up_axis は y か z で指定してください: %s", c.Decode.UpAxis)
	}
}

// DecodeOptions はデコードオプションへ変換する。
func (c Config) DecodeOptions() decoder.Options {
	workers := c.Decode.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	upAxis, err := c.UpAxis()
	if err != nil {
		upAxis = decoder.UpAxisY
	}
	return decoder.Options{Workers: workers, UpAxis: upAxis}
}
