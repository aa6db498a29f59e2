// 指示: miu200521358
package minteractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_glb2obj/pkg/adapter/io_glb"
)

const (
	objectsDirName    = "objects"
	texturesDirName   = "textures"
	manifestFileName  = "manifest.yaml"
	outputDirFileMode = 0o755
	outputFileMode    = 0o644
)

// Channel は材質チャンネル種別を表す。
type Channel string

const (
	// ChannelColor はベースカラーを表す。
	ChannelColor Channel = "color"
	// ChannelMetallic はmetallicを表す。
	ChannelMetallic Channel = "metallic"
	// ChannelRoughness はroughnessを表す。
	ChannelRoughness Channel = "roughness"
)

// BuildDefaultOutputDir は入力パスから既定の出力ディレクトリを生成する。
// 同じディレクトリに同名で形式違いの入力があれば拡張子で区別する。
func BuildDefaultOutputDir(inputPath string) string {
	name := outputDirName(inputPath, hasStemSibling(inputPath))
	if name == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(inputPath), name)
}

// outputDirName は入力ファイル名から出力ディレクトリ名を生成する。
// withExtなら a.glb を a_glb のように拡張子付きにする。
func outputDirName(sourcePath string, withExt bool) string {
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	name := strings.TrimSpace(strings.TrimSuffix(base, ext))
	if name == "" {
		return ""
	}
	if withExt && ext != "" {
		name += "_" + strings.ToLower(strings.TrimPrefix(ext, "."))
	}
	return name
}

// hasStemSibling は同じディレクトリに拡張子だけ異なる読み込み対象があるか返す。
func hasStemSibling(sourcePath string) bool {
	entries, err := os.ReadDir(filepath.Dir(sourcePath))
	if err != nil {
		return false
	}
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == base || !io_glb.IsSupportedPath(name) {
			continue
		}
		if strings.TrimSuffix(name, filepath.Ext(name)) == stem {
			return true
		}
	}
	return false
}

// ObjectFileName はオブジェクト順序からファイル名を生成する。
func ObjectFileName(ordinal int, ext string) string {
	return fmt.Sprintf("object_%d%s", ordinal, ext)
}

// TextureFileName は材質indexとチャンネルからファイル名を生成する。
func TextureFileName(channel Channel, materialIndex int, ext string) string {
	return fmt.Sprintf("%s_%d%s", channel, materialIndex, ext)
}

// createOutputDirs は objects/textures の出力ディレクトリを作り直す。
// 前回出力の残骸で結果が変わらないよう、既存の両ディレクトリは削除する。
func createOutputDirs(destination string) (string, string, error) {
	if strings.TrimSpace(destination) == "" {
		return "", "", fmt.Errorf("保存先ディレクトリが未指定です")
	}
	if err := os.MkdirAll(destination, outputDirFileMode); err != nil {
		return "", "", fmt.Errorf("保存先ディレクトリの作成に失敗しました: %w", err)
	}
	objectsDir := filepath.Join(destination, objectsDirName)
	texturesDir := filepath.Join(destination, texturesDirName)
	for _, dir := range []string{objectsDir, texturesDir} {
		if err := os.RemoveAll(dir); err != nil {
			return "", "", fmt.Errorf("既存出力の削除に失敗しました: %w", err)
		}
		if err := os.MkdirAll(dir, outputDirFileMode); err != nil {
			return "", "", fmt.Errorf("%s ディレクトリの作成に失敗しました: %w", filepath.Base(dir), err)
		}
	}
	return objectsDir, texturesDir, nil
}

// sanitizePathComponent は出力ディレクトリ/ファイル名に使えない文字を置換する。
func sanitizePathComponent(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "model"
	}
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		default:
			if r < 0x20 {
				return '_'
			}
			return r
		}
	}, trimmed)
	replaced = strings.Trim(replaced, " .")
	if replaced == "" {
		return "model"
	}
	return replaced
}
