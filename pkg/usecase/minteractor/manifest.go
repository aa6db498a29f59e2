// 指示: miu200521358
package minteractor

import (
	"bytes"
	"fmt"
	"os"

	"github.com/miu200521358/mu_glb2obj/pkg/domain/model"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/merr"
	"github.com/miu200521358/mu_glb2obj/pkg/usecase/decoder"
	"gopkg.in/yaml.v3"
)

const manifestIndent = 2

// Manifest は出力ディレクトリの内容一覧を表す。
// パスは出力ディレクトリからの相対パスを / 区切りで保持する。
type Manifest struct {
	Source    string             `yaml:"source,omitempty"`
	UpAxis    string             `yaml:"up_axis"`
	Objects   []ManifestObject   `yaml:"objects"`
	Materials []ManifestMaterial `yaml:"materials"`
	Failures  []ManifestFailure  `yaml:"failures,omitempty"`
	Warnings  []model.Warning    `yaml:"MU_GLB2OBJ_warnings,omitempty"`
}

// ManifestObject は出力オブジェクト1件を表す。
type ManifestObject struct {
	Ordinal              int    `yaml:"ordinal"`
	Path                 string `yaml:"path"`
	MeshIndex            int    `yaml:"mesh"`
	NodeIndex            int    `yaml:"node"`
	Material             *int   `yaml:"material,omitempty"`
	Vertices             int    `yaml:"vertices"`
	Faces                int    `yaml:"faces"`
	NormalsReconstructed bool   `yaml:"normals_reconstructed,omitempty"`
}

// ManifestMaterial は出力材質1件を表す。
type ManifestMaterial struct {
	Index     int    `yaml:"index"`
	Color     string `yaml:"color,omitempty"`
	Metallic  string `yaml:"metallic,omitempty"`
	Roughness string `yaml:"roughness,omitempty"`
}

// ManifestFailure はデコード失敗1件を表す。
type ManifestFailure struct {
	Unit      string `yaml:"unit"`
	Index     int    `yaml:"index"`
	MeshIndex *int   `yaml:"mesh,omitempty"`
	ErrorID   string `yaml:"error_id,omitempty"`
	Kind      string `yaml:"kind,omitempty"`
	Message   string `yaml:"message"`
}

// newManifestFailures はデコード失敗をマニフェスト表現へ変換する。
func newManifestFailures(failures []decoder.Failure) []ManifestFailure {
	out := make([]ManifestFailure, 0, len(failures))
	for _, failure := range failures {
		entry := ManifestFailure{
			Unit:    string(failure.Unit),
			Index:   failure.Index,
			ErrorID: merr.ExtractErrorID(failure.Err),
			Kind:    string(merr.KindOf(failure.Err)),
		}
		if failure.Err != nil {
			entry.Message = failure.Err.Error()
		}
		if failure.Unit == decoder.UnitMesh {
			meshIndex := failure.MeshIndex
			entry.MeshIndex = &meshIndex
		}
		out = append(out, entry)
	}
	return out
}

// MarshalManifest はマニフェストをYAMLへ変換する。
func MarshalManifest(manifest *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(manifestIndent)
	if err := encoder.Encode(manifest); err != nil {
		return nil, fmt.Errorf("マニフェストのエンコードに失敗しました: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("マニフェストのエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadManifest はマニフェストファイルを読み込む。
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("マニフェストの読み取りに失敗しました: %w", err)
	}
	manifest := &Manifest{}
	if err := yaml.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("マニフェストの解析に失敗しました: %w", err)
	}
	return manifest, nil
}

// writeManifest はマニフェストファイルを書き込む。
func writeManifest(path string, manifest *Manifest) error {
	data, err := MarshalManifest(manifest)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, outputFileMode); err != nil {
		return fmt.Errorf("マニフェストの保存に失敗しました: %w", err)
	}
	return nil
}
