// 指示: miu200521358
// Package io_obj はデコード済みオブジェクトをWavefront OBJとして保存する。
package io_obj

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_glb2obj/pkg/domain/scene"
)

const (
	saveFileMode = 0o644
	floatDigits  = 6
)

// ObjRepository はOBJ保存の契約を表す。
type ObjRepository struct {
	includeColors bool
}

// NewObjRepository はObjRepositoryを生成する。
// includeColors が真の場合は頂点色を v 行の末尾へ [0,1] で出力する。
func NewObjRepository(includeColors bool) *ObjRepository {
	return &ObjRepository{includeColors: includeColors}
}

// Ext は保存拡張子を返す。
func (r *ObjRepository) Ext() string {
	return ".obj"
}

// Save はオブジェクトをOBJファイルへ保存する。
func (r *ObjRepository) Save(path string, object *scene.DecodedObject) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("OBJ保存先パスが未指定です")
	}
	if object == nil {
		return fmt.Errorf("保存対象オブジェクトが未設定です")
	}
	if !strings.EqualFold(filepath.Ext(path), r.Ext()) {
		return fmt.Errorf("保存先拡張子が .obj ではありません: %s", path)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, saveFileMode)
	if err != nil {
		return fmt.Errorf("OBJファイルの作成に失敗しました: %w", err)
	}
	if err := r.Encode(file, object); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("OBJファイルのクローズに失敗しました: %w", err)
	}
	return nil
}

// Encode はオブジェクトをOBJ形式で書き出す。
// 出力は v / vt / vn / f 行のみで、同じ入力からは常に同じバイト列になる。
func (r *ObjRepository) Encode(w io.Writer, object *scene.DecodedObject) error {
	out := bufio.NewWriter(w)
	withColors := r.includeColors && object.HasColors() && len(object.Colors) == len(object.Vertices)

	line := make([]byte, 0, 96)
	for i, v := range object.Vertices {
		line = append(line[:0], 'v')
		line = appendVec3(line, v)
		if withColors {
			for c := 0; c < 3; c++ {
				line = append(line, ' ')
				line = appendFloat(line, float64(object.Colors[i][c])/255)
			}
		}
		line = append(line, '\n')
		if _, err := out.Write(line); err != nil {
			return writeError(err)
		}
	}
	for _, uv := range object.UVs {
		line = append(line[:0], 'v', 't', ' ')
		line = appendFloat(line, uv[0])
		line = append(line, ' ')
		line = appendFloat(line, uv[1])
		line = append(line, '\n')
		if _, err := out.Write(line); err != nil {
			return writeError(err)
		}
	}
	for _, n := range object.Normals {
		line = append(line[:0], 'v', 'n')
		line = appendVec3(line, n)
		line = append(line, '\n')
		if _, err := out.Write(line); err != nil {
			return writeError(err)
		}
	}

	withUVs := object.HasUVs()
	withNormals := len(object.Normals) > 0
	for _, face := range object.Faces {
		line = append(line[:0], 'f')
		for _, index := range face {
			line = append(line, ' ')
			line = appendFaceCorner(line, index+1, withUVs, withNormals)
		}
		line = append(line, '\n')
		if _, err := out.Write(line); err != nil {
			return writeError(err)
		}
	}
	if err := out.Flush(); err != nil {
		return writeError(err)
	}
	return nil
}

// appendVec3 は空白区切りの3成分を追記する。
func appendVec3(line []byte, v mgl64.Vec3) []byte {
	for _, c := range v {
		line = append(line, ' ')
		line = appendFloat(line, c)
	}
	return line
}

// appendFaceCorner は f 行の頂点参照を追記する。indexは1始まり。
func appendFaceCorner(line []byte, index uint32, withUVs bool, withNormals bool) []byte {
	ref := strconv.AppendUint(nil, uint64(index), 10)
	line = append(line, ref...)
	switch {
	case withUVs && withNormals:
		line = append(line, '/')
		line = append(line, ref...)
		line = append(line, '/')
		line = append(line, ref...)
	case withUVs:
		line = append(line, '/')
		line = append(line, ref...)
	case withNormals:
		line = append(line, '/', '/')
		line = append(line, ref...)
	}
	return line
}

// appendFloat は小数点以下6桁固定で追記する。-0 は 0 として出力する。
func appendFloat(line []byte, v float64) []byte {
	formatted := strconv.AppendFloat(nil, v, 'f', floatDigits, 64)
	if isNegativeZero(formatted) {
		formatted = formatted[1:]
	}
	return append(line, formatted...)
}

// isNegativeZero は丸め後に -0.000000 となったか判定する。
func isNegativeZero(formatted []byte) bool {
	if len(formatted) == 0 || formatted[0] != '-' {
		return false
	}
	for _, b := range formatted[1:] {
		if b != '0' && b != '.' {
			return false
		}
	}
	return true
}

func writeError(err error) error {
	return fmt.Errorf("OBJの書き込みに失敗しました: %w", err)
}
