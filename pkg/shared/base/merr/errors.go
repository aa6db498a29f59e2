// 指示: miu200521358
// Package merr はデコード処理で共有するエラー種別とエラーIDを提供する。
package merr

import (
	"errors"
	"fmt"
)

// ErrorKind はデコードエラーの種別を表す。
type ErrorKind string

const (
	// KindMalformedContainer はコンテナ構造不正を表す。
	KindMalformedContainer ErrorKind = "MalformedContainer"
	// KindOutOfBounds はaccessor/bufferView範囲外参照を表す。
	KindOutOfBounds ErrorKind = "OutOfBounds"
	// KindUnsupportedIndexWidth は未対応index幅を表す。
	KindUnsupportedIndexWidth ErrorKind = "UnsupportedIndexWidth"
	// KindUnsupportedColorLayout は未対応頂点色レイアウトを表す。
	KindUnsupportedColorLayout ErrorKind = "UnsupportedColorLayout"
	// KindMissingMandatoryAttribute は必須属性欠落を表す。
	KindMissingMandatoryAttribute ErrorKind = "MissingMandatoryAttribute"
	// KindUnsupportedAttributeLayout は未対応属性レイアウトを表す。
	KindUnsupportedAttributeLayout ErrorKind = "UnsupportedAttributeLayout"
	// KindUnsupportedPrimitiveMode は未対応primitive modeを表す。
	KindUnsupportedPrimitiveMode ErrorKind = "UnsupportedPrimitiveMode"
	// KindInvalidFaceIndex は頂点数を超える面indexを表す。
	KindInvalidFaceIndex ErrorKind = "InvalidFaceIndex"
	// KindImageDecodeFailed は画像デコード失敗を表す。
	KindImageDecodeFailed ErrorKind = "ImageDecodeFailed"
	// KindFileNotFound は入力ファイル不在を表す。
	KindFileNotFound ErrorKind = "FileNotFound"
	// KindExtInvalid は入力拡張子不正を表す。
	KindExtInvalid ErrorKind = "ExtInvalid"
)

// エラーID一覧。
const (
	FileNotFoundErrorID               = "14101"
	ExtInvalidErrorID                 = "14102"
	MalformedContainerErrorID         = "15001"
	OutOfBoundsErrorID                = "15002"
	UnsupportedIndexWidthErrorID      = "15101"
	UnsupportedColorLayoutErrorID     = "15102"
	MissingMandatoryAttributeErrorID  = "15103"
	UnsupportedAttributeLayoutErrorID = "15104"
	UnsupportedPrimitiveModeErrorID   = "15105"
	InvalidFaceIndexErrorID           = "15106"
	ImageDecodeFailedErrorID          = "15201"
)

var errorIDsByKind = map[ErrorKind]string{
	KindFileNotFound:               FileNotFoundErrorID,
	KindExtInvalid:                 ExtInvalidErrorID,
	KindMalformedContainer:         MalformedContainerErrorID,
	KindOutOfBounds:                OutOfBoundsErrorID,
	KindUnsupportedIndexWidth:      UnsupportedIndexWidthErrorID,
	KindUnsupportedColorLayout:     UnsupportedColorLayoutErrorID,
	KindMissingMandatoryAttribute:  MissingMandatoryAttributeErrorID,
	KindUnsupportedAttributeLayout: UnsupportedAttributeLayoutErrorID,
	KindUnsupportedPrimitiveMode:   UnsupportedPrimitiveModeErrorID,
	KindInvalidFaceIndex:           InvalidFaceIndexErrorID,
	KindImageDecodeFailed:          ImageDecodeFailedErrorID,
}

// NoIndex は対象indexを持たないエラーで使う値。
const NoIndex = -1

// DecodeError は種別とエラーIDを持つデコードエラーを表す。
type DecodeError struct {
	ID      string
	Kind    ErrorKind
	Index   int
	message string
	cause   error
}

// NewDecodeError はDecodeErrorを生成する。
func NewDecodeError(kind ErrorKind, index int, format string, cause error, params ...any) *DecodeError {
	return &DecodeError{
		ID:      errorIDsByKind[kind],
		Kind:    kind,
		Index:   index,
		message: fmt.Sprintf(format, params...),
		cause:   cause,
	}
}

// Error はエラーメッセージを返す。
func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.message
	if e.Index != NoIndex {
		msg = fmt.Sprintf("%s (index=%d)", msg, e.Index)
	}
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap は原因エラーを返す。
func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// NewMalformedContainer はコンテナ構造不正エラーを生成する。
func NewMalformedContainer(format string, cause error, params ...any) *DecodeError {
	return NewDecodeError(KindMalformedContainer, NoIndex, format, cause, params...)
}

// NewOutOfBounds は範囲外参照エラーを生成する。
func NewOutOfBounds(accessorIndex int, format string, params ...any) *DecodeError {
	return NewDecodeError(KindOutOfBounds, accessorIndex, format, nil, params...)
}

// NewUnsupportedIndexWidth は未対応index幅エラーを生成する。
func NewUnsupportedIndexWidth(accessorIndex int, componentCode int) *DecodeError {
	return NewDecodeError(KindUnsupportedIndexWidth, accessorIndex, "index の componentType が未対応です: %d", nil, componentCode)
}

// NewUnsupportedColorLayout は未対応頂点色レイアウトエラーを生成する。
func NewUnsupportedColorLayout(accessorIndex int, format string, params ...any) *DecodeError {
	return NewDecodeError(KindUnsupportedColorLayout, accessorIndex, format, nil, params...)
}

// NewMissingMandatoryAttribute は必須属性欠落エラーを生成する。
func NewMissingMandatoryAttribute(meshIndex int, attribute string) *DecodeError {
	return NewDecodeError(KindMissingMandatoryAttribute, meshIndex, "必須属性がありません: %s", nil, attribute)
}

// NewUnsupportedAttributeLayout は未対応属性レイアウトエラーを生成する。
func NewUnsupportedAttributeLayout(accessorIndex int, format string, params ...any) *DecodeError {
	return NewDecodeError(KindUnsupportedAttributeLayout, accessorIndex, format, nil, params...)
}

// NewUnsupportedPrimitiveMode は未対応primitive modeエラーを生成する。
func NewUnsupportedPrimitiveMode(meshIndex int, mode int) *DecodeError {
	return NewDecodeError(KindUnsupportedPrimitiveMode, meshIndex, "primitive mode が未対応です: %d", nil, mode)
}

// NewInvalidFaceIndex は面index不正エラーを生成する。
func NewInvalidFaceIndex(meshIndex int, vertexIndex uint32, vertexCount int) *DecodeError {
	return NewDecodeError(
		KindInvalidFaceIndex,
		meshIndex,
		"面indexが頂点数を超えています: index=%d vertices=%d",
		nil,
		vertexIndex,
		vertexCount,
	)
}

// NewImageDecodeFailed は画像デコード失敗エラーを生成する。
func NewImageDecodeFailed(imageIndex int, cause error) *DecodeError {
	return NewDecodeError(KindImageDecodeFailed, imageIndex, "画像のデコードに失敗しました", cause)
}

// NewFileNotFound は入力ファイル不在エラーを生成する。
func NewFileNotFound(path string, cause error) *DecodeError {
	return NewDecodeError(KindFileNotFound, NoIndex, "ファイルが見つかりません: %s", cause, path)
}

// NewExtInvalid は入力拡張子不正エラーを生成する。
func NewExtInvalid(path string) *DecodeError {
	return NewDecodeError(KindExtInvalid, NoIndex, "未対応の拡張子です: %s", nil, path)
}

// AsDecodeError はエラーチェーンからDecodeErrorを取り出す。
func AsDecodeError(err error) (*DecodeError, bool) {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr, true
	}
	return nil, false
}

// KindOf はエラー種別を返す。DecodeErrorを含まない場合は空文字を返す。
func KindOf(err error) ErrorKind {
	if decodeErr, ok := AsDecodeError(err); ok {
		return decodeErr.Kind
	}
	return ""
}

// IsKind はエラーが指定種別か判定する。
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// ExtractErrorID はエラーIDを取り出す。
func ExtractErrorID(err error) string {
	if decodeErr, ok := AsDecodeError(err); ok {
		return decodeErr.ID
	}
	return ""
}

// IsSceneFatal はシーン全体のデコードを中断すべきエラーか判定する。
func IsSceneFatal(err error) bool {
	switch KindOf(err) {
	case KindMalformedContainer, KindOutOfBounds:
		return true
	default:
		return false
	}
}
