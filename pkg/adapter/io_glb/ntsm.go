// 指示: miu200521358
package io_glb

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/merr"
)

const (
	ntsmMagic         = "NTSM"
	ntsmHeaderSize    = 192
	ntsmFlagParticles = 0x01
	// ntsmParticleStride はパーティクルエミッタ1件のバイト数。
	ntsmParticleStride = 128
)

// NtsmHeader はNTSMラッパーのヘッダを表す。
type NtsmHeader struct {
	Magic          [4]byte
	Version        uint32
	Name           [128]byte
	Flags          uint8
	_              [3]byte
	GLBOffset      uint32
	GLBSize        uint32
	ParticleOffset uint32
	ParticleSize   uint32
	TextureCount   uint32
	TextureOffset  uint32
}

// ItemName はヘッダに格納された名前を返す。
func (h *NtsmHeader) ItemName() string {
	return strings.TrimRight(string(h.Name[:]), "\x00")
}

// ParticleCount はパーティクルエミッタ数を返す。
func (h *NtsmHeader) ParticleCount() int {
	if h.Flags&ntsmFlagParticles == 0 {
		return 0
	}
	return int(h.ParticleSize) / ntsmParticleStride
}

// IsNtsm はバイト列がNTSMラッパーか判定する。
func IsNtsm(b []byte) bool {
	return len(b) >= len(ntsmMagic) && string(b[:len(ntsmMagic)]) == ntsmMagic
}

// UnwrapNtsm はNTSMラッパーから埋め込みGLBを取り出す。
// ヘッダのGLBOffsetがGLBを指さない場合はヘッダ直後の候補位置を探す。
func UnwrapNtsm(b []byte) (*NtsmHeader, []byte, error) {
	if !IsNtsm(b) {
		return nil, nil, merr.NewMalformedContainer("NTSMマジックが不正です", nil)
	}
	header := &NtsmHeader{}
	headerLength := binary.Size(header)
	if len(b) < headerLength {
		return nil, nil, merr.NewMalformedContainer("NTSMヘッダが不足しています: bytes=%d", nil, len(b))
	}
	if err := binary.Read(bytes.NewReader(b[:headerLength]), binary.LittleEndian, header); err != nil {
		return nil, nil, merr.NewMalformedContainer("NTSMヘッダの読み取りに失敗しました", err)
	}

	candidates := []int{int(header.GLBOffset), ntsmHeaderSize, headerLength}
	for _, offset := range candidates {
		if offset < headerLength || offset+glbHeaderLength > len(b) {
			continue
		}
		if binary.LittleEndian.Uint32(b[offset:offset+4]) != glbMagic {
			continue
		}
		size := int(header.GLBSize)
		if size <= 0 || offset+size > len(b) {
			size = int(binary.LittleEndian.Uint32(b[offset+8 : offset+12]))
		}
		if offset+size > len(b) {
			return nil, nil, merr.NewMalformedContainer("NTSM内GLBサイズが不正です: %d", nil, size)
		}
		return header, b[offset : offset+size], nil
	}
	return nil, nil, merr.NewMalformedContainer("NTSM内にGLBが見つかりません", nil)
}
