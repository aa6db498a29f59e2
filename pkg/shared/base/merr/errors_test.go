// 指示: miu200521358
package merr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIDsAreUniquePerKind(t *testing.T) {
	seen := map[string]ErrorKind{}
	for kind, id := range errorIDsByKind {
		if id == "" {
			t.Fatalf("error id should not be empty: kind=%s", kind)
		}
		if other, exists := seen[id]; exists {
			t.Fatalf("error id should be unique: id=%s kinds=%s,%s", id, kind, other)
		}
		seen[id] = kind
	}
}

func TestKindOfSurvivesWrapping(t *testing.T) {
	base := NewOutOfBounds(3, "accessor 範囲がbufferViewを超えています")
	wrapped := fmt.Errorf("メッシュ読込に失敗しました: %w", base)

	if got := KindOf(wrapped); got != KindOutOfBounds {
		t.Fatalf("kind mismatch: got=%s want=%s", got, KindOutOfBounds)
	}
	if got := ExtractErrorID(wrapped); got != OutOfBoundsErrorID {
		t.Fatalf("error id mismatch: got=%s want=%s", got, OutOfBoundsErrorID)
	}
	decodeErr, ok := AsDecodeError(wrapped)
	if !ok || decodeErr.Index != 3 {
		t.Fatalf("accessor index should be preserved: ok=%v err=%v", ok, decodeErr)
	}
}

func TestIsSceneFatal(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{NewMalformedContainer("GLBマジックが不正です", nil), true},
		{NewOutOfBounds(0, "x"), true},
		{NewUnsupportedIndexWidth(1, 5123), false},
		{NewMissingMandatoryAttribute(0, "POSITION"), false},
		{NewImageDecodeFailed(0, errors.New("bad")), false},
		{errors.New("plain"), false},
	}
	for _, tc := range cases {
		if got := IsSceneFatal(tc.err); got != tc.want {
			t.Fatalf("IsSceneFatal mismatch: err=%v got=%v want=%v", tc.err, got, tc.want)
		}
	}
}

func TestDecodeErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := NewImageDecodeFailed(2, cause)
	if !errors.Is(err, cause) {
		t.Fatalf("cause should be reachable via errors.Is")
	}
	if !IsKind(err, KindImageDecodeFailed) {
		t.Fatalf("kind should be ImageDecodeFailed: %v", err)
	}
}
