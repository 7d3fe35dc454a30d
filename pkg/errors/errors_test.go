package errors

import (
	stderrors "errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeMalformedInput, "line %d: bad field", 7)

	if err.Code != ErrCodeMalformedInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMalformedInput)
	}
	if err.Message != "line 7: bad field" {
		t.Errorf("Message = %q, want %q", err.Message, "line 7: bad field")
	}
	want := "MALFORMED_INPUT: line 7: bad field"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := Wrap(ErrCodeInternal, cause, "write output")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match its cause with errors.Is")
	}
	want := "INTERNAL_ERROR: write output: disk on fire"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeOverlongOverlap, "node 3: overlap 9 > length 4")

	if !Is(err, ErrCodeOverlongOverlap) {
		t.Error("Is() should match the error's own code")
	}
	if Is(err, ErrCodeEdgeNotFound) {
		t.Error("Is() should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeInternal) {
		t.Error("Is() should not match a plain error")
	}
}

func TestIs_Wrapped(t *testing.T) {
	inner := New(ErrCodeNotDominoFree, "centre 4 fails the ordering property")
	outer := Wrap(ErrCodeInternal, inner, "cover component 2")

	// The outermost code wins when matching.
	if !Is(outer, ErrCodeInternal) {
		t.Error("Is() should match the outermost code")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeDanglingTerminus, "node 12")); got != ErrCodeDanglingTerminus {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeDanglingTerminus)
	}
	if got := GetCode(stderrors.New("plain")); got != Code("") {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeEdgeNotFound, "edge (3+)->(4-)")); got != "edge (3+)->(4-)" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}
