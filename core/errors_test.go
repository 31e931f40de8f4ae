package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Wrapped(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("fetch catalog: %w", WrapDomainError(ModuleStore, ErrorCodeUnavailable, "store unavailable", cause))

	if !IsUnavailable(err) {
		t.Errorf("IsUnavailable() = false, want true")
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(cause) = false, want true")
	}
	if got := GetDomainError(err).Module; got != ModuleStore {
		t.Errorf("Module = %q, want %q", got, ModuleStore)
	}
	if IsNotFound(err) || IsInvariantViolation(err) {
		t.Error("unexpected code match")
	}
}

func TestIsStoreNotFound(t *testing.T) {
	if !IsStoreNotFound(ErrStoreNotFound) {
		t.Error("IsStoreNotFound(ErrStoreNotFound) = false")
	}
	if IsStoreNotFound(NewDomainError(ModuleVector, ErrorCodeNotFound, "x")) {
		t.Error("IsStoreNotFound should only match store module")
	}
	if IsStoreNotFound(nil) || IsDomainError(nil) {
		t.Error("nil error matched")
	}
}
