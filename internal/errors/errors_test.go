package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestWrap_PreservesCode(t *testing.T) {
	base := ConfigInvalid("ANALYTICS_API_URL is required")
	wrapped := Wrap(base, "failed to load configuration")

	if got := GetCode(wrapped); got != CodeConfigInvalid {
		t.Errorf("GetCode = %s, want %s", got, CodeConfigInvalid)
	}
	if want := "failed to load configuration: ANALYTICS_API_URL is required"; wrapped.Error() != want {
		t.Errorf("Error() = %q, want %q", wrapped.Error(), want)
	}
	if !stderrors.Is(wrapped, base) {
		t.Error("wrapped error does not match its cause")
	}
}

func TestWrap_PlainErrorIsInternal(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("disk full"), "write report")
	if got := GetCode(wrapped); got != CodeInternalError {
		t.Errorf("GetCode = %s, want %s", got, CodeInternalError)
	}
	if Wrap(nil, "nothing") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestGetCode_SeesThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("loading: %w", CatalogError("remote", stderrors.New("timeout")))
	if got := GetCode(err); got != CodeCatalogError {
		t.Errorf("GetCode = %s, want %s", got, CodeCatalogError)
	}
	if got := GetCode(stderrors.New("plain")); got != "UNKNOWN" {
		t.Errorf("GetCode(plain) = %s, want UNKNOWN", got)
	}
}

func TestWithCode(t *testing.T) {
	cause := stderrors.New("502")
	err := WithCode(CodeExternalService, cause)

	if got := GetCode(err); got != CodeExternalService {
		t.Errorf("GetCode = %s, want %s", got, CodeExternalService)
	}
	if err.Error() != "502" {
		t.Errorf("Error() = %q, want %q", err.Error(), "502")
	}
	if !stderrors.Is(err, cause) {
		t.Error("WithCode lost its cause")
	}
	if WithCode(CodeExternalService, nil) != nil {
		t.Error("WithCode(nil) should be nil")
	}
}

func TestWithCode_RecodesAppError(t *testing.T) {
	err := WithCode(CodeInvalidInput, DatabaseError("failed to upsert", stderrors.New("duplicate")))

	if got := GetCode(err); got != CodeInvalidInput {
		t.Errorf("GetCode = %s, want %s", got, CodeInvalidInput)
	}
	if want := "failed to upsert: duplicate"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
