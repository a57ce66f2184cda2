package errorx

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewAndError(t *testing.T) {
	err := New(CodeNotFound, "记录不存在")
	if err.Error() != "记录不存在" {
		t.Errorf("Error() = %q", err.Error())
	}
	if GetCode(err) != CodeNotFound {
		t.Errorf("GetCode() = %d, want %d", GetCode(err), CodeNotFound)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeDBError, "查询用户失败")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	var codeErr *CodeError
	if !errors.As(err, &codeErr) {
		t.Fatal("errors.As should find CodeError")
	}
	if codeErr.Code != CodeDBError {
		t.Errorf("Code = %d, want %d", codeErr.Code, CodeDBError)
	}
}

func TestErrorWithCause(t *testing.T) {
	err := Wrap(errors.New("timeout"), CodeCacheError, "redis set")
	if err.Error() != "redis set: timeout" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestGetCodeFallback(t *testing.T) {
	if GetCode(errors.New("plain")) != CodeServerBusy {
		t.Error("plain error should map to CodeServerBusy")
	}
	// 包一层 fmt 也要能穿透
	wrapped := fmt.Errorf("outer: %w", New(CodeForbidden, "forbidden"))
	if GetCode(wrapped) != CodeForbidden {
		t.Errorf("GetCode(wrapped) = %d, want %d", GetCode(wrapped), CodeForbidden)
	}
}

func TestPredicates(t *testing.T) {
	if !IsNotFound(New(CodeNotFound, "x")) {
		t.Error("IsNotFound failed")
	}
	if !IsForbidden(New(CodeForbidden, "x")) {
		t.Error("IsForbidden failed")
	}
	if !IsConflict(New(CodeConflict, "x")) {
		t.Error("IsConflict failed")
	}
	if !IsTransient(New(CodeTransient, "x")) {
		t.Error("IsTransient failed")
	}
	if IsNotFound(New(CodeConflict, "x")) {
		t.Error("IsNotFound should not match conflict")
	}
}
