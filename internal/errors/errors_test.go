package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "lock poisoned",
			code:    CodeLockPoisoned,
			wantMsg: "Lock poisoned",
			wantCat: CategoryRuntime,
		},
		{
			name:    "async panic",
			code:    CodeAsyncPanicked,
			wantMsg: "Async computation panicked",
			wantCat: CategoryAsync,
		},
		{
			name:    "config",
			code:    CodeInvalidConfig,
			wantMsg: "Invalid configuration",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := New(CodeLockPoisoned).WithOp("signal.State.Mutate")
	if got, want := err.Error(), "signal.State.Mutate: E101: Lock poisoned"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New(CodeRecomputePanicked).Wrap(fmt.Errorf("boom"))
	if !strings.HasSuffix(wrapped.Error(), ": boom") {
		t.Errorf("Error() = %q, want cause suffix", wrapped.Error())
	}
}

func TestIsAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := fmt.Errorf("outer: %w", New(CodeAsyncPanicked).Wrap(cause))

	if !stderrors.Is(err, New(CodeAsyncPanicked)) {
		t.Error("errors.Is should match by code")
	}
	if stderrors.Is(err, New(CodeLockPoisoned)) {
		t.Error("errors.Is should not match a different code")
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
	if !HasCode(err, CodeAsyncPanicked) {
		t.Error("HasCode should find E104")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeInvalidConfig) != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New(CodeLockPoisoned)
	if got := FromError(fmt.Errorf("ctx: %w", orig), CodeInvalidConfig); got != orig {
		t.Error("FromError should return the *Error already in the chain")
	}

	plain := stderrors.New("plain")
	got := FromError(plain, CodeInvalidConfig)
	if got.Code != CodeInvalidConfig || got.Wrapped != plain {
		t.Errorf("FromError = %+v", got)
	}
}

func TestFromPanic(t *testing.T) {
	e := FromPanic(CodeRecomputePanicked, "kaboom")
	if !strings.Contains(e.Error(), "panic: kaboom") {
		t.Errorf("Error() = %q", e.Error())
	}

	cause := stderrors.New("typed")
	e = FromPanic(CodeRecomputePanicked, cause)
	if e.Wrapped != cause {
		t.Error("error panics should be wrapped directly")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New(CodeRunnerNotInit).
		WithOp("tasks.Spawn").
		WithSuggestion("call tasks.Init first").
		Format()

	for _, want := range []string{"ERROR E102: Task runner not initialized", "tasks.Spawn", "Hint: call tasks.Init first"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}

	if got := New(CodeRunnerNotInit).WithOp("tasks.Spawn").FormatCompact(); got != "tasks.Spawn: E102: Task runner not initialized" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestRegistry(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 || codes[0] != CodeLockPoisoned {
		t.Fatalf("GetAllCodes() = %v", codes)
	}

	Register("E999", Template{Category: CategoryDebug, Message: "custom"})
	defer delete(registry, "E999")

	tmpl, ok := GetTemplate("E999")
	if !ok || tmpl.Message != "custom" {
		t.Errorf("GetTemplate(E999) = %+v, %v", tmpl, ok)
	}
}
