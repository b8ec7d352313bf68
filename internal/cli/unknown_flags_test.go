package cli

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/mark3labs/svcdesc/internal/spec"
)

func TestUnknownFlag_ShowsHelpAndUsageError(t *testing.T) {
	t.Parallel()
	for _, sub := range []string{"inspect", "model", "export", "format", "init", "config"} {
		root := NewRootCmd()
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs([]string{sub, "--unknown-flag"})

		err := root.Execute()
		if err == nil {
			t.Fatalf("%s: expected error for unknown flag", sub)
		}
		if _, ok := err.(usageError); !ok {
			t.Fatalf("%s: expected usage error, got %T: %v", sub, err, err)
		}
		if !strings.Contains(err.Error(), "unknown flag") || !strings.Contains(err.Error(), "Usage:") {
			t.Fatalf("%s: unexpected error text: %v", sub, err)
		}
	}
}

func TestDescribeError_KeepsCause(t *testing.T) {
	t.Parallel()
	cause := &spec.SpecError{Code: spec.NetworkError, Message: "fetch failed", Location: "http://x"}
	err := describeError(cause)
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	var se *spec.SpecError
	if !errors.As(err, &se) || se.Code != spec.NetworkError {
		t.Fatalf("expected the spec error as cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "Location: http://x") {
		t.Fatalf("unexpected text: %v", err)
	}
	plain := errors.New("boom")
	if describeError(plain) != plain {
		t.Fatalf("unstructured errors pass through")
	}
}
