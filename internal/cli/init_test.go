package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/svcdesc/internal/spec"
)

func TestInit_WritesLoadableSample(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "service.yaml")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("init execute: %v", err)
	}
	if !strings.Contains(out.String(), "Wrote sample description to") {
		t.Fatalf("unexpected output: %s", out.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "svcdesc service description") {
		t.Fatalf("unexpected sample contents: %s", data)
	}

	d, err := spec.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("sample should load: %v", err)
	}
	models, err := d.Models()
	if err != nil {
		t.Fatalf("sample models should resolve: %v", err)
	}
	if models["Admin"].Description() != "A user with elevated rights." || !models["Admin"].HasProperty("dob") {
		t.Fatalf("Admin should extend User")
	}
	for _, name := range d.Operations() {
		if _, err := d.Operation(name); err != nil {
			t.Fatalf("operation %s: %v", name, err)
		}
	}
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "service.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected error for existing file without --force")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}

	root = NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path, "--force"})
	if err := root.Execute(); err != nil {
		t.Fatalf("init --force: %v", err)
	}
}
