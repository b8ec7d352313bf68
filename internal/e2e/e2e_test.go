package e2e

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	cli "github.com/mark3labs/svcdesc/internal/cli"
	"github.com/mark3labs/svcdesc/internal/spec"
)

// minimal OpenAPI v3 document with a ref'd response model
const minimalOpenAPI = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: E2E Sample\n" +
	"  version: '1.0.0'\n" +
	"servers:\n" +
	"  - url: https://pets.example.com\n" +
	"paths:\n" +
	"  /pets/{id}:\n" +
	"    get:\n" +
	"      operationId: GetPet\n" +
	"      summary: Fetch a pet\n" +
	"      tags: [read]\n" +
	"      parameters:\n" +
	"        - {name: id, in: path, required: true, schema: {type: string}}\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n" +
	"          content:\n" +
	"            application/json:\n" +
	"              schema: {$ref: '#/components/schemas/Pet'}\n" +
	"components:\n" +
	"  schemas:\n" +
	"    Pet:\n" +
	"      type: object\n" +
	"      required: [name]\n" +
	"      properties:\n" +
	"        name: {type: string}\n" +
	"        kind: {type: string, enum: [cat, dog]}\n" +
	"        born: {type: string, format: date}\n"

const minimalHCL = `
name = "Inventory"

operation "ListItems" {
  httpMethod = "GET"
  uri        = "/items"

  parameter "limit" {
    type     = "integer"
    location = "query"
    default  = 20
  }
}

model "Item" {
  type = "object"
  properties = {
    sku   = { type = "string", required = true }
    price = { type = "number" }
  }
}
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := cli.NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("cli execute %v: %v", args, err)
	}
	return out.String()
}

func digestFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// assertRoundTrip exports input in format, reloads the export and checks
// both descriptions serialize to the same array form.
func assertRoundTrip(t *testing.T, input, format string) {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	out1 := filepath.Join(dir, "one."+format)
	out2 := filepath.Join(dir, "two."+format)

	runCLI(t, "export", input, "--format", format, "--out", out1)
	runCLI(t, "export", input, "--format", format, "--out", out2)
	if digestFile(t, out1) != digestFile(t, out2) {
		t.Fatalf("exports differ between runs")
	}

	original, err := spec.Load(ctx, input)
	if err != nil {
		t.Fatalf("load original: %v", err)
	}
	reloaded, err := spec.Load(ctx, out1)
	if err != nil {
		t.Fatalf("load export: %v", err)
	}
	if diff := cmp.Diff(original.ToArray(), reloaded.ToArray()); diff != "" {
		t.Fatalf("round trip through %s changed the description (-original +reloaded):\n%s", format, diff)
	}
}

func TestE2E_OpenAPI_Export_RoundTrip(t *testing.T) {
	t.Parallel()
	input := writeTemp(t, "openapi.yaml", minimalOpenAPI)
	assertRoundTrip(t, input, "yaml")
	assertRoundTrip(t, input, "json")
}

func TestE2E_HCL_Export_RoundTrip(t *testing.T) {
	t.Parallel()
	input := writeTemp(t, "inventory.hcl", minimalHCL)
	assertRoundTrip(t, input, "yaml")
	assertRoundTrip(t, input, "json")
}

func TestE2E_Model_FromOpenAPI(t *testing.T) {
	t.Parallel()
	input := writeTemp(t, "openapi.yaml", minimalOpenAPI)
	got := runCLI(t, "model", "Pet", "--input", input)
	want := "" +
		"Pet (object)\n" +
		"  born (string, format=date)\n" +
		"  kind (string, enum=[cat dog])\n" +
		"  name (string, required)\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("model tree (-want +got):\n%s", diff)
	}
}
