package spec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRepairSwagger2_MultipleBodiesMerged(t *testing.T) {
	t.Parallel()
	op := map[string]any{
		"parameters": []any{
			map[string]any{"in": "query", "name": "q", "type": "string"},
			map[string]any{"in": "body", "name": "a", "required": true, "schema": map[string]any{"type": "string"}},
			map[string]any{"in": "body", "name": "b", "type": "integer"},
		},
	}
	doc := map[string]any{"paths": map[string]any{"/x": map[string]any{"post": op}}}
	if !repairSwagger2(doc) {
		t.Fatalf("expected changes")
	}
	want := []any{
		map[string]any{"in": "body", "name": "body", "schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "string"},
				"b": map[string]any{"type": "integer"},
			},
			"required": []any{"a"},
		}},
		map[string]any{"in": "query", "name": "q", "type": "string"},
	}
	if diff := cmp.Diff(want, op["parameters"]); diff != "" {
		t.Fatalf("parameters (-want +got):\n%s", diff)
	}
}

func TestRepairSwagger2_BodyWithFormData(t *testing.T) {
	t.Parallel()
	op := map[string]any{
		"consumes": []any{"application/x-www-form-urlencoded"},
		"parameters": []any{
			map[string]any{"in": "body", "name": "meta", "description": "d", "schema": map[string]any{"$ref": "#/definitions/Meta"}},
			map[string]any{"in": "formData", "name": "file", "type": "file", "required": true},
		},
	}
	doc := map[string]any{"paths": map[string]any{"/upload": map[string]any{"post": op}}}
	if !repairSwagger2(doc) {
		t.Fatalf("expected changes")
	}
	wantParams := []any{
		map[string]any{"in": "formData", "name": "meta", "description": "d", "type": "string"},
		map[string]any{"in": "formData", "name": "file", "type": "file", "required": true},
	}
	if diff := cmp.Diff(wantParams, op["parameters"]); diff != "" {
		t.Errorf("parameters (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"application/x-www-form-urlencoded", "multipart/form-data"}, op["consumes"]); diff != "" {
		t.Errorf("consumes (-want +got):\n%s", diff)
	}
}

func TestRepairSwagger2_Untouched(t *testing.T) {
	t.Parallel()
	docs := []map[string]any{
		{},
		{"paths": map[string]any{"/x": map[string]any{
			"parameters": []any{map[string]any{"in": "body", "name": "a"}, map[string]any{"in": "body", "name": "b"}},
			"get":        map[string]any{"parameters": []any{map[string]any{"in": "body", "name": "only"}}},
		}}},
	}
	for i, doc := range docs {
		if repairSwagger2(doc) {
			t.Errorf("doc %d: unexpected changes", i)
		}
	}
}
