package description

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOperation_Fields(t *testing.T) {
	t.Parallel()
	d := mustNew(t, map[string]any{
		"operations": map[string]any{
			"GetUser": map[string]any{
				"httpMethod":       "get",
				"uri":              "/users/{id}",
				"summary":          "Fetch a user",
				"notes":            "longer text",
				"documentationUrl": "http://docs",
				"responseModel":    "User",
				"deprecated":       true,
				"errorResponses":   []any{map[string]any{"code": 404}},
				"parameters": map[string]any{
					"id":     map[string]any{"location": "uri", "required": true},
					"expand": map[string]any{"location": "query", "sentAs": "x"},
					"since":  map[string]any{"location": "query", "$ref": "Date"},
				},
				"additionalParameters": map[string]any{"location": "query"},
			},
		},
		"models": map[string]any{
			"User": map[string]any{"type": "object"},
			"Date": map[string]any{"type": "string", "format": "date"},
		},
	})
	op, err := d.Operation("GetUser")
	if err != nil {
		t.Fatalf("operation: %v", err)
	}
	if op.Name() != "GetUser" || op.HTTPMethod() != "GET" || op.URI() != "/users/{id}" {
		t.Errorf("got name=%q method=%q uri=%q", op.Name(), op.HTTPMethod(), op.URI())
	}
	if op.Summary() != "Fetch a user" || op.Notes() != "longer text" || op.DocumentationURL() != "http://docs" {
		t.Errorf("docs: %q %q %q", op.Summary(), op.Notes(), op.DocumentationURL())
	}
	if !op.Deprecated() {
		t.Errorf("expected deprecated")
	}
	if diff := cmp.Diff([]string{"expand", "id", "since"}, op.ParamNames()); diff != "" {
		t.Errorf("params (-want +got):\n%s", diff)
	}
	if !op.HasParam("id") || op.HasParam("nope") {
		t.Errorf("HasParam mismatch")
	}
	since, ok := op.Param("since")
	if !ok || since.Name() != "since" || since.Format() != "date" {
		t.Errorf("since: %+v", since)
	}
	query := op.ParamsByLocation("query")
	if len(query) != 2 || query[0].SentAs() != "x" || query[1].SentAs() != "since" {
		t.Errorf("query params: %v", query)
	}
	if len(op.Params()) != 3 {
		t.Errorf("params: %d", len(op.Params()))
	}
	if op.AdditionalParameters() == nil || op.AdditionalParameters().Location() != "query" {
		t.Errorf("additional parameters: %+v", op.AdditionalParameters())
	}
	if op.Data("errorResponses") == nil {
		t.Errorf("expected errorResponses in data")
	}

	resp, err := op.ResponseModelParameter()
	if err != nil {
		t.Fatalf("response model: %v", err)
	}
	user, _ := d.Model("User")
	if resp != user {
		t.Errorf("expected the cached User model")
	}
}

func TestOperation_NameFromDefinition(t *testing.T) {
	t.Parallel()
	d := mustNew(t, map[string]any{"operations": map[string]any{
		"key": map[string]any{"name": "explicit"},
	}})
	op, err := d.Operation("key")
	if err != nil {
		t.Fatalf("operation: %v", err)
	}
	if op.Name() != "explicit" {
		t.Fatalf("name: got %q", op.Name())
	}
	if resp, err := op.ResponseModelParameter(); resp != nil || err != nil {
		t.Fatalf("expected no response model, got %v %v", resp, err)
	}
}

func TestOperation_InvalidDefinitionsFailLazily(t *testing.T) {
	t.Parallel()
	d := mustNew(t, map[string]any{"operations": map[string]any{
		"badParams": map[string]any{"parameters": []any{"a"}},
		"badParam":  map[string]any{"parameters": map[string]any{"p": 3}},
		"badRef":    map[string]any{"parameters": map[string]any{"p": map[string]any{"$ref": "Nope"}}},
		"ok":        map[string]any{},
	}})
	if _, err := d.Operation("badParams"); !IsCode(err, InvalidConfiguration) {
		t.Errorf("badParams: got %v", err)
	}
	if _, err := d.Operation("badParam"); !IsCode(err, InvalidConfiguration) {
		t.Errorf("badParam: got %v", err)
	}
	if _, err := d.Operation("badRef"); !IsCode(err, NotFound) {
		t.Errorf("badRef: got %v", err)
	}
	if _, err := d.Operation("ok"); err != nil {
		t.Errorf("ok: %v", err)
	}
}

func TestOperation_ToArrayIsACopy(t *testing.T) {
	t.Parallel()
	d := mustNew(t, map[string]any{"operations": map[string]any{
		"op": map[string]any{"uri": "/a"},
	}})
	op, _ := d.Operation("op")
	arr := op.ToArray()
	arr["uri"] = "/b"
	if op.ToArray()["uri"] != "/a" {
		t.Fatalf("ToArray leaked the underlying map")
	}
}
