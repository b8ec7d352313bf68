package spec

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const usersHCL = `
name       = "Users"
apiVersion = "2024-01-01"
limits     = [1, 2.5, "x", true, null]

operation "GetUser" {
  httpMethod    = "GET"
  uri           = "/users/{id}"
  responseModel = "User"

  parameter "id" {
    location = "uri"
    required = true
  }
}

operation "DeleteUser" {
  httpMethod = "DELETE"
  uri        = "/users/{id}"
}

model "User" {
  type = "object"
  properties = {
    id  = { type = "string" }
    dob = { "$ref" = "Date" }
  }
}

model "Date" {
  type   = "string"
  format = "date"
}
`

func TestDecodeHCL_BlocksAndAttributes(t *testing.T) {
	t.Parallel()
	config, order, err := decodeHCL([]byte(usersHCL), "users.hcl")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(Order{Operations: []string{"GetUser", "DeleteUser"}, Models: []string{"User", "Date"}}, order); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{1, 2.5, "x", true, nil}, config["limits"]); diff != "" {
		t.Errorf("limits (-want +got):\n%s", diff)
	}
	want := map[string]any{
		"httpMethod":    "GET",
		"uri":           "/users/{id}",
		"responseModel": "User",
		"parameters": map[string]any{
			"id": map[string]any{"location": "uri", "required": true},
		},
	}
	ops := config["operations"].(map[string]any)
	if diff := cmp.Diff(want, ops["GetUser"]); diff != "" {
		t.Errorf("GetUser (-want +got):\n%s", diff)
	}
	models := config["models"].(map[string]any)
	user := models["User"].(map[string]any)
	if diff := cmp.Diff(map[string]any{"$ref": "Date"}, user["properties"].(map[string]any)["dob"]); diff != "" {
		t.Errorf("dob (-want +got):\n%s", diff)
	}
}

func TestDecodeHCL_ObjectStyleOrder(t *testing.T) {
	t.Parallel()
	src := `
models = {
  Zed   = { type = "string" }
  Alpha = { type = "integer" }
}
`
	config, order, err := decodeHCL([]byte(src), "m.hcl")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"Zed", "Alpha"}, order.Models); diff != "" {
		t.Errorf("models (-want +got):\n%s", diff)
	}
	if len(order.Operations) != 0 {
		t.Errorf("unexpected operations order: %v", order.Operations)
	}
	models := config["models"].(map[string]any)
	if diff := cmp.Diff(map[string]any{"type": "integer"}, models["Alpha"]); diff != "" {
		t.Errorf("Alpha (-want +got):\n%s", diff)
	}
}

func TestDecodeHCL_Errors(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"syntax":          `operation "x" {`,
		"duplicate label": "model \"A\" {}\nmodel \"A\" {}\n",
		"two labels":      `operation "a" "b" {}`,
		"mixed styles":    "models = {}\nmodel \"A\" {}\n",
		"variables":       `name = var.name`,
	}
	for name, src := range tests {
		_, _, err := decodeHCL([]byte(src), name+".hcl")
		var se *SpecError
		if !errors.As(err, &se) || se.Code != ParseError {
			t.Errorf("%s: expected ParseError, got %v", name, err)
		}
	}
}

func TestLoad_HCL(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "users.hcl", usersHCL)
	d, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"GetUser", "DeleteUser"}, d.Operations()); diff != "" {
		t.Errorf("operations (-want +got):\n%s", diff)
	}
	op, err := d.Operation("GetUser")
	if err != nil {
		t.Fatalf("operation: %v", err)
	}
	model, err := op.ResponseModelParameter()
	if err != nil || model == nil {
		t.Fatalf("response model: %v %v", model, err)
	}
	dob, err := model.Property("dob")
	if err != nil {
		t.Fatalf("dob: %v", err)
	}
	if dob.Format() != "date" || dob.Name() != "dob" {
		t.Fatalf("dob: format=%q name=%q", dob.Format(), dob.Name())
	}
}
