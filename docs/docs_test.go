package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerDocIsValidJSON(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}

	var parsed struct {
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		t.Fatalf("doc is not valid JSON: %v", err)
	}
	for _, path := range []string{"/auth/signup", "/auth/signin", "/tasks", "/tasks/{id}", "/tasks/{id}/status"} {
		if _, ok := parsed.Paths[path]; !ok {
			t.Errorf("missing path %s", path)
		}
	}
}
