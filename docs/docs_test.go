package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerDocRegistered(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	var parsed struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		t.Fatalf("doc is not valid JSON: %v", err)
	}
	if parsed.Info.Title != "wifihal API" {
		t.Fatalf("unexpected title %q", parsed.Info.Title)
	}
	for _, p := range []string{"/status", "/ifaces", "/ifaces/{name}", "/events"} {
		if _, ok := parsed.Paths[p]; !ok {
			t.Fatalf("path %s missing from doc", p)
		}
	}
}
