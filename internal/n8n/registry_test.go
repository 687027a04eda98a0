package n8n

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSnippetsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	registry := `{
  "snippets": [
    {
      "id": "prospect_validator",
      "name": "Prospect Validator",
      "description": "Runs the full validation pipeline",
      "file": "prospect_validator.js"
    },
    {
      "id": "url_health_check",
      "name": "URL Health Check",
      "description": "Reachability check only",
      "file": "url_health_check.js"
    }
  ]
}`
	if err := os.WriteFile(filepath.Join(dir, RegistryFile), []byte(registry), 0600); err != nil {
		t.Fatalf("Failed to write registry: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "prospect_validator.js"), []byte("return items;\n"), 0600); err != nil {
		t.Fatalf("Failed to write snippet file: %v", err)
	}
	marked := "# snippet: url_health_check\nreturn items;\n"
	if err := os.WriteFile(filepath.Join(dir, "url_health_check.js"), []byte(marked), 0600); err != nil {
		t.Fatalf("Failed to write snippet file: %v", err)
	}
	return dir
}

func TestLoadRegistry(t *testing.T) {
	registry, err := LoadRegistry(writeSnippetsDir(t))
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}

	if len(registry.Snippets) != 2 {
		t.Fatalf("Expected 2 snippets, got %d", len(registry.Snippets))
	}

	snippet, ok := registry.Find("prospect_validator")
	if !ok {
		t.Fatal("Expected to find prospect_validator")
	}
	if snippet.Name != "Prospect Validator" {
		t.Errorf("Expected snippet name, got %q", snippet.Name)
	}

	if _, ok := registry.Find("missing"); ok {
		t.Error("Expected missing snippet to not be found")
	}
}

func TestRegistryCode_AddsMarker(t *testing.T) {
	registry, err := LoadRegistry(writeSnippetsDir(t))
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}

	snippet, _ := registry.Find("prospect_validator")
	code, err := registry.Code(snippet)
	if err != nil {
		t.Fatalf("Failed to load snippet code: %v", err)
	}

	want := "# snippet: prospect_validator\nreturn items;\n"
	if code != want {
		t.Errorf("Expected marker prepended, got %q", code)
	}
}

func TestRegistryCode_KeepsExistingMarker(t *testing.T) {
	registry, err := LoadRegistry(writeSnippetsDir(t))
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}

	snippet, _ := registry.Find("url_health_check")
	code, err := registry.Code(snippet)
	if err != nil {
		t.Fatalf("Failed to load snippet code: %v", err)
	}

	if code != "# snippet: url_health_check\nreturn items;\n" {
		t.Errorf("Expected code unchanged, got %q", code)
	}
}

func TestRegistryCode_MissingFile(t *testing.T) {
	registry, err := LoadRegistry(writeSnippetsDir(t))
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}

	_, err = registry.Code(Snippet{ID: "ghost", File: "ghost.js"})
	if err == nil {
		t.Error("Expected error for missing snippet file, got nil")
	}
}

func TestLoadRegistry_MissingDir(t *testing.T) {
	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Expected error for missing registry, got nil")
	}
}

func TestLoadRegistry_BadJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, RegistryFile), []byte("{not json"), 0600); err != nil {
		t.Fatalf("Failed to write registry: %v", err)
	}

	if _, err := LoadRegistry(dir); err == nil {
		t.Error("Expected error for malformed registry, got nil")
	}
}
