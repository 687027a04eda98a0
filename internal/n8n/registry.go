package n8n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultSnippetsDir is where the deploy command looks for snippets
	// when no directory is configured.
	DefaultSnippetsDir = "snippets"

	// RegistryFile names the registry inside the snippets directory.
	RegistryFile = "snippet_registry.json"
)

// Snippet describes one deployable piece of code.
type Snippet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	File        string `json:"file"`
}

// Registry is the set of snippets available for deployment. Snippet files
// are resolved relative to the directory the registry was loaded from.
type Registry struct {
	dir      string
	Snippets []Snippet
}

// LoadRegistry reads RegistryFile from dir.
func LoadRegistry(dir string) (*Registry, error) {
	path := filepath.Join(dir, RegistryFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snippet registry: %w", err)
	}

	var parsed struct {
		Snippets []Snippet `json:"snippets"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse snippet registry %s: %w", path, err)
	}

	return &Registry{dir: dir, Snippets: parsed.Snippets}, nil
}

// Find returns the snippet with the given id.
func (r *Registry) Find(id string) (Snippet, bool) {
	for _, s := range r.Snippets {
		if s.ID == id {
			return s, true
		}
	}
	return Snippet{}, false
}

// Code reads a snippet's source and guarantees it starts with the marker
// comment the deployer matches nodes by.
func (r *Registry) Code(s Snippet) (string, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, s.File))
	if err != nil {
		return "", fmt.Errorf("failed to read snippet file: %w", err)
	}

	code := string(data)
	if !strings.Contains(code, snippetMarker+s.ID) {
		code = snippetMarker + s.ID + "\n" + code
	}
	return code, nil
}
