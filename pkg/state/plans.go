package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// Plans manages markdown plan files under the plans directory. Names
// are generated adjective-verb-noun like the real CLI (for example
// velvety-crunching-ocean.md).
type Plans struct {
	dir string
}

// NewPlans creates a manager for the given plans directory.
func NewPlans(dir string) *Plans {
	return &Plans{dir: dir}
}

func (p *Plans) Dir() string { return p.dir }

// Create writes a new plan file with a generated name and returns the
// name without extension. Collisions are retried a bounded number of
// times before reusing the last candidate.
func (p *Plans) Create(content string) (string, error) {
	if err := os.MkdirAll(p.dir, 0o700); err != nil {
		return "", fmt.Errorf("create plans dir: %w", err)
	}
	name := GeneratePlanName()
	for attempts := 0; p.Exists(name) && attempts < 10; attempts++ {
		name = GeneratePlanName()
	}
	path := filepath.Join(p.dir, name+".md")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("write plan: %w", err)
	}
	return name, nil
}

// Exists reports whether a plan with the given name exists.
func (p *Plans) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(p.dir, name+".md"))
	return err == nil
}

// Read returns the content of a named plan.
func (p *Plans) Read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(p.dir, name+".md"))
	if err != nil {
		return "", fmt.Errorf("read plan: %w", err)
	}
	return string(data), nil
}

// List returns plan names sorted by the directory's natural order.
func (p *Plans) List() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read plans dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".md" {
			names = append(names, e.Name()[:len(e.Name())-3])
		}
	}
	return names, nil
}
