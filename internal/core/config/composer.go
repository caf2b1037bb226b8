package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type composerManifest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Authors     []struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"authors"`
	Autoload struct {
		PSR4 map[string]json.RawMessage `json:"psr-4"`
	} `json:"autoload"`
}

// ApplyComposer fills empty project fields from composer.json in root.
// A missing composer.json is not an error.
func ApplyComposer(cfg *Config, root string) error {
	data, err := os.ReadFile(filepath.Join(root, "composer.json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read composer.json: %w", err)
	}

	var m composerManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse composer.json: %w", err)
	}

	if strings.TrimSpace(cfg.Project.Name) == "" {
		cfg.Project.Name = m.Name
	}
	if strings.TrimSpace(cfg.Project.Description) == "" {
		cfg.Project.Description = m.Description
	}
	if len(cfg.Project.Authors) == 0 {
		for _, a := range m.Authors {
			author := strings.TrimSpace(a.Name)
			if a.Email != "" {
				author = strings.TrimSpace(author + " <" + a.Email + ">")
			}
			if author != "" {
				cfg.Project.Authors = append(cfg.Project.Authors, author)
			}
		}
	}
	if strings.TrimSpace(cfg.Project.Namespace) == "" {
		cfg.Project.Namespace = shortestNamespace(m.Autoload.PSR4)
	}
	return nil
}

func shortestNamespace[T any](psr4 map[string]T) string {
	names := make([]string, 0, len(psr4))
	for prefix := range psr4 {
		if ns := strings.Trim(prefix, "\\"); ns != "" {
			names = append(names, ns)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) < len(names[j])
		}
		return names[i] < names[j]
	})
	if len(names) == 0 {
		return ""
	}
	return "\\" + names[0]
}
