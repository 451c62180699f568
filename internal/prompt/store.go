package prompt

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/liliang-cn/ghostdesk/internal/domain"
)

// Template asset names. Each maps to <name>.txt under the prompts directory
// and is independently editable through the API.
const (
	TemplateAnalyze = "analyze"
	TemplateTurn    = "turn"
	TemplateSystem  = "system"
)

// Store reads and writes the prompt template assets. The builder only
// interpolates; the assets themselves belong to the seller.
type Store struct {
	dir string
}

// NewStore creates a store over the given template directory
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load reads a template asset by name
func (s *Store) Load(name string) (string, error) {
	path := s.path(name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", domain.ErrTemplateMissing, path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	return string(data), nil
}

// Save writes a template asset by name
func (s *Store) Save(name, content string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create template directory: %w", err)
	}
	if err := os.WriteFile(s.path(name), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}
