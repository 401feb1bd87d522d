package prompt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Store holds named prompt templates loaded from a YAML file.
//
// Templates are plain text with fmt-style verbs for runtime interpolation.
// A request for a name the store does not know is a configuration error,
// never a silent default.
type Store struct {
	path      string
	templates map[string]string
}

// NewStore loads the prompt templates from the YAML file at path.
// The file must contain a flat mapping of template name to template text.
func NewStore(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt store %s: %w", path, err)
	}

	templates := map[string]string{}
	if err := yaml.Unmarshal(raw, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt store %s: %w", path, err)
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("prompt store %s contains no templates", path)
	}

	return &Store{
		path:      path,
		templates: templates,
	}, nil
}

// Names returns the names of all loaded templates.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	return names
}

// Get returns the raw template registered under name.
func (s *Store) Get(name string) (string, error) {
	template, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("prompt %q not found in %s", name, s.path)
	}
	return template, nil
}

// Format resolves the template registered under name and interpolates args
// into its fmt verbs.
func (s *Store) Format(name string, args ...any) (string, error) {
	template, err := s.Get(name)
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return template, nil
	}
	return fmt.Sprintf(template, args...), nil
}
