package capabilities

import "gopkg.in/yaml.v3"

// ModelCapabilities describes what a categorization model can accept.
type ModelCapabilities struct {
	// Model identifier (set during YAML unmarshaling)
	ID string `yaml:"-" json:"id"`

	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`

	// SupportsVision and SupportsDocuments gate inline image and PDF parts in deep mode.
	SupportsVision           bool `yaml:"supports_vision" json:"supports_vision"`
	SupportsDocuments        bool `yaml:"supports_documents" json:"supports_documents"`
	SupportsStructuredOutput bool `yaml:"supports_structured_output" json:"supports_structured_output"`

	// MaxInlineBytes bounds one inline attachment; larger files fall back to their name.
	MaxInlineBytes int `yaml:"max_inline_bytes" json:"max_inline_bytes"`
	ContextWindow  int `yaml:"context_window" json:"context_window"`
	MaxOutput      int `yaml:"max_output" json:"max_output"`
}

// AcceptsInline reports whether a file of the given media type and size can be attached.
func (m *ModelCapabilities) AcceptsInline(mimeType string, size int) bool {
	if m.MaxInlineBytes > 0 && size > m.MaxInlineBytes {
		return false
	}
	switch {
	case isImage(mimeType):
		return m.SupportsVision
	case isPDF(mimeType):
		return m.SupportsDocuments
	}
	return false
}

// ProviderCapabilities represents all models for a provider
type ProviderCapabilities struct {
	Provider string              `yaml:"provider" json:"provider"`
	Models   []ModelCapabilities `yaml:"-" json:"models"` // YAML order, filled by UnmarshalYAML
}

// UnmarshalYAML keeps the model order of the YAML file.
func (p *ProviderCapabilities) UnmarshalYAML(node *yaml.Node) error {
	var m struct {
		Provider string                       `yaml:"provider"`
		Models   map[string]ModelCapabilities `yaml:"models"`
	}
	if err := node.Decode(&m); err != nil {
		return err
	}
	p.Provider = m.Provider

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "models" {
			continue
		}
		modelsNode := node.Content[i+1]
		// key, value, key, value...
		for j := 0; j+1 < len(modelsNode.Content); j += 2 {
			id := modelsNode.Content[j].Value
			if model, ok := m.Models[id]; ok {
				model.ID = id
				p.Models = append(p.Models, model)
			}
		}
		break
	}
	return nil
}
