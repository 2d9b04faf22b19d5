package categorize

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// PromptConfig is the request layout read from prompts.yaml.
type PromptConfig struct {
	BatchSize struct {
		Filenames int `yaml:"filenames"`
		Deep      int `yaml:"deep"`
	} `yaml:"batch_size"`

	Output struct {
		ItemFields []string `yaml:"item_fields"`
	} `yaml:"output"`

	Parts struct {
		FileList      string `yaml:"file_list"`
		InlineCaption string `yaml:"inline_caption"`
		NameOnly      string `yaml:"name_only"`
	} `yaml:"parts"`

	Guidance struct {
		Deep      string `yaml:"deep"`
		Filenames string `yaml:"filenames"`
	} `yaml:"guidance"`

	Instruction string `yaml:"instruction"`

	instruction *template.Template
}

// LoadPromptConfig parses the embedded prompt configuration.
func LoadPromptConfig() (*PromptConfig, error) {
	return parsePromptConfig(promptsYAML)
}

func parsePromptConfig(data []byte) (*PromptConfig, error) {
	var cfg PromptConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse prompt config: %w", err)
	}
	if cfg.BatchSize.Filenames <= 0 || cfg.BatchSize.Deep <= 0 {
		return nil, fmt.Errorf("parse prompt config: batch sizes must be positive")
	}
	if len(cfg.Output.ItemFields) == 0 {
		return nil, fmt.Errorf("parse prompt config: no output fields")
	}

	tmpl, err := template.New("instruction").Option("missingkey=error").Parse(cfg.Instruction)
	if err != nil {
		return nil, fmt.Errorf("parse instruction template: %w", err)
	}
	cfg.instruction = tmpl
	return &cfg, nil
}

// BatchSizeFor returns how many files go into one request.
func (c *PromptConfig) BatchSizeFor(deep bool) int {
	if deep {
		return c.BatchSize.Deep
	}
	return c.BatchSize.Filenames
}

// RenderInstruction fills in the project context.
func (c *PromptConfig) RenderInstruction(projectName string, deep bool) (string, error) {
	guidance := c.Guidance.Filenames
	if deep {
		guidance = c.Guidance.Deep
	}

	var b strings.Builder
	err := c.instruction.Execute(&b, struct {
		ProjectName string
		Guidance    string
	}{projectName, guidance})
	if err != nil {
		return "", fmt.Errorf("render instruction: %w", err)
	}
	return b.String(), nil
}
