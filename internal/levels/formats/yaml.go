package formats

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func init() {
	Parsers.Register(".yaml", ParseYAML)
	Parsers.Register(".yml", ParseYAML)
}

// ParseYAML parses a YAML level file.
func ParseYAML(data []byte, filename string) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("yaml unmarshal %s: %w", filename, err)
	}
	return doc, nil
}
