package internal

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes a value to disk as an indented YAML document.
func WriteYAML(filename string, value any) error {
	var buffer bytes.Buffer

	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)

	if err := encoder.Encode(value); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}

	return os.WriteFile(filename, buffer.Bytes(), 0o644)
}
