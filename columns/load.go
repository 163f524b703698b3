package columns

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads column declarations from a file. Files ending in .yaml or .yml
// hold a list of {key, title, type} entries; any other file lists one key per
// line.
func Load(path string) (*Mapper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading fields file: %w", err)
	}
	var fields []Field
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("error parsing fields file %s: %w", path, err)
		}
	default:
		for _, line := range strings.Split(string(data), "\n") {
			if key := strings.TrimSpace(line); key != "" {
				fields = append(fields, Field{Key: key})
			}
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w in fields file: %s", ErrNoColumns, path)
	}
	return New(fields...)
}

// WriteYAML writes the mapper as a column mapping file.
func WriteYAML(w io.Writer, m *Mapper) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m.Fields()); err != nil {
		return fmt.Errorf("error encoding fields: %w", err)
	}
	return enc.Close()
}
