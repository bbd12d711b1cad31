package codegen

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

// Format runs goimports over generated source.
func Format(filename string, src string) ([]byte, error) {
	formatted, err := imports.Process(filename, []byte(src), nil)
	if err != nil {
		return nil, fmt.Errorf("processing (goimports) generated code for %s: %w\nOriginal content was:\n%s", filename, err, src)
	}
	return formatted, nil
}

// WriteFile formats src and writes it to filePath, creating the directory if needed.
func WriteFile(filePath string, src string) error {
	formatted, err := Format(filePath, src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", filePath, err)
	}
	if err := os.WriteFile(filePath, formatted, 0644); err != nil {
		return fmt.Errorf("writing generated content to %s: %w", filePath, err)
	}
	return nil
}
