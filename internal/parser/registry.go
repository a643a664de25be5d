package parser

import (
	"fmt"
	"strings"
)

// Registry holds the available table readers and picks one per file.
type Registry struct {
	readers []TableReader
}

// NewRegistry returns a registry with the CSV and spreadsheet readers.
func NewRegistry() *Registry {
	return &Registry{
		readers: []TableReader{
			NewCSVReader(),
			NewXLSXReader(),
		},
	}
}

// Register adds a new reader to the registry.
func (r *Registry) Register(tr TableReader) {
	r.readers = append(r.readers, tr)
}

// FindReader detects the correct reader for a file.
func (r *Registry) FindReader(filePath string) (TableReader, error) {
	for _, tr := range r.readers {
		if tr.CanRead(filePath) {
			return tr, nil
		}
	}
	return nil, fmt.Errorf("no suitable reader found for file: %s", filePath)
}

// GetReaderByName returns a reader by its name.
func (r *Registry) GetReaderByName(name string) (TableReader, error) {
	name = strings.ToLower(name)
	for _, tr := range r.readers {
		if strings.ToLower(tr.Name()) == name {
			return tr, nil
		}
	}
	return nil, fmt.Errorf("reader not found: %s", name)
}
