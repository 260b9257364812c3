package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileBackend keeps every document in its own indented JSON file inside dir.
type FileBackend struct {
	dir string
}

// NewFileBackend creates dir when missing.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating directory %s: %w", dir, err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(doc Document) string {
	return filepath.Join(b.dir, fmt.Sprintf("%s.json", doc))
}

// Load reads the document file. A file that cannot be decoded is renamed aside so the
// next save does not silently overwrite it.
func (b *FileBackend) Load(doc Document, v interface{}) (bool, error) {
	filePath := b.path(doc)

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("error reading %s: %w", filePath, err)
	}

	if err := json.Unmarshal(fileData, v); err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", filePath, time.Now().Unix())
		if renameErr := os.Rename(filePath, aside); renameErr != nil {
			return false, fmt.Errorf("error unmarshalling %s: %w (rename failed: %v)", filePath, err, renameErr)
		}
		return false, fmt.Errorf("error unmarshalling %s, moved to %s: %w", filePath, aside, err)
	}
	return true, nil
}

// Save rewrites the whole document file.
func (b *FileBackend) Save(doc Document, v interface{}) error {
	filePath := b.path(doc)

	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling %s to JSON: %w", doc, err)
	}

	if err := os.WriteFile(filePath, jsonData, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", filePath, err)
	}
	return nil
}

// Size sums the sizes of the document files that exist.
func (b *FileBackend) Size() (int64, error) {
	var total int64
	for _, doc := range AllDocuments {
		info, err := os.Stat(b.path(doc))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

func (b *FileBackend) Close() error {
	return nil
}
