package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"roombook-backend/models"
)

// FileBackend keeps the room collection in a single JSON file.
type FileBackend struct {
	Path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

func (b *FileBackend) Load(ctx context.Context) ([]models.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(b.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("read %s: %w", b.Path, err)
	}
	var rooms []models.Room
	if err := json.Unmarshal(raw, &rooms); err != nil {
		return nil, fmt.Errorf("decode %s: %w", b.Path, err)
	}
	return rooms, nil
}

// Save writes to a temp file in the same directory and renames it over the
// document, so readers never observe a partial write.
func (b *FileBackend) Save(ctx context.Context, rooms []models.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	raw, err := json.MarshalIndent(rooms, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rooms: %w", err)
	}

	dir := filepath.Dir(b.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".rooms-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, b.Path); err != nil {
		return fmt.Errorf("replace %s: %w", b.Path, err)
	}
	return nil
}
