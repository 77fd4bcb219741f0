package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/nikolayk812/rocketcart/internal/domain"
	"github.com/nikolayk812/rocketcart/internal/port"
)

type fileRepository struct {
	path string
}

// NewFile stores the snapshot as a JSON array in dir, in a file named after the escaped key.
func NewFile(dir, key string) (port.CartRepository, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is empty")
	}
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	return &fileRepository{
		path: filepath.Join(dir, url.PathEscape(key)+".json"),
	}, nil
}

func (r *fileRepository) Load(ctx context.Context) ([]domain.LineItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.LineItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	return decodeSnapshot(data)
}

func (r *fileRepository) Save(ctx context.Context, items []domain.LineItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeSnapshot(items)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("tmp.Write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("tmp.Sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}

	return nil
}

func encodeSnapshot(items []domain.LineItem) ([]byte, error) {
	if err := (domain.Cart{Items: items}).Validate(); err != nil {
		return nil, fmt.Errorf("cart is not valid: %w", err)
	}

	if items == nil {
		items = []domain.LineItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return data, nil
}

func decodeSnapshot(data []byte) ([]domain.LineItem, error) {
	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	if items == nil {
		items = []domain.LineItem{}
	}

	if err := (domain.Cart{Items: items}).Validate(); err != nil {
		return nil, fmt.Errorf("cart is not valid: %w", err)
	}

	return items, nil
}
