package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskStore хранит файлы в локальном каталоге, который раздаётся как /uploads.
type DiskStore struct {
	dir   string
	names *namer
}

// NewDiskStore создаёт каталог при необходимости.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, names: newNamer()}, nil
}

// Dir возвращает корневой каталог хранилища.
func (s *DiskStore) Dir() string { return s.dir }

// Path возвращает путь файла на диске.
func (s *DiskStore) Path(name string) (string, error) {
	base, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, base), nil
}

// Save не перезаписывает существующие файлы: занятое имя (например, другим
// процессом) заменяется следующим.
func (s *DiskStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	var (
		name string
		p    string
		f    *os.File
		err  error
	)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name = s.names.next(originalName)
		p = filepath.Join(s.dir, name)
		f, err = os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if !errors.Is(err, fs.ErrExist) {
			break
		}
	}
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return "", err
	}
	return name, nil
}

func (s *DiskStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return f, nil
}

func (s *DiskStore) Remove(ctx context.Context, name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotExist
		}
		return err
	}
	return nil
}
