// Package storage хранит фотографии удостоверений: локально или в S3-совместимом бакете.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// maxNameAttempts ограничивает поиск свободного имени, если оно уже занято в хранилище.
const maxNameAttempts = 5

// ErrNotExist — файла нет в хранилище.
var ErrNotExist = errors.New("file does not exist")

// FileStore — хранилище загруженных файлов.
type FileStore interface {
	// Save сохраняет содержимое под новым именем "<unix-millis><ext>" и возвращает его.
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	// Open открывает файл; отсутствующий файл даёт ErrNotExist.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Remove удаляет файл; отсутствующий файл даёт ErrNotExist.
	Remove(ctx context.Context, name string) error
}

// NewName строит имя файла по времени загрузки и расширению исходного имени.
func NewName(now time.Time, originalName string) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + strings.ToLower(filepath.Ext(originalName))
}

// cleanName отбрасывает каталоги, чтобы имя не выходило за пределы хранилища.
func cleanName(name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == "" {
		return "", ErrNotExist
	}
	return base, nil
}

// namer выдаёт имена по времени загрузки. Если два файла пришли в одну
// миллисекунду, метка времени сдвигается, и в пределах процесса имена не повторяются.
type namer struct {
	now func() time.Time

	mu   sync.Mutex
	last string
}

func newNamer() *namer {
	return &namer{now: time.Now}
}

func (n *namer) next(originalName string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	name := NewName(now, originalName)
	for name == n.last {
		now = now.Add(time.Millisecond)
		name = NewName(now, originalName)
	}
	n.last = name
	return name
}
