package fs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"idcards/internal/cli/repo"
)

// ErrNoToken — клиент ещё не выполнял login/register.
var ErrNoToken = errors.New("not logged in: run login first")

// AuthFSStore — файловое хранилище токена и контекста пользователя для CLI.
// Логин хранится рядом с токеном в файле last_login.
type AuthFSStore struct {
	TokenPath string
}

var _ repo.AuthStore = AuthFSStore{}

func NewAuthFSStore(tokenPath string) AuthFSStore {
	return AuthFSStore{TokenPath: tokenPath}
}

func (s AuthFSStore) lastLoginPath() string {
	return filepath.Join(filepath.Dir(s.TokenPath), "last_login")
}

func (s AuthFSStore) write(p, v string) error {
	if s.TokenPath == "" {
		return errors.New("token file path is not configured")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(v), 0o600)
}

func read(p string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	// обрезаем завершающие переводы строки/пробелы
	return strings.TrimRight(string(b), " \t\r\n"), nil
}

// Save сохраняет auth‑токен в файл.
func (s AuthFSStore) Save(token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	return s.write(s.TokenPath, token)
}

// Load читает auth‑токен из файла.
func (s AuthFSStore) Load() (string, error) {
	if s.TokenPath == "" {
		return "", ErrNoToken
	}
	tok, err := read(s.TokenPath)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && tok == "") {
		return "", ErrNoToken
	}
	return tok, err
}

// SaveLogin сохраняет логин пользователя в файл.
func (s AuthFSStore) SaveLogin(login string) error {
	if login == "" {
		return errors.New("empty login")
	}
	return s.write(s.lastLoginPath(), login)
}

// LoadLogin читает логин пользователя из файла.
func (s AuthFSStore) LoadLogin() (string, error) {
	login, err := read(s.lastLoginPath())
	if err != nil {
		return "", err
	}
	if login == "" {
		return "", errors.New("no stored login")
	}
	return login, nil
}

// Clear удаляет токен и логин (logout).
func (s AuthFSStore) Clear() error {
	var errs []error
	for _, p := range []string{s.TokenPath, s.lastLoginPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
