package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	fsrepo "idcards/internal/cli/repo/fs"
	"idcards/internal/config"
)

// testConfig — конфиг клиента с токеном во временном каталоге.
func testConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	return &config.Config{
		ServerURL: serverURL,
		TokenFile: filepath.Join(t.TempDir(), "IDCards", "auth_token"),
	}
}

// loggedIn сохраняет токен, как это делает login.
func loggedIn(t *testing.T, cfg *config.Config, token string) {
	t.Helper()
	if err := fsrepo.NewAuthFSStore(cfg.TokenFile).Save(token); err != nil {
		t.Fatalf("save token: %v", err)
	}
}

// перехват stdout на время теста
func withStdoutCapture(t *testing.T, fn func()) string {
	t.Helper()
	old := Out
	var buf bytes.Buffer
	Out = &buf
	defer func() { Out = old }()
	fn()
	return buf.String()
}
