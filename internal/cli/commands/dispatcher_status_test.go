package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"idcards/internal/cli/api"
	fsrepo "idcards/internal/cli/repo/fs"
	"idcards/internal/config"
)

// fakeCmd позволяет управлять возвратом ошибок из Run
type fakeCmd struct {
	name, usage, desc string
	run               func(ctx context.Context, cfg *config.Config, args []string) error
}

func (f fakeCmd) Name() string        { return f.name }
func (f fakeCmd) Description() string { return f.desc }
func (f fakeCmd) Usage() string       { return f.usage }
func (f fakeCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	return f.run(ctx, cfg, args)
}

func TestDispatcher_HelpAndUnknown(t *testing.T) {
	out := withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{}) })
	if !strings.Contains(out, "ID Card CLI") {
		t.Fatalf("global help expected")
	}
	for _, name := range []string{"login", "register", "list", "add", "edit", "pdf", "import"} {
		if !strings.Contains(out, name) {
			t.Fatalf("command %q missing from help", name)
		}
	}

	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"help"}) })
	if !strings.Contains(out, "Usage:") {
		t.Fatalf("usage expected")
	}

	var code int
	out = withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"help", "pdf"}) })
	if code != 0 || !strings.Contains(out, "pdf [-o file] <id|all>") {
		t.Fatalf("expected pdf usage, got %d %q", code, out)
	}
	if !strings.Contains(out, "Download one ID card (or all) as PDF") {
		t.Fatalf("expected pdf description, got %q", out)
	}

	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"help", "nope"}) })
	if !strings.Contains(out, "Unknown command") {
		t.Fatalf("unknown command message expected")
	}

	withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"no-such"}) })
	if code != 2 {
		t.Fatalf("expected 2 for unknown command, got %d", code)
	}
}

func TestFormatGlobalUsage_Groups(t *testing.T) {
	out := FormatGlobalUsage()
	account := strings.Index(out, "Account:")
	cards := strings.Index(out, "ID cards:")
	if account < 0 || cards < account {
		t.Fatalf("expected account group before card group:\n%s", out)
	}
	if login := strings.Index(out, "  login <login> <password>"); login < account || login > cards {
		t.Fatalf("login must be listed under Account:\n%s", out)
	}
	if pdf := strings.Index(out, "  pdf [-o file] <id|all>"); pdf < cards {
		t.Fatalf("pdf must be listed under ID cards:\n%s", out)
	}
	if !strings.Contains(out, "SERVER_URL") || !strings.Contains(out, "TOKEN_FILE") {
		t.Fatalf("environment section expected")
	}
}

func TestDispatcher_AuthFailuresSuggestLogin(t *testing.T) {
	RegisterCmd(fakeCmd{name: "expired", usage: "expired", run: func(context.Context, *config.Config, []string) error {
		return fmt.Errorf("list cards: %w", &api.StatusError{Status: http.StatusUnauthorized, Message: "Token is not valid"})
	}})
	RegisterCmd(fakeCmd{name: "anon", usage: "anon", run: func(context.Context, *config.Config, []string) error {
		return fsrepo.ErrNoToken
	}})
	RegisterCmd(fakeCmd{name: "gone", usage: "gone", run: func(context.Context, *config.Config, []string) error {
		return &api.StatusError{Status: http.StatusNotFound, Message: "ID Card not found"}
	}})

	var code int
	out := withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"expired"}) })
	if code != exitAuth || !strings.Contains(out, "Token is not valid") || !strings.Contains(out, "idcardctl login") {
		t.Fatalf("expected login hint and exit %d, got %d %q", exitAuth, code, out)
	}

	out = withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"anon"}) })
	if code != exitAuth || !strings.Contains(out, "idcardctl login") {
		t.Fatalf("expected login hint for missing token, got %d %q", code, out)
	}

	out = withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"gone"}) })
	if code != 1 || strings.Contains(out, "idcardctl login") {
		t.Fatalf("not found is not an auth failure, got %d %q", code, out)
	}
}

func TestDispatcher_RunPaths(t *testing.T) {
	// зарегистрируем временную команду
	cmdOK := fakeCmd{name: "x", usage: "x", desc: "", run: func(_ context.Context, _ *config.Config, _ []string) error { return nil }}
	RegisterCmd(cmdOK)
	if code := Dispatch(context.Background(), &config.Config{}, []string{"x"}); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	cmdUsage := fakeCmd{name: "u", usage: "u <arg>", desc: "", run: func(_ context.Context, _ *config.Config, _ []string) error { return ErrUsage }}
	RegisterCmd(cmdUsage)
	out := withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"u"}) })
	if !strings.Contains(out, "Usage: u <arg>") {
		t.Fatalf("usage text expected")
	}

	cmdErr := fakeCmd{name: "e", usage: "e", desc: "", run: func(_ context.Context, _ *config.Config, _ []string) error { return fmt.Errorf("boom") }}
	RegisterCmd(cmdErr)
	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"e"}) })
	if !strings.Contains(out, "e error: boom") {
		t.Fatalf("error line expected, got: %s", out)
	}
}

func TestStatus_Run(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Fatalf("path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("ID Card Backend is Running"))
	}))
	defer ts.Close()
	cfg := testConfig(t, ts.URL)

	out := withStdoutCapture(t, func() {
		if err := (statusCmd{}).Run(context.Background(), cfg, nil); err != nil {
			t.Fatalf("status failed: %v", err)
		}
	})
	if !strings.Contains(out, "ID Card Backend is Running") || !strings.Contains(out, "Not logged in") {
		t.Fatalf("unexpected output: %q", out)
	}

	loggedIn(t, cfg, "tok")
	_ = authStore(cfg).SaveLogin("alice")
	out = withStdoutCapture(t, func() { _ = (statusCmd{}).Run(context.Background(), cfg, nil) })
	if !strings.Contains(out, "Logged in as alice") {
		t.Fatalf("unexpected output: %q", out)
	}

	// non-200
	ts500 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts500.Close()
	if err := (statusCmd{}).Run(context.Background(), testConfig(t, ts500.URL), nil); err == nil {
		t.Fatalf("status should fail on non-200")
	}

	// ErrUsage при лишних аргументах
	if err := (statusCmd{}).Run(context.Background(), cfg, []string{"extra"}); err != ErrUsage {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
}
