package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"idcards/internal/config"
)

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Check the server and show the current login" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.ServerURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	fmt.Fprintln(Out, "Server:", strings.TrimSpace(string(body)))

	store := authStore(cfg)
	if _, err := store.Load(); err != nil {
		fmt.Fprintln(Out, "Not logged in")
		return nil
	}
	if login, err := store.LoadLogin(); err == nil {
		fmt.Fprintln(Out, "Logged in as", login)
	} else {
		fmt.Fprintln(Out, "Logged in")
	}
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
