package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"idcards/internal/cli/api"
	"idcards/internal/config"
)

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// authResponse — ответ /api/auth/login и /api/auth/register.
type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Login string `json:"login"`
	} `json:"user"`
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store the access token" }
func (loginCmd) Usage() string       { return "login <login> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	var resp authResponse
	req := LoginRequest{Login: args[0], Password: args[1]}
	err := api.NewClient(cfg.ServerURL, "").SendJSON(ctx, http.MethodPost, "/api/auth/login", req, &resp)
	if err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) {
			return errors.New("invalid login or password")
		}
		return err
	}
	if err := persistAuth(cfg, args[0], resp); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged in successfully")
	return nil
}

func persistAuth(cfg *config.Config, login string, resp authResponse) error {
	store := authStore(cfg)
	if err := store.Save(resp.Token); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	if err := store.SaveLogin(login); err != nil {
		return fmt.Errorf("saving login: %w", err)
	}
	return nil
}

func init() { RegisterCmd(loginCmd{}) }
