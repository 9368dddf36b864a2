package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"idcards/internal/cli/api"
	"idcards/internal/config"
)

type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create an account and store the access token" }
func (registerCmd) Usage() string       { return "register <login> <password>" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	var resp authResponse
	req := RegisterRequest{Login: args[0], Password: args[1]}
	err := api.NewClient(cfg.ServerURL, "").SendJSON(ctx, http.MethodPost, "/api/auth/register", req, &resp)
	if err != nil {
		if api.IsStatus(err, http.StatusConflict) {
			return errors.New("login already in use")
		}
		return err
	}
	if err := persistAuth(cfg, args[0], resp); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Registered and logged in")
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget the stored access token" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if err := authStore(cfg).Clear(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

func init() {
	RegisterCmd(registerCmd{})
	RegisterCmd(logoutCmd{})
}
