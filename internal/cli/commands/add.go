package commands

import (
	"context"
	"fmt"
	"net/http"

	"idcards/internal/config"
)

type addCmd struct{}

func (addCmd) Name() string        { return "add" }
func (addCmd) Description() string { return "Create an ID card" }
func (addCmd) Usage() string {
	return "add --full-name <name> --id-number <n> [--designation d] [--department d] [--issue-date d] [--expiry-date d] [--photo file]"
}

func (addCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	cf := newCardFlags("add")
	if err := cf.fs.Parse(args); err != nil || cf.fs.NArg() != 0 {
		return ErrUsage
	}
	fields := cf.fields()
	if fields["fullName"] == "" || fields["idNumber"] == "" {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	var resp struct {
		Message string   `json:"message"`
		IDCard  cardView `json:"idCard"`
	}
	if err := c.SendMultipart(ctx, http.MethodPost, "/api/idcards", fields, "photo", *cf.photo, &resp); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Created:")
	printCard(Out, resp.IDCard)
	return nil
}

type editCmd struct{}

func (editCmd) Name() string        { return "edit" }
func (editCmd) Description() string { return "Update selected fields of an ID card" }
func (editCmd) Usage() string {
	return "edit [--full-name n] [--id-number n] [--designation d] [--department d] [--issue-date d] [--expiry-date d] [--photo file] <id>"
}

func (editCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	// флаги разрешены только перед идентификатором
	cf := newCardFlags("edit")
	if err := cf.fs.Parse(args); err != nil || cf.fs.NArg() != 1 {
		return ErrUsage
	}
	id := cf.fs.Arg(0)
	fields := cf.fields()
	if len(fields) == 0 && *cf.photo == "" {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	var resp struct {
		Message string   `json:"message"`
		Card    cardView `json:"card"`
	}
	if err := c.SendMultipart(ctx, http.MethodPut, "/api/idcards/"+id, fields, "photo", *cf.photo, &resp); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Updated:")
	printCard(Out, resp.Card)
	return nil
}

func init() {
	RegisterCmd(addCmd{})
	RegisterCmd(editCmd{})
}
