package commands

import (
	"context"
	"fmt"
	"net/http"

	"idcards/internal/config"
)

type importCmd struct{}

func (importCmd) Name() string        { return "import" }
func (importCmd) Description() string { return "Bulk import ID cards from .xlsx or .csv" }
func (importCmd) Usage() string       { return "import <file>" }

func (importCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	var resp struct {
		Message string     `json:"message"`
		Count   int        `json:"count"`
		Records []cardView `json:"records"`
	}
	if err := c.SendMultipart(ctx, http.MethodPost, "/api/idcards/bulk-upload", nil, "file", args[0], &resp); err != nil {
		return err
	}
	fmt.Fprintln(Out, resp.Message)
	for _, r := range resp.Records {
		fmt.Fprintf(Out, "- %s  %s  %s\n", r.ID, r.IDNumber, r.FullName)
	}
	return nil
}

func init() { RegisterCmd(importCmd{}) }
