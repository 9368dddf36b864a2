package commands

import (
	"context"
	"fmt"

	"idcards/internal/config"
)

type listCmd struct{}

func (listCmd) Name() string        { return "list" }
func (listCmd) Description() string { return "Show all ID cards" }
func (listCmd) Usage() string       { return "list" }

func (listCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	var cards []cardView
	if err := c.GetJSON(ctx, "/api/idcards", &cards); err != nil {
		return err
	}
	if len(cards) == 0 {
		fmt.Fprintln(Out, "No ID cards")
		return nil
	}
	for _, card := range cards {
		fmt.Fprintf(Out, "- %s  %s  %s\n", card.ID, card.IDNumber, card.FullName)
	}
	fmt.Fprintf(Out, "Total: %d\n", len(cards))
	return nil
}

type getCmd struct{}

func (getCmd) Name() string        { return "get" }
func (getCmd) Description() string { return "Show one ID card" }
func (getCmd) Usage() string       { return "get <id>" }

func (getCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	var card cardView
	if err := c.GetJSON(ctx, "/api/idcards/"+args[0], &card); err != nil {
		return err
	}
	printCard(Out, card)
	return nil
}

type deleteCmd struct{}

func (deleteCmd) Name() string        { return "delete" }
func (deleteCmd) Description() string { return "Delete an ID card and its photo" }
func (deleteCmd) Usage() string       { return "delete <id>" }

func (deleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	if err := c.Delete(ctx, "/api/idcards/"+args[0], nil); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Deleted:", args[0])
	return nil
}

func init() {
	RegisterCmd(listCmd{})
	RegisterCmd(getCmd{})
	RegisterCmd(deleteCmd{})
}
