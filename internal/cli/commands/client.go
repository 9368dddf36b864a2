package commands

import (
	"fmt"
	"io"
	"time"

	"idcards/internal/cli/api"
	fsrepo "idcards/internal/cli/repo/fs"
	"idcards/internal/config"
)

func authStore(cfg *config.Config) fsrepo.AuthFSStore {
	return fsrepo.NewAuthFSStore(cfg.TokenFile)
}

// authedClient — клиент с сохранённым токеном; без токена просит выполнить login.
func authedClient(cfg *config.Config) (*api.Client, error) {
	token, err := authStore(cfg).Load()
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg.ServerURL, token), nil
}

// cardView — удостоверение в ответах сервера.
type cardView struct {
	ID          string     `json:"_id"`
	FullName    string     `json:"fullName"`
	Designation string     `json:"designation"`
	Department  string     `json:"department"`
	IDNumber    string     `json:"idNumber"`
	IssueDate   *time.Time `json:"issueDate"`
	ExpiryDate  *time.Time `json:"expiryDate"`
	Photo       *string    `json:"photo"`
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func dateOrDash(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func printCard(w io.Writer, c cardView) {
	fmt.Fprintf(w, "  id:          %s\n", c.ID)
	fmt.Fprintf(w, "  full name:   %s\n", c.FullName)
	fmt.Fprintf(w, "  designation: %s\n", orDash(c.Designation))
	fmt.Fprintf(w, "  department:  %s\n", orDash(c.Department))
	fmt.Fprintf(w, "  id number:   %s\n", c.IDNumber)
	fmt.Fprintf(w, "  issued:      %s\n", dateOrDash(c.IssueDate))
	fmt.Fprintf(w, "  expires:     %s\n", dateOrDash(c.ExpiryDate))
	if c.Photo != nil {
		fmt.Fprintf(w, "  photo:       %s\n", *c.Photo)
	}
}
