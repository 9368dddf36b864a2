package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"idcards/internal/config"
)

type pdfCmd struct{}

func (pdfCmd) Name() string        { return "pdf" }
func (pdfCmd) Description() string { return "Download one ID card (or all) as PDF" }
func (pdfCmd) Usage() string       { return "pdf [-o file] <id|all>" }

func (pdfCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("pdf", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	out := fs.String("o", "", "output file (default: name suggested by the server)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}
	target := fs.Arg(0)

	c, err := authedClient(cfg)
	if err != nil {
		return err
	}

	// пишем во временный файл рядом с результатом, чтобы не оставлять обрезанный PDF
	dir := "."
	if *out != "" {
		dir = filepath.Dir(*out)
	}
	tmp, err := os.CreateTemp(dir, ".idcards-*.pdf")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	header, err := c.Download(ctx, "/api/idcards/pdf/"+target, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	dest := *out
	if dest == "" {
		dest = suggestedName(header.Get("Content-Disposition"), target)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Saved:", dest)
	return nil
}

func suggestedName(disposition, target string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := filepath.Base(params["filename"]); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "IDCard_" + target + ".pdf"
}

func init() { RegisterCmd(pdfCmd{}) }
