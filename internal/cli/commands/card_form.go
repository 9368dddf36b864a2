package commands

import (
	"flag"
	"io"
)

// cardFlags — поля удостоверения для add/edit.
type cardFlags struct {
	fs     *flag.FlagSet
	values map[string]*string
	photo  *string
}

// имя флага → поле формы
var cardFieldFlags = []struct{ flag, field, help string }{
	{"full-name", "fullName", "full name"},
	{"designation", "designation", "designation"},
	{"department", "department", "department"},
	{"id-number", "idNumber", "unique ID number"},
	{"issue-date", "issueDate", "issue date, e.g. 2024-01-15 (empty clears on edit)"},
	{"expiry-date", "expiryDate", "expiry date (empty clears on edit)"},
}

func newCardFlags(name string) *cardFlags {
	cf := &cardFlags{
		fs:     flag.NewFlagSet(name, flag.ContinueOnError),
		values: map[string]*string{},
	}
	cf.fs.SetOutput(io.Discard)
	for _, f := range cardFieldFlags {
		cf.values[f.flag] = cf.fs.String(f.flag, "", f.help)
	}
	cf.photo = cf.fs.String("photo", "", "path to a photo file")
	return cf
}

// fields возвращает только явно заданные флаги: пустое значение тоже передаётся.
func (cf *cardFlags) fields() map[string]string {
	set := map[string]bool{}
	cf.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	out := map[string]string{}
	for _, f := range cardFieldFlags {
		if set[f.flag] {
			out[f.field] = *cf.values[f.flag]
		}
	}
	return out
}
