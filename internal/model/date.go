package model

import (
	"errors"
	"strings"
	"time"
)

// DisplayDateLayout — формат дат в документах: "Mon Jan 15 2024".
const DisplayDateLayout = "Mon Jan 02 2006"

// ErrBadDate возвращается, когда строку не удалось разобрать ни одним из форматов.
var ErrBadDate = errors.New("unrecognized date")

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	DisplayDateLayout,
}

// ParseDate разбирает дату из формы или текстовой ячейки таблицы.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrBadDate
}

// FormatDate форматирует дату для документа, "-" если даты нет.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format(DisplayDateLayout)
}
