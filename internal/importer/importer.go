// Package importer разбирает таблицы (xlsx, csv) на строки-кандидаты удостоверений.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"idcards/internal/model"

	"github.com/xuri/excelize/v2"
)

// Имена колонок заголовка.
const (
	ColFullName      = "fullName"
	ColDesignation   = "designation"
	ColDepartment    = "department"
	ColIDNumber      = "idNumber"
	ColIssueDate     = "issueDate"
	ColExpiryDate    = "expiryDate"
	ColPhotoFileName = "photoFileName"
)

// ErrUnsupportedFormat — расширение файла не поддерживается.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Row — строка таблицы до проверки и сохранения. Пустые ячейки — пустые строки.
type Row struct {
	Line          int // номер строки данных, начиная с 1
	FullName      string
	Designation   string
	Department    string
	IDNumber      string
	IssueDate     string
	ExpiryDate    string
	PhotoFileName string
}

// ParseFile читает первый лист xlsx или csv-файл.
func ParseFile(path string) ([]Row, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()
		return parseWorkbook(f)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ParseCSV(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ParseXLSX читает первый лист книги из потока.
func ParseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return parseWorkbook(f)
}

func parseWorkbook(f *excelize.File) ([]Row, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []Row{}, nil
	}
	// сырые значения: даты приходят серийными числами, а не в формате ячейки
	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return toRows(records), nil
}

// ParseCSV читает csv с заголовком в первой строке.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return toRows(records), nil
}

func toRows(records [][]string) []Row {
	rows := []Row{}
	if len(records) == 0 {
		return rows
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	line := 0
	for _, rec := range records[1:] {
		line++
		if isBlank(rec) {
			continue
		}
		row := Row{Line: line}
		for i, cell := range rec {
			if i >= len(header) {
				break
			}
			v := strings.TrimSpace(cell)
			switch header[i] {
			case ColFullName:
				row.FullName = v
			case ColDesignation:
				row.Designation = v
			case ColDepartment:
				row.Department = v
			case ColIDNumber:
				row.IDNumber = v
			case ColIssueDate:
				row.IssueDate = v
			case ColExpiryDate:
				row.ExpiryDate = v
			case ColPhotoFileName:
				row.PhotoFileName = v
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ParseCellDate переводит значение ячейки в дату. Пустая ячейка даёт nil.
// Числа трактуются как серийные даты таблицы, строки — как текстовые даты.
func ParseCellDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil, fmt.Errorf("date %q: %w", v, err)
		}
		t = t.UTC()
		return &t, nil
	}
	t, err := model.ParseDate(v)
	if err != nil {
		return nil, fmt.Errorf("date %q: %w", v, err)
	}
	return &t, nil
}
