package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"idcards/internal/importer"
	"idcards/internal/model"
	"idcards/internal/repo"
)

// ImportResult — итог массового импорта.
type ImportResult struct {
	Count   int
	Skipped int
	Records []model.IDCard
}

// Import загружает удостоверения из таблицы по пути path и удаляет файл после обработки.
// Строки обрабатываются по порядку: номер, уже существующий в хранилище (в том числе
// добавленный предыдущей строкой того же файла), пропускается. Ошибка строки прерывает
// импорт; ранее сохранённые строки остаются.
func (s *IDCardService) Import(ctx context.Context, owner, path string) (*ImportResult, error) {
	if path == "" {
		return nil, ErrNoFile
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warnw("bulk import: failed to remove uploaded file", "path", path, "error", err)
		}
	}()

	rows, err := importer.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse spreadsheet: %w", err)
	}
	s.logger.Infow("bulk import: rows parsed", "owner", owner, "rows", len(rows))

	res := &ImportResult{Records: []model.IDCard{}}
	for _, row := range rows {
		exists, err := s.repo.ExistsByIDNumber(ctx, row.IDNumber)
		if err != nil {
			return nil, fmt.Errorf("row %d: check id number: %w", row.Line, err)
		}
		if exists {
			s.skip(row)
			res.Skipped++
			continue
		}

		card, err := s.cardFromRow(owner, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row.Line, err)
		}
		if err := s.repo.Create(ctx, card); err != nil {
			if errors.Is(err, repo.ErrDuplicateIDNumber) {
				s.skip(row)
				res.Skipped++
				continue
			}
			return nil, fmt.Errorf("row %d: save: %w", row.Line, err)
		}
		s.metrics.CardsImported.Inc()
		res.Records = append(res.Records, *card)
	}
	res.Count = len(res.Records)

	s.logger.Infow("bulk import: done", "owner", owner, "imported", res.Count, "skipped", res.Skipped)
	return res, nil
}

func (s *IDCardService) skip(row importer.Row) {
	s.metrics.ImportSkipped.Inc()
	s.logger.Infow("bulk import: skipping duplicate id number", "row", row.Line, "id_number", row.IDNumber)
}

func (s *IDCardService) cardFromRow(owner string, row importer.Row) (*model.IDCard, error) {
	issue, err := importer.ParseCellDate(row.IssueDate)
	if err != nil {
		return nil, fmt.Errorf("issueDate: %w", err)
	}
	expiry, err := importer.ParseCellDate(row.ExpiryDate)
	if err != nil {
		return nil, fmt.Errorf("expiryDate: %w", err)
	}
	card := &model.IDCard{
		ID:          s.newID(),
		UserID:      owner,
		FullName:    row.FullName,
		Designation: row.Designation,
		Department:  row.Department,
		IDNumber:    row.IDNumber,
		IssueDate:   issue,
		ExpiryDate:  expiry,
	}
	if row.PhotoFileName != "" {
		photo := row.PhotoFileName
		card.Photo = &photo
	}
	return card, nil
}
