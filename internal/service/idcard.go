package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"idcards/internal/metrics"
	"idcards/internal/model"
	"idcards/internal/render"
	"idcards/internal/repo"
	"idcards/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IDCardService инкапсулирует операции над удостоверениями владельца:
// CRUD, массовый импорт и подготовку PDF.
type IDCardService struct {
	repo     repo.IDCardRepository
	files    storage.FileStore
	renderer *render.Renderer
	metrics  *metrics.Metrics
	logger   *zap.SugaredLogger

	now   func() time.Time
	newID func() string
}

func NewIDCardService(r repo.IDCardRepository, files storage.FileStore, m *metrics.Metrics, logger *zap.SugaredLogger) *IDCardService {
	return &IDCardService{
		repo:     r,
		files:    files,
		renderer: render.NewRenderer(files, logger),
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Upload — загруженный клиентом файл.
type Upload struct {
	Name string
	Body io.Reader
}

// CardInput — поля нового удостоверения.
type CardInput struct {
	FullName    string
	Designation string
	Department  string
	IDNumber    string
	IssueDate   *time.Time
	ExpiryDate  *time.Time
	Photo       *Upload
}

// OptionalDate — изменение даты: Time == nil очищает значение.
type OptionalDate struct {
	Time *time.Time
}

// CardPatch — частичное обновление: nil-поля не меняются.
type CardPatch struct {
	FullName    *string
	Designation *string
	Department  *string
	IDNumber    *string
	IssueDate   *OptionalDate
	ExpiryDate  *OptionalDate
	Photo       *Upload
}

func (p CardPatch) updates() map[string]any {
	u := map[string]any{}
	if p.FullName != nil {
		u[model.FieldFullName] = *p.FullName
	}
	if p.Designation != nil {
		u[model.FieldDesignation] = *p.Designation
	}
	if p.Department != nil {
		u[model.FieldDepartment] = *p.Department
	}
	if p.IDNumber != nil {
		u[model.FieldIDNumber] = *p.IDNumber
	}
	if p.IssueDate != nil {
		u[model.FieldIssueDate] = p.IssueDate.Time
	}
	if p.ExpiryDate != nil {
		u[model.FieldExpiryDate] = p.ExpiryDate.Time
	}
	return u
}

// Create сохраняет новое удостоверение. Проверка номера до вставки — только
// быстрый отказ; гонку двух вставок разрешает уникальный индекс хранилища.
func (s *IDCardService) Create(ctx context.Context, owner string, in CardInput) (*model.IDCard, error) {
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.IDNumber) == "" {
		return nil, fmt.Errorf("%w: fullName and idNumber are required", ErrBadInput)
	}
	exists, err := s.repo.ExistsByIDNumber(ctx, in.IDNumber)
	if err != nil {
		return nil, fmt.Errorf("check id number: %w", err)
	}
	if exists {
		return nil, ErrDuplicateIDNumber
	}

	card := &model.IDCard{
		ID:          s.newID(),
		UserID:      owner,
		FullName:    in.FullName,
		Designation: in.Designation,
		Department:  in.Department,
		IDNumber:    in.IDNumber,
		IssueDate:   in.IssueDate,
		ExpiryDate:  in.ExpiryDate,
	}
	if card.IssueDate == nil {
		now := s.now().UTC()
		card.IssueDate = &now
	}
	if in.Photo != nil {
		name, err := s.files.Save(ctx, in.Photo.Name, in.Photo.Body)
		if err != nil {
			return nil, fmt.Errorf("save photo: %w", err)
		}
		card.Photo = &name
	}

	if err := s.repo.Create(ctx, card); err != nil {
		if card.Photo != nil {
			s.removePhoto(ctx, *card.Photo)
		}
		if errors.Is(err, repo.ErrDuplicateIDNumber) {
			return nil, ErrDuplicateIDNumber
		}
		return nil, fmt.Errorf("create id card: %w", err)
	}
	s.metrics.CardsCreated.Inc()
	return card, nil
}

// List возвращает удостоверения владельца в порядке создания.
func (s *IDCardService) List(ctx context.Context, owner string) ([]model.IDCard, error) {
	cards, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list id cards: %w", err)
	}
	return cards, nil
}

func (s *IDCardService) Get(ctx context.Context, owner, id string) (*model.IDCard, error) {
	card, err := s.repo.GetByID(ctx, owner, id)
	if err != nil {
		return nil, mapRepoErr("get id card", err)
	}
	return card, nil
}

// Update применяет переданные поля. Новая фотография заменяет старую;
// старый файл удаляется только после успешного обновления.
func (s *IDCardService) Update(ctx context.Context, owner, id string, p CardPatch) (*model.IDCard, error) {
	updates := p.updates()

	var oldPhoto, newPhoto string
	if p.Photo != nil {
		current, err := s.repo.GetByID(ctx, owner, id)
		if err != nil {
			return nil, mapRepoErr("get id card", err)
		}
		oldPhoto = current.PhotoName()
		newPhoto, err = s.files.Save(ctx, p.Photo.Name, p.Photo.Body)
		if err != nil {
			return nil, fmt.Errorf("save photo: %w", err)
		}
		updates[model.FieldPhoto] = newPhoto
	}

	card, err := s.repo.Update(ctx, owner, id, updates)
	if err != nil {
		if newPhoto != "" {
			s.removePhoto(ctx, newPhoto)
		}
		return nil, mapRepoErr("update id card", err)
	}
	if oldPhoto != "" && oldPhoto != newPhoto {
		s.removePhoto(ctx, oldPhoto)
	}
	return card, nil
}

// Delete удаляет удостоверение, затем фотографию. Ошибка удаления файла
// только логируется.
func (s *IDCardService) Delete(ctx context.Context, owner, id string) error {
	card, err := s.repo.Delete(ctx, owner, id)
	if err != nil {
		return mapRepoErr("delete id card", err)
	}
	if name := card.PhotoName(); name != "" {
		s.removePhoto(ctx, name)
	}
	s.metrics.CardsDeleted.Inc()
	return nil
}

// DocumentForCard готовит документ с одним удостоверением.
func (s *IDCardService) DocumentForCard(ctx context.Context, owner, id string) (*render.Document, error) {
	card, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return &render.Document{
		FileName: "IDCard_" + card.IDNumber + ".pdf",
		Cards:    []model.IDCard{*card},
	}, nil
}

// DocumentForOwner готовит документ со всеми удостоверениями владельца;
// пустой набор — ErrNoCards, пустой документ не отдаётся.
func (s *IDCardService) DocumentForOwner(ctx context.Context, owner string) (*render.Document, error) {
	cards, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, ErrNoCards
	}
	return &render.Document{
		FileName: fmt.Sprintf("All_IDCards_%d.pdf", s.now().UnixMilli()),
		Batch:    true,
		Cards:    cards,
	}, nil
}

// WriteDocument рендерит документ в w.
func (s *IDCardService) WriteDocument(ctx context.Context, w io.Writer, doc *render.Document) error {
	pages, err := s.renderer.Render(ctx, w, doc)
	if err != nil {
		return fmt.Errorf("render %s: %w", doc.FileName, err)
	}
	kind := "single"
	if doc.Batch {
		kind = "batch"
	}
	s.metrics.ObserveDocument(kind, pages)
	return nil
}

func (s *IDCardService) removePhoto(ctx context.Context, name string) {
	if err := s.files.Remove(ctx, name); err != nil && !errors.Is(err, storage.ErrNotExist) {
		s.logger.Warnw("failed to remove photo", "photo", name, "error", err)
	}
}

func mapRepoErr(op string, err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repo.ErrDuplicateIDNumber):
		return ErrDuplicateIDNumber
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
