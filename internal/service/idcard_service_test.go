package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"idcards/internal/metrics"
	"idcards/internal/model"
	"idcards/internal/repo"
	"idcards/internal/storage"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fileExists(t *testing.T, files *storage.DiskStore, name string) bool {
	t.Helper()
	p, err := files.Path(name)
	require.NoError(t, err)
	_, err = os.Stat(p)
	return err == nil
}

func TestIDCardService_CreateAndGet(t *testing.T) {
	svc, files, m := newTestService(t)
	ctx := context.Background()
	issued := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	card, err := svc.Create(ctx, "u1", CardInput{
		FullName:  "Alice",
		IDNumber:  "EMP-1",
		IssueDate: &issued,
		Photo:     &Upload{Name: "me.JPG", Body: strings.NewReader("jpeg")},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, card.ID)
	assert.Equal(t, "u1", card.UserID)
	require.NotNil(t, card.Photo)
	assert.True(t, strings.HasSuffix(*card.Photo, ".jpg"))
	assert.True(t, fileExists(t, files, *card.Photo))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CardsCreated))

	got, err := svc.Get(ctx, "u1", card.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FullName)
	require.NotNil(t, got.IssueDate)
	assert.True(t, issued.Equal(*got.IssueDate))
}

func TestIDCardService_CreateDefaultsIssueDate(t *testing.T) {
	svc, _, _ := newTestService(t)
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	card, err := svc.Create(context.Background(), "u1", CardInput{FullName: "Bob", IDNumber: "B-1"})
	require.NoError(t, err)
	require.NotNil(t, card.IssueDate)
	assert.True(t, fixed.Equal(*card.IssueDate))
	assert.Nil(t, card.ExpiryDate)
	assert.Nil(t, card.Photo)
}

func TestIDCardService_CreateRequiresFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), "u1", CardInput{FullName: "  ", IDNumber: "X"})
	assert.ErrorIs(t, err, ErrBadInput)
	_, err = svc.Create(context.Background(), "u1", CardInput{FullName: "A"})
	assert.ErrorIs(t, err, ErrBadInput)
}

func TestIDCardService_CreateDuplicateAcrossOwners(t *testing.T) {
	svc, files, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", CardInput{FullName: "A", IDNumber: "DUP"})
	require.NoError(t, err)

	// отказ до сохранения фотографии: файл не появляется
	_, err = svc.Create(ctx, "u2", CardInput{
		FullName: "B",
		IDNumber: "DUP",
		Photo:    &Upload{Name: "b.png", Body: strings.NewReader("png")},
	})
	assert.ErrorIs(t, err, ErrDuplicateIDNumber)
	entries, err := os.ReadDir(files.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// Гонка: проверка прошла, но вставку отклонил уникальный индекс.
func TestIDCardService_CreateInsertConflictRemovesPhoto(t *testing.T) {
	r := &mockCardRepo{}
	fs := &mockFileStore{}
	svc := NewIDCardService(r, fs, metrics.New(), zap.NewNop().Sugar())

	r.On("ExistsByIDNumber", mock.Anything, "N1").Return(false, nil).Once()
	fs.On("Save", mock.Anything, "p.jpg", mock.Anything).Return("123.jpg", nil).Once()
	r.On("Create", mock.Anything, mock.AnythingOfType("*model.IDCard")).Return(repo.ErrDuplicateIDNumber).Once()
	fs.On("Remove", mock.Anything, "123.jpg").Return(nil).Once()

	_, err := svc.Create(context.Background(), "u1", CardInput{
		FullName: "A",
		IDNumber: "N1",
		Photo:    &Upload{Name: "p.jpg", Body: strings.NewReader("x")},
	})
	assert.ErrorIs(t, err, ErrDuplicateIDNumber)
	r.AssertExpectations(t)
	fs.AssertExpectations(t)
}

func TestIDCardService_OwnerScoping(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	card, err := svc.Create(ctx, "alice", CardInput{FullName: "Alice", IDNumber: "A-1"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "bob", card.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, "bob", card.ID, CardPatch{FullName: strPtr("Mallory")})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(ctx, "bob", card.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := svc.Get(ctx, "alice", card.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FullName)
}

func TestIDCardService_UpdatePartial(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	card, err := svc.Create(ctx, "u1", CardInput{FullName: "A", Department: "IT", IDNumber: "N1", ExpiryDate: &exp})
	require.NoError(t, err)

	upd, err := svc.Update(ctx, "u1", card.ID, CardPatch{
		Designation: strPtr("Lead"),
		ExpiryDate:  &OptionalDate{},
	})
	require.NoError(t, err)
	assert.Equal(t, "A", upd.FullName)
	assert.Equal(t, "IT", upd.Department)
	assert.Equal(t, "Lead", upd.Designation)
	assert.Nil(t, upd.ExpiryDate)
	assert.Equal(t, "N1", upd.IDNumber)
}

func TestIDCardService_UpdateDuplicateIDNumber(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", CardInput{FullName: "A", IDNumber: "N1"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, "u2", CardInput{FullName: "B", IDNumber: "N2"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "u2", b.ID, CardPatch{IDNumber: strPtr("N1")})
	assert.ErrorIs(t, err, ErrDuplicateIDNumber)

	got, err := svc.Get(ctx, "u2", b.ID)
	require.NoError(t, err)
	assert.Equal(t, "N2", got.IDNumber)
}

func TestIDCardService_UpdateReplacesPhoto(t *testing.T) {
	svc, files, _ := newTestService(t)
	ctx := context.Background()

	card, err := svc.Create(ctx, "u1", CardInput{
		FullName: "A",
		IDNumber: "N1",
		Photo:    &Upload{Name: "old.png", Body: strings.NewReader("old")},
	})
	require.NoError(t, err)
	oldName := *card.Photo

	upd, err := svc.Update(ctx, "u1", card.ID, CardPatch{
		Photo: &Upload{Name: "new.png", Body: strings.NewReader("new")},
	})
	require.NoError(t, err)
	require.NotNil(t, upd.Photo)
	assert.NotEqual(t, oldName, *upd.Photo)
	assert.True(t, fileExists(t, files, *upd.Photo))
	assert.False(t, fileExists(t, files, oldName))
}

func TestIDCardService_DeleteRemovesPhoto(t *testing.T) {
	svc, files, m := newTestService(t)
	ctx := context.Background()

	card, err := svc.Create(ctx, "u1", CardInput{
		FullName: "A",
		IDNumber: "N1",
		Photo:    &Upload{Name: "p.gif", Body: strings.NewReader("gif")},
	})
	require.NoError(t, err)
	name := *card.Photo

	require.NoError(t, svc.Delete(ctx, "u1", card.ID))
	assert.False(t, fileExists(t, files, name))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CardsDeleted))

	_, err = svc.Get(ctx, "u1", card.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIDCardService_DeleteWithoutPhotoLeavesStorageAlone(t *testing.T) {
	r := &mockCardRepo{}
	fs := &mockFileStore{}
	svc := NewIDCardService(r, fs, metrics.New(), zap.NewNop().Sugar())

	r.On("Delete", mock.Anything, "u1", "c1").Return(&model.IDCard{ID: "c1", UserID: "u1"}, nil).Once()

	require.NoError(t, svc.Delete(context.Background(), "u1", "c1"))
	fs.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
	r.AssertExpectations(t)
}

func TestIDCardService_DeletePhotoFailureIsSwallowed(t *testing.T) {
	r := &mockCardRepo{}
	fs := &mockFileStore{}
	svc := NewIDCardService(r, fs, metrics.New(), zap.NewNop().Sugar())

	r.On("Delete", mock.Anything, "u1", "c1").Return(&model.IDCard{ID: "c1", Photo: strPtr("1.jpg")}, nil).Once()
	fs.On("Remove", mock.Anything, "1.jpg").Return(errors.New("disk gone")).Once()

	assert.NoError(t, svc.Delete(context.Background(), "u1", "c1"))
	fs.AssertExpectations(t)
}

func TestIDCardService_Documents(t *testing.T) {
	svc, _, m := newTestService(t)
	ctx := context.Background()
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }

	_, err := svc.DocumentForOwner(ctx, "u1")
	assert.ErrorIs(t, err, ErrNoCards)
	assert.ErrorIs(t, err, ErrNotFound)

	a, err := svc.Create(ctx, "u1", CardInput{FullName: "A", IDNumber: "N1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u1", CardInput{FullName: "B", IDNumber: "N2"})
	require.NoError(t, err)

	one, err := svc.DocumentForCard(ctx, "u1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, "IDCard_N1.pdf", one.FileName)
	assert.False(t, one.Batch)
	require.Len(t, one.Cards, 1)

	_, err = svc.DocumentForCard(ctx, "u2", a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := svc.DocumentForOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "All_IDCards_1700000000000.pdf", all.FileName)
	require.Len(t, all.Cards, 2)
	assert.Equal(t, "N1", all.Cards[0].IDNumber)
	assert.Equal(t, "N2", all.Cards[1].IDNumber)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteDocument(ctx, &buf, all))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("/Type /Page\n")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PDFPages))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PDFDocuments.WithLabelValues("batch")))
}
