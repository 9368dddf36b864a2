package service

import (
	"context"
	"io"
	"testing"

	"idcards/internal/metrics"
	"idcards/internal/model"
	"idcards/internal/repo"
	"idcards/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repo.Migrate(db))
	return db
}

// newTestService — сервис поверх sqlite в памяти и дискового хранилища во временном каталоге.
func newTestService(t *testing.T) (*IDCardService, *storage.DiskStore, *metrics.Metrics) {
	t.Helper()
	files, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	m := metrics.New()
	svc := NewIDCardService(repo.NewIDCardRepository(newTestDB(t)), files, m, zap.NewNop().Sugar())
	return svc, files, m
}

type mockCardRepo struct{ mock.Mock }

func (m *mockCardRepo) ExistsByIDNumber(ctx context.Context, idNumber string) (bool, error) {
	args := m.Called(ctx, idNumber)
	return args.Bool(0), args.Error(1)
}
func (m *mockCardRepo) Create(ctx context.Context, card *model.IDCard) error {
	return m.Called(ctx, card).Error(0)
}
func (m *mockCardRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.IDCard, error) {
	args := m.Called(ctx, ownerID)
	if v, ok := args.Get(0).([]model.IDCard); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCardRepo) GetByID(ctx context.Context, ownerID, id string) (*model.IDCard, error) {
	args := m.Called(ctx, ownerID, id)
	if v, ok := args.Get(0).(*model.IDCard); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCardRepo) Update(ctx context.Context, ownerID, id string, updates map[string]any) (*model.IDCard, error) {
	args := m.Called(ctx, ownerID, id, updates)
	if v, ok := args.Get(0).(*model.IDCard); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCardRepo) Delete(ctx context.Context, ownerID, id string) (*model.IDCard, error) {
	args := m.Called(ctx, ownerID, id)
	if v, ok := args.Get(0).(*model.IDCard); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.IDCardRepository = (*mockCardRepo)(nil)

type mockFileStore struct{ mock.Mock }

func (m *mockFileStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	args := m.Called(ctx, originalName, r)
	return args.String(0), args.Error(1)
}
func (m *mockFileStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, name)
	if v, ok := args.Get(0).(io.ReadCloser); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockFileStore) Remove(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

var _ storage.FileStore = (*mockFileStore)(nil)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

func strPtr(s string) *string { return &s }
