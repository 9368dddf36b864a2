package repo

import (
	"context"
	"errors"
	"strings"

	"idcards/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound — записи нет в области видимости владельца (или нет вообще).
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateIDNumber — нарушено уникальное ограничение на id_number.
	ErrDuplicateIDNumber = errors.New("id number already exists")
	// ErrDuplicateLogin — нарушено уникальное ограничение на login.
	ErrDuplicateLogin = errors.New("login already exists")
)

// IDCardRepository — доступ к удостоверениям. Все операции, кроме проверки
// уникальности id_number, ограничены владельцем.
type IDCardRepository interface {
	// ExistsByIDNumber проверяет номер по всем владельцам. Это только ранний отказ:
	// окончательно уникальность обеспечивает индекс хранилища.
	ExistsByIDNumber(ctx context.Context, idNumber string) (bool, error)
	// Create вставляет запись; при конфликте индекса возвращает ErrDuplicateIDNumber.
	Create(ctx context.Context, card *model.IDCard) error
	// ListByOwner возвращает записи владельца в порядке вставки.
	ListByOwner(ctx context.Context, ownerID string) ([]model.IDCard, error)
	GetByID(ctx context.Context, ownerID, id string) (*model.IDCard, error)
	// Update применяет частичное обновление (ключи — model.Field*) и возвращает новую версию.
	Update(ctx context.Context, ownerID, id string, updates map[string]any) (*model.IDCard, error)
	// Delete удаляет запись и возвращает её последнее состояние.
	Delete(ctx context.Context, ownerID, id string) (*model.IDCard, error)
}

// UserRepository — доступ к пользователям.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
}

// IsPostgresDSN определяет драйвер по строке подключения.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// InitDB открывает postgres или sqlite (modernc) и применяет миграции.
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if IsPostgresDSN(dsn) {
		dial = postgres.Open(dsn)
	} else {
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	}
	db, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate создаёт таблицы и уникальные индексы.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &model.IDCard{})
}

// Ping проверяет доступность базы при старте.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// isUniqueViolation распознаёт нарушение уникальности для всех поддерживаемых драйверов.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// modernc.org/sqlite не переводится транслятором gorm
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate key")
}
