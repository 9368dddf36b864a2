package repo

import (
	"context"
	"errors"

	"idcards/internal/model"

	"gorm.io/gorm"
)

type idCardRepo struct {
	db *gorm.DB
}

// NewIDCardRepository создаёт реализацию репозитория удостоверений на gorm.
func NewIDCardRepository(db *gorm.DB) IDCardRepository {
	return &idCardRepo{db: db}
}

func (r *idCardRepo) ExistsByIDNumber(ctx context.Context, idNumber string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.IDCard{}).
		Where("id_number = ?", idNumber).
		Limit(1).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create выдаёт записи следующий seq в той же транзакции, что и вставку.
func (r *idCardRepo) Create(ctx context.Context, card *model.IDCard) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&model.IDCard{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
			return err
		}
		card.Seq = last + 1
		return tx.Create(card).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIDNumber
		}
		return err
	}
	return nil
}

func (r *idCardRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.IDCard, error) {
	var out []model.IDCard
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("seq ASC").Order("created_at ASC").Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *idCardRepo) GetByID(ctx context.Context, ownerID, id string) (*model.IDCard, error) {
	return getScoped(r.db.WithContext(ctx), ownerID, id)
}

func (r *idCardRepo) Update(ctx context.Context, ownerID, id string, updates map[string]any) (*model.IDCard, error) {
	var updated *model.IDCard
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := getScoped(tx, ownerID, id)
		if err != nil {
			return err
		}
		if len(updates) > 0 {
			res := tx.Model(card).Updates(updates)
			if res.Error != nil {
				if isUniqueViolation(res.Error) {
					return ErrDuplicateIDNumber
				}
				return res.Error
			}
		}
		updated, err = getScoped(tx, ownerID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *idCardRepo) Delete(ctx context.Context, ownerID, id string) (*model.IDCard, error) {
	var deleted *model.IDCard
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := getScoped(tx, ownerID, id)
		if err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(&model.IDCard{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		deleted = card
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// getScoped ищет запись по id и владельцу; чужая запись неотличима от отсутствующей.
func getScoped(db *gorm.DB, ownerID, id string) (*model.IDCard, error) {
	var card model.IDCard
	err := db.Where("id = ? AND user_id = ?", id, ownerID).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}
