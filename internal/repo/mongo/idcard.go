package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"idcards/internal/model"
	"idcards/internal/repo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type idCardRepo struct {
	coll     *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

// NewIDCardRepository создаёт репозиторий удостоверений поверх коллекции idcards.
func NewIDCardRepository(db *mongo.Database) repo.IDCardRepository {
	return &idCardRepo{
		coll:     db.Collection(idCardsCollection),
		counters: db.Collection(countersCollection),
		now:      time.Now,
	}
}

func scope(ownerID, id string) bson.M {
	return bson.M{"_id": id, "user": ownerID}
}

func (r *idCardRepo) ExistsByIDNumber(ctx context.Context, idNumber string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"id_number": idNumber}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *idCardRepo) Create(ctx context.Context, card *model.IDCard) error {
	now := r.now().UTC()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = now
	}
	card.UpdatedAt = now
	seq, err := r.nextSeq(ctx)
	if err != nil {
		return err
	}
	card.Seq = seq
	if _, err := r.coll.InsertOne(ctx, card); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repo.ErrDuplicateIDNumber
		}
		return err
	}
	return nil
}

func (r *idCardRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.IDCard, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "seq", Value: 1},
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := r.coll.Find(ctx, bson.M{"user": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	out := []model.IDCard{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *idCardRepo) GetByID(ctx context.Context, ownerID, id string) (*model.IDCard, error) {
	var card model.IDCard
	if err := r.coll.FindOne(ctx, scope(ownerID, id)).Decode(&card); err != nil {
		return nil, translate(err)
	}
	return &card, nil
}

func (r *idCardRepo) Update(ctx context.Context, ownerID, id string, updates map[string]any) (*model.IDCard, error) {
	set := bson.M{"updated_at": r.now().UTC()}
	for k, v := range updates {
		set[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var card model.IDCard
	err := r.coll.FindOneAndUpdate(ctx, scope(ownerID, id), bson.M{"$set": set}, opts).Decode(&card)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repo.ErrDuplicateIDNumber
		}
		return nil, translate(err)
	}
	return &card, nil
}

func (r *idCardRepo) Delete(ctx context.Context, ownerID, id string) (*model.IDCard, error) {
	var card model.IDCard
	if err := r.coll.FindOneAndDelete(ctx, scope(ownerID, id)).Decode(&card); err != nil {
		return nil, translate(err)
	}
	return &card, nil
}

// nextSeq атомарно увеличивает счётчик вставок удостоверений.
func (r *idCardRepo) nextSeq(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": idCardsCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next idcard seq: %w", err)
	}
	return counter.Seq, nil
}

func translate(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repo.ErrNotFound
	}
	return err
}
