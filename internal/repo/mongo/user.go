package mongo

import (
	"context"
	"time"

	"idcards/internal/model"
	"idcards/internal/repo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepo struct {
	coll *mongo.Collection
}

// NewUserRepository создаёт репозиторий пользователей поверх коллекции users.
func NewUserRepository(db *mongo.Database) repo.UserRepository {
	return &userRepo{coll: db.Collection(usersCollection)}
}

func (r *userRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repo.ErrDuplicateLogin
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	if err := r.coll.FindOne(ctx, bson.M{"login": login}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
