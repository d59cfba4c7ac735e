package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tourbook/internal/domain"
	"tourbook/internal/domain/models"
)

var UserFilterFields = []string{"name", "email", "role"}

type UserRepository struct {
	*Repository[models.User]
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	repo := NewRepository[models.User](db.Collection("users"), "user")
	// soft-deleted accounts stay invisible to every read path
	repo.BaseFilter = bson.M{"active": bson.M{"$ne": false}}
	return &UserRepository{Repository: repo}
}

// FindByEmail looks a user up for credential checks; the password hash is on
// the model, hidden only from JSON output.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.Coll.FindOne(ctx, r.withBase(bson.M{"email": email})).Decode(&user)
	if err != nil {
		return nil, r.wrap(err)
	}
	return &user, nil
}

// FindByResetToken matches the hashed reset token and checks it has not
// expired.
func (r *UserRepository) FindByResetToken(ctx context.Context, hashedToken string) (*models.User, error) {
	filter := r.withBase(bson.M{
		"passwordResetToken":   hashedToken,
		"passwordResetExpires": bson.M{"$gt": time.Now()},
	})

	var user models.User
	if err := r.Coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, r.wrap(err)
	}
	return &user, nil
}

// SetResetToken stores the hashed reset token with its expiry.
func (r *UserRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, hashedToken string, expires time.Time) error {
	update := bson.M{"$set": bson.M{
		"passwordResetToken":   hashedToken,
		"passwordResetExpires": expires,
	}}
	res, err := r.Coll.UpdateByID(ctx, id, update)
	if err != nil {
		return r.wrap(err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFoundError{Resource: r.Resource}
	}
	return nil
}

// ClearResetToken rolls a token issuance back, e.g. when email delivery
// fails.
func (r *UserRepository) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$unset": bson.M{
		"passwordResetToken":   "",
		"passwordResetExpires": "",
	}}
	_, err := r.Coll.UpdateByID(ctx, id, update)
	return r.wrap(err)
}

// SetPassword writes a new password hash and invalidates earlier tokens.
// passwordChangedAt is backdated one second so a token issued in the same
// second as the write stays valid.
func (r *UserRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	update := bson.M{
		"$set": bson.M{
			"password":          hash,
			"passwordChangedAt": time.Now().Add(-time.Second),
		},
		"$unset": bson.M{
			"passwordResetToken":   "",
			"passwordResetExpires": "",
		},
	}
	res, err := r.Coll.UpdateByID(ctx, id, update)
	if err != nil {
		return r.wrap(err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFoundError{Resource: r.Resource}
	}
	return nil
}

// Deactivate soft-deletes the account.
func (r *UserRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.Coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"active": false}})
	return r.wrap(err)
}
