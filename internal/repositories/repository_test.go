package repositories

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tourbook/internal/domain"
	"tourbook/internal/domain/models"
)

func TestObjectIDRejectsMalformedHex(t *testing.T) {
	r := Repository[models.Tour]{Resource: "tour"}

	if _, err := r.objectID("not-a-hex-id"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := r.objectID("64b1f0aa12c3d4e5f6a7b8c9"); err != nil {
		t.Fatalf("valid hex rejected: %v", err)
	}
}

func TestWithBaseDoesNotOverrideExplicitFilter(t *testing.T) {
	r := Repository[models.User]{
		Resource:   "user",
		BaseFilter: bson.M{"active": bson.M{"$ne": false}},
	}

	merged := r.withBase(bson.M{"email": "a@b.c"})
	if _, ok := merged["active"]; !ok {
		t.Fatalf("base filter not merged: %v", merged)
	}

	explicit := r.withBase(bson.M{"active": true})
	if got := explicit["active"]; got != true {
		t.Fatalf("explicit filter overridden: %v", got)
	}
}

func TestWrapMapsNoDocumentsToNotFound(t *testing.T) {
	r := Repository[models.Tour]{Resource: "tour"}

	err := r.wrap(mongo.ErrNoDocuments)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err.Error() != "no tour found with that ID" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestWrapMapsDuplicateKeyToConflict(t *testing.T) {
	r := Repository[models.User]{Resource: "user"}

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: `E11000 duplicate key error collection: tourbook.users index: email_1 dup key: { email: "a@b.c" }`,
	}}}

	err := r.wrap(dup)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	var conflict domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("not a ConflictError: %v", err)
	}
	if conflict.Field != "email" {
		t.Fatalf("field = %q, want email", conflict.Field)
	}
}

func TestWrapPassesThroughOtherErrors(t *testing.T) {
	r := Repository[models.Tour]{Resource: "tour"}

	if err := r.wrap(nil); err != nil {
		t.Fatalf("wrap(nil) = %v", err)
	}
	orig := mongo.CommandError{Code: 2, Message: "bad value"}
	if err := r.wrap(orig); domain.IsNotFound(err) || domain.IsConflict(err) {
		t.Fatalf("unexpected classification: %v", err)
	}
}
