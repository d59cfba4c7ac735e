package models

import (
	"strings"
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"The Forest Hiker":    "the-forest-hiker",
		"  The Sea Explorer ": "the-sea-explorer",
		"Tour #7: City & Sun": "tour-7-city-sun",
		"---":                 "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTourBeforeInsertDefaults(t *testing.T) {
	tour := Tour{Name: "The Forest Hiker"}
	tour.BeforeInsert()

	if tour.ID.IsZero() {
		t.Fatalf("id not assigned")
	}
	if tour.Slug != "the-forest-hiker" {
		t.Fatalf("slug = %q", tour.Slug)
	}
	if tour.RatingsAverage != 4.5 {
		t.Fatalf("ratingsAverage = %v", tour.RatingsAverage)
	}
	if tour.CreatedAt.IsZero() {
		t.Fatalf("createdAt not stamped")
	}
}

func TestUserBeforeInsertDefaults(t *testing.T) {
	user := User{Name: "Test", Email: "test@example.com"}
	user.BeforeInsert()

	if user.ID.IsZero() {
		t.Fatalf("id not assigned")
	}
	if user.Role != RoleUser {
		t.Fatalf("role = %q", user.Role)
	}
	if user.Photo != "default.jpg" {
		t.Fatalf("photo = %q", user.Photo)
	}
}

func TestChangedPasswordAfter(t *testing.T) {
	user := User{}
	if user.ChangedPasswordAfter(time.Now()) {
		t.Fatalf("never-changed password reported as changed")
	}

	user.PasswordChangedAt = time.Now()
	if !user.ChangedPasswordAfter(time.Now().Add(-time.Hour)) {
		t.Fatalf("stale token not rejected")
	}
	if user.ChangedPasswordAfter(time.Now().Add(time.Hour)) {
		t.Fatalf("fresh token rejected")
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin} {
		if !r.Valid() {
			t.Fatalf("%q should be valid", r)
		}
	}
	if Role("superadmin").Valid() {
		t.Fatalf("unknown role accepted")
	}
}

func TestPhotoFilename(t *testing.T) {
	user := User{}
	user.BeforeInsert()

	now := time.Now()
	name := user.PhotoFilename(now)
	if !strings.HasPrefix(name, "user-"+user.ID.Hex()+"-") || !strings.HasSuffix(name, ".jpeg") {
		t.Fatalf("filename = %q", name)
	}
}
