package auth

import (
	"context"
	"reflect"
	"testing"

	"resumedesk/internal/database"
	"resumedesk/internal/database/dbtest"
	"resumedesk/internal/errcode"
)

func validInput() RegisterInput {
	return RegisterInput{
		Name:            "Ada Lovelace",
		Email:           "  Ada@Example.com ",
		Password:        "analytical",
		ConfirmPassword: "analytical",
	}
}

func TestRegister_CreatesUserWithHashedPassword(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	svc := NewService(db, nil)

	user, err := svc.Register(ctx, validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("email should be normalized, got %q", user.Email)
	}

	var stored database.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.PasswordHash == "analytical" || stored.PasswordHash == "" {
		t.Fatalf("password must be hashed, got %q", stored.PasswordHash)
	}

	var count int64
	db.Model(&database.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one user, got %d", count)
	}

	identity, err := svc.Login(ctx, "ada@example.com", "analytical")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if identity.UserID != user.ID || identity.Name != "Ada Lovelace" {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestRegister_CollectsAllViolations(t *testing.T) {
	svc := NewService(dbtest.New(t), nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:            "  ",
		Email:           "not-an-email",
		Password:        "123",
		ConfirmPassword: "1234",
	})
	if errcode.CodeOf(err) != errcode.ValidationFailed {
		t.Fatalf("expected validation error, got %v", err)
	}

	want := []string{
		"Name is required.",
		"Invalid email format.",
		"Password must be at least 6 characters long.",
		"Passwords do not match.",
	}
	if got := errcode.MessagesOf(err, ""); !reflect.DeepEqual(got, want) {
		t.Fatalf("messages mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestRegister_RequiredFields(t *testing.T) {
	svc := NewService(dbtest.New(t), nil)

	_, err := svc.Register(context.Background(), RegisterInput{})
	want := []string{"Name is required.", "Email is required.", "Password is required."}
	if got := errcode.MessagesOf(err, ""); !reflect.DeepEqual(got, want) {
		t.Fatalf("messages mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewService(dbtest.New(t), nil)

	if _, err := svc.Register(ctx, validInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	in := validInput()
	in.Email = "ADA@example.com"
	_, err := svc.Register(ctx, in)
	if errcode.CodeOf(err) != errcode.DuplicateEmail {
		t.Fatalf("expected duplicate email error, got %v", err)
	}
}

func TestLogin_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := NewService(dbtest.New(t), nil)
	if _, err := svc.Register(ctx, validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, unknownErr := svc.Login(ctx, "nobody@example.com", "analytical")
	_, wrongErr := svc.Login(ctx, "ada@example.com", "wrong-password")

	for _, err := range []error{unknownErr, wrongErr} {
		if errcode.CodeOf(err) != errcode.AuthenticationFailed {
			t.Fatalf("expected authentication error, got %v", err)
		}
		if msgs := errcode.MessagesOf(err, ""); msgs[0] != "Invalid email or password." {
			t.Fatalf("unexpected message %v", msgs)
		}
	}
}

func TestLogin_RequiresBothFields(t *testing.T) {
	svc := NewService(dbtest.New(t), nil)

	_, err := svc.Login(context.Background(), "", "secret")
	if errcode.CodeOf(err) != errcode.ValidationFailed {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPasswordHash("s3cret!", hash) {
		t.Fatal("expected hash to verify")
	}
	if CheckPasswordHash("other", hash) {
		t.Fatal("wrong password must not verify")
	}
}
