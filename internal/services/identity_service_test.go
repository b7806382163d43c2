package services

import (
	"context"
	"testing"
	"time"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"
)

var userCols = []string{"id", "name", "surname", "username", "email", "phone", "address", "hash", "role", "status"}

func newIdentityService(t *testing.T) (IdentityService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return IdentityService{
		Users:  repositories.UserRepository{DB: db},
		Secret: []byte("jwt-test-secret"),
		TTL:    time.Hour,
	}, mock
}

func TestIdentityLoginAndToken(t *testing.T) {
	svc, mock := newIdentityService(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	mock.ExpectQuery("FROM users").WithArgs("sari", "sari").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "Sari", "Dewi", "sari", "sari@example.com", "0812", "", string(hash), "user", "active"))

	token, u, err := svc.Login(context.Background(), "sari", "rahasia123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if u.ID != 1 || token == "" {
		t.Fatalf("unexpected login result: %+v %q", u, token)
	}

	claims, err := svc.ParseToken("Bearer " + token)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != 1 || claims.Role != "user" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	other := IdentityService{Secret: []byte("another-secret")}
	if _, err := other.ParseToken(token); !domain.IsUnauthorized(err) {
		t.Fatalf("token signed with another secret must be rejected, got %v", err)
	}
}

func TestIdentityLoginWrongPassword(t *testing.T) {
	svc, mock := newIdentityService(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	mock.ExpectQuery("FROM users").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "Sari", "", "sari", "sari@example.com", "", "", string(hash), "user", "active"))

	if _, _, err := svc.Login(context.Background(), "sari", "salah"); !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestIdentityExpiredToken(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	svc := IdentityService{Secret: []byte("jwt-test-secret"), TTL: time.Hour, Now: func() time.Time { return issued }}
	token, err := svc.IssueToken(models.User{ID: 3, Role: "user"})
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}

	svc.Now = nil
	if _, err := svc.ParseToken(token); !domain.IsUnauthorized(err) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestIdentityRegister(t *testing.T) {
	svc, mock := newIdentityService(t)
	mock.ExpectQuery("SELECT COUNT").WithArgs("sari@example.com", "sari").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(12, 1))

	u, err := svc.Register(context.Background(), RegisterInput{
		Name:     " Sari ",
		Username: "sari",
		Email:    "SARI@example.com",
		Password: "rahasia123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if u.ID != 12 || u.Email != "sari@example.com" || u.Name != "Sari" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("rahasia123")) != nil {
		t.Fatalf("password hash does not match")
	}

	if _, err := svc.Register(context.Background(), RegisterInput{Name: "x", Email: "x@example.com", Password: "short"}); !domain.IsValidation(err) {
		t.Fatalf("expected short password validation error, got %v", err)
	}
}

func TestIdentityMeMapsMissingUser(t *testing.T) {
	svc, mock := newIdentityService(t)
	mock.ExpectQuery("FROM users WHERE id").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(userCols))

	if _, err := svc.Me(context.Background(), 9); !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized for a deleted user, got %v", err)
	}
}
