package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jdoherty/fhir-admin/internal/store"
)

const (
	scopeAdmin      = "Admin"
	collectionUsers = "users"
)

var (
	ErrAlreadyExists = errors.New("user already exists")
	ErrNotFound      = errors.New("user not found")
)

// User is an admin-console principal stored alongside the FHIR data. Test
// users provisioned by sample loads use the "local" auth method and cannot
// log in to the UI.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	AuthMethod   string    `json:"authMethod"`
	Status       string    `json:"status"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	FHIRUser     string    `json:"fhirUser,omitempty"`
	CreatedBy    string    `json:"createdBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Resolver narrows the connection registry to what this service needs.
type Resolver interface {
	Resolve(name string) (store.DocumentStore, error)
}

type Service struct {
	connections Resolver
}

func NewService(connections Resolver) *Service {
	return &Service{connections: connections}
}

// Create hashes the password and inserts the user document. Duplicate ids
// map to ErrAlreadyExists so callers can treat re-provisioning as benign.
func (s *Service) Create(ctx context.Context, connection, bucket string, user User, password, createdBy string) error {
	docs, err := s.connections.Resolve(connection)
	if err != nil {
		return err
	}

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	user.CreatedBy = createdBy
	user.CreatedAt = time.Now().UTC()

	if err := docs.Insert(ctx, bucket, scopeAdmin, collectionUsers, user.ID, user); err != nil {
		if errors.Is(err, store.ErrDocumentExists) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, user.ID)
		}
		return err
	}

	slog.Info("Created user", "id", user.ID, "role", user.Role, "createdBy", createdBy)
	return nil
}

// Get returns one user without its password hash.
func (s *Service) Get(ctx context.Context, connection, bucket, id string) (User, error) {
	docs, err := s.connections.Resolve(connection)
	if err != nil {
		return User{}, err
	}

	var user User
	if err := docs.Get(ctx, bucket, scopeAdmin, collectionUsers, id, &user); err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return User{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// List returns every user in the bucket, password hashes stripped.
func (s *Service) List(ctx context.Context, connection, bucket string) ([]User, error) {
	docs, err := s.connections.Resolve(connection)
	if err != nil {
		return nil, err
	}

	statement := fmt.Sprintf("SELECT u.* FROM `%s`.`%s`.`%s` u", bucket, scopeAdmin, collectionUsers)
	rows, err := docs.Query(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]User, 0, len(rows))
	for _, row := range rows {
		var user User
		if err := json.Unmarshal(row, &user); err != nil {
			slog.Warn("Skipping unparsable user document", "error", err)
			continue
		}
		user.PasswordHash = ""
		users = append(users, user)
	}
	return users, nil
}
