/**
 * @description
 * Data access layer for the enrollment service. The Repository wraps a pgx
 * connection pool; queries are split across files by concern (enrollments,
 * policies, renewal work items).
 */
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrPolicyNotFound     = errors.New("policy not found")
)

// Repository handles database operations for the enrollment service.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}
