// Package testutil provides the shared Postgres harness for repo tests.
// Tests are gated on TEST_POSTGRES_DSN and run inside a per-test transaction
// that is rolled back on cleanup, so the database is reusable between runs.
package testutil

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/concursoprep/backend/internal/db"
	"github.com/concursoprep/backend/internal/types"
)

var (
	openOnce sync.Once
	shared   *gorm.DB
	openErr  error
)

// DB returns the shared migrated test database, skipping the test when
// TEST_POSTGRES_DSN is unset.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping database test")
	}
	openOnce.Do(func() {
		database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
			DisableForeignKeyConstraintWhenMigrating: true,
		})
		if err != nil {
			openErr = fmt.Errorf("open test database: %w", err)
			return
		}
		if err := database.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			openErr = fmt.Errorf("enable uuid-ossp: %w", err)
			return
		}
		if err := db.MigrateAll(database); err != nil {
			openErr = fmt.Errorf("migrate test database: %w", err)
			return
		}
		shared = database
	})
	if openErr != nil {
		t.Fatalf("test database setup failed: %v", openErr)
	}
	return shared
}

// Tx begins a transaction that is rolled back when the test finishes.
func Tx(t *testing.T) *gorm.DB {
	t.Helper()
	tx := DB(t).Begin()
	if tx.Error != nil {
		t.Fatalf("begin transaction: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})
	return tx
}

type QuestionOption func(*types.Question)

func WithStem(stem string) QuestionOption {
	return func(q *types.Question) { q.Stem = stem }
}

func WithBanca(banca string) QuestionOption {
	return func(q *types.Question) { q.Banca = &banca }
}

func WithInstituicao(instituicao string) QuestionOption {
	return func(q *types.Question) { q.Instituicao = &instituicao }
}

func WithCargo(cargo string) QuestionOption {
	return func(q *types.Question) { q.Cargo = &cargo }
}

func WithSource(source string) QuestionOption {
	return func(q *types.Question) { q.Source = &source }
}

func WithCreatedAt(ts time.Time) QuestionOption {
	return func(q *types.Question) { q.CreatedAt = ts }
}

// WithChoicePositions appends one choice per position, labeled A, B, C... in
// the order given. The insertion order is deliberately whatever the caller
// passes, so reads can prove they sort by position.
func WithChoicePositions(positions ...int) QuestionOption {
	return func(q *types.Question) {
		for i, pos := range positions {
			q.Choices = append(q.Choices, types.Choice{
				ID:        uuid.New(),
				Label:     string(rune('A' + i)),
				Content:   fmt.Sprintf("alternativa %d", pos),
				IsCorrect: i == 0,
				Position:  pos,
			})
		}
	}
}

// SeedQuestion inserts a question (and its choices) inside tx. The search
// projection row is produced by the insert trigger, not by this helper.
func SeedQuestion(t *testing.T, tx *gorm.DB, opts ...QuestionOption) *types.Question {
	t.Helper()
	q := &types.Question{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Stem:      "Questão seed sobre concursos",
		Type:      types.QuestionTypeMultipleSingle,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(q)
	}
	for i := range q.Choices {
		q.Choices[i].QuestionID = q.ID
	}
	if err := tx.Create(q).Error; err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return q
}

// SeedNotebook inserts a notebook for userID inside tx.
func SeedNotebook(t *testing.T, tx *gorm.DB, userID uuid.UUID, name string) *types.Notebook {
	t.Helper()
	nb := &types.Notebook{ID: uuid.New(), UserID: userID, Name: name}
	if err := tx.Create(nb).Error; err != nil {
		t.Fatalf("seed notebook: %v", err)
	}
	return nb
}
