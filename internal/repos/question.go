package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/concursoprep/backend/internal/logger"
	"github.com/concursoprep/backend/internal/types"
)

type QuestionRepo interface {
	// SearchIDs runs a ranked websearch query against the question_search
	// projection and returns at most limit question ids, best match first.
	SearchIDs(ctx context.Context, tx *gorm.DB, query string, limit int) ([]uuid.UUID, error)
	// GetByIDs hydrates full questions (choices ordered by position) for
	// exactly the given ids, newest first.
	GetByIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) ([]*types.Question, error)
	Create(ctx context.Context, tx *gorm.DB, questions []*types.Question) ([]*types.Question, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (r *questionRepo) SearchIDs(ctx context.Context, tx *gorm.DB, query string, limit int) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 3
	}

	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).Raw(`
		SELECT question_id
		FROM question_search
		WHERE tsv @@ websearch_to_tsquery('portuguese', ?)
		ORDER BY ts_rank(tsv, websearch_to_tsquery('portuguese', ?)) DESC
		LIMIT ?;
	`, query, query, limit).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *questionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Question
	if len(questionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id IN ?", questionIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *questionRepo) Create(ctx context.Context, tx *gorm.DB, questions []*types.Question) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(questions) == 0 {
		return []*types.Question{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}
