package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/concursoprep/backend/internal/logger"
	"github.com/concursoprep/backend/internal/types"
)

type QuestionNoteRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, note *types.QuestionNote) (*types.QuestionNote, error)
	Get(ctx context.Context, tx *gorm.DB, userID, questionID uuid.UUID) (*types.QuestionNote, error)
}

type questionNoteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionNoteRepo(db *gorm.DB, baseLog *logger.Logger) QuestionNoteRepo {
	return &questionNoteRepo{db: db, log: baseLog.With("repo", "QuestionNoteRepo")}
}

func (r *questionNoteRepo) Upsert(ctx context.Context, tx *gorm.DB, note *types.QuestionNote) (*types.QuestionNote, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	note.UpdatedAt = time.Now().UTC()
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
		}).
		Create(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

func (r *questionNoteRepo) Get(ctx context.Context, tx *gorm.DB, userID, questionID uuid.UUID) (*types.QuestionNote, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var note types.QuestionNote
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}
