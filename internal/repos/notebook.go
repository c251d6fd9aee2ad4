package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/concursoprep/backend/internal/logger"
	"github.com/concursoprep/backend/internal/types"
)

type NotebookRepo interface {
	Create(ctx context.Context, tx *gorm.DB, notebook *types.Notebook) (*types.Notebook, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Notebook, error)
	GetByID(ctx context.Context, tx *gorm.DB, notebookID uuid.UUID) (*types.Notebook, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, notebookID uuid.UUID) error
	AddQuestion(ctx context.Context, tx *gorm.DB, notebookID, questionID uuid.UUID) error
	RemoveQuestion(ctx context.Context, tx *gorm.DB, notebookID, questionID uuid.UUID) error
	GetQuestionIDs(ctx context.Context, tx *gorm.DB, notebookID uuid.UUID) ([]uuid.UUID, error)
}

type notebookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotebookRepo(db *gorm.DB, baseLog *logger.Logger) NotebookRepo {
	return &notebookRepo{db: db, log: baseLog.With("repo", "NotebookRepo")}
}

func (r *notebookRepo) Create(ctx context.Context, tx *gorm.DB, notebook *types.Notebook) (*types.Notebook, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(notebook).Error; err != nil {
		return nil, err
	}
	return notebook, nil
}

func (r *notebookRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Notebook, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Notebook
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *notebookRepo) GetByID(ctx context.Context, tx *gorm.DB, notebookID uuid.UUID) (*types.Notebook, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var nb types.Notebook
	if err := transaction.WithContext(ctx).
		Where("id = ?", notebookID).
		First(&nb).Error; err != nil {
		return nil, err
	}
	return &nb, nil
}

func (r *notebookRepo) DeleteByID(ctx context.Context, tx *gorm.DB, notebookID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", notebookID).
		Delete(&types.Notebook{}).Error
}

func (r *notebookRepo) AddQuestion(ctx context.Context, tx *gorm.DB, notebookID, questionID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	entry := &types.NotebookQuestion{NotebookID: notebookID, QuestionID: questionID}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry).Error
}

func (r *notebookRepo) RemoveQuestion(ctx context.Context, tx *gorm.DB, notebookID, questionID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("notebook_id = ? AND question_id = ?", notebookID, questionID).
		Delete(&types.NotebookQuestion{}).Error
}

func (r *notebookRepo) GetQuestionIDs(ctx context.Context, tx *gorm.DB, notebookID uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.NotebookQuestion{}).
		Where("notebook_id = ?", notebookID).
		Order("added_at DESC").
		Pluck("question_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
