package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/concursoprep/backend/internal/logger"
	"github.com/concursoprep/backend/internal/repos"
	"github.com/concursoprep/backend/internal/types"
)

var ErrNotFound = errors.New("not found")
var ErrForbidden = errors.New("forbidden")

// NotebookService owns favorite-question notebooks and per-question notes.
// All writes are single-row; ownership is checked before any mutation.
type NotebookService interface {
	ListNotebooks(ctx context.Context, userID uuid.UUID) ([]*types.Notebook, error)
	CreateNotebook(ctx context.Context, userID uuid.UUID, name string) (*types.Notebook, error)
	DeleteNotebook(ctx context.Context, userID, notebookID uuid.UUID) error
	SaveQuestion(ctx context.Context, userID, notebookID, questionID uuid.UUID) error
	RemoveQuestion(ctx context.Context, userID, notebookID, questionID uuid.UUID) error
	ListQuestions(ctx context.Context, userID, notebookID uuid.UUID) ([]*types.Question, error)
	UpsertNote(ctx context.Context, userID, questionID uuid.UUID, content string) (*types.QuestionNote, error)
	GetNote(ctx context.Context, userID, questionID uuid.UUID) (*types.QuestionNote, error)
}

type notebookService struct {
	db           *gorm.DB
	log          *logger.Logger
	notebookRepo repos.NotebookRepo
	noteRepo     repos.QuestionNoteRepo
	questionRepo repos.QuestionRepo
}

func NewNotebookService(db *gorm.DB, log *logger.Logger, notebookRepo repos.NotebookRepo, noteRepo repos.QuestionNoteRepo, questionRepo repos.QuestionRepo) NotebookService {
	return &notebookService{
		db:           db,
		log:          log.With("service", "NotebookService"),
		notebookRepo: notebookRepo,
		noteRepo:     noteRepo,
		questionRepo: questionRepo,
	}
}

func (s *notebookService) ListNotebooks(ctx context.Context, userID uuid.UUID) ([]*types.Notebook, error) {
	return s.notebookRepo.GetByUserID(ctx, nil, userID)
}

func (s *notebookService) CreateNotebook(ctx context.Context, userID uuid.UUID, name string) (*types.Notebook, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}
	return s.notebookRepo.Create(ctx, nil, &types.Notebook{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
	})
}

func (s *notebookService) DeleteNotebook(ctx context.Context, userID, notebookID uuid.UUID) error {
	if err := s.authorize(ctx, userID, notebookID); err != nil {
		return err
	}
	return s.notebookRepo.DeleteByID(ctx, nil, notebookID)
}

func (s *notebookService) SaveQuestion(ctx context.Context, userID, notebookID, questionID uuid.UUID) error {
	if err := s.authorize(ctx, userID, notebookID); err != nil {
		return err
	}
	return s.notebookRepo.AddQuestion(ctx, nil, notebookID, questionID)
}

func (s *notebookService) RemoveQuestion(ctx context.Context, userID, notebookID, questionID uuid.UUID) error {
	if err := s.authorize(ctx, userID, notebookID); err != nil {
		return err
	}
	return s.notebookRepo.RemoveQuestion(ctx, nil, notebookID, questionID)
}

func (s *notebookService) ListQuestions(ctx context.Context, userID, notebookID uuid.UUID) ([]*types.Question, error) {
	if err := s.authorize(ctx, userID, notebookID); err != nil {
		return nil, err
	}
	ids, err := s.notebookRepo.GetQuestionIDs(ctx, nil, notebookID)
	if err != nil {
		return nil, err
	}
	return s.questionRepo.GetByIDs(ctx, nil, ids)
}

func (s *notebookService) UpsertNote(ctx context.Context, userID, questionID uuid.UUID, content string) (*types.QuestionNote, error) {
	return s.noteRepo.Upsert(ctx, nil, &types.QuestionNote{
		UserID:     userID,
		QuestionID: questionID,
		Content:    content,
	})
}

func (s *notebookService) GetNote(ctx context.Context, userID, questionID uuid.UUID) (*types.QuestionNote, error) {
	note, err := s.noteRepo.Get(ctx, nil, userID, questionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return note, err
}

func (s *notebookService) authorize(ctx context.Context, userID, notebookID uuid.UUID) error {
	nb, err := s.notebookRepo.GetByID(ctx, nil, notebookID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if nb.UserID != userID {
		return ErrForbidden
	}
	return nil
}
