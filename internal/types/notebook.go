package types

import (
	"time"

	"github.com/google/uuid"
)

type Notebook struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Notebook) TableName() string {
	return "notebook"
}

type NotebookQuestion struct {
	NotebookID uuid.UUID `gorm:"type:uuid;primaryKey;column:notebook_id" json:"notebook_id"`
	QuestionID uuid.UUID `gorm:"type:uuid;primaryKey;column:question_id" json:"question_id"`
	AddedAt    time.Time `gorm:"not null;default:now();column:added_at" json:"added_at"`
}

func (NotebookQuestion) TableName() string {
	return "notebook_question"
}

// QuestionNote is the per-user annotation on a question, written as a
// single-row upsert keyed by (user_id, question_id).
type QuestionNote struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id" json:"user_id"`
	QuestionID uuid.UUID `gorm:"type:uuid;primaryKey;column:question_id" json:"question_id"`
	Content    string    `gorm:"column:content" json:"content"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (QuestionNote) TableName() string {
	return "question_note"
}
