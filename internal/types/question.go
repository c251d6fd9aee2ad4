package types

import (
	"time"

	"github.com/google/uuid"
)

// Question types mirror the corpus enum: multiple_single, multiple_multi,
// true_false, open. Non-open questions carry at least one Choice; exactly one
// Choice is correct for multiple_single.
const (
	QuestionTypeMultipleSingle = "multiple_single"
	QuestionTypeMultipleMulti  = "multiple_multi"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeOpen           = "open"
)

type Question struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID       uuid.UUID `gorm:"type:uuid;index;column:owner_id" json:"owner_id"`
	Stem          string    `gorm:"not null;column:stem" json:"stem"`
	StemImagePath *string   `gorm:"column:stem_image_path" json:"stem_image_path,omitempty"`
	Type          string    `gorm:"not null;column:type" json:"type"`
	Difficulty    *string   `gorm:"column:difficulty" json:"difficulty,omitempty"`
	Source        *string   `gorm:"column:source" json:"source,omitempty"`
	Instituicao   *string   `gorm:"column:instituicao" json:"instituicao,omitempty"`
	Banca         *string   `gorm:"column:banca" json:"banca,omitempty"`
	Cargo         *string   `gorm:"column:cargo" json:"cargo,omitempty"`
	Ano           *int      `gorm:"column:ano" json:"ano,omitempty"`
	Explanation   *string   `gorm:"column:explanation" json:"explanation,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;default:now()" json:"updated_at"`

	Choices []Choice `gorm:"foreignKey:QuestionID" json:"choices"`
}

func (Question) TableName() string {
	return "question"
}

type Choice struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_choice_question_position,priority:1;column:question_id" json:"question_id"`
	Label      string    `gorm:"not null;column:label" json:"label"`
	Content    string    `gorm:"not null;column:content" json:"content"`
	ImagePath  *string   `gorm:"column:image_path" json:"image_path,omitempty"`
	IsCorrect  bool      `gorm:"column:is_correct" json:"is_correct"`
	Position   int       `gorm:"not null;uniqueIndex:uq_choice_question_position,priority:2;column:position" json:"position"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Choice) TableName() string {
	return "choice"
}

// QuestionSearch is the materialized search projection, one row per question.
// The tsv column is maintained by a database trigger on question writes; the
// application only queries it.
type QuestionSearch struct {
	QuestionID uuid.UUID `gorm:"type:uuid;primaryKey;column:question_id"`
	TSV        string    `gorm:"type:tsvector;column:tsv"`
}

func (QuestionSearch) TableName() string {
	return "question_search"
}
