package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GoogleID   string    `gorm:"unique;not null" json:"google_id"`
	Email      string    `gorm:"unique;not null" json:"email"`
	Name       string    `gorm:"not null" json:"name"`
	PictureURL string    `json:"picture_url"`
	CreatedAt  time.Time `json:"created_at"`
}

type Folder struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	Name      string     `gorm:"not null" json:"name"`
	CreatedAt time.Time  `json:"created_at"`
}

type Document struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	FolderID      *uuid.UUID `gorm:"type:uuid;index" json:"folder_id"`
	Title         string     `gorm:"not null" json:"title"`
	Content       string     `gorm:"type:text" json:"content"`
	AnswerFlag    string     `json:"answer_flag"`
	RationaleFlag string     `json:"rationale_flag"`
	CreatedAt     time.Time  `json:"created_at"`

	Questions       []Question       `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	RationaleImages []RationaleImage `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"rationale_images,omitempty"`
}

type Question struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DocumentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"document_id"`
	Position     int       `gorm:"not null" json:"position"`
	QuestionText string    `gorm:"type:text;not null" json:"question_text"`
	Answer       string    `gorm:"not null" json:"answer"`
	Rationale    string    `gorm:"type:text" json:"rationale"`
	CreatedAt    time.Time `json:"created_at"`

	Choices []Choice `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"choices,omitempty"`
}

type Choice struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Letter     string    `gorm:"not null" json:"letter"`
	Text       string    `gorm:"type:text" json:"text"`
}

// RationaleImage is keyed to its document by the ordinal position of the
// rationale flag occurrence it was found under, not to a question row. The
// owning question is resolved at read time by matching that ordinal.
type RationaleImage struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DocumentID     uuid.UUID `gorm:"type:uuid;not null;index:idx_rationale_image,unique,priority:1" json:"document_id"`
	RationaleIndex int       `gorm:"not null;index:idx_rationale_image,unique,priority:2" json:"rationale_index"`
	ImageURL       string    `gorm:"not null" json:"image_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// AttemptState holds per-user quiz progress separately from the immutable
// question content.
type AttemptState struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index:idx_attempt_state,unique,priority:1" json:"user_id"`
	QuestionID     uuid.UUID `gorm:"type:uuid;not null;index:idx_attempt_state,unique,priority:2" json:"question_id"`
	SelectedAnswer string    `json:"selected_answer"`
	Revealed       bool      `json:"revealed"`
	UpdatedAt      time.Time `json:"updated_at"`
}
