package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuestionStatus is open until the first answer, and closed only explicitly.
type QuestionStatus string

const (
	QuestionOpen     QuestionStatus = "open"
	QuestionAnswered QuestionStatus = "answered"
	QuestionClosed   QuestionStatus = "closed"
)

// Valid reports whether s is a known question status.
func (s QuestionStatus) Valid() bool {
	switch s {
	case QuestionOpen, QuestionAnswered, QuestionClosed:
		return true
	}
	return false
}

// Question is a student's posted problem.
type Question struct {
	ID             string                          `gorm:"primaryKey;size:36" json:"id"`
	AuthorID       string                          `gorm:"size:36;not null;index" json:"author"`
	Title          string                          `gorm:"size:200;not null" json:"title"`
	Body           string                          `gorm:"type:text;not null" json:"body"`
	Subject        string                          `gorm:"size:64;not null;index" json:"subject"`
	EducationLevel string                          `gorm:"size:32;not null;index" json:"educationLevel"`
	Tags           datatypes.JSONSlice[string]     `json:"tags"`
	Attachments    datatypes.JSONSlice[Attachment] `json:"attachments"`
	Status         QuestionStatus                  `gorm:"size:16;not null;default:open;index" json:"status"`
	Views          int64                           `gorm:"not null;default:0" json:"views"`
	Flagged        bool                            `gorm:"not null;default:false" json:"flagged"`
	FlagReason     string                          `gorm:"size:255" json:"flagReason,omitempty"`
	CreatedAt      time.Time                       `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time                       `json:"updatedAt"`

	// Upvotes holds voter ids; persisted in question_upvotes.
	Upvotes []string `gorm:"-" json:"upvotes"`
	// AnswerIDs is the ordered list of answers attached to the question.
	AnswerIDs []string     `gorm:"-" json:"answers"`
	Author    *UserSummary `gorm:"-" json:"authorProfile,omitempty"`
}

// QuestionUpvote is one member of a question's upvote set.
type QuestionUpvote struct {
	QuestionID string    `gorm:"primaryKey;size:36"`
	UserID     string    `gorm:"primaryKey;size:36"`
	CreatedAt  time.Time `gorm:"index"`
}
