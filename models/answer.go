package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// AnswerStatus tracks moderation approval of an answer.
type AnswerStatus string

const (
	AnswerPending  AnswerStatus = "pending"
	AnswerApproved AnswerStatus = "approved"
	AnswerRejected AnswerStatus = "rejected"
)

// VoteKind is the direction of an answer vote.
type VoteKind string

const (
	VoteUp   VoteKind = "upvote"
	VoteDown VoteKind = "downvote"
)

// Valid reports whether k is a known vote direction.
func (k VoteKind) Valid() bool {
	return k == VoteUp || k == VoteDown
}

// Answer is a response to a question.
type Answer struct {
	ID          string                          `gorm:"primaryKey;size:36" json:"id"`
	QuestionID  string                          `gorm:"size:36;not null;index" json:"question"`
	AuthorID    string                          `gorm:"size:36;not null;index" json:"author"`
	Body        string                          `gorm:"type:text;not null" json:"body"`
	Attachments datatypes.JSONSlice[Attachment] `json:"attachments"`
	Status      AnswerStatus                    `gorm:"size:16;not null;default:pending" json:"status"`
	IsAccepted  bool                            `gorm:"not null;default:false" json:"isAccepted"`
	VerifiedBy  string                          `gorm:"size:36" json:"verifiedBy,omitempty"`
	VerifiedAt  *time.Time                      `json:"verifiedAt,omitempty"`
	Flagged     bool                            `gorm:"not null;default:false" json:"flagged"`
	FlagReason  string                          `gorm:"size:255" json:"flagReason,omitempty"`
	CreatedAt   time.Time                       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time                       `json:"updatedAt"`

	// AcceptAwardedAt is set the first time the answer is accepted and never cleared.
	AcceptAwardedAt *time.Time `json:"-"`

	Upvotes   []string     `gorm:"-" json:"upvotes"`
	Downvotes []string     `gorm:"-" json:"downvotes"`
	Author    *UserSummary `gorm:"-" json:"authorProfile,omitempty"`
}

// Score is the net vote count. It is derived on read and never stored.
func (a *Answer) Score() int {
	return len(a.Upvotes) - len(a.Downvotes)
}

// MarshalJSON adds the derived score to the wire form.
func (a Answer) MarshalJSON() ([]byte, error) {
	type answer Answer
	return json.Marshal(struct {
		answer
		Score int `json:"score"`
	}{answer(a), a.Score()})
}

// VoteOf returns the direction userID currently holds on a, or "" when none.
func (a *Answer) VoteOf(userID string) VoteKind {
	for _, id := range a.Upvotes {
		if id == userID {
			return VoteUp
		}
	}
	for _, id := range a.Downvotes {
		if id == userID {
			return VoteDown
		}
	}
	return ""
}

// AnswerVote is one vote row. The (answer, user) key keeps the two vote sets disjoint.
type AnswerVote struct {
	AnswerID  string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"primaryKey;size:36"`
	Kind      VoteKind  `gorm:"size:16;not null"`
	CreatedAt time.Time `gorm:"index"`
}
