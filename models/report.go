package models

import (
	"fmt"
	"time"
)

// ContentType is the closed set of things a report can point at.
type ContentType string

const (
	ContentQuestion ContentType = "question"
	ContentAnswer   ContentType = "answer"
	ContentChat     ContentType = "chat"
	ContentSession  ContentType = "session"
	ContentUser     ContentType = "user"
)

// ParseContentType rejects any value outside the closed set.
func ParseContentType(s string) (ContentType, error) {
	switch ct := ContentType(s); ct {
	case ContentQuestion, ContentAnswer, ContentChat, ContentSession, ContentUser:
		return ct, nil
	}
	return "", fmt.Errorf("unknown content type %q", s)
}

// ReportedContent identifies the reported item.
type ReportedContent struct {
	ContentType ContentType `gorm:"size:16;not null;index:idx_reports_content" json:"contentType"`
	ContentID   string      `gorm:"size:36;not null;index:idx_reports_content" json:"contentId"`
}

// ReportType classifies the reporter's complaint.
type ReportType string

const (
	ReportSpam           ReportType = "spam"
	ReportHarassment     ReportType = "harassment"
	ReportInappropriate  ReportType = "inappropriate"
	ReportMisinformation ReportType = "misinformation"
	ReportCheating       ReportType = "cheating"
	ReportOther          ReportType = "other"
)

// ReportStatus is the review state of a report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewing ReportStatus = "reviewing"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Terminal reports whether no further status change is allowed.
func (s ReportStatus) Terminal() bool {
	return s == ReportResolved || s == ReportDismissed
}

// CanMoveTo reports whether the review workflow permits s -> next.
func (s ReportStatus) CanMoveTo(next ReportStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case ReportPending:
		return next == ReportReviewing || next == ReportResolved || next == ReportDismissed
	case ReportReviewing:
		return next == ReportResolved || next == ReportDismissed
	}
	return false
}

// ReportAction is the moderator's decision.
type ReportAction string

const (
	ActionNone           ReportAction = "no-action"
	ActionContentRemoved ReportAction = "content-removed"
	ActionWarningIssued  ReportAction = "warning-issued"
	ActionUserSuspended  ReportAction = "user-suspended"
	ActionUserBanned     ReportAction = "user-banned"
)

// ReportPriority orders the admin review queue.
type ReportPriority string

const (
	PriorityLow    ReportPriority = "low"
	PriorityMedium ReportPriority = "medium"
	PriorityHigh   ReportPriority = "high"
	PriorityUrgent ReportPriority = "urgent"
)

// Report is a user-filed complaint about content or a user.
type Report struct {
	ID              string          `gorm:"primaryKey;size:36" json:"id"`
	ReporterID      string          `gorm:"size:36;not null;index" json:"reporter"`
	ReportedUserID  string          `gorm:"size:36;index" json:"reportedUser,omitempty"`
	ReportedContent ReportedContent `gorm:"embedded" json:"reportedContent"`
	Type            ReportType      `gorm:"size:32;not null" json:"type"`
	Description     string          `gorm:"type:text" json:"description"`
	Status          ReportStatus    `gorm:"size:16;not null;default:pending;index" json:"status"`
	Action          ReportAction    `gorm:"size:32" json:"action,omitempty"`
	Priority        ReportPriority  `gorm:"size:16;not null;default:medium;index" json:"priority"`
	ReviewNotes     string          `gorm:"type:text" json:"reviewNotes,omitempty"`
	ReviewedBy      string          `gorm:"size:36" json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewedAt,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
