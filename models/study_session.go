package models

import "time"

// SessionStatus is the lifecycle of a study session.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionLive      SessionStatus = "live"
	SessionEnded     SessionStatus = "ended"
)

// StudySession is a scheduled group study meeting hosted by a user.
type StudySession struct {
	ID              string        `gorm:"primaryKey;size:36" json:"id"`
	HostID          string        `gorm:"size:36;not null;index" json:"host"`
	Title           string        `gorm:"size:200;not null" json:"title"`
	Subject         string        `gorm:"size:64;not null;index" json:"subject"`
	Description     string        `gorm:"type:text" json:"description"`
	ScheduledAt     time.Time     `gorm:"index" json:"scheduledAt"`
	DurationMinutes int           `gorm:"not null" json:"durationMinutes"`
	MaxParticipants int           `gorm:"not null" json:"maxParticipants"`
	MeetingLink     string        `gorm:"size:512" json:"meetingLink,omitempty"`
	Status          SessionStatus `gorm:"size:16;not null;default:scheduled;index" json:"status"`
	StartedAt       *time.Time    `json:"startedAt,omitempty"`
	EndedAt         *time.Time    `json:"endedAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`

	Participants []string `gorm:"-" json:"participants"`
}

// EndsAt is the scheduled end of the session.
func (s *StudySession) EndsAt() time.Time {
	return s.ScheduledAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// HasParticipant reports whether userID already joined.
func (s *StudySession) HasParticipant(userID string) bool {
	for _, id := range s.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// SessionParticipant is one member of a session.
type SessionParticipant struct {
	SessionID string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"primaryKey;size:36"`
	JoinedAt  time.Time `gorm:"index"`
}
