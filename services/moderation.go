package services

import (
	"regexp"
	"strings"
)

// Verdict is the outcome of moderating a piece of content.
type Verdict int

const (
	Allow Verdict = iota
	AllowFlagged
	Block
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case AllowFlagged:
		return "allow_flagged"
	case Block:
		return "block"
	}
	return "unknown"
}

// Decision carries the verdict and, for flagged content, a human readable reason.
type Decision struct {
	Verdict Verdict
	Reason  string
}

// DefaultBannedWords is used when configuration supplies none.
var DefaultBannedWords = []string{
	"fuck",
	"bitch",
	"bastard",
	"asshole",
	"porn",
	"nude pics",
	"kill yourself",
	"leaked exam",
	"exam leak",
	"buy answers",
}

type suspiciousPattern struct {
	re     *regexp.Regexp
	reason string
}

var suspiciousPatterns = []suspiciousPattern{
	{regexp.MustCompile(`\d{10,}`), "Contains what looks like a phone number"},
	{regexp.MustCompile(`[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`), "Contains an email address"},
	{regexp.MustCompile(`(https?://|www\.)\S+`), "Contains a link"},
	{regexp.MustCompile(`\b[a-z0-9\-]+\.(com|net|org|io|co|ug|info|biz|me|xyz|ly)\b`), "Contains a link"},
}

// Moderator screens user text against a banned-word list and contact/link patterns.
type Moderator struct {
	banned []string
}

// NewModerator builds a Moderator; an empty list falls back to DefaultBannedWords.
func NewModerator(bannedWords []string) *Moderator {
	if len(bannedWords) == 0 {
		bannedWords = DefaultBannedWords
	}
	words := make([]string, 0, len(bannedWords))
	for _, w := range bannedWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			words = append(words, w)
		}
	}
	return &Moderator{banned: words}
}

// Moderate joins the fields with spaces, lowercases and trims them, then classifies the text.
func (m *Moderator) Moderate(fields ...string) Decision {
	text := strings.ToLower(strings.TrimSpace(strings.Join(fields, " ")))
	if text == "" {
		return Decision{Verdict: Allow}
	}
	for _, w := range m.banned {
		if strings.Contains(text, w) {
			return Decision{Verdict: Block}
		}
	}
	for _, p := range suspiciousPatterns {
		if p.re.MatchString(text) {
			return Decision{Verdict: AllowFlagged, Reason: p.reason}
		}
	}
	return Decision{Verdict: Allow}
}
