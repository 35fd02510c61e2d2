package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edulink-ug/edulink/llm"
	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
)

// FallbackModel marks replies produced locally when no provider answered.
const FallbackModel = "fallback"

// Completer produces an assistant reply for a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (*llm.Reply, error)
}

// AskInput is a question for the tutor.
type AskInput struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// Exchange is one persisted question and reply pair.
type Exchange struct {
	Question models.ChatMessage `json:"question"`
	Reply    models.ChatMessage `json:"reply"`
}

// TutorService is the AI study assistant.
type TutorService struct {
	chats        store.ChatStore
	gate         *Gate
	provider     Completer
	systemPrompt string
	historySize  int
	log          *zap.Logger
	now          func() time.Time
}

// NewTutorService returns a TutorService. A nil provider always answers with the local fallback.
func NewTutorService(chats store.ChatStore, gate *Gate, provider Completer, systemPrompt string, historySize int, log *zap.Logger) *TutorService {
	if historySize <= 0 {
		historySize = 10
	}
	return &TutorService{
		chats:        chats,
		gate:         gate,
		provider:     provider,
		systemPrompt: systemPrompt,
		historySize:  historySize,
		log:          log,
		now:          time.Now,
	}
}

// Ask sends the message with recent history to the provider and stores both turns.
func (s *TutorService) Ask(ctx context.Context, p Principal, in AskInput) (*Exchange, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := requireText(map[string]string{"message": in.Message}); err != nil {
		return nil, err
	}
	user, err := s.gate.Admit(ctx, p, ActionChat)
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.Screen(ctx, user, in.Message); err != nil {
		return nil, err
	}
	history, err := s.chats.RecentChat(ctx, p.ID, s.historySize)
	if err != nil {
		return nil, err
	}

	question := strings.TrimSpace(in.Message)
	messages := make([]llm.Message, 0, len(history)+2)
	if s.systemPrompt != "" {
		messages = append(messages, llm.Message{Role: "system", Content: s.systemPrompt})
	}
	for _, m := range history {
		messages = append(messages, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: string(models.ChatUser), Content: question})

	answer, model := s.reply(ctx, messages, question)

	asked := s.now()
	replied := s.now()
	if !replied.After(asked) {
		replied = asked.Add(time.Millisecond)
	}
	userMsg := &models.ChatMessage{ID: uuid.NewString(), UserID: p.ID, Role: models.ChatUser, Content: question, CreatedAt: asked}
	botMsg := &models.ChatMessage{ID: uuid.NewString(), UserID: p.ID, Role: models.ChatAssistant, Content: answer, Model: model, CreatedAt: replied}
	if err := s.chats.AppendChat(ctx, userMsg, botMsg); err != nil {
		return nil, err
	}
	return &Exchange{Question: *userMsg, Reply: *botMsg}, nil
}

func (s *TutorService) reply(ctx context.Context, messages []llm.Message, question string) (string, string) {
	if s.provider != nil {
		r, err := s.provider.Complete(ctx, messages)
		if err == nil {
			return r.Content, r.Model
		}
		s.log.Warn("tutor provider failed, using fallback", zap.Error(err))
	}
	return fallbackReply(question), FallbackModel
}

// History returns the caller's most recent messages, oldest first.
func (s *TutorService) History(ctx context.Context, p Principal, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.chats.RecentChat(ctx, p.ID, limit)
}

// Clear deletes the caller's conversation.
func (s *TutorService) Clear(ctx context.Context, p Principal) error {
	return s.chats.ClearChat(ctx, p.ID)
}

var fallbackTopics = []struct {
	keywords []string
	reply    string
}{
	{[]string{"math", "algebra", "equation", "calculus", "geometry", "fraction"},
		"Let's work through it step by step. Write down what is given and what you need to find, pick the formula that links them, then substitute carefully and check your units and signs at the end."},
	{[]string{"biology", "cell", "photosynthesis", "respiration", "plant", "organism"},
		"Start from the key process involved. Name the structures that take part, describe what goes in and what comes out, and link each stage to its function in the organism."},
	{[]string{"chemistry", "reaction", "mole", "acid", "element", "compound"},
		"Identify the substances involved and write a balanced equation first. From there use mole ratios for any calculation and state the conditions the reaction needs."},
	{[]string{"physics", "force", "energy", "motion", "velocity", "electric"},
		"List the known quantities with their units, choose the law that connects them and rearrange before substituting. A quick sketch of the situation usually helps."},
	{[]string{"english", "essay", "grammar", "composition", "literature", "poem"},
		"Plan before you write: a clear opening, one idea per paragraph with an example, and a conclusion that answers the question. Read it aloud to catch grammar slips."},
	{[]string{"history", "geography", "map", "colonial", "climate"},
		"Organise your answer around causes, events and effects. Support each point with a specific fact, date or place, and relate it back to the question."},
}

// fallbackReply gives study guidance keyed on subject words in the question.
func fallbackReply(question string) string {
	q := strings.ToLower(question)
	for _, t := range fallbackTopics {
		for _, k := range t.keywords {
			if strings.Contains(q, k) {
				return t.reply
			}
		}
	}
	return "I can't reach the tutor service right now. Break the problem into smaller parts, note what you already know, and post it as a question so a teacher or classmate can help."
}
