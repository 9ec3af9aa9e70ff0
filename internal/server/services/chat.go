package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/edensitko/RED-CRM-sub001/internal/common"
	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
	"github.com/edensitko/RED-CRM-sub001/internal/server/repositories/repomanager"
)

// ProjectMessages derives the ordered message list of one conversation from
// a full message snapshot: ascending by creation time, with zero timestamps
// sorting first until the server-assigned value arrives. An empty chatID
// yields an empty list. The projection is recomputed from scratch against
// each new snapshot, so it is idempotent per snapshot.
func ProjectMessages(snapshot []*models.Message, chatID string) []*models.Message {
	if chatID == "" {
		return nil
	}

	var result []*models.Message
	for _, m := range snapshot {
		if m.ChatID == chatID {
			result = append(result, m)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result
}

// CountUnread returns the number of messages across the whole snapshot whose
// reader-set does not contain userID.
func CountUnread(snapshot []*models.Message, userID string) int {
	count := 0
	for _, m := range snapshot {
		if !containsReader(m.ReadBy, userID) {
			count++
		}
	}
	return count
}

func containsReader(readBy []string, userID string) bool {
	for _, r := range readBy {
		if r == userID {
			return true
		}
	}
	return false
}

// ChatService implements conversations, messages, and read-state handling.
type ChatService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewChatService(db *sql.DB, m repomanager.RepositoryManager) *ChatService {
	return &ChatService{db: db, repomanager: m}
}

// CreateConversation starts a conversation. The creator is always a
// participant; the unread map starts all-false.
func (s *ChatService) CreateConversation(ctx context.Context, creatorID, title string, participants []string) (*models.Conversation, error) {
	if creatorID == "" {
		return nil, common.ErrorUnauthorized
	}

	members := append([]string{}, participants...)
	if !containsReader(members, creatorID) {
		members = append(members, creatorID)
	}

	unread := make(map[string]bool, len(members))
	for _, p := range members {
		unread[p] = false
	}

	conv := &models.Conversation{
		ID:           uuid.New().String(),
		Title:        title,
		Participants: members,
		UnreadBy:     unread,
	}

	repo := s.repomanager.Conversations(s.db)
	created, err := repo.Create(ctx, conv)
	if err != nil {
		return nil, fmt.Errorf("error creating conversation: %v", err)
	}
	return created, nil
}

// ListConversations returns the conversations the user takes part in.
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error) {
	return s.repomanager.Conversations(s.db).ListByParticipant(ctx, userID)
}

// PostMessage records a message and denormalizes the conversation summary.
// The sender's unread flag is false immediately after the write; every
// other participant's flag is set true.
func (s *ChatService) PostMessage(ctx context.Context, userID, userName, chatID, text string) (*models.Message, error) {
	if text == "" {
		return nil, common.ErrorValidation
	}

	convRepo := s.repomanager.Conversations(s.db)
	conv, err := convRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !containsReader(conv.Participants, userID) {
		return nil, common.ErrorUnauthorized
	}

	msg := &models.Message{
		ID:         uuid.New().String(),
		ChatID:     chatID,
		AuthorID:   userID,
		AuthorName: userName,
		Text:       text,
		ReadBy:     []string{userID},
	}

	created, err := s.repomanager.Messages(s.db).Create(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("error creating message: %v", err)
	}

	unread := make(map[string]bool, len(conv.Participants))
	for _, p := range conv.Participants {
		unread[p] = p != userID
	}

	at := created.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	if err := convRepo.UpdateSummary(ctx, chatID, created.Text, at, unread); err != nil {
		return nil, fmt.Errorf("error updating conversation summary: %v", err)
	}

	return created, nil
}

// Messages returns the ordered message list of one conversation for a
// participant.
func (s *ChatService) Messages(ctx context.Context, userID, chatID string) ([]*models.Message, error) {
	conv, err := s.repomanager.Conversations(s.db).GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !containsReader(conv.Participants, userID) {
		return nil, common.ErrorUnauthorized
	}

	snapshot, err := s.repomanager.Messages(s.db).ListByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return ProjectMessages(snapshot, chatID), nil
}

// MarkChatRead adds the user to the reader-set of every unread message in
// the conversation, one update per message, then clears the user's unread
// flag on the conversation.
func (s *ChatService) MarkChatRead(ctx context.Context, userID, chatID string) error {
	convRepo := s.repomanager.Conversations(s.db)
	conv, err := convRepo.GetByID(ctx, chatID)
	if err != nil {
		return err
	}
	if !containsReader(conv.Participants, userID) {
		return common.ErrorUnauthorized
	}

	msgRepo := s.repomanager.Messages(s.db)
	unread, err := msgRepo.ListUnreadByChat(ctx, chatID, userID)
	if err != nil {
		return err
	}

	for _, m := range unread {
		if err := msgRepo.AddReader(ctx, m.ID, userID); err != nil {
			return fmt.Errorf("error acknowledging message %s: %v", m.ID, err)
		}
	}

	return convRepo.SetUnread(ctx, chatID, userID, false)
}

// UnreadCount counts unread messages for the user across all conversations.
func (s *ChatService) UnreadCount(ctx context.Context, userID string) (int, error) {
	snapshot, err := s.repomanager.Messages(s.db).ListForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return CountUnread(snapshot, userID), nil
}

// MessagesSnapshot returns the user's full mirrored message set, the result
// set pushed to live subscribers of the messages collection.
func (s *ChatService) MessagesSnapshot(ctx context.Context, userID string) ([]*models.Message, error) {
	return s.repomanager.Messages(s.db).ListForUser(ctx, userID)
}
