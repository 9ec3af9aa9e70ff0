package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edensitko/RED-CRM-sub001/internal/common"
	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
)

func TestProjectMessages_EmptyChatID(t *testing.T) {
	snapshot := []*models.Message{{ID: "m1", ChatID: "c1"}}
	if got := ProjectMessages(snapshot, ""); got != nil {
		t.Fatalf("expected nil for empty chat id, got %v", got)
	}
}

func TestProjectMessages_OrdersAscendingZeroFirst(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	snapshot := []*models.Message{
		{ID: "m2", ChatID: "c1", CreatedAt: t2},
		{ID: "pending", ChatID: "c1"}, // not yet timestamped
		{ID: "m1", ChatID: "c1", CreatedAt: t1},
		{ID: "other", ChatID: "c2", CreatedAt: t1},
	}

	got := ProjectMessages(snapshot, "c1")
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	if got[0].ID != "pending" || got[1].ID != "m1" || got[2].ID != "m2" {
		t.Fatalf("wrong order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestProjectMessages_IdempotentPerSnapshot(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	snapshot := []*models.Message{
		{ID: "b", ChatID: "c1", CreatedAt: t1.Add(time.Second)},
		{ID: "a", ChatID: "c1", CreatedAt: t1},
	}

	first := ProjectMessages(snapshot, "c1")
	second := ProjectMessages(snapshot, "c1")
	if len(first) != len(second) {
		t.Fatalf("length changed between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("order changed at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestCountUnread(t *testing.T) {
	snapshot := []*models.Message{
		{ID: "m1", ReadBy: []string{"u1"}},
		{ID: "m2", ReadBy: []string{"u2"}},
		{ID: "m3", ReadBy: nil},
	}

	if got := CountUnread(snapshot, "u1"); got != 2 {
		t.Fatalf("expected 2 unread for u1, got %d", got)
	}
	if got := CountUnread(snapshot, "u2"); got != 2 {
		t.Fatalf("expected 2 unread for u2, got %d", got)
	}
	if got := CountUnread(nil, "u1"); got != 0 {
		t.Fatalf("expected 0 for empty snapshot, got %d", got)
	}
}

func TestCreateConversation_CreatorAlwaysParticipant(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	s := NewChatService(db, rm)

	conv, err := s.CreateConversation(context.Background(), "u1", "general", []string{"u2", "u3"})
	if err != nil {
		t.Fatalf("CreateConversation error: %v", err)
	}

	if !containsReader(conv.Participants, "u1") {
		t.Fatalf("creator missing from participants: %v", conv.Participants)
	}
	for _, p := range conv.Participants {
		if conv.UnreadBy[p] {
			t.Fatalf("new conversation must start all-read, got %v", conv.UnreadBy)
		}
	}
}

func TestPostMessage_SetsSummaryAndUnreadFlags(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	s := NewChatService(db, rm)

	conv, err := s.CreateConversation(context.Background(), "u1", "general", []string{"u2"})
	if err != nil {
		t.Fatalf("CreateConversation error: %v", err)
	}

	msg, err := s.PostMessage(context.Background(), "u1", "Alice", conv.ID, "hello")
	if err != nil {
		t.Fatalf("PostMessage error: %v", err)
	}

	if len(msg.ReadBy) != 1 || msg.ReadBy[0] != "u1" {
		t.Fatalf("author must be the sole initial reader, got %v", msg.ReadBy)
	}

	stored, err := rm.conversations.GetByID(context.Background(), conv.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if stored.LastMessage != "hello" {
		t.Fatalf("summary not updated: %q", stored.LastMessage)
	}
	if stored.UnreadBy["u1"] || !stored.UnreadBy["u2"] {
		t.Fatalf("unread flags wrong: %v", stored.UnreadBy)
	}
}

func TestPostMessage_NotParticipant(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	s := NewChatService(db, rm)

	conv, _ := s.CreateConversation(context.Background(), "u1", "private", nil)

	_, err := s.PostMessage(context.Background(), "outsider", "Eve", conv.ID, "hi")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}

func TestPostMessage_EmptyText(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewChatService(db, newFakeRepoManager())

	_, err := s.PostMessage(context.Background(), "u1", "Alice", "c1", "")
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want ErrorValidation, got %v", err)
	}
}

func TestMarkChatRead_ClearsUnreadAndIsIdempotent(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	s := NewChatService(db, rm)
	ctx := context.Background()

	conv, _ := s.CreateConversation(ctx, "u1", "general", []string{"u2"})
	if _, err := s.PostMessage(ctx, "u1", "Alice", conv.ID, "one"); err != nil {
		t.Fatalf("PostMessage error: %v", err)
	}
	if _, err := s.PostMessage(ctx, "u1", "Alice", conv.ID, "two"); err != nil {
		t.Fatalf("PostMessage error: %v", err)
	}

	count, err := s.UnreadCount(ctx, "u2")
	if err != nil {
		t.Fatalf("UnreadCount error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unread before marking, got %d", count)
	}

	if err := s.MarkChatRead(ctx, "u2", conv.ID); err != nil {
		t.Fatalf("MarkChatRead error: %v", err)
	}

	count, _ = s.UnreadCount(ctx, "u2")
	if count != 0 {
		t.Fatalf("expected 0 unread after marking, got %d", count)
	}

	stored, _ := rm.conversations.GetByID(ctx, conv.ID)
	if stored.UnreadBy["u2"] {
		t.Fatalf("unread flag not cleared: %v", stored.UnreadBy)
	}

	// Marking again must not change anything.
	if err := s.MarkChatRead(ctx, "u2", conv.ID); err != nil {
		t.Fatalf("second MarkChatRead error: %v", err)
	}
	count, _ = s.UnreadCount(ctx, "u2")
	if count != 0 {
		t.Fatalf("expected 0 unread after repeat, got %d", count)
	}
}

func TestMessages_RequiresMembership(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewChatService(db, newFakeRepoManager())
	conv, _ := s.CreateConversation(context.Background(), "u1", "private", nil)

	_, err := s.Messages(context.Background(), "outsider", conv.ID)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}
