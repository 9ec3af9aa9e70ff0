package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/edensitko/RED-CRM-sub001/internal/common"
	"github.com/edensitko/RED-CRM-sub001/internal/dbx"
	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
	conversationsrepo "github.com/edensitko/RED-CRM-sub001/internal/server/repositories/conversations"
	documentsrepo "github.com/edensitko/RED-CRM-sub001/internal/server/repositories/documents"
	messagesrepo "github.com/edensitko/RED-CRM-sub001/internal/server/repositories/messages"
	recordsrepo "github.com/edensitko/RED-CRM-sub001/internal/server/repositories/records"
	refreshtokensrepo "github.com/edensitko/RED-CRM-sub001/internal/server/repositories/refreshtokens"
	tasksrepo "github.com/edensitko/RED-CRM-sub001/internal/server/repositories/tasks"
	timetrackingrepo "github.com/edensitko/RED-CRM-sub001/internal/server/repositories/timetracking"
	usersrepo "github.com/edensitko/RED-CRM-sub001/internal/server/repositories/users"
)

// In-memory fakes backing the service tests. The sqlmock DB only serves
// Begin/Commit for the transactional paths; all data lives here.

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeUsersRepo struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}, byEmail: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrEmailTaken
	}
	c := *u
	c.CreatedAt = time.Now()
	f.byID[c.ID] = &c
	f.byEmail[c.Email] = &c
	return &c, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type fakeRefreshRepo struct {
	tokens map[string]*models.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := f.tokens[token]; ok {
		return t, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

type fakeConversationsRepo struct {
	convs map[string]*models.Conversation
}

func newFakeConversationsRepo() *fakeConversationsRepo {
	return &fakeConversationsRepo{convs: map[string]*models.Conversation{}}
}

func (f *fakeConversationsRepo) Create(ctx context.Context, conv *models.Conversation) (*models.Conversation, error) {
	c := *conv
	c.CreatedAt = time.Now()
	f.convs[c.ID] = &c
	return &c, nil
}

func (f *fakeConversationsRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	if c, ok := f.convs[id]; ok {
		return c, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeConversationsRepo) ListByParticipant(ctx context.Context, userID string) ([]*models.Conversation, error) {
	var result []*models.Conversation
	for _, c := range f.convs {
		for _, p := range c.Participants {
			if p == userID {
				result = append(result, c)
				break
			}
		}
	}
	return result, nil
}

func (f *fakeConversationsRepo) UpdateSummary(ctx context.Context, id string, lastMessage string, at time.Time, unreadBy map[string]bool) error {
	c, ok := f.convs[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.LastMessage = lastMessage
	c.LastMessageAt = at
	c.UnreadBy = unreadBy
	return nil
}

func (f *fakeConversationsRepo) SetUnread(ctx context.Context, id string, userID string, unread bool) error {
	c, ok := f.convs[id]
	if !ok {
		return common.ErrorNotFound
	}
	if c.UnreadBy == nil {
		c.UnreadBy = map[string]bool{}
	}
	c.UnreadBy[userID] = unread
	return nil
}

func (f *fakeConversationsRepo) Delete(ctx context.Context, id string) error {
	delete(f.convs, id)
	return nil
}

type fakeMessagesRepo struct {
	msgs  []*models.Message
	convs *fakeConversationsRepo
}

func (f *fakeMessagesRepo) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	m := *msg
	m.CreatedAt = time.Now()
	f.msgs = append(f.msgs, &m)
	return &m, nil
}

func (f *fakeMessagesRepo) ListByChat(ctx context.Context, chatID string) ([]*models.Message, error) {
	var result []*models.Message
	for _, m := range f.msgs {
		if m.ChatID == chatID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (f *fakeMessagesRepo) ListForUser(ctx context.Context, userID string) ([]*models.Message, error) {
	convs, _ := f.convs.ListByParticipant(ctx, userID)
	member := map[string]bool{}
	for _, c := range convs {
		member[c.ID] = true
	}
	var result []*models.Message
	for _, m := range f.msgs {
		if member[m.ChatID] {
			result = append(result, m)
		}
	}
	return result, nil
}

func (f *fakeMessagesRepo) ListUnreadByChat(ctx context.Context, chatID, userID string) ([]*models.Message, error) {
	var result []*models.Message
	for _, m := range f.msgs {
		if m.ChatID == chatID && !containsReader(m.ReadBy, userID) {
			result = append(result, m)
		}
	}
	return result, nil
}

func (f *fakeMessagesRepo) AddReader(ctx context.Context, messageID, userID string) error {
	for _, m := range f.msgs {
		if m.ID == messageID && !containsReader(m.ReadBy, userID) {
			m.ReadBy = append(m.ReadBy, userID)
		}
	}
	return nil
}

type fakeTasksRepo struct {
	tasks []*models.Task
}

func (f *fakeTasksRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	t := *task
	t.CreatedAt = time.Now()
	f.tasks = append(f.tasks, &t)
	return &t, nil
}

func (f *fakeTasksRepo) Update(ctx context.Context, task *models.Task) error {
	for i, t := range f.tasks {
		if t.ID == task.ID {
			c := *task
			c.CreatedAt = t.CreatedAt
			c.UpdatedAt = time.Now()
			f.tasks[i] = &c
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeTasksRepo) Delete(ctx context.Context, id string) error {
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeTasksRepo) GetByID(ctx context.Context, id string) (*models.Task, error) {
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTasksRepo) List(ctx context.Context) ([]*models.Task, error) {
	return append([]*models.Task{}, f.tasks...), nil
}

type fakeTimeTrackingRepo struct {
	entries []*models.TimeEntry
	states  map[string]*models.TimerState
}

func newFakeTimeTrackingRepo() *fakeTimeTrackingRepo {
	return &fakeTimeTrackingRepo{states: map[string]*models.TimerState{}}
}

func (f *fakeTimeTrackingRepo) CreateEntry(ctx context.Context, entry *models.TimeEntry) (*models.TimeEntry, error) {
	e := *entry
	e.CreatedAt = time.Now()
	f.entries = append(f.entries, &e)
	return &e, nil
}

func (f *fakeTimeTrackingRepo) ListEntriesByUser(ctx context.Context, userID string) ([]*models.TimeEntry, error) {
	var result []*models.TimeEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (f *fakeTimeTrackingRepo) DeleteEntry(ctx context.Context, id string) error {
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeTimeTrackingRepo) GetState(ctx context.Context, userID string) (*models.TimerState, error) {
	if s, ok := f.states[userID]; ok {
		return s, nil
	}
	return &models.TimerState{UserID: userID}, nil
}

func (f *fakeTimeTrackingRepo) SaveState(ctx context.Context, state *models.TimerState) error {
	c := *state
	f.states[state.UserID] = &c
	return nil
}

type fakeDocumentsRepo struct {
	docs []*models.FormDocument
}

func (f *fakeDocumentsRepo) Create(ctx context.Context, doc *models.FormDocument) (*models.FormDocument, error) {
	d := *doc
	d.UploadedAt = time.Now()
	f.docs = append(f.docs, &d)
	return &d, nil
}

func (f *fakeDocumentsRepo) GetByID(ctx context.Context, id string) (*models.FormDocument, error) {
	for _, d := range f.docs {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeDocumentsRepo) List(ctx context.Context) ([]*models.FormDocument, error) {
	return append([]*models.FormDocument{}, f.docs...), nil
}

func (f *fakeDocumentsRepo) Delete(ctx context.Context, id string) error {
	for i, d := range f.docs {
		if d.ID == id {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeRecordsRepo struct {
	recs []*models.Record
}

func (f *fakeRecordsRepo) Create(ctx context.Context, rec *models.Record) (*models.Record, error) {
	r := *rec
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	f.recs = append(f.recs, &r)
	return &r, nil
}

func (f *fakeRecordsRepo) Update(ctx context.Context, collection, id string, data json.RawMessage) error {
	for _, r := range f.recs {
		if r.Collection == collection && r.ID == id {
			r.Data = data
			r.UpdatedAt = time.Now()
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeRecordsRepo) Delete(ctx context.Context, collection, id string) error {
	for i, r := range f.recs {
		if r.Collection == collection && r.ID == id {
			f.recs = append(f.recs[:i], f.recs[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeRecordsRepo) GetByID(ctx context.Context, collection, id string) (*models.Record, error) {
	for _, r := range f.recs {
		if r.Collection == collection && r.ID == id {
			return r, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRecordsRepo) ListByCollection(ctx context.Context, collection string) ([]*models.Record, error) {
	var result []*models.Record
	for _, r := range f.recs {
		if r.Collection == collection {
			result = append(result, r)
		}
	}
	return result, nil
}

type fakeRepoManager struct {
	users         *fakeUsersRepo
	refreshTokens *fakeRefreshRepo
	conversations *fakeConversationsRepo
	messages      *fakeMessagesRepo
	tasks         *fakeTasksRepo
	timeTracking  *fakeTimeTrackingRepo
	documents     *fakeDocumentsRepo
	records       *fakeRecordsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	convs := newFakeConversationsRepo()
	return &fakeRepoManager{
		users:         newFakeUsersRepo(),
		refreshTokens: newFakeRefreshRepo(),
		conversations: convs,
		messages:      &fakeMessagesRepo{convs: convs},
		tasks:         &fakeTasksRepo{},
		timeTracking:  newFakeTimeTrackingRepo(),
		documents:     &fakeDocumentsRepo{},
		records:       &fakeRecordsRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.users }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.refreshTokens
}
func (m *fakeRepoManager) Conversations(db dbx.DBTX) conversationsrepo.Repository {
	return m.conversations
}
func (m *fakeRepoManager) Messages(db dbx.DBTX) messagesrepo.Repository { return m.messages }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasksrepo.Repository       { return m.tasks }
func (m *fakeRepoManager) TimeTracking(db dbx.DBTX) timetrackingrepo.Repository {
	return m.timeTracking
}
func (m *fakeRepoManager) Documents(db dbx.DBTX) documentsrepo.Repository { return m.documents }
func (m *fakeRepoManager) Records(db dbx.DBTX) recordsrepo.Repository     { return m.records }
