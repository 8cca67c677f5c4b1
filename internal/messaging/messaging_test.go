package messaging_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/diagnosis/luxstay/internal/messaging"
	"github.com/google/uuid"
)

// ---------- Mocks ----------

type mockAPI struct {
	viewer   domain.User
	messages []domain.Message // newest first, as the service lists them
	sent     []domain.SendMessageRequest
	sendErr  error
	threads  int
}

func (m *mockAPI) ListMessages(context.Context) ([]domain.Message, error) {
	return m.messages, nil
}

func (m *mockAPI) Conversation(_ context.Context, userID uuid.UUID) ([]domain.Message, error) {
	m.threads++
	thread := []domain.Message{}
	for _, msg := range m.messages {
		if msg.Sender.ID == userID || msg.Recipient.ID == userID {
			thread = append(thread, msg)
		}
	}
	sort.Slice(thread, func(i, j int) bool { return thread[i].SentAt.Before(thread[j].SentAt) })
	return thread, nil
}

func (m *mockAPI) SendMessage(_ context.Context, req domain.SendMessageRequest) (*domain.Message, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sent = append(m.sent, req)
	msg := domain.Message{
		ID:        uuid.New(),
		Sender:    m.viewer,
		Recipient: domain.User{ID: req.RecipientID},
		Body:      req.Body,
		SentAt:    time.Now(),
	}
	m.messages = append([]domain.Message{msg}, m.messages...)
	return &msg, nil
}

type viewerFunc func() (uuid.UUID, error)

func (f viewerFunc) Viewer() (uuid.UUID, error) { return f() }

func signedIn(id uuid.UUID) viewerFunc {
	return func() (uuid.UUID, error) { return id, nil }
}

func message(from, to domain.User, body string, at time.Time) domain.Message {
	return domain.Message{ID: uuid.New(), Sender: from, Recipient: to, Body: body, SentAt: at}
}

// ---------- Aggregate ----------

func TestAggregate_FirstSeenWins(t *testing.T) {
	me := domain.User{ID: uuid.New(), FirstName: "Me"}
	a := domain.User{ID: uuid.New(), FirstName: "Ana"}
	b := domain.User{ID: uuid.New(), FirstName: "Ben"}
	now := time.Now()

	msgs := []domain.Message{
		message(a, me, "first from A", now),
		message(me, b, "to B", now.Add(-time.Minute)),
		message(me, a, "later to A", now.Add(-2*time.Minute)),
	}

	convs := messaging.Aggregate(msgs, me.ID)
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}
	if convs[0].ID != a.ID || convs[1].ID != b.ID {
		t.Errorf("conversations out of first-seen order: %+v", convs)
	}
	if convs[0].LastMessage != "first from A" {
		t.Errorf("first-seen message should win, got %q", convs[0].LastMessage)
	}
	if convs[1].FirstName != "Ben" || convs[1].LastMessage != "to B" {
		t.Errorf("unexpected B conversation %+v", convs[1])
	}
}

func TestAggregate_Empty(t *testing.T) {
	convs := messaging.Aggregate(nil, uuid.New())
	if convs == nil || len(convs) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", convs)
	}
}

// ---------- Inbox ----------

func TestInbox_SelectAndSendRefetchesThread(t *testing.T) {
	me := domain.User{ID: uuid.New()}
	host := domain.User{ID: uuid.New()}
	now := time.Now()
	api := &mockAPI{viewer: me, messages: []domain.Message{
		message(host, me, "Welcome!", now.Add(-time.Hour)),
	}}
	inbox := messaging.NewInbox(api, signedIn(me.ID), nil)

	convs, err := inbox.Load(context.Background())
	if err != nil || len(convs) != 1 {
		t.Fatalf("load failed: %v %v", convs, err)
	}

	if _, err := inbox.Select(context.Background(), host.ID); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	thread, err := inbox.Send(context.Background(), "  Is early check-in possible?  ")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(api.sent) != 1 || api.sent[0].RecipientID != host.ID || api.sent[0].Body != "  Is early check-in possible?  " {
		t.Errorf("body should be sent as typed, got %+v", api.sent)
	}
	if len(thread) != 2 || thread[1].Body != "  Is early check-in possible?  " {
		t.Errorf("thread should come back from the service with the new message last, got %+v", thread)
	}
	if api.threads != 2 {
		t.Errorf("expected thread to be fetched again after send, got %d fetches", api.threads)
	}

	v := inbox.Snapshot()
	if v.Selected == nil || *v.Selected != host.ID || len(v.Thread) != 2 || v.Loading {
		t.Errorf("unexpected view %+v", v)
	}
}

func TestInbox_SendRejectsEmptyBody(t *testing.T) {
	api := &mockAPI{}
	inbox := messaging.NewInbox(api, signedIn(uuid.New()), nil)
	if _, err := inbox.Select(context.Background(), uuid.New()); err != nil {
		t.Fatal(err)
	}

	for _, body := range []string{"", "   ", "\n\t"} {
		if _, err := inbox.Send(context.Background(), body); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%q: expected validation error, got %v", body, err)
		}
	}
	if len(api.sent) != 0 {
		t.Error("empty messages must not be sent")
	}
}

func TestInbox_SendRequiresSelection(t *testing.T) {
	api := &mockAPI{}
	inbox := messaging.NewInbox(api, signedIn(uuid.New()), nil)

	if _, err := inbox.Send(context.Background(), "hello"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInbox_SendFailureKeepsThread(t *testing.T) {
	me := domain.User{ID: uuid.New()}
	host := domain.User{ID: uuid.New()}
	api := &mockAPI{viewer: me, messages: []domain.Message{message(host, me, "hi", time.Now())}}
	inbox := messaging.NewInbox(api, signedIn(me.ID), nil)
	if _, err := inbox.Select(context.Background(), host.ID); err != nil {
		t.Fatal(err)
	}

	api.sendErr = domain.ErrNetwork
	if _, err := inbox.Send(context.Background(), "hello"); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if got := inbox.Snapshot().Thread; len(got) != 1 {
		t.Errorf("thread must be unchanged after a failed send, got %d messages", len(got))
	}
}

func TestInbox_SignedOut(t *testing.T) {
	inbox := messaging.NewInbox(&mockAPI{}, viewerFunc(func() (uuid.UUID, error) {
		return uuid.Nil, domain.ErrAuth
	}), nil)

	if _, err := inbox.Load(context.Background()); !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestInbox_Reset(t *testing.T) {
	api := &mockAPI{}
	inbox := messaging.NewInbox(api, signedIn(uuid.New()), nil)
	_, _ = inbox.Select(context.Background(), uuid.New())

	inbox.Reset()
	if v := inbox.Snapshot(); v.Selected != nil || len(v.Thread) != 0 || len(v.Conversations) != 0 {
		t.Errorf("reset left state behind: %+v", v)
	}
}
