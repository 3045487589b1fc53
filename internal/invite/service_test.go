package invite

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"linguachat/internal/domain"
)

type fakeChats struct {
	chats map[string]*domain.Chat
	added []string
}

func newFakeChats(chats ...*domain.Chat) *fakeChats {
	m := make(map[string]*domain.Chat, len(chats))
	for _, c := range chats {
		m[c.ID] = c
	}
	return &fakeChats{chats: m}
}

func (f *fakeChats) Create(_ context.Context, chat *domain.Chat) error {
	f.chats[chat.ID] = chat
	return nil
}

func (f *fakeChats) GetByID(_ context.Context, id string) (*domain.Chat, error) {
	if c, ok := f.chats[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeChats) AddParticipant(_ context.Context, chatID, userID string) error {
	f.added = append(f.added, chatID+":"+userID)
	c, ok := f.chats[chatID]
	if !ok {
		return domain.ErrNotFound
	}
	if !c.HasParticipant(userID) {
		c.Participants = append(c.Participants, userID)
	}
	return nil
}

type fakeUsers struct {
	byEmail map[string]*domain.UserProfile
	byID    map[string]*domain.UserProfile
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.UserProfile, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.UserProfile, error) {
	if p, ok := f.byEmail[email]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

type fakeInvites struct {
	created []domain.Invitation
}

func (f *fakeInvites) Create(_ context.Context, inv *domain.Invitation) error {
	f.created = append(f.created, *inv)
	return nil
}

func (f *fakeInvites) ListByChat(_ context.Context, chatID string) ([]domain.Invitation, error) {
	var out []domain.Invitation
	for _, inv := range f.created {
		if inv.ChatID == chatID {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakeCharger struct {
	remaining int64
}

func (f *fakeCharger) CheckAndIncrement(_ context.Context, _ string, _ domain.Resource) (bool, error) {
	if f.remaining <= 0 {
		return false, nil
	}
	f.remaining--
	return true, nil
}

func newTestService(chats *fakeChats, users *fakeUsers, invites *fakeInvites, charger *fakeCharger) *Service {
	if users == nil {
		users = &fakeUsers{byEmail: map[string]*domain.UserProfile{}}
	}
	if invites == nil {
		invites = &fakeInvites{}
	}
	if charger == nil {
		charger = &fakeCharger{remaining: 3}
	}
	return NewService(chats, users, invites, charger, "https://chat.example", zerolog.Nop())
}

func TestCreateChatPrivateWithResolvedRecipient(t *testing.T) {
	chats := newFakeChats()
	users := &fakeUsers{byEmail: map[string]*domain.UserProfile{
		"bob@example.com": {ID: "bob", Email: "bob@example.com"},
	}}
	invites := &fakeInvites{}
	svc := newTestService(chats, users, invites, nil)

	res, err := svc.CreateChat(context.Background(), CreateChatRequest{
		CreatorID:       "alice",
		Type:            domain.ChatPrivate,
		RecipientEmails: []string{"Bob@Example.com"},
	})
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if len(res.Chat.Participants) != 2 || !res.Chat.HasParticipant("bob") {
		t.Fatalf("participants = %v, want alice and bob", res.Chat.Participants)
	}
	if len(invites.created) != 0 {
		t.Fatalf("created %d invitations for a resolved recipient", len(invites.created))
	}
	if res.InviteLink != "https://chat.example/invite/"+res.Chat.ID {
		t.Fatalf("invite link = %q", res.InviteLink)
	}
}

func TestCreateChatIssuesInvitationForUnresolvedRecipient(t *testing.T) {
	chats := newFakeChats()
	invites := &fakeInvites{}
	svc := newTestService(chats, nil, invites, nil)

	res, err := svc.CreateChat(context.Background(), CreateChatRequest{
		CreatorID:       "alice",
		Type:            domain.ChatPrivate,
		RecipientEmails: []string{"stranger@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if len(res.Chat.Participants) != 1 {
		t.Fatalf("participants = %v, want creator only", res.Chat.Participants)
	}
	if len(invites.created) != 1 || invites.created[0].Email != "stranger@example.com" {
		t.Fatalf("invitations = %v", invites.created)
	}
	if invites.created[0].ChatID != res.Chat.ID {
		t.Fatal("invitation not bound to created chat")
	}
}

func TestCreateChatGroupQuota(t *testing.T) {
	t.Run("charges one group chat unit", func(t *testing.T) {
		charger := &fakeCharger{remaining: 1}
		svc := newTestService(newFakeChats(), nil, nil, charger)
		if _, err := svc.CreateChat(context.Background(), CreateChatRequest{CreatorID: "alice", Type: domain.ChatGroup, Name: "team"}); err != nil {
			t.Fatalf("CreateChat: %v", err)
		}
		if charger.remaining != 0 {
			t.Fatal("group chat quota not charged")
		}
	})

	t.Run("denial is a hard failure", func(t *testing.T) {
		svc := newTestService(newFakeChats(), nil, nil, &fakeCharger{remaining: 0})
		_, err := svc.CreateChat(context.Background(), CreateChatRequest{CreatorID: "alice", Type: domain.ChatGroup, Name: "team"})
		if !errors.Is(err, domain.ErrQuotaExceeded) {
			t.Fatalf("error = %v, want ErrQuotaExceeded", err)
		}
	})
}

func TestCreateChatAIDropsRecipients(t *testing.T) {
	invites := &fakeInvites{}
	svc := newTestService(newFakeChats(), nil, invites, nil)

	res, err := svc.CreateChat(context.Background(), CreateChatRequest{
		CreatorID:       "alice",
		Type:            domain.ChatAI,
		RecipientEmails: []string{"bob@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if len(res.Chat.Participants) != 1 {
		t.Fatalf("ai chat participants = %v, want creator only", res.Chat.Participants)
	}
	if len(invites.created) != 0 {
		t.Fatal("ai chat issued invitations")
	}
}

func TestAccept(t *testing.T) {
	tests := []struct {
		name    string
		chat    *domain.Chat
		userID  string
		wantErr error
	}{
		{
			name:   "joins open private chat",
			chat:   &domain.Chat{ID: "c1", Type: domain.ChatPrivate, Participants: []string{"alice"}},
			userID: "bob",
		},
		{
			name:    "full private chat rejected",
			chat:    &domain.Chat{ID: "c2", Type: domain.ChatPrivate, Participants: []string{"alice", "bob"}},
			userID:  "carol",
			wantErr: domain.ErrChatFull,
		},
		{
			name:    "full group chat rejected",
			chat:    &domain.Chat{ID: "c5", Type: domain.ChatGroup, CreatedBy: "alice", Participants: []string{"alice", "b", "c", "d", "e"}},
			userID:  "frank",
			wantErr: domain.ErrChatFull,
		},
		{
			name:   "group chat below creator plan cap",
			chat:   &domain.Chat{ID: "c6", Type: domain.ChatGroup, CreatedBy: "alice", Participants: []string{"alice", "b", "c", "d"}},
			userID: "frank",
		},
		{
			name:    "ai chat rejected",
			chat:    &domain.Chat{ID: "c3", Type: domain.ChatAI, Participants: []string{"alice"}},
			userID:  "bob",
			wantErr: domain.ErrInviteNotAllowed,
		},
		{
			name:    "unauthenticated rejected",
			chat:    &domain.Chat{ID: "c4", Type: domain.ChatPrivate, Participants: []string{"alice"}},
			userID:  "",
			wantErr: domain.ErrUnauthorized,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chats := newFakeChats(tc.chat)
			svc := newTestService(chats, nil, nil, nil)
			before := len(tc.chat.Participants)

			chat, err := svc.Accept(context.Background(), tc.chat.ID, tc.userID)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("error = %v, want %v", err, tc.wantErr)
				}
				if len(tc.chat.Participants) != before {
					t.Fatal("participants mutated on rejected acceptance")
				}
				return
			}
			if err != nil {
				t.Fatalf("Accept: %v", err)
			}
			if !chat.HasParticipant(tc.userID) {
				t.Fatalf("participants = %v, missing %s", chat.Participants, tc.userID)
			}
		})
	}
}

func TestAcceptMissingChat(t *testing.T) {
	svc := newTestService(newFakeChats(), nil, nil, nil)
	if _, err := svc.Accept(context.Background(), "nope", "bob"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestAcceptIsIdempotent(t *testing.T) {
	chat := &domain.Chat{ID: "c1", Type: domain.ChatPrivate, Participants: []string{"alice"}}
	chats := newFakeChats(chat)
	svc := newTestService(chats, nil, nil, nil)

	first, err := svc.Accept(context.Background(), "c1", "bob")
	if err != nil {
		t.Fatalf("first Accept: %v", err)
	}
	// The store's union already added bob; the returned set must not hold
	// him twice even though the fake aliases the stored chat.
	if len(first.Participants) != 2 {
		t.Fatalf("participants after first accept = %v, want [alice bob]", first.Participants)
	}
	got, err := svc.Accept(context.Background(), "c1", "bob")
	if err != nil {
		t.Fatalf("second Accept: %v", err)
	}
	if len(got.Participants) != 2 {
		t.Fatalf("participants = %v, want no duplicates", got.Participants)
	}
	// The second acceptance short-circuits before touching the store.
	if len(chats.added) != 1 {
		t.Fatalf("AddParticipant called %d times, want 1", len(chats.added))
	}
}

func TestAcceptGroupCapFollowsCreatorPlan(t *testing.T) {
	chat := &domain.Chat{
		ID:           "c1",
		Type:         domain.ChatGroup,
		CreatedBy:    "alice",
		Participants: []string{"alice", "b", "c", "d", "e"},
	}
	users := &fakeUsers{byID: map[string]*domain.UserProfile{
		"alice": {ID: "alice", Plan: "pro"},
	}}
	svc := newTestService(newFakeChats(chat), users, nil, nil)

	got, err := svc.Accept(context.Background(), "c1", "frank")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !got.HasParticipant("frank") {
		t.Fatalf("participants = %v, missing frank", got.Participants)
	}
}

func TestAcceptanceStateMachine(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		a := NewAcceptance()
		for _, next := range []AcceptanceState{StateAccepting, StateRedirecting} {
			if err := a.To(next); err != nil {
				t.Fatalf("To(%s): %v", next, err)
			}
		}
		if a.State() != StateRedirecting {
			t.Fatalf("state = %s", a.State())
		}
	})

	t.Run("error paths", func(t *testing.T) {
		a := NewAcceptance()
		if err := a.To(StateError); err != nil {
			t.Fatalf("loading -> error: %v", err)
		}

		a = NewAcceptance()
		_ = a.To(StateAccepting)
		if err := a.To(StateError); err != nil {
			t.Fatalf("accepting -> error: %v", err)
		}
	})

	t.Run("illegal transitions", func(t *testing.T) {
		tests := []struct {
			name string
			run  func(*Acceptance)
			next AcceptanceState
		}{
			{"loading skips to redirecting", func(*Acceptance) {}, StateRedirecting},
			{"error is terminal", func(a *Acceptance) { _ = a.To(StateError) }, StateAccepting},
			{"redirecting is terminal", func(a *Acceptance) {
				_ = a.To(StateAccepting)
				_ = a.To(StateRedirecting)
			}, StateAccepting},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				a := NewAcceptance()
				tc.run(a)
				if err := a.To(tc.next); !errors.Is(err, domain.ErrInvalidTransition) {
					t.Fatalf("To(%s) = %v, want ErrInvalidTransition", tc.next, err)
				}
			})
		}
	})
}
