package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	family   = primitive.NewObjectID()
	provider = primitive.NewObjectID()
	stranger = primitive.NewObjectID()

	testTTL = 30 * 24 * time.Hour
)

func newInquiry(t *testing.T, createdAt time.Time) *Connection {
	t.Helper()
	return &Connection{
		Id:          primitive.NewObjectID(),
		FromProfile: family,
		ToProfile:   provider,
		Type:        ConnectionTypeInquiry,
		Status:      ConnectionStatusPending,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestAcceptDecline(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		acting  primitive.ObjectID
		status  ConnectionStatus
		age     time.Duration
		wantErr error
		want    ConnectionStatus
	}{
		{"recipient accepts pending", provider, ConnectionStatusPending, time.Hour, nil, ConnectionStatusAccepted},
		{"sender cannot accept", family, ConnectionStatusPending, time.Hour, ErrNotRecipient, ConnectionStatusPending},
		{"stranger cannot accept", stranger, ConnectionStatusPending, time.Hour, ErrNotParticipant, ConnectionStatusPending},
		{"already accepted", provider, ConnectionStatusAccepted, time.Hour, ErrAlreadyResolved, ConnectionStatusAccepted},
		{"already declined", provider, ConnectionStatusDeclined, time.Hour, ErrAlreadyResolved, ConnectionStatusDeclined},
		{"expired by ttl", provider, ConnectionStatusPending, testTTL + time.Hour, ErrAlreadyResolved, ConnectionStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newInquiry(t, now.Add(-tt.age))
			conn.Status = tt.status

			err := conn.Accept(tt.acting, now, testTTL)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Accept() error = %v, want %v", err, tt.wantErr)
			}
			if conn.Status != tt.want {
				t.Errorf("status = %q, want %q", conn.Status, tt.want)
			}
		})
	}

	t.Run("recipient declines pending", func(t *testing.T) {
		conn := newInquiry(t, now.Add(-time.Hour))
		if err := conn.Decline(provider, now, testTTL); err != nil {
			t.Fatalf("Decline() error = %v", err)
		}
		if conn.Status != ConnectionStatusDeclined {
			t.Errorf("status = %q, want declined", conn.Status)
		}
	})
}

func TestArchive(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		acting  primitive.ObjectID
		status  ConnectionStatus
		wantErr error
	}{
		{"sender archives accepted", family, ConnectionStatusAccepted, nil},
		{"recipient archives declined", provider, ConnectionStatusDeclined, nil},
		{"archive expired", family, ConnectionStatusExpired, nil},
		{"pending cannot be archived", family, ConnectionStatusPending, ErrNotResolved},
		{"double archive", family, ConnectionStatusArchived, ErrAlreadyResolved},
		{"stranger cannot archive", stranger, ConnectionStatusAccepted, ErrNotParticipant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newInquiry(t, now.Add(-time.Hour))
			conn.Status = tt.status

			err := conn.Archive(tt.acting, now, testTTL)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Archive() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && conn.Status != ConnectionStatusArchived {
				t.Errorf("status = %q, want archived", conn.Status)
			}
		})
	}

	t.Run("lazily expired pending can be archived", func(t *testing.T) {
		conn := newInquiry(t, now.Add(-testTTL-time.Hour))
		if err := conn.Archive(provider, now, testTTL); err != nil {
			t.Fatalf("Archive() error = %v", err)
		}
	})
}

func TestExpiration(t *testing.T) {
	now := time.Now()

	conn := newInquiry(t, now.Add(-testTTL+time.Minute))
	if conn.ExpiredByTTL(now, testTTL) {
		t.Error("connection inside TTL reported as expired")
	}
	if got := conn.EffectiveStatus(now, testTTL); got != ConnectionStatusPending {
		t.Errorf("EffectiveStatus() = %q, want pending", got)
	}

	conn = newInquiry(t, now.Add(-testTTL-time.Minute))
	if !conn.ExpiredByTTL(now, testTTL) {
		t.Error("connection past TTL not reported as expired")
	}
	if got := conn.EffectiveStatus(now, testTTL); got != ConnectionStatusExpired {
		t.Errorf("EffectiveStatus() = %q, want expired", got)
	}
	if conn.Status != ConnectionStatusPending {
		t.Errorf("EffectiveStatus mutated stored status: %q", conn.Status)
	}

	// TTL only applies to pending connections.
	conn.Status = ConnectionStatusAccepted
	if conn.ExpiredByTTL(now, testTTL) {
		t.Error("accepted connection reported as TTL-expired")
	}
}

func TestAppendMessage(t *testing.T) {
	now := time.Now()

	t.Run("append keeps existing entries", func(t *testing.T) {
		conn := newInquiry(t, now.Add(-time.Hour))
		first, err := conn.AppendMessage(family, "Hi, my mother needs help with daily care", now, testTTL)
		if err != nil {
			t.Fatalf("AppendMessage() error = %v", err)
		}
		second, err := conn.AppendMessage(provider, "Happy to help, tell me more", now.Add(time.Minute), testTTL)
		if err != nil {
			t.Fatalf("AppendMessage() error = %v", err)
		}

		if len(conn.Metadata.Thread) != 2 {
			t.Fatalf("thread length = %d, want 2", len(conn.Metadata.Thread))
		}
		if conn.Metadata.Thread[0] != first || conn.Metadata.Thread[1] != second {
			t.Error("thread order does not match append order")
		}
		if first.Type == ThreadMessageTypeSystem {
			t.Error("user message flagged as system")
		}
	})

	tests := []struct {
		name    string
		mutate  func(*Connection)
		from    primitive.ObjectID
		wantErr error
	}{
		{"stranger cannot post", func(c *Connection) {}, stranger, ErrNotParticipant},
		{"save carries no thread", func(c *Connection) { c.Type = ConnectionTypeSave }, family, ErrNotInquiry},
		{"declined connection is closed", func(c *Connection) { c.Status = ConnectionStatusDeclined }, family, ErrConnectionClosed},
		{"archived connection is closed", func(c *Connection) { c.Status = ConnectionStatusArchived }, family, ErrConnectionClosed},
		{"ttl-expired connection is closed", func(c *Connection) { c.CreatedAt = now.Add(-testTTL - time.Hour) }, family, ErrConnectionClosed},
		{"accepted connection stays open", func(c *Connection) { c.Status = ConnectionStatusAccepted }, family, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newInquiry(t, now.Add(-time.Hour))
			tt.mutate(conn)
			_, err := conn.AppendMessage(tt.from, "hello", now, testTTL)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AppendMessage() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestProposeTime(t *testing.T) {
	now := time.Now()
	callAt := now.Add(48 * time.Hour)

	t.Run("proposal recorded", func(t *testing.T) {
		conn := newInquiry(t, now.Add(-time.Hour))
		conn.Status = ConnectionStatusAccepted
		if err := conn.ProposeTime(provider, callAt, "America/Chicago", now, testTTL); err != nil {
			t.Fatalf("ProposeTime() error = %v", err)
		}
		p := conn.Metadata.TimeProposal
		if p == nil {
			t.Fatal("time proposal not set")
		}
		if p.ProposedBy != provider || !p.ProposedAt.Equal(callAt) || p.Timezone != "America/Chicago" {
			t.Errorf("unexpected proposal: %+v", p)
		}
	})

	t.Run("second proposal rejected while one is live", func(t *testing.T) {
		conn := newInquiry(t, now.Add(-time.Hour))
		if err := conn.ProposeTime(family, callAt, "", now, testTTL); err != nil {
			t.Fatalf("first ProposeTime() error = %v", err)
		}
		if err := conn.ProposeTime(provider, callAt.Add(time.Hour), "", now, testTTL); !errors.Is(err, ErrProposalExists) {
			t.Errorf("second ProposeTime() error = %v, want %v", err, ErrProposalExists)
		}
	})

	t.Run("confirmed call blocks new proposal", func(t *testing.T) {
		conn := newInquiry(t, now.Add(-time.Hour))
		conn.Metadata.ScheduledCall = &ScheduledCall{Status: CallStatusConfirmed, ScheduledAt: callAt, ProposedBy: family}
		if err := conn.ProposeTime(provider, callAt, "", now, testTTL); !errors.Is(err, ErrProposalExists) {
			t.Errorf("ProposeTime() error = %v, want %v", err, ErrProposalExists)
		}
	})

	t.Run("cancelled call allows new proposal", func(t *testing.T) {
		conn := newInquiry(t, now.Add(-time.Hour))
		conn.Metadata.ScheduledCall = &ScheduledCall{Status: CallStatusCancelled, ScheduledAt: callAt, ProposedBy: family}
		if err := conn.ProposeTime(provider, callAt, "", now, testTTL); err != nil {
			t.Errorf("ProposeTime() error = %v", err)
		}
	})

	t.Run("closed connection rejects proposal", func(t *testing.T) {
		conn := newInquiry(t, now.Add(-time.Hour))
		conn.Status = ConnectionStatusDeclined
		if err := conn.ProposeTime(family, callAt, "", now, testTTL); !errors.Is(err, ErrConnectionClosed) {
			t.Errorf("ProposeTime() error = %v, want %v", err, ErrConnectionClosed)
		}
	})
}

func TestConfirmTime(t *testing.T) {
	now := time.Now()
	callAt := now.Add(48 * time.Hour)

	t.Run("counterparty confirms", func(t *testing.T) {
		conn := newInquiry(t, now.Add(-time.Hour))
		conn.Status = ConnectionStatusAccepted
		if err := conn.ProposeTime(family, callAt, "US/Pacific", now, testTTL); err != nil {
			t.Fatalf("ProposeTime() error = %v", err)
		}
		if err := conn.ConfirmTime(provider, now, testTTL); err != nil {
			t.Fatalf("ConfirmTime() error = %v", err)
		}
		call := conn.Metadata.ScheduledCall
		if call == nil {
			t.Fatal("scheduled call not set")
		}
		if call.Status != CallStatusConfirmed {
			t.Errorf("call status = %q, want confirmed", call.Status)
		}
		if !call.ScheduledAt.Equal(callAt) || call.Timezone != "US/Pacific" || call.ProposedBy != family {
			t.Errorf("call does not carry proposal details: %+v", call)
		}
		if conn.Metadata.TimeProposal != nil {
			t.Error("proposal not cleared after confirmation")
		}
	})

	t.Run("proposer cannot confirm own proposal", func(t *testing.T) {
		conn := newInquiry(t, now.Add(-time.Hour))
		if err := conn.ProposeTime(family, callAt, "", now, testTTL); err != nil {
			t.Fatalf("ProposeTime() error = %v", err)
		}
		if err := conn.ConfirmTime(family, now, testTTL); !errors.Is(err, ErrOwnProposal) {
			t.Errorf("ConfirmTime() error = %v, want %v", err, ErrOwnProposal)
		}
	})

	t.Run("nothing to confirm", func(t *testing.T) {
		conn := newInquiry(t, now.Add(-time.Hour))
		if err := conn.ConfirmTime(provider, now, testTTL); !errors.Is(err, ErrNoProposal) {
			t.Errorf("ConfirmTime() error = %v, want %v", err, ErrNoProposal)
		}
	})
}

func TestCancelCall(t *testing.T) {
	now := time.Now()
	callAt := now.Add(48 * time.Hour)

	confirmed := func(status ConnectionStatus) *Connection {
		conn := newInquiry(t, now.Add(-time.Hour))
		conn.Status = status
		conn.Metadata.ScheduledCall = &ScheduledCall{
			Status:      CallStatusConfirmed,
			ScheduledAt: callAt,
			ProposedBy:  family,
		}
		return conn
	}

	t.Run("cancellation effects", func(t *testing.T) {
		conn := confirmed(ConnectionStatusAccepted)
		next := "video_call"
		conn.Metadata.NextStepRequest = &next
		conn.Metadata.TimeProposal = &TimeProposal{ProposedBy: family, ProposedAt: callAt}

		msg, err := conn.CancelCall(provider, "Dana Miles", now)
		if err != nil {
			t.Fatalf("CancelCall() error = %v", err)
		}

		call := conn.Metadata.ScheduledCall
		if call.Status != CallStatusCancelled {
			t.Errorf("call status = %q, want cancelled", call.Status)
		}
		if call.CancelledBy == nil || *call.CancelledBy != provider {
			t.Error("cancelled_by not recorded")
		}
		if call.CancelledAt == nil || !call.CancelledAt.Equal(now) {
			t.Error("cancelled_at not recorded")
		}
		if conn.Metadata.NextStepRequest != nil || conn.Metadata.TimeProposal != nil {
			t.Error("transient negotiation fields not cleared")
		}
		if len(conn.Metadata.Thread) != 1 {
			t.Fatalf("thread length = %d, want exactly one system message", len(conn.Metadata.Thread))
		}
		if msg.Type != ThreadMessageTypeSystem {
			t.Errorf("message type = %q, want system", msg.Type)
		}
		if !strings.Contains(msg.Text, "Dana Miles cancelled the scheduled call") {
			t.Errorf("unexpected message text: %q", msg.Text)
		}
	})

	t.Run("display name falls back to Someone", func(t *testing.T) {
		conn := confirmed(ConnectionStatusAccepted)
		msg, err := conn.CancelCall(family, "", now)
		if err != nil {
			t.Fatalf("CancelCall() error = %v", err)
		}
		if !strings.Contains(msg.Text, "Someone cancelled the scheduled call") {
			t.Errorf("unexpected message text: %q", msg.Text)
		}
	})

	t.Run("cancel allowed after the connection is resolved", func(t *testing.T) {
		for _, status := range []ConnectionStatus{ConnectionStatusDeclined, ConnectionStatusExpired, ConnectionStatusArchived} {
			conn := confirmed(status)
			if _, err := conn.CancelCall(family, "Pat", now); err != nil {
				t.Errorf("CancelCall() on %s connection error = %v", status, err)
			}
		}
	})

	tests := []struct {
		name   string
		mutate func(*Connection)
		acting primitive.ObjectID
		want   error
	}{
		{"no call at all", func(c *Connection) { c.Metadata.ScheduledCall = nil }, family, ErrNoConfirmedCall},
		{"proposed call not cancellable", func(c *Connection) { c.Metadata.ScheduledCall.Status = CallStatusProposed }, family, ErrNoConfirmedCall},
		{"already cancelled", func(c *Connection) { c.Metadata.ScheduledCall.Status = CallStatusCancelled }, family, ErrNoConfirmedCall},
		{"stranger cannot cancel", func(c *Connection) {}, stranger, ErrNotParticipant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := confirmed(ConnectionStatusAccepted)
			tt.mutate(conn)
			if _, err := conn.CancelCall(tt.acting, "Pat", now); !errors.Is(err, tt.want) {
				t.Errorf("CancelCall() error = %v, want %v", err, tt.want)
			}
			if len(conn.Metadata.Thread) != 0 {
				t.Error("failed cancellation appended a thread message")
			}
		})
	}

	t.Run("exact precondition message", func(t *testing.T) {
		conn := confirmed(ConnectionStatusAccepted)
		conn.Metadata.ScheduledCall = nil
		_, err := conn.CancelCall(family, "Pat", now)
		if err == nil || err.Error() != "No confirmed call to cancel" {
			t.Errorf("error message = %v, want %q", err, "No confirmed call to cancel")
		}
	})
}

func TestOtherParticipant(t *testing.T) {
	conn := newInquiry(t, time.Now())
	if got := conn.OtherParticipant(family); got != provider {
		t.Errorf("OtherParticipant(family) = %v, want provider", got)
	}
	if got := conn.OtherParticipant(provider); got != family {
		t.Errorf("OtherParticipant(provider) = %v, want family", got)
	}
}
