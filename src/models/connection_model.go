package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Connection struct {
	Id          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FromProfile primitive.ObjectID `json:"from_profile" bson:"from_profile"`
	ToProfile   primitive.ObjectID `json:"to_profile" bson:"to_profile"`
	Type        ConnectionType     `json:"type" bson:"type"`
	Status      ConnectionStatus   `json:"status" bson:"status"`
	Metadata    ConnectionMetadata `json:"metadata" bson:"metadata"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type ConnectionType string

const (
	ConnectionTypeInquiry ConnectionType = "inquiry"
	ConnectionTypeSave    ConnectionType = "save"
	ConnectionTypeDismiss ConnectionType = "dismiss"
)

type ConnectionStatus string

const (
	ConnectionStatusPending  ConnectionStatus = "pending"
	ConnectionStatusAccepted ConnectionStatus = "accepted"
	ConnectionStatusDeclined ConnectionStatus = "declined"
	ConnectionStatusExpired  ConnectionStatus = "expired"
	ConnectionStatusArchived ConnectionStatus = "archived"
)

// ConnectionMetadata holds the negotiation state nested inside a connection:
// the chat thread, the scheduled call and the transient negotiation fields.
// It is persisted as a single document and merged field by field on update.
type ConnectionMetadata struct {
	Thread          []ThreadMessage `json:"thread" bson:"thread"`
	ScheduledCall   *ScheduledCall  `json:"scheduled_call,omitempty" bson:"scheduled_call,omitempty"`
	NextStepRequest *string         `json:"next_step_request,omitempty" bson:"next_step_request,omitempty"`
	TimeProposal    *TimeProposal   `json:"time_proposal,omitempty" bson:"time_proposal,omitempty"`
}

// ThreadMessage is one entry in the negotiation log. Type is "system" for
// automated lifecycle events and empty for user-authored chat.
type ThreadMessage struct {
	FromProfile primitive.ObjectID `json:"from_profile" bson:"from_profile"`
	Text        string             `json:"text" bson:"text"`
	Type        string             `json:"type,omitempty" bson:"type,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

const ThreadMessageTypeSystem = "system"

type TimeProposal struct {
	ProposedBy primitive.ObjectID `json:"proposed_by" bson:"proposed_by"`
	ProposedAt time.Time          `json:"proposed_at" bson:"proposed_at"`
	Timezone   string             `json:"timezone,omitempty" bson:"timezone,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

type ScheduledCall struct {
	Status      CallStatus          `json:"status" bson:"status"`
	ScheduledAt time.Time           `json:"scheduled_at" bson:"scheduled_at"`
	Timezone    string              `json:"timezone,omitempty" bson:"timezone,omitempty"`
	ProposedBy  primitive.ObjectID  `json:"proposed_by" bson:"proposed_by"`
	CancelledBy *primitive.ObjectID `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
	CancelledAt *time.Time          `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
}

type CallStatus string

const (
	CallStatusProposed  CallStatus = "proposed"
	CallStatusConfirmed CallStatus = "confirmed"
	CallStatusCancelled CallStatus = "cancelled"
)

// Transition errors. Controllers map these onto HTTP status codes.
var (
	ErrNotParticipant   = errors.New("not a participant in this connection")
	ErrNotRecipient     = errors.New("only the recipient can respond to this request")
	ErrAlreadyResolved  = errors.New("this request has already been processed")
	ErrNotResolved      = errors.New("only resolved connections can be archived")
	ErrConnectionClosed = errors.New("this connection is no longer active")
	ErrNotInquiry       = errors.New("only inquiries carry negotiation state")
	ErrProposalExists   = errors.New("a call proposal is already in progress")
	ErrNoProposal       = errors.New("no proposed call time to confirm")
	ErrOwnProposal      = errors.New("a proposal must be confirmed by the other participant")
	ErrNoConfirmedCall  = errors.New("No confirmed call to cancel")
)

// IsParticipant reports whether the given profile is one of the two sides of
// the connection. Every mutating operation requires this.
func (conn *Connection) IsParticipant(profileID primitive.ObjectID) bool {
	return conn.FromProfile == profileID || conn.ToProfile == profileID
}

// OtherParticipant returns the counterparty of the given profile.
func (conn *Connection) OtherParticipant(profileID primitive.ObjectID) primitive.ObjectID {
	if conn.FromProfile == profileID {
		return conn.ToProfile
	}
	return conn.FromProfile
}

// IsTerminal reports whether the status allows no further resolution.
func (conn *Connection) IsTerminal() bool {
	return conn.Status != ConnectionStatusPending
}

// ExpiredByTTL reports whether a still-pending connection has outlived its
// time-to-live. Expiration is lazy: readers apply this predicate instead of
// relying on a background transition having already run.
func (conn *Connection) ExpiredByTTL(now time.Time, ttl time.Duration) bool {
	return conn.Status == ConnectionStatusPending && conn.CreatedAt.Add(ttl).Before(now)
}

// EffectiveStatus returns the status with lazy expiration applied.
func (conn *Connection) EffectiveStatus(now time.Time, ttl time.Duration) ConnectionStatus {
	if conn.ExpiredByTTL(now, ttl) {
		return ConnectionStatusExpired
	}
	return conn.Status
}

// isOpen reports whether new negotiation actions (messages, proposals,
// confirmations) are still allowed. Declined, expired and archived
// connections are closed; pending and accepted ones are open.
func (conn *Connection) isOpen(now time.Time, ttl time.Duration) bool {
	switch conn.EffectiveStatus(now, ttl) {
	case ConnectionStatusPending, ConnectionStatusAccepted:
		return true
	}
	return false
}

// Accept resolves a pending inquiry. Only the recipient may accept, and only
// while the request is still pending (a TTL-expired request counts as
// already resolved).
func (conn *Connection) Accept(acting primitive.ObjectID, now time.Time, ttl time.Duration) error {
	return conn.respond(acting, ConnectionStatusAccepted, now, ttl)
}

// Decline resolves a pending inquiry as declined. Same rules as Accept.
func (conn *Connection) Decline(acting primitive.ObjectID, now time.Time, ttl time.Duration) error {
	return conn.respond(acting, ConnectionStatusDeclined, now, ttl)
}

func (conn *Connection) respond(acting primitive.ObjectID, to ConnectionStatus, now time.Time, ttl time.Duration) error {
	if !conn.IsParticipant(acting) {
		return ErrNotParticipant
	}
	if acting != conn.ToProfile {
		return ErrNotRecipient
	}
	if conn.EffectiveStatus(now, ttl) != ConnectionStatusPending {
		return ErrAlreadyResolved
	}
	conn.Status = to
	conn.UpdatedAt = now
	return nil
}

// Archive moves a resolved connection out of the active lists. Either
// participant may archive; pending requests cannot be archived.
func (conn *Connection) Archive(acting primitive.ObjectID, now time.Time, ttl time.Duration) error {
	if !conn.IsParticipant(acting) {
		return ErrNotParticipant
	}
	switch conn.EffectiveStatus(now, ttl) {
	case ConnectionStatusAccepted, ConnectionStatusDeclined, ConnectionStatusExpired:
		conn.Status = ConnectionStatusArchived
		conn.UpdatedAt = now
		return nil
	case ConnectionStatusArchived:
		return ErrAlreadyResolved
	default:
		return ErrNotResolved
	}
}

// AppendMessage validates the author and appends a chat message to the end of
// the thread. The thread is append-only: existing entries are never touched.
// The new message is returned so callers can render it without re-reading.
func (conn *Connection) AppendMessage(from primitive.ObjectID, text string, now time.Time, ttl time.Duration) (ThreadMessage, error) {
	if !conn.IsParticipant(from) {
		return ThreadMessage{}, ErrNotParticipant
	}
	if conn.Type != ConnectionTypeInquiry {
		return ThreadMessage{}, ErrNotInquiry
	}
	if !conn.isOpen(now, ttl) {
		return ThreadMessage{}, ErrConnectionClosed
	}
	msg := ThreadMessage{
		FromProfile: from,
		Text:        text,
		CreatedAt:   now,
	}
	conn.Metadata.Thread = append(conn.Metadata.Thread, msg)
	conn.UpdatedAt = now
	return msg, nil
}

func (conn *Connection) appendSystemMessage(from primitive.ObjectID, text string, now time.Time) ThreadMessage {
	msg := ThreadMessage{
		FromProfile: from,
		Text:        text,
		Type:        ThreadMessageTypeSystem,
		CreatedAt:   now,
	}
	conn.Metadata.Thread = append(conn.Metadata.Thread, msg)
	return msg
}

// ProposeTime records a call-time proposal by either participant. At most one
// proposal may be live at a time: an existing time_proposal, or a scheduled
// call that is proposed or confirmed, blocks a new one.
func (conn *Connection) ProposeTime(acting primitive.ObjectID, at time.Time, timezone string, now time.Time, ttl time.Duration) error {
	if !conn.IsParticipant(acting) {
		return ErrNotParticipant
	}
	if conn.Type != ConnectionTypeInquiry {
		return ErrNotInquiry
	}
	if !conn.isOpen(now, ttl) {
		return ErrConnectionClosed
	}
	if conn.Metadata.TimeProposal != nil {
		return ErrProposalExists
	}
	if call := conn.Metadata.ScheduledCall; call != nil &&
		(call.Status == CallStatusProposed || call.Status == CallStatusConfirmed) {
		return ErrProposalExists
	}
	conn.Metadata.TimeProposal = &TimeProposal{
		ProposedBy: acting,
		ProposedAt: at,
		Timezone:   timezone,
		CreatedAt:  now,
	}
	conn.UpdatedAt = now
	return nil
}

// ConfirmTime turns the live proposal into a confirmed scheduled call. Only
// the counterparty of the proposer may confirm. The transient proposal is
// cleared once the call is confirmed.
func (conn *Connection) ConfirmTime(acting primitive.ObjectID, now time.Time, ttl time.Duration) error {
	if !conn.IsParticipant(acting) {
		return ErrNotParticipant
	}
	if !conn.isOpen(now, ttl) {
		return ErrConnectionClosed
	}
	proposal := conn.Metadata.TimeProposal
	if proposal == nil {
		return ErrNoProposal
	}
	if proposal.ProposedBy == acting {
		return ErrOwnProposal
	}
	conn.Metadata.ScheduledCall = &ScheduledCall{
		Status:      CallStatusConfirmed,
		ScheduledAt: proposal.ProposedAt,
		Timezone:    proposal.Timezone,
		ProposedBy:  proposal.ProposedBy,
	}
	conn.Metadata.TimeProposal = nil
	conn.UpdatedAt = now
	return nil
}

// CancelCall cancels a confirmed call. Either participant may cancel, even
// after the connection itself has been resolved or archived. Cancellation
// records who cancelled and when, clears the transient negotiation fields
// and appends a single system message to the thread. actingName is the
// display name used in that message; it falls back to "Someone" when the
// profile could not be resolved.
func (conn *Connection) CancelCall(acting primitive.ObjectID, actingName string, now time.Time) (ThreadMessage, error) {
	if !conn.IsParticipant(acting) {
		return ThreadMessage{}, ErrNotParticipant
	}
	call := conn.Metadata.ScheduledCall
	if call == nil || call.Status != CallStatusConfirmed {
		return ThreadMessage{}, ErrNoConfirmedCall
	}
	if actingName == "" {
		actingName = "Someone"
	}
	call.Status = CallStatusCancelled
	call.CancelledBy = &acting
	cancelledAt := now
	call.CancelledAt = &cancelledAt
	conn.Metadata.NextStepRequest = nil
	conn.Metadata.TimeProposal = nil
	conn.UpdatedAt = now
	msg := conn.appendSystemMessage(acting, fmt.Sprintf("%s cancelled the scheduled call", actingName), now)
	return msg, nil
}
