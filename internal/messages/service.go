package messages

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"PlacementHub/internal/apperr"
	"PlacementHub/internal/auth"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgMessageNotFound = "Message not found"
	msgNotAuthorized   = "Not authorized"
)

// AccountFinder resolves message participants.
type AccountFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*auth.Account, error)
}

type MessageService struct {
	messages Store
	accounts AccountFinder
	log      *zap.Logger
	now      func() time.Time
}

func NewMessageService(messages Store, accounts AccountFinder, log *zap.Logger) *MessageService {
	return &MessageService{messages: messages, accounts: accounts, log: log, now: time.Now}
}

func serverError(err error) error {
	return apperr.Wrap(apperr.ErrInternal, "Server error", err)
}

func (s *MessageService) Send(ctx context.Context, sender *auth.Account, req SendRequest) (*Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperr.Validation("Message content is required")
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return nil, apperr.Validation("Message content cannot exceed 2000 characters")
	}

	receiverID, err := primitive.ObjectIDFromHex(req.ReceiverID)
	if err != nil {
		return nil, apperr.NotFound("Receiver not found")
	}
	receiver, err := s.accounts.FindByID(ctx, receiverID)
	if err != nil {
		return nil, serverError(err)
	}
	if receiver == nil {
		return nil, apperr.NotFound("Receiver not found")
	}

	now := s.now()
	msg := &Message{
		ID:         primitive.NewObjectID(),
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, serverError(err)
	}
	return msg, nil
}

// Conversation returns the messages exchanged with another account, oldest
// first, then marks the ones addressed to the caller as read. The returned
// messages reflect their state before marking.
func (s *MessageService) Conversation(ctx context.Context, me *auth.Account, otherID string) ([]*Message, error) {
	other, err := primitive.ObjectIDFromHex(otherID)
	if err != nil {
		return nil, apperr.NotFound("User not found")
	}
	msgs, err := s.messages.Between(ctx, me.ID, other)
	if err != nil {
		return nil, serverError(err)
	}
	if _, err := s.messages.MarkReadFrom(ctx, other, me.ID, s.now()); err != nil {
		return nil, serverError(err)
	}
	return msgs, nil
}

// Conversations lists the caller's threads, most recent first.
func (s *MessageService) Conversations(ctx context.Context, me *auth.Account) ([]Conversation, error) {
	threads, err := s.messages.Threads(ctx, me.ID)
	if err != nil {
		return nil, serverError(err)
	}
	out := make([]Conversation, 0, len(threads))
	for _, t := range threads {
		conv := Conversation{LastMessage: t.LastMessage, UnreadCount: t.UnreadCount}
		partner, err := s.accounts.FindByID(ctx, t.PartnerID)
		if err != nil {
			return nil, serverError(err)
		}
		if partner != nil {
			summary := partner.Summary()
			conv.User = &summary
		}
		out = append(out, conv)
	}
	return out, nil
}

func (s *MessageService) UnreadCount(ctx context.Context, me *auth.Account) (int64, error) {
	n, err := s.messages.CountUnread(ctx, me.ID)
	if err != nil {
		return 0, serverError(err)
	}
	return n, nil
}

func (s *MessageService) load(ctx context.Context, id string) (*Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound(msgMessageNotFound)
	}
	msg, err := s.messages.FindByID(ctx, oid)
	if err != nil {
		return nil, serverError(err)
	}
	if msg == nil {
		return nil, apperr.NotFound(msgMessageNotFound)
	}
	return msg, nil
}

// MarkRead is allowed for the receiver only.
func (s *MessageService) MarkRead(ctx context.Context, me *auth.Account, id string) (*Message, error) {
	msg, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.ReceiverID != me.ID {
		return nil, apperr.NotOwner(msgNotAuthorized)
	}
	now := s.now()
	if err := s.messages.MarkRead(ctx, msg.ID, now); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			return nil, apperr.NotFound(msgMessageNotFound)
		}
		return nil, serverError(err)
	}
	msg.IsRead = true
	msg.ReadAt = &now
	msg.UpdatedAt = now
	return msg, nil
}

// Delete is allowed for the sender only.
func (s *MessageService) Delete(ctx context.Context, me *auth.Account, id string) error {
	msg, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if msg.SenderID != me.ID {
		return apperr.NotOwner(msgNotAuthorized)
	}
	if err := s.messages.Delete(ctx, msg.ID); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			return apperr.NotFound(msgMessageNotFound)
		}
		return serverError(err)
	}
	return nil
}
