package messages

import (
	"time"

	"PlacementHub/internal/auth"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxContentLength = 2000

// Message is a direct message between two accounts. Delivery is by polling.
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SenderID   primitive.ObjectID `bson:"sender_id" json:"senderId"`
	ReceiverID primitive.ObjectID `bson:"receiver_id" json:"receiverId"`
	Content    string             `bson:"content" json:"content"`
	IsRead     bool               `bson:"is_read" json:"isRead"`
	ReadAt     *time.Time         `bson:"read_at,omitempty" json:"readAt,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Thread is one row of the conversation list as stored: the partner, the
// latest message exchanged and how many of the partner's messages are unread.
type Thread struct {
	PartnerID   primitive.ObjectID `bson:"_id"`
	LastMessage Message            `bson:"last_message"`
	UnreadCount int64              `bson:"unread_count"`
}

// Conversation is a Thread resolved for the client.
type Conversation struct {
	User        *auth.UserSummary `json:"user"`
	LastMessage Message           `json:"lastMessage"`
	UnreadCount int64             `json:"unreadCount"`
}

type SendRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Content    string `json:"content"`
}
