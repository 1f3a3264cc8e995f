package models

import "time"

// Message is one direct message between two users. Each side owns an
// independent soft-delete flag; a row leaves the table only when both
// flags are set and the maintenance sweep picks it up.
type Message struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	SenderID   uint   `json:"sender_id" gorm:"not null;index:idx_messages_pair"`
	ReceiverID uint   `json:"receiver_id" gorm:"not null;index:idx_messages_pair"`
	Content    string `json:"content" gorm:"not null;type:text" validate:"required,min=1,max=5000"`

	Read   bool       `json:"read" gorm:"default:false;index"`
	ReadAt *time.Time `json:"read_at"`

	DeletedBySender   bool `json:"-" gorm:"default:false"`
	DeletedByReceiver bool `json:"-" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Sender   *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Receiver *User `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
}

func (Message) TableName() string {
	return "messages"
}

// VisibleTo reports whether the message still appears in userID's view
// of the conversation.
func (m *Message) VisibleTo(userID uint) bool {
	switch userID {
	case m.SenderID:
		return !m.DeletedBySender
	case m.ReceiverID:
		return !m.DeletedByReceiver
	default:
		return false
	}
}

// ShouldRemove reports whether both parties have deleted the message,
// making the row eligible for hard removal.
func (m *Message) ShouldRemove() bool {
	return m.DeletedBySender && m.DeletedByReceiver
}
