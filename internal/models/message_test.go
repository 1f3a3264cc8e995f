package models

import "testing"

func TestMessageShouldRemove(t *testing.T) {
	tests := []struct {
		name       string
		bySender   bool
		byReceiver bool
		want       bool
	}{
		{"neither deleted", false, false, false},
		{"sender only", true, false, false},
		{"receiver only", false, true, false},
		{"both deleted", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Message{DeletedBySender: tt.bySender, DeletedByReceiver: tt.byReceiver}
			if got := m.ShouldRemove(); got != tt.want {
				t.Errorf("ShouldRemove() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageVisibleTo(t *testing.T) {
	m := &Message{SenderID: 1, ReceiverID: 2}

	if !m.VisibleTo(1) || !m.VisibleTo(2) {
		t.Fatal("fresh message should be visible to both parties")
	}
	if m.VisibleTo(3) {
		t.Error("message should not be visible to a third party")
	}

	m.DeletedBySender = true
	if m.VisibleTo(1) {
		t.Error("sender-side delete should hide the message from the sender")
	}
	if !m.VisibleTo(2) {
		t.Error("sender-side delete must not hide the message from the receiver")
	}

	m.DeletedBySender = false
	m.DeletedByReceiver = true
	if m.VisibleTo(2) {
		t.Error("receiver-side delete should hide the message from the receiver")
	}
	if !m.VisibleTo(1) {
		t.Error("receiver-side delete must not hide the message from the sender")
	}
}
