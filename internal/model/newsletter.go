package model

import "time"

// Subscriber is a newsletter mailing list entry.
type Subscriber struct {
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	SubscribedAt   time.Time  `json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
}

// SubscribeRequest is the newsletter signup payload.
type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Name  string `json:"name" binding:"omitempty,max=100"`
}

// UnsubscribeRequest removes an address from the mailing list.
type UnsubscribeRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}
