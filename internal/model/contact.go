package model

import (
	"time"

	"github.com/google/uuid"
)

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactRequest is the contact form payload.
type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Subject string `json:"subject" binding:"required,min=2,max=200"`
	Message string `json:"message" binding:"required,min=5,max=5000"`
}
