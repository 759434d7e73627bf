package model

import (
	"time"

	"github.com/google/uuid"
)

// Location is a venue where classes are held.
type Location struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocationDetail is a location with its upcoming classes.
type LocationDetail struct {
	Location
	UpcomingClasses []Class `json:"upcoming_classes"`
}

// LocationRequest is the admin payload for creating or updating a location.
type LocationRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=120"`
	Address  string `json:"address" binding:"required,max=200"`
	City     string `json:"city" binding:"required,max=100"`
	State    string `json:"state" binding:"required,len=2,alpha"`
	Zip      string `json:"zip" binding:"required,min=5,max=10"`
	ImageURL string `json:"image_url" binding:"omitempty,max=500"`
}
