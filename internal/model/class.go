package model

import (
	"time"

	"github.com/google/uuid"
)

// Class is a scheduled play session at a location.
type Class struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Capacity        int       `json:"capacity"`
	Enrolled        int       `json:"enrolled"`
	PriceCents      int       `json:"price_cents"`
	LocationID      uuid.UUID `json:"location_id"`
	LocationName    string    `json:"location_name,omitempty"`
	AgeGroup        string    `json:"age_group"`
	Skills          []string  `json:"skills"`
	ImageURL        string    `json:"image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SpotsLeft is the number of seats still bookable; never negative.
func (c *Class) SpotsLeft() int {
	if c.Enrolled >= c.Capacity {
		return 0
	}
	return c.Capacity - c.Enrolled
}

// HasStarted reports whether the class start time is at or before now.
func (c *Class) HasStarted(now time.Time) bool {
	return !now.Before(c.StartsAt)
}

// ClassView is the public representation of a class.
type ClassView struct {
	Class
	SpotsLeft int `json:"spots_left"`
}

// NewClassView decorates a class with derived fields.
func NewClassView(c Class) ClassView {
	return ClassView{Class: c, SpotsLeft: c.SpotsLeft()}
}

// ClassFilter narrows class listings. Zero values mean "no filter".
type ClassFilter struct {
	LocationID   *uuid.UUID
	AgeGroup     string
	From         *time.Time
	To           *time.Time
	UpcomingOnly bool
	Now          time.Time
}

// ClassQuery is the query string accepted by the public class listing.
type ClassQuery struct {
	LocationID   string `form:"location_id" binding:"omitempty,uuid"`
	AgeGroup     string `form:"age_group" binding:"omitempty,age_group"`
	From         string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To           string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	UpcomingOnly bool   `form:"upcoming_only"`
}

// ClassRequest is the admin payload for creating or updating a class.
// Date and Time are wall-clock values in the configured class timezone.
type ClassRequest struct {
	Title           string   `json:"title" binding:"required,min=2,max=150"`
	Description     string   `json:"description" binding:"required,max=5000"`
	Date            string   `json:"date" binding:"required,datetime=2006-01-02"`
	Time            string   `json:"time" binding:"required,datetime=15:04"`
	DurationMinutes int      `json:"duration_minutes" binding:"required,min=15,max=480"`
	Capacity        int      `json:"capacity" binding:"required,min=1,max=200"`
	PriceCents      int      `json:"price_cents" binding:"min=0,max=1000000"`
	LocationID      string   `json:"location_id" binding:"required,uuid"`
	AgeGroup        string   `json:"age_group" binding:"required,age_group"`
	Skills          []string `json:"skills" binding:"omitempty,max=20,dive,min=1,max=50"`
	ImageURL        string   `json:"image_url" binding:"omitempty,max=500"`
}

// Availability is the enrollment snapshot broadcast when seats change.
type Availability struct {
	ClassID   uuid.UUID `json:"class_id"`
	Enrolled  int       `json:"enrolled"`
	Capacity  int       `json:"capacity"`
	SpotsLeft int       `json:"spots_left"`
}

// NewAvailability builds an availability snapshot with a non-negative SpotsLeft.
func NewAvailability(classID uuid.UUID, enrolled, capacity int) Availability {
	left := capacity - enrolled
	if left < 0 {
		left = 0
	}
	return Availability{ClassID: classID, Enrolled: enrolled, Capacity: capacity, SpotsLeft: left}
}
