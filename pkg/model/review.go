package model

import "time"

type Reply struct {
	ID        string    `json:"id" bson:"id"`
	Author    string    `json:"author" bson:"author" validate:"required,min=2,max=100"`
	Role      string    `json:"role" bson:"role" validate:"required,oneof=admin employee"`
	Content   string    `json:"content" bson:"content" validate:"required,min=1,max=1000"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type Review struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	AppointmentID string    `json:"appointment_id" bson:"appointment_id" validate:"required,mongodb"`
	ServiceID     string    `json:"service_id" bson:"service_id" validate:"required,mongodb"`
	EmployeeID    string    `json:"employee_id" bson:"employee_id" validate:"required,mongodb"`
	CustomerName  string    `json:"customer_name" bson:"customer_name" validate:"required,min=2,max=100"`
	Rating        int       `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Comment       string    `json:"comment" bson:"comment" validate:"omitempty,max=1000"`
	Replies       []Reply   `json:"replies,omitempty" bson:"replies"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// ReviewStats is the dashboard aggregate over a review set.
type ReviewStats struct {
	TotalReviews   int64       `json:"total_reviews"`
	AverageRating  float64     `json:"average_rating"`
	RatingCounts   map[int]int `json:"rating_counts"`
	PendingReplies int64       `json:"pending_replies"`
}
