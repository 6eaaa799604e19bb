package entities

import (
	"time"
)

// Customer represents one customer in the source population
type Customer struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	SignupDate time.Time `json:"signup_date" db:"signup_date"`
	AgeGroup   string    `json:"age_group" db:"age_group"`
	Region     string    `json:"region" db:"region"`
}

// Product represents a purchasable product
type Product struct {
	ID       string  `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Category string  `json:"category" db:"category"`
	Price    float64 `json:"price" db:"price"`
}

// Transaction represents a single purchase event
type Transaction struct {
	ID         string    `json:"id" db:"id"`
	CustomerID string    `json:"customer_id" db:"customer_id"`
	ProductID  string    `json:"product_id" db:"product_id"`
	Date       time.Time `json:"date" db:"date"`
	Quantity   int       `json:"quantity" db:"quantity"`
	Amount     float64   `json:"amount" db:"amount"`
}

// InteractionKind enumerates the tracked engagement channels
type InteractionKind string

const (
	InteractionEmailOpen      InteractionKind = "email_open"
	InteractionSiteVisit      InteractionKind = "site_visit"
	InteractionSupportTicket  InteractionKind = "support_ticket"
	InteractionSurveyResponse InteractionKind = "survey_response"
)

// Interaction represents a single engagement event
type Interaction struct {
	ID              string          `json:"id" db:"id"`
	CustomerID      string          `json:"customer_id" db:"customer_id"`
	Kind            InteractionKind `json:"kind" db:"kind"`
	Date            time.Time       `json:"date" db:"date"`
	DurationSeconds float64         `json:"duration_seconds" db:"duration_seconds"`
}
