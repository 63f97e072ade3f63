package model

import "time"

const (
	AlertTypeInfo    = "info"
	AlertTypeWarning = "warning"
	AlertTypeUrgent  = "urgent"
	AlertTypeSuccess = "success"

	AlertPriorityLow    = "low"
	AlertPriorityNormal = "normal"
	AlertPriorityHigh   = "high"

	AudienceAll      = "all"
	DefaultCreatedBy = "Administrator"
)

type Alert struct {
	ID             string     `json:"id" bson:"_id"`
	Title          string     `json:"title" bson:"title"`
	Message        string     `json:"message" bson:"message"`
	Type           string     `json:"type" bson:"type"`
	Priority       string     `json:"priority" bson:"priority"`
	TargetAudience string     `json:"target_audience" bson:"target_audience"`
	CreatedBy      string     `json:"created_by" bson:"created_by"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
	ExpiresAt      *time.Time `json:"expires_at" bson:"expires_at"`
}

type AlertCreate struct {
	Title          string `json:"title" validate:"required,notblank,max=200"`
	Message        string `json:"message" validate:"required,notblank,max=2000"`
	Type           string `json:"type" validate:"omitempty,oneof=info warning urgent success"`
	Priority       string `json:"priority" validate:"omitempty,oneof=low normal high"`
	TargetAudience string `json:"target_audience" validate:"omitempty,max=100"`
	CreatedBy      string `json:"created_by" validate:"omitempty,max=100"`
	ExpiresAt      string `json:"expires_at,omitempty"`
}

// AlertUpdate only overwrites the fields that are present.
type AlertUpdate struct {
	Title          *string `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Message        *string `json:"message,omitempty" validate:"omitempty,notblank,max=2000"`
	Type           *string `json:"type,omitempty" validate:"omitempty,oneof=info warning urgent success"`
	Priority       *string `json:"priority,omitempty" validate:"omitempty,oneof=low normal high"`
	TargetAudience *string `json:"target_audience,omitempty" validate:"omitempty,notblank,max=100"`
	ExpiresAt      *string `json:"expires_at,omitempty"`
}
