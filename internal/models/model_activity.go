package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityRecord is one logged user action or error in a tenant database.
// EventDetails is free-form; read it through activity.Normalize.
type ActivityRecord struct {
	ID             string            `gorm:"column:id;primary_key" json:"id"`
	OrganizationID string            `gorm:"column:organization_id;index:idx_activity_org_ts,priority:1" json:"organization_id"`
	ProfileID      string            `gorm:"column:profile_id;index" json:"profile_id"`
	EventType      string            `gorm:"column:event_type" json:"event_type"`
	EventDetails   datatypes.JSONMap `gorm:"column:event_details;type:jsonb" json:"event_details"`
	Timestamp      time.Time         `gorm:"column:timestamp;index:idx_activity_org_ts,priority:2" json:"timestamp"`
}

func (ActivityRecord) TableName() string {
	return "activity_logs"
}

// Profile annotates profile ids with display data.
type Profile struct {
	ID       string  `gorm:"column:id;primary_key" json:"id"`
	FullName *string `gorm:"column:full_name" json:"full_name"`
	Email    *string `gorm:"column:email" json:"email"`
}

func (Profile) TableName() string {
	return "profiles"
}
