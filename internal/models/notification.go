package models

import "time"

type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	RuleID    string     `gorm:"not null" json:"rule_id"`
	Type      string     `gorm:"not null" json:"type"`
	Priority  int        `gorm:"not null" json:"priority"`
	Title     string     `gorm:"not null" json:"title"`
	Message   string     `gorm:"not null" json:"message"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

type NotificationCooldown struct {
	UserID      uint      `gorm:"primaryKey;autoIncrement:false"`
	RuleID      string    `gorm:"primaryKey"`
	LastFiredAt time.Time `gorm:"not null"`
}
