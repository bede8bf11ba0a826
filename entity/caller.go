package entity

import "time"

// Caller is the identity bound to a configured API key. Rows are created
// lazily on the first successful use of a key.
type Caller struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:200;not null"`
	APIKey    string `gorm:"column:api_key;size:255;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Caller) TableName() string { return "callers" }
