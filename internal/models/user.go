package models

import "time"

// User represents a seller account.
type User struct {
	ID        string    `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" bson:"name" gorm:"type:varchar(100);not null"`
	Email     string    `json:"email" bson:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string    `json:"-" bson:"password" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
