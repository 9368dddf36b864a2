package model

import "time"

// User — владелец удостоверений, идентифицируется по ID из JWT.
type User struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Login    string `gorm:"not null;uniqueIndex" bson:"login"`
	Password string `gorm:"not null" bson:"password"` // bcrypt-хеш

	CreatedAt time.Time `gorm:"autoCreateTime" bson:"created_at"`
}
