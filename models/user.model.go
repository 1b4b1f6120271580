package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User represents a library member in the system
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	FullName          string             `bson:"full_name" json:"full_name"`
	Email             string             `bson:"email" json:"email"`
	Password          string             `bson:"password,omitempty" json:"-"`
	Phone             string             `bson:"phone" json:"phone"`
	Address           string             `bson:"address" json:"address"`
	Role              string             `bson:"role" json:"role"` // "student", "teacher" or "admin"
	Avatar            string             `bson:"avatar" json:"avatar"`
	Class             string             `bson:"class" json:"class"`
	IsVerified        bool               `bson:"is_verified" json:"is_verified"`
	VerificationToken string             `bson:"verification_token" json:"-"`
}

// Contact builds the contact snapshot stored on a cart at creation time.
func (u *User) Contact() ContactInfo {
	return ContactInfo{
		FullName: u.FullName,
		Phone:    u.Phone,
		Address:  u.Address,
	}
}
