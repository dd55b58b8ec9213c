package models

import "golang.org/x/crypto/bcrypt"

// User is the identity record (table users). Authentication lives in
// package accounts; the catalog only cares about ID and IsSeller.
type User struct {
	Base
	Username     string  `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email        *string `gorm:"uniqueIndex;size:254" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	IsSeller     bool    `gorm:"not null;default:false" json:"is_seller"`
}

// HashPassword turns a plain password into a bcrypt hash.
func HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPassword reports whether pw matches hash.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
