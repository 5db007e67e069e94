package models

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID indicates an identifier is not a 24 character hex object id.
var ErrInvalidID = errors.New("invalid identifier")

// NewID generates a fresh entity identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ParseID validates raw and returns its canonical (lower case hex) form.
func ParseID(raw string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidID
	}
	return oid.Hex(), nil
}

// SameID reports whether a and b identify the same entity. Invalid ids never match.
func SameID(a, b string) bool {
	ca, err := ParseID(a)
	if err != nil {
		return false
	}
	cb, err := ParseID(b)
	if err != nil {
		return false
	}
	return ca == cb
}
