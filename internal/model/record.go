package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// NameMaxLength bounds Record.Name, counted in characters.
const NameMaxLength = 100

// RecordSender identifies Record as the sender of lifecycle signals.
const RecordSender = "model.Record"

var (
	ErrNameRequired = errors.New("name is required")
	ErrNameTooLong  = errors.New("name exceeds 100 characters")
)

// Record is the demo entity: a named row with no relationships.
// Like the rest of this package it carries no persistence tags.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the name bound before the record is persisted.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(r.Name) > NameMaxLength {
		return ErrNameTooLong
	}
	return nil
}
