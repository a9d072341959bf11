// Package models defines the domain types for Folio.
package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ISOLayout is the createdAt format: UTC with millisecond precision.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// ContactRecord is one stored contact-form submission.
type ContactRecord struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// Submission is the payload accepted from the contact form.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate checks that name, email and message are present.
func (s Submission) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Email, validation.Required),
		validation.Field(&s.Message, validation.Required),
	)
}

// NewContactRecord stamps a submission with id and creation time.
// The id is the creation time in Unix milliseconds.
func NewContactRecord(sub Submission, now time.Time) ContactRecord {
	now = now.UTC()
	return ContactRecord{
		ID:        now.UnixMilli(),
		Name:      sub.Name,
		Email:     sub.Email,
		Message:   sub.Message,
		CreatedAt: now.Format(ISOLayout),
	}
}
