package validation

import (
	"strings"
	"time"
)

// ContactChannel enumerates the contact channels a visitor can validate.
// The set is closed and checked at the input boundary; an unknown channel is
// rejected instead of being aggregated into the wrong bucket.
type ContactChannel string

const (
	ChannelPhone    ContactChannel = "PHONE"
	ChannelEmail    ContactChannel = "EMAIL"
	ChannelWhatsApp ContactChannel = "WHATSAPP"
	// ChannelGeneral marks feedback about the business's contact info as a
	// whole. It contributes to the pooled trust level only, never to a
	// channel-specific bucket.
	ChannelGeneral ContactChannel = "GENERAL"
)

// Channels lists every valid contact channel.
var Channels = []ContactChannel{ChannelPhone, ChannelEmail, ChannelWhatsApp, ChannelGeneral}

// ParseChannel validates and normalizes a channel string from a request.
func ParseChannel(s string) (ContactChannel, bool) {
	c := ContactChannel(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case ChannelPhone, ChannelEmail, ChannelWhatsApp, ChannelGeneral:
		return c, true
	}
	return "", false
}

// MaxCommentLength bounds the free-text feedback attached to a validation.
const MaxCommentLength = 200

// NormalizeComment trims surrounding whitespace and enforces the length
// bound. Oversized comments are rejected rather than silently truncated so
// the author can resubmit shorter text.
func NormalizeComment(comment string) (string, error) {
	trimmed := strings.TrimSpace(comment)
	if len([]rune(trimmed)) > MaxCommentLength {
		return "", &ValidationError{Reason: "comment exceeds 200 characters"}
	}
	return trimmed, nil
}

// Record is a single community assertion that a business's contact channel
// does or does not work. Records are immutable once created and are never
// deleted; every derived statistic in the system can be recomputed from them.
type Record struct {
	ID uint `gorm:"primarykey" json:"id"`

	// BusinessID references the business being validated. The business
	// entity itself lives in the directory backend and is opaque here.
	BusinessID string `gorm:"index:idx_validations_business;not null;type:varchar(64)" json:"business_id"`

	// Channel is the contact channel the verdict applies to.
	Channel ContactChannel `gorm:"index:idx_validations_business;not null;type:varchar(16)" json:"channel"`

	// Verdict is true when the contact was found to work.
	Verdict bool `json:"verdict"`

	// Comment is optional qualitative feedback, never machine-interpreted.
	Comment string `gorm:"type:varchar(200)" json:"comment,omitempty"`

	// VoterIdentity is an authenticated user id or an anonymous fingerprint.
	VoterIdentity string `gorm:"index;not null;type:varchar(128)" json:"-"`

	// SubmittedAt is set once by the orchestrator and never changes.
	SubmittedAt time.Time `gorm:"index;not null" json:"submitted_at"`
}

// TableName keeps the table name aligned with the directory's schema.
func (Record) TableName() string {
	return "contact_validations"
}
