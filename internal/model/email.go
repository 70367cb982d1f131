package model

import "time"

// MaxEmailAddresses caps the number of addresses on one account.
const MaxEmailAddresses = 50

// EmailAddress is one notification recipient.
type EmailAddress struct {
	Email    string    `json:"email"`
	Verified bool      `json:"verified"`
	AddedAt  time.Time `json:"addedAt"`
}

// EmailSettings is the per-user email notification configuration.
type EmailSettings struct {
	Enabled        bool           `json:"enabled"`
	EmailAddresses []EmailAddress `json:"emailAddresses"`
}

// VerifiedAddresses returns the addresses usable for dispatch, in list order.
func (s EmailSettings) VerifiedAddresses() []string {
	out := make([]string, 0, len(s.EmailAddresses))
	for _, a := range s.EmailAddresses {
		if a.Verified {
			out = append(out, a.Email)
		}
	}
	return out
}

// Active reports whether email dispatch can happen at all.
func (s EmailSettings) Active() bool {
	return s.Enabled && len(s.VerifiedAddresses()) > 0
}

// Clone copies the address list.
func (s EmailSettings) Clone() EmailSettings {
	out := s
	out.EmailAddresses = append([]EmailAddress(nil), s.EmailAddresses...)
	return out
}
