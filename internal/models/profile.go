package models

import "strings"

// Email entry types used by the identity provider.
const (
	EmailTypePrimary   = "Primary"
	EmailTypeSecondary = "Secondary"
)

type EmailEntry struct {
	Type  string `json:"Type"`
	Value string `json:"Value"`
}

// RemoteProfile is the identity provider's canonical account record. The UID is
// the join key to the local customer's login field.
type RemoteProfile struct {
	ID            string       `json:"ID"`
	UID           string       `json:"Uid"`
	FirstName     string       `json:"FirstName"`
	LastName      string       `json:"LastName"`
	Email         []EmailEntry `json:"Email"`
	EmailVerified bool         `json:"EmailVerified"`
}

// PrimaryEmail returns the Primary-tagged email entry, or the first entry when
// none is tagged Primary. Profiles without a Primary tag are observed in
// practice and must be tolerated. Returns false when the list is empty.
func (p *RemoteProfile) PrimaryEmail() (string, bool) {
	if len(p.Email) == 0 {
		return "", false
	}
	for _, entry := range p.Email {
		if strings.EqualFold(entry.Type, EmailTypePrimary) {
			return entry.Value, true
		}
	}
	return p.Email[0].Value, true
}
