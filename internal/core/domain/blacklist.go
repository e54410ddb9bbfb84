package domain

import "time"

// BlacklistType is the identity attribute a block rule matches.
type BlacklistType string

const (
	BlacklistIP       BlacklistType = "ip"
	BlacklistUsername BlacklistType = "username"
	BlacklistEmail    BlacklistType = "email"
	BlacklistHwid     BlacklistType = "hwid"
)

// Valid reports whether t is a known blacklist type.
func (t BlacklistType) Valid() bool {
	switch t {
	case BlacklistIP, BlacklistUsername, BlacklistEmail, BlacklistHwid:
		return true
	}
	return false
}

// BlacklistEntry is a block rule. An empty ApplicationID makes it global.
type BlacklistEntry struct {
	ID            string        `json:"id"`
	ApplicationID string        `json:"application_id,omitempty"`
	Type          BlacklistType `json:"type"`
	Value         string        `json:"value"`
	Reason        string        `json:"reason,omitempty"`
	Active        bool          `json:"active"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Identity is one attribute of an incoming request checked against the blacklist.
type Identity struct {
	Type  BlacklistType
	Value string
}
