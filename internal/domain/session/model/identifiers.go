// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"regexp"
)

// SessionID is the caller-supplied key for one session, typically a phone
// number in E.164-ish form.
type SessionID string

var sessionIDRe = regexp.MustCompile(`^[a-zA-Z0-9+_-]{3,64}$`)

// IsSafeSessionID returns true if the ID is safe for filesystem paths and URLs.
func IsSafeSessionID(id string) bool {
	return sessionIDRe.MatchString(id)
}

// ParseSessionID validates and converts a raw identifier.
func ParseSessionID(raw string) (SessionID, error) {
	if !IsSafeSessionID(raw) {
		return "", fmt.Errorf("invalid session id %q", raw)
	}
	return SessionID(raw), nil
}

func (id SessionID) String() string { return string(id) }
