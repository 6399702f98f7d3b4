package auth

import (
	"strings"

	"github.com/google/uuid"
)

// SubjectClaimKeys lists, in priority order, the claim names that have carried
// the account id across token generations. Supporting another issuer's shape is
// a matter of appending its key here.
var SubjectClaimKeys = []string{
	"sub",
	"user_id",
	"userId",
	"uid",
	"nameid",
	"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier",
}

// ResolveSubject returns the account id carried by claims. The first key in
// SubjectClaimKeys holding a non-empty string that parses as a non-nil UUID wins.
func ResolveSubject(claims Claims) (uuid.UUID, bool) {
	for _, key := range SubjectClaimKeys {
		raw, ok := claims[key].(string)
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			continue
		}
		return id, true
	}
	return uuid.Nil, false
}
