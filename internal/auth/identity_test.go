package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestResolveSubject(t *testing.T) {
	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	other := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	nameidentifier := "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"

	tests := []struct {
		name   string
		claims Claims
		want   uuid.UUID
		ok     bool
	}{
		{name: "standard subject", claims: Claims{"sub": id.String()}, want: id, ok: true},
		{name: "legacy user_id", claims: Claims{"user_id": id.String()}, want: id, ok: true},
		{name: "legacy userId", claims: Claims{"userId": id.String()}, want: id, ok: true},
		{name: "legacy uid", claims: Claims{"uid": id.String()}, want: id, ok: true},
		{name: "legacy nameid", claims: Claims{"nameid": id.String()}, want: id, ok: true},
		{name: "xml nameidentifier", claims: Claims{nameidentifier: id.String()}, want: id, ok: true},
		{name: "sub wins over legacy keys", claims: Claims{"user_id": other.String(), "sub": id.String()}, want: id, ok: true},
		{name: "empty sub falls through", claims: Claims{"sub": "", "uid": id.String()}, want: id, ok: true},
		{name: "unparseable sub falls through", claims: Claims{"sub": "42", "user_id": id.String()}, want: id, ok: true},
		{name: "non-string sub falls through", claims: Claims{"sub": 42.0, "nameid": id.String()}, want: id, ok: true},
		{name: "nil uuid is ignored", claims: Claims{"sub": uuid.Nil.String()}, ok: false},
		{name: "no subject", claims: Claims{"email": "a@b.no"}, ok: false},
		{name: "empty claims", claims: Claims{}, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveSubject(tt.claims)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.want, got)
			} else {
				require.Equal(t, uuid.Nil, got)
			}
		})
	}
}
