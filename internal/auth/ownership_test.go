package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/homeride-be/internal/models"
)

func TestGuard_Authorize(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	linked := models.DriverProfile{ID: uuid.New(), AccountID: uuid.NullUUID{UUID: owner, Valid: true}}

	var buf bytes.Buffer
	guard := NewGuard(zerolog.New(&buf))
	ctx := context.Background()

	decision, err := guard.Authorize(ctx, owner, linked)
	require.NoError(t, err)
	require.Equal(t, DecisionAllow, decision)

	decision, err = guard.Authorize(ctx, stranger, linked)
	require.ErrorIs(t, err, ErrForbidden)
	require.Equal(t, DecisionDeny, decision)
	require.NotContains(t, buf.String(), owner.String())

	decision, err = guard.Authorize(ctx, uuid.Nil, linked)
	require.ErrorIs(t, err, ErrForbidden)
	require.Equal(t, DecisionDeny, decision)
}

func TestGuard_UnlinkedResourceIsAllowedAndAudited(t *testing.T) {
	var buf bytes.Buffer
	guard := NewGuard(zerolog.New(&buf))
	subject := uuid.New()
	legacy := models.CustomerProfile{ID: uuid.New()}

	decision, err := guard.Authorize(context.Background(), subject, legacy)
	require.NoError(t, err)
	require.Equal(t, DecisionAllowUnlinked, decision)

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	require.Equal(t, "warn", event["level"])
	require.Equal(t, true, event["audit"])
	require.Equal(t, "ownership.unlinked", event["event"])
	require.Equal(t, "customer", event["resource_kind"])
	require.Equal(t, legacy.ID.String(), event["resource_id"])
	require.Equal(t, subject.String(), event["subject"])
}

func TestGuard_PrefersRequestLogger(t *testing.T) {
	var guardBuf, reqBuf bytes.Buffer
	guard := NewGuard(zerolog.New(&guardBuf))
	reqLog := zerolog.New(&reqBuf).With().Str("req_id", "abc").Logger()
	ctx := reqLog.WithContext(context.Background())

	_, err := guard.Authorize(ctx, uuid.New(), models.DriverProfile{ID: uuid.New()})
	require.NoError(t, err)
	require.Empty(t, guardBuf.String())
	require.Contains(t, reqBuf.String(), `"req_id":"abc"`)
	require.Contains(t, reqBuf.String(), `"audit":true`)
}

func TestDecisionString(t *testing.T) {
	require.Equal(t, "allow", DecisionAllow.String())
	require.Equal(t, "allow_unlinked", DecisionAllowUnlinked.String())
	require.Equal(t, "deny", DecisionDeny.String())
}
