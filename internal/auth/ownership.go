package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrForbidden is returned when the subject does not own the resource.
var ErrForbidden = errors.New("forbidden")

// OwnedResource is anything carrying an optional ownership link to an account.
type OwnedResource interface {
	ResourceKind() string
	ResourceID() uuid.UUID
	OwnerID() uuid.NullUUID
}

// Decision is the outcome of an ownership check.
type Decision int

const (
	DecisionDeny Decision = iota
	DecisionAllow
	// DecisionAllowUnlinked permits a mutation of a resource that predates
	// ownership links. Every such decision is logged as an audit event.
	DecisionAllowUnlinked
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionAllowUnlinked:
		return "allow_unlinked"
	default:
		return "deny"
	}
}

// Guard decides whether an authenticated subject may mutate a resource.
type Guard struct {
	log zerolog.Logger
}

func NewGuard(log zerolog.Logger) *Guard {
	return &Guard{log: log.With().Str("component", "ownership_guard").Logger()}
}

// Authorize compares the resource owner with subject. Mismatch denies with
// ErrForbidden, a match allows, and a missing owner allows with a warn-level
// audit event.
func (g *Guard) Authorize(ctx context.Context, subject uuid.UUID, res OwnedResource) (Decision, error) {
	log := g.logger(ctx)

	if subject == uuid.Nil {
		return DecisionDeny, ErrForbidden
	}

	owner := res.OwnerID()
	if !owner.Valid {
		log.Warn().
			Bool("audit", true).
			Str("event", "ownership.unlinked").
			Str("resource_kind", res.ResourceKind()).
			Str("resource_id", res.ResourceID().String()).
			Str("subject", subject.String()).
			Msg("mutation of unlinked resource allowed")
		return DecisionAllowUnlinked, nil
	}

	if owner.UUID != subject {
		log.Info().
			Str("event", "ownership.denied").
			Str("resource_kind", res.ResourceKind()).
			Str("resource_id", res.ResourceID().String()).
			Str("subject", subject.String()).
			Msg("ownership mismatch")
		return DecisionDeny, ErrForbidden
	}
	return DecisionAllow, nil
}

// logger prefers the request-scoped logger so audit lines carry the request id.
func (g *Guard) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &g.log
}
