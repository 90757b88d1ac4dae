package session

import (
	"context"

	"github.com/cyphera/cyphera-wallet-policy/internal/policy/outcome"
	"github.com/ethereum/go-ethereum/common"
)

// GrantRepository persists session grants. Implementations return copies
// and reject records that fail CheckIntegrity.
type GrantRepository interface {
	CreateGrant(ctx context.Context, g *Grant) error
	GetGrant(ctx context.Context, id string) (*Grant, error)
	UpdateGrant(ctx context.Context, g *Grant) error
	ListGrantsByIssuer(ctx context.Context, issuer common.Address) ([]*Grant, error)
}

// ActivityRepository persists the session activity log.
type ActivityRepository interface {
	CreateActivity(ctx context.Context, a *Activity) error
	GetActivity(ctx context.Context, id string) (*Activity, error)
	GetActivityByHandle(ctx context.Context, handle outcome.Handle) (*Activity, error)
	UpdateActivity(ctx context.Context, a *Activity) error
	ListActivityByGrant(ctx context.Context, grantID string) ([]*Activity, error)
}
