package repository

import (
	"math"
	"math/big"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/policy"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pkg/errors"
)

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}

func optionalTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return timestamptz(*t)
}

func timeFrom(ts pgtype.Timestamptz) time.Time {
	return ts.Time.UTC()
}

func optionalTimeFrom(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time.UTC()
	return &t
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func textFrom(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func numeric(v *big.Int) pgtype.Numeric {
	if v == nil {
		return pgtype.Numeric{}
	}
	return pgtype.Numeric{Int: new(big.Int).Set(v), Exp: 0, Valid: true}
}

// bigIntFrom converts a NUMERIC(78,0) column. Fractional values are
// rejected as corrupt.
func bigIntFrom(n pgtype.Numeric) (*big.Int, error) {
	if !n.Valid {
		return nil, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return nil, errors.Wrap(policy.ErrCorruptRecord, "non-finite wei amount")
	}

	v := new(big.Int).Set(n.Int)
	switch {
	case n.Exp > 0:
		v.Mul(v, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil))
	case n.Exp < 0:
		div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-n.Exp)), nil)
		q, r := new(big.Int).QuoRem(v, div, new(big.Int))
		if r.Sign() != 0 {
			return nil, errors.Wrap(policy.ErrCorruptRecord, "fractional wei amount")
		}
		v = q
	}
	return v, nil
}

func int64From(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, errors.Wrapf(policy.ErrInvalidArgument, "value %d overflows int64", v)
	}
	return int64(v), nil
}

func uint64From(v int64) (uint64, error) {
	if v < 0 {
		return 0, errors.Wrapf(policy.ErrCorruptRecord, "negative counter %d", v)
	}
	return uint64(v), nil
}

// parseID maps malformed ids to notFound so that callers see the same
// error as for a well-formed unknown id.
func parseID(id string, notFound error) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, notFound
	}
	return parsed, nil
}

func optionalUUID(id *string) (pgtype.UUID, error) {
	if id == nil {
		return pgtype.UUID{}, nil
	}
	parsed, err := uuid.Parse(*id)
	if err != nil {
		return pgtype.UUID{}, errors.Wrapf(policy.ErrInvalidArgument, "invalid id %q", *id)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func optionalUUIDFrom(id pgtype.UUID) *string {
	if !id.Valid {
		return nil
	}
	s := uuid.UUID(id.Bytes).String()
	return &s
}

// address parses a stored hex address, rejecting malformed values.
func address(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Wrapf(policy.ErrCorruptRecord, "invalid stored address %q", s)
	}
	return common.HexToAddress(s), nil
}

func optionalAddress(t pgtype.Text) (*common.Address, error) {
	if !t.Valid {
		return nil, nil
	}
	a, err := address(t.String)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func optionalHash(t pgtype.Text) *common.Hash {
	if !t.Valid {
		return nil
	}
	h := common.HexToHash(t.String)
	return &h
}

func hashText(h *common.Hash) pgtype.Text {
	if h == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: h.Hex(), Valid: true}
}
