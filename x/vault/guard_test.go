package vault

import (
	"context"
	"testing"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/cerberustest"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	r, db := newRegistry(t, 2, alice, bob)

	cases := map[string]struct {
		signers []cerberus.Address
		wantErr *errors.Error
	}{
		"owner":                  {signers: []cerberus.Address{alice}},
		"owner is main signer":   {signers: []cerberus.Address{bob, eve}},
		"no caller":              {wantErr: ErrUnauthorized},
		"not an owner":           {signers: []cerberus.Address{eve}, wantErr: ErrUnauthorized},
		"owner is second signer": {signers: []cerberus.Address{eve, alice}, wantErr: ErrUnauthorized},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			auth := &cerberustest.Auth{Signers: tc.signers}
			h := &cerberustest.Handler{}
			g := NewGuard(auth, r)

			var seen cerberus.Address
			inner := cerberustest.Decorate(h, decoratorFunc(func(ctx cerberus.Context, db cerberus.KVStore, tx cerberus.Tx, next cerberus.Handler) (*cerberus.DeliverResult, error) {
				seen, _ = CurrentOwner(ctx)
				return next.Deliver(ctx, db, tx)
			}))

			_, err := g.Deliver(context.Background(), db, nil, inner)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "got %+v", err)
				assert.Contains(t, err.Error(), "OwnerManager: only owner can perform this action")
				assert.Equal(t, 0, h.CallCount())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, h.CallCount())
			assert.Equal(t, tc.signers[0], seen)
		})
	}
}

func TestGuardReadsCurrentOwners(t *testing.T) {
	r, db := newRegistry(t, 2, alice, bob, carol)
	g := NewGuard(&cerberustest.Auth{Signer: carol}, r)

	owner, err := g.RequireOwner(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, carol, owner)

	require.NoError(t, r.RemoveOwner(db, carol))
	_, err = g.RequireOwner(context.Background(), db)
	assert.True(t, ErrUnauthorized.Is(err))
}

func TestUnguardedHandler(t *testing.T) {
	_, err := currentOwner(context.Background())
	assert.True(t, errors.ErrHuman.Is(err))
}

type decoratorFunc func(cerberus.Context, cerberus.KVStore, cerberus.Tx, cerberus.Handler) (*cerberus.DeliverResult, error)

func (fn decoratorFunc) Deliver(ctx cerberus.Context, db cerberus.KVStore, tx cerberus.Tx, next cerberus.Handler) (*cerberus.DeliverResult, error) {
	return fn(ctx, db, tx, next)
}
