package vault

import (
	"fmt"
	"testing"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/cerberus-vault/cerberus/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenesis(t *testing.T) {
	genesis := func(id string, threshold int, owners ...cerberus.Address) cerberus.Options {
		raw := fmt.Sprintf(`{"id": %q, "threshold": %d, "owners": [`, id, threshold)
		for i, o := range owners {
			if i > 0 {
				raw += ","
			}
			raw += fmt.Sprintf("%q", o.String())
		}
		return cerberus.Options{optKey: []byte(raw + "]}")}
	}

	cases := map[string]struct {
		opts       cerberus.Options
		wantErr    *errors.Error
		wantOwners []cerberus.Address
	}{
		"no vault": {
			opts: cerberus.Options{},
		},
		"vault": {
			opts:       genesis("family", 2, alice, bob, carol),
			wantOwners: []cerberus.Address{alice, bob, carol},
		},
		"invalid id": {
			opts:    genesis("Family Savings", 2, alice, bob),
			wantErr: errors.ErrInput,
		},
		"threshold too high": {
			opts:    genesis("family", 3, alice, bob),
			wantErr: ErrAboveOwnerCount,
		},
		"invalid format": {
			opts:    cerberus.Options{optKey: []byte(`{"owners": 1}`)},
			wantErr: errors.ErrInput,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			err := Initializer{}.FromGenesis(tc.opts, db)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "got %+v", err)
				return
			}
			require.NoError(t, err)
			if tc.wantOwners == nil {
				return
			}

			gen, err := ReadGenesis(tc.opts)
			require.NoError(t, err)
			v, err := New(gen.ID, db)
			require.NoError(t, err)
			owners, err := v.Owners()
			require.NoError(t, err)
			assert.Equal(t, tc.wantOwners, owners)
		})
	}
}
