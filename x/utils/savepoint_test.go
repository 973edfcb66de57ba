package utils

import (
	"context"
	"fmt"
	"testing"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/cerberustest"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/cerberus-vault/cerberus/store"
	"github.com/stretchr/testify/assert"
)

func TestSavepoint(t *testing.T) {
	// always write ok, ov before calling functions
	ok, ov := []byte("demo"), []byte("data")
	// some key, value to try to write
	nk, nv := []byte{1, 2, 3}, []byte{4, 5, 6}

	cases := map[string]struct {
		save    cerberus.Decorator
		handler cerberus.Handler
		isError bool

		written [][]byte
		missing [][]byte
	}{
		"savepoint deactivated, returns error, both written": {
			save:    NewSavepoint(),
			handler: &cerberustest.Handler{WriteKey: nk, WriteValue: nv, DeliverErr: errors.ErrState},
			isError: true,
			written: [][]byte{ok, nk},
		},
		"savepoint activated, returns error, one written": {
			save:    NewSavepoint().OnDeliver(),
			handler: &cerberustest.Handler{WriteKey: nk, WriteValue: nv, DeliverErr: errors.ErrState},
			isError: true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"no rollback when success returned": {
			save:    NewSavepoint().OnDeliver(),
			handler: &cerberustest.Handler{WriteKey: nk, WriteValue: nv},
			written: [][]byte{ok, nk},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv := store.MemStore()
			assert.NoError(t, kv.Set(ok, ov))

			_, err := tc.save.Deliver(ctx, kv, nil, tc.handler)
			if tc.isError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			for _, k := range tc.written {
				has, err := kv.Has(k)
				assert.NoError(t, err)
				assert.True(t, has, fmt.Sprintf("%x", k))
			}
			for _, k := range tc.missing {
				has, err := kv.Has(k)
				assert.NoError(t, err)
				assert.False(t, has, fmt.Sprintf("%x", k))
			}
		})
	}
}
