package utils

import (
	"bytes"
	"context"
	"testing"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/cerberustest"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewFilter(log.NewTMLogger(&buf), log.AllowInfo())
	ctx := cerberus.WithLogger(context.Background(), logger)
	tx := &cerberustest.Tx{Msg: &cerberustest.Msg{RoutePath: "test/log"}}

	ok := &cerberustest.Handler{DeliverResult: cerberus.DeliverResult{Log: "all good"}}
	_, err := NewLogging().Deliver(ctx, nil, tx, ok)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "all good")
	assert.Contains(t, buf.String(), "test/log")

	// rejected requests are logged at debug level only
	buf.Reset()
	fail := &cerberustest.Handler{DeliverErr: errors.ErrUnauthorized}
	_, err = NewLogging().Deliver(ctx, nil, tx, fail)
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Empty(t, buf.String())
}
