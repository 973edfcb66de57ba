package cerberustest

import "github.com/cerberus-vault/cerberus"

// Handler is a mock implementation of the cerberus.Handler interface.
//
// It returns DeliverResult and DeliverErr and counts the calls. Set
// WriteKey to have it write a value to the store on each call, which
// helps to test that state is committed or discarded.
type Handler struct {
	deliverCall int

	DeliverResult cerberus.DeliverResult
	DeliverErr    error

	WriteKey   []byte
	WriteValue []byte
}

var _ cerberus.Handler = (*Handler)(nil)

func (h *Handler) Deliver(ctx cerberus.Context, db cerberus.KVStore, tx cerberus.Tx) (*cerberus.DeliverResult, error) {
	h.deliverCall++
	if h.WriteKey != nil {
		if err := db.Set(h.WriteKey, h.WriteValue); err != nil {
			return nil, err
		}
	}
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CallCount() int {
	return h.deliverCall
}

// Decorator is a mock implementation of the cerberus.Decorator interface.
//
// Set DeliverErr to force an error response. If not set then the wrapped
// handler is called and its result returned. Each call is counted.
type Decorator struct {
	deliverCall int
	DeliverErr  error
}

var _ cerberus.Decorator = (*Decorator)(nil)

func (d *Decorator) Deliver(ctx cerberus.Context, db cerberus.KVStore, tx cerberus.Tx, next cerberus.Handler) (*cerberus.DeliverResult, error) {
	d.deliverCall++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CallCount() int {
	return d.deliverCall
}

// Decorate returns a handler that calls h through d.
func Decorate(h cerberus.Handler, d cerberus.Decorator) cerberus.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn cerberus.Handler
	dc cerberus.Decorator
}

func (d *decoratedHandler) Deliver(ctx cerberus.Context, db cerberus.KVStore, tx cerberus.Tx) (*cerberus.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
