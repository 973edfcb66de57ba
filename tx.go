package cerberus

import (
	"reflect"
	"regexp"
	"sync"

	"github.com/cerberus-vault/cerberus/errors"
	"github.com/gogo/protobuf/proto"
)

// Msg is a request for the vault to take an action (make a state
// transition). It is just the request, and must be validated by the
// Handlers. All authentication information is in the wrapping Tx.
type Msg interface {
	proto.Message

	// Return the message path.
	// This is used by the Router to locate the proper Handler.
	// Msg should be created alongside the Handler that corresponds to them.
	//
	// Must be alphanumeric [0-9A-Za-z_\-/]+
	Path() string

	// Validate performs only the stateless checks of the message.
	Validate() error
}

// Tx represent the data sent from the user to the vault.
// It includes the actual message, along with information needed
// to authenticate the sender (cryptographic signatures),
// and anything else needed to pass through middleware.
type Tx interface {
	// GetMsg returns the action we wish to communicate
	GetMsg() (Msg, error)
}

// GetPath returns the path of the message, or (missing) if no message
func GetPath(tx Tx) string {
	msg, err := tx.GetMsg()
	if err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg extracts the message represented by given transaction into given
// destination. Before returning message validation method is called.
func LoadMsg(tx Tx, destination interface{}) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get transaction message")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrState, "nil message")
	}

	// Big thanks to Andrew Gerrand for inspiration:
	// https://groups.google.com/d/msg/golang-nuts/Iwe6ZKs5aL0/4YXSh4Y1AAAJ
	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr || dest.IsNil() {
		return errors.Wrap(errors.ErrType, "destination must be a non nil pointer")
	}
	src := reflect.ValueOf(msg)
	if src.Kind() == reflect.Ptr {
		src = src.Elem()
	}
	if !src.Type().AssignableTo(dest.Elem().Type()) {
		return errors.Wrapf(errors.ErrType, "expected %T, got %T", destination, msg)
	}
	dest.Elem().Set(src)

	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	return nil
}

// MsgTx is the simplest Tx: a message without any authentication data.
// It is used when the caller was authenticated by other means before the
// request reached the vault.
type MsgTx struct {
	Msg Msg
}

var _ Tx = MsgTx{}

func (tx MsgTx) GetMsg() (Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "message")
	}
	return tx.Msg, nil
}

var isMsgPath = regexp.MustCompile(`^[a-zA-Z0-9_\-]+/[a-zA-Z0-9_\-]+$`).MatchString

var (
	msgsMu sync.RWMutex
	msgs   = make(map[string]func() Msg)
)

// RegisterMsg makes a message type known so that it can be decoded from
// its path and serialized form. Extensions call it from their init
// function. Registering the same path twice panics.
func RegisterMsg(factory func() Msg) {
	path := factory().Path()
	if !isMsgPath(path) {
		panic("invalid message path: " + path)
	}
	msgsMu.Lock()
	defer msgsMu.Unlock()
	if _, ok := msgs[path]; ok {
		panic("message registered twice: " + path)
	}
	msgs[path] = factory
}

// UnpackMsg decodes a message previously serialized with proto.Marshal,
// using the factory registered for given path.
func UnpackMsg(path string, raw []byte) (Msg, error) {
	msgsMu.RLock()
	factory, ok := msgs[path]
	msgsMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(errors.ErrMsg, "unknown message path %q", path)
	}
	msg := factory()
	if err := proto.Unmarshal(raw, msg); err != nil {
		return nil, errors.Wrapf(errors.ErrMsg, "cannot decode %q: %s", path, err)
	}
	return msg, nil
}
