package cerberus

import (
	"testing"

	"github.com/cerberus-vault/cerberus/cerberustest/assert"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/gogo/protobuf/proto"
)

// DemoMsg is a message used only by the tests.
type DemoMsg struct {
	Num  int64  `protobuf:"varint,1,opt,name=num,proto3" json:"num,omitempty"`
	Text string `protobuf:"bytes,2,opt,name=text,proto3" json:"text,omitempty"`
}

func (m *DemoMsg) Reset()         { *m = DemoMsg{} }
func (m *DemoMsg) String() string { return proto.CompactTextString(m) }
func (*DemoMsg) ProtoMessage()    {}
func (DemoMsg) Path() string      { return "demo/msg" }

func (m DemoMsg) Validate() error {
	if m.Num < 0 {
		return errors.Wrap(errors.ErrInput, "negative num")
	}
	return nil
}

var _ Msg = (*DemoMsg)(nil)

type MsgMock struct {
	Msg
	// ID is used only to compare instances if the content is the same.
	ID  int64
	Err error
}

func (mock *MsgMock) Validate() error {
	return mock.Err
}

type TxMock struct {
	Msg Msg
}

func (tx *TxMock) GetMsg() (Msg, error) {
	return tx.Msg, nil
}

func TestLoadMsg(t *testing.T) {
	cases := map[string]struct {
		Tx      Tx
		Dest    interface{}
		WantMsg Msg
		WantErr *errors.Error
	}{
		"success, msgmock type message": {
			Tx:      &TxMock{Msg: &MsgMock{ID: 4219}},
			Dest:    &MsgMock{},
			WantMsg: &MsgMock{ID: 4219},
		},
		"success, demomsg type message": {
			Tx:      MsgTx{Msg: &DemoMsg{Num: 102, Text: "foobar"}},
			Dest:    &DemoMsg{},
			WantMsg: &DemoMsg{Num: 102, Text: "foobar"},
		},
		"transaction contains a nil message": {
			Tx:      &TxMock{Msg: nil},
			Dest:    &MsgMock{},
			WantErr: errors.ErrState,
		},
		"message tx without a message": {
			Tx:      MsgTx{},
			Dest:    &MsgMock{},
			WantErr: errors.ErrEmpty,
		},
		"invalid destination message, not a pointer": {
			Tx:      &TxMock{Msg: &DemoMsg{Num: 81421, Text: "foo"}},
			Dest:    MsgMock{},
			WantErr: errors.ErrType,
		},
		"invalid destination message, wrong message type": {
			Tx:      &TxMock{Msg: &DemoMsg{Num: 94151, Text: "foo"}},
			Dest:    &MsgMock{},
			WantErr: errors.ErrType,
		},
		"invalid destination message, nil interface": {
			Tx:      &TxMock{Msg: &MsgMock{ID: 45192}},
			Dest:    Msg(nil),
			WantErr: errors.ErrType,
		},
		"invalid destination message, unaddressable": {
			Tx:      &TxMock{Msg: &MsgMock{ID: 91841231}},
			Dest:    (*MsgMock)(nil),
			WantErr: errors.ErrType,
		},
		"invalid destination message type, random value": {
			Tx:      &TxMock{Msg: &MsgMock{ID: 2914}},
			Dest:    "foobar",
			WantErr: errors.ErrType,
		},
		"invalid message in transaction, failed validation": {
			Tx:      &TxMock{Msg: &MsgMock{ID: 5, Err: errors.ErrAmount}},
			Dest:    &MsgMock{},
			WantErr: errors.ErrAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := LoadMsg(tc.Tx, tc.Dest); !tc.WantErr.Is(err) {
				t.Fatalf("want %q error, got %q", tc.WantErr, err)
			}
			if tc.WantErr == nil {
				assert.Equal(t, tc.WantMsg, tc.Dest)
			}
		})
	}
}

func TestGetPath(t *testing.T) {
	assert.Equal(t, "demo/msg", GetPath(MsgTx{Msg: &DemoMsg{}}))
	assert.Equal(t, "(missing)", GetPath(MsgTx{}))
}

func TestRegisterAndUnpackMsg(t *testing.T) {
	RegisterMsg(func() Msg { return &DemoMsg{} })
	assert.Panics(t, func() {
		RegisterMsg(func() Msg { return &DemoMsg{} })
	})

	raw, err := proto.Marshal(&DemoMsg{Num: 7, Text: "seven"})
	assert.Nil(t, err)

	msg, err := UnpackMsg("demo/msg", raw)
	assert.Nil(t, err)
	assert.Equal(t, &DemoMsg{Num: 7, Text: "seven"}, msg)

	_, err = UnpackMsg("demo/unknown", raw)
	assert.IsErr(t, errors.ErrMsg, err)

	_, err = UnpackMsg("demo/msg", []byte{0xff, 0xff, 0xff})
	assert.IsErr(t, errors.ErrMsg, err)
}
