package custos

import (
	"reflect"

	"github.com/custodia-one/custos/errors"
)

// Msg is a request for the ledger to take an action (make a state
// transition). It is just the request and must be validated by the
// Handlers. All authentication information is in the wrapping Tx.
type Msg interface {
	Persistent

	// Validate performs a sanity check on the message content that
	// does not require access to any state.
	Validate() error

	// Path returns the routing path for this message, used by the
	// Router to locate the proper Handler.
	//
	// Must be alphanumeric [0-9A-Za-z_/\-]+
	Path() string
}

// Marshaller is anything that can be represented in binary.
//
// Marshal may validate the data before serializing it and unless you
// previously validated the struct, errors should be expected.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent supports Marshal and Unmarshal.
//
// This is separated from Marshaller, as Unmarshal almost always
// requires a pointer, and functions that only need to marshal bytes
// can use the Marshaller interface to access non-pointers.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Tx represents the data sent from the user to the chain. It includes
// the actual message plus the signer identities the host runtime
// authenticated for this instruction, and anything else needed to
// pass through middleware.
type Tx interface {
	Persistent

	// GetMsg returns the action we wish to communicate.
	GetMsg() (Msg, error)
}

// TxDecoder can parse bytes into a Tx.
type TxDecoder func(txBytes []byte) (Tx, error)

// GetPath returns the path of the message, or (missing) if no message.
func GetPath(tx Tx) string {
	msg, err := tx.GetMsg()
	if err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg extracts the message from the transaction, verifies it and
// stores the result in the destination. This operation can fail if
// the message does not implement the Msg interface, the extraction
// failed, the message verification failed or the destination type
// does not match the message type.
func LoadMsg(tx Tx, destination Msg) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get message")
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	if !setMsg(msg, destination) {
		return errors.Wrapf(errors.ErrType, "want %T, got %T", destination, msg)
	}
	return nil
}

// setMsg copies the content of the source message into the
// destination. Both must be pointers to the same message type.
func setMsg(src, dst Msg) bool {
	d := reflect.ValueOf(dst)
	if d.Kind() != reflect.Ptr {
		return false
	}
	s := reflect.ValueOf(src)
	if s.Kind() == reflect.Ptr {
		s = s.Elem()
	}
	if d.Elem().Type() != s.Type() {
		return false
	}
	d.Elem().Set(s)
	return true
}
