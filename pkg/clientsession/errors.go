package clientsession

import "errors"

var (
	// ErrDecodeFailed wraps every failure to turn a present token into a session.
	// The specific cause (envelope.ErrTokenFormat, envelope.ErrAuthentication,
	// envelope.ErrDecryption, ErrSchema) is joined to it.
	ErrDecodeFailed = errors.New("clientsession.decode_failed")

	// ErrSchema indicates the decrypted payload is not a valid session object
	ErrSchema = errors.New("clientsession.invalid_schema")

	// ErrEncodeFailed indicates the session could not be serialized or sealed
	ErrEncodeFailed = errors.New("clientsession.encode_failed")

	// ErrAttributeType indicates an attribute is present but has an incompatible type
	ErrAttributeType = errors.New("clientsession.attribute_type_mismatch")

	// ErrNoSession indicates no session was found in the request context
	ErrNoSession = errors.New("clientsession.not_found")
)
