package dcpipc

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is wrapped by errors for operations that a type
	// deliberately does not implement.
	ErrUnsupported = errors.New("not implemented")
	// ErrContract is wrapped by errors that indicate a programming or
	// configuration mistake: a handler that breaks its signature's
	// return contract, a double acknowledgement, an unknown message
	// on a strict call path, or an invalid signature declaration.
	ErrContract = errors.New("contract violation")
)

// DecodeError is the error returned when bytes cannot be decoded
// according to a type.
type DecodeError struct {
	// Type is the type being decoded.
	Type string
	// Offset is the offset into the buffer at which decoding failed.
	Offset int
	// Reason is an explanation of what went wrong.
	Reason error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("decoding %s at offset %#x: %s", e.Type, e.Offset, e.Reason)
}

func (e DecodeError) Unwrap() error {
	return e.Reason
}

// SizeMismatchError is the error returned when a raw buffer's length
// differs from the size its layout requires.
type SizeMismatchError struct {
	// Side is "in" for a request buffer, "out" for a reply buffer.
	Side string
	Want int
	Got  int
}

func (e SizeMismatchError) Error() string {
	return fmt.Sprintf("expected %#x bytes, got %#x bytes (%s)", e.Want, e.Got, e.Side)
}

// UnsupportedError is the error returned when encoding a type that
// can only be decoded.
type UnsupportedError struct {
	Type string
	Op   string
}

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("%s of %s: %s", e.Op, e.Type, ErrUnsupported)
}

func (e UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// ContractError is the error returned for a [ErrContract] violation.
type ContractError struct {
	// Method is the name of the method involved, if any.
	Method string
	// Reason is an explanation of the violation.
	Reason string
}

func (e ContractError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("%s: %s", ErrContract, e.Reason)
	}
	return fmt.Sprintf("%s in %s: %s", ErrContract, e.Method, e.Reason)
}

func (e ContractError) Unwrap() error {
	return ErrContract
}

func contractErr(method string, reason string, args ...any) error {
	return ContractError{method, fmt.Sprintf(reason, args...)}
}

// EncodeError is the error returned when a value cannot be encoded
// as a type.
type EncodeError struct {
	// Field is the name of the field being encoded.
	Field string
	// Type is the type being encoded.
	Type string
	// Reason is an explanation of what went wrong.
	Reason error
}

func (e EncodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("encoding %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("encoding %s as %s: %s", e.Field, e.Type, e.Reason)
}

func (e EncodeError) Unwrap() error {
	return e.Reason
}
