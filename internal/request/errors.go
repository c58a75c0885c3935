package request

import (
	"errors"
	"fmt"

	"github.com/loykin/apifetch/internal/common"
)

// Kind classifies why a call failed. Every failed call carries exactly one Kind.
type Kind int

const (
	// KindInvalidURL: the descriptor cannot be resolved to a request target.
	KindInvalidURL Kind = iota + 1
	// KindEncoding: params cannot be encoded per the chosen encoding.
	KindEncoding
	// KindTransport: connection, TLS, timeout or other transport failure.
	KindTransport
	// KindEmptyBody: the transport succeeded without a payload.
	KindEmptyBody
	// KindDecode: the payload does not match the expected shape.
	KindDecode
	// KindCancelled: the caller cancelled before the call completed.
	KindCancelled
	// KindUnexpectedStatus: the status code is outside Descriptor.AcceptStatus.
	KindUnexpectedStatus
)

var (
	ErrInvalidURL       = errors.New("invalid url")
	ErrEncoding         = errors.New("encoding error")
	ErrTransport        = errors.New("transport error")
	ErrEmptyBody        = errors.New("empty response body")
	ErrDecode           = errors.New("decode error")
	ErrCancelled        = errors.New("cancelled")
	ErrUnexpectedStatus = errors.New("unexpected status")
)

func (k Kind) String() string {
	switch k {
	case 0:
		return "none"
	case KindInvalidURL:
		return "invalid_url"
	case KindEncoding:
		return "encoding_error"
	case KindTransport:
		return "transport_error"
	case KindEmptyBody:
		return "empty_body"
	case KindDecode:
		return "decode_error"
	case KindCancelled:
		return "cancelled"
	case KindUnexpectedStatus:
		return "unexpected_status"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidURL:
		return ErrInvalidURL
	case KindEncoding:
		return ErrEncoding
	case KindTransport:
		return ErrTransport
	case KindEmptyBody:
		return ErrEmptyBody
	case KindDecode:
		return ErrDecode
	case KindCancelled:
		return ErrCancelled
	case KindUnexpectedStatus:
		return ErrUnexpectedStatus
	default:
		return nil
	}
}

// Error is the failure outcome of a call. Both the kind sentinel and the
// cause are reachable through errors.Is and errors.As.
type Error struct {
	Kind   Kind
	Op     string
	Method string
	URL    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.sentinel()
	text := "request failed"
	if msg != nil {
		text = msg.Error()
	}
	prefix := e.Op
	if e.Method != "" || e.URL != "" {
		prefix = fmt.Sprintf("%s %s %s", e.Op, e.Method, common.GetGlobalMasker().MaskURL(e.URL))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, text, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, text)
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the Kind of err, or 0 when err is not a request error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// StatusError is the cause of a KindUnexpectedStatus failure.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d not in accepted set", e.Code)
}
