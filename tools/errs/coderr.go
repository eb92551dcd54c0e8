package errs

import (
	goerrors "errors"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CodeError is the client-facing error shape: a stable numeric code plus
// a short message. Detail is optional context appended at the call site.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

// WithDetail clones so predefined errors stay immutable.
func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

// Is matches by code so wrapped and detailed copies compare equal.
func (e *CodeError) Is(target error) bool {
	var ce *CodeError
	if !goerrors.As(target, &ce) {
		return false
	}
	return e.Code == ce.Code
}

// Wrap attaches a stack to err (nil-safe).
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(err)
}

// WrapMsg attaches a stack and a message to err (nil-safe).
func WrapMsg(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
