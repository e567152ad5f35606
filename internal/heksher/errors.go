package heksher

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/biocatchltd/hekshermgmt/pkg/errors"
)

// StatusError is a non-2xx response from the Heksher server. It carries the
// original status and body so the translation layer can decide what the
// caller is allowed to see.
type StatusError struct {
	Operation   string
	StatusCode  int
	ContentType string
	Body        []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("heksher %s returned status %d", e.Operation, e.StatusCode)
}

// passthroughStatuses are client-correctable conditions whose original status
// and body are safe to return verbatim. Everything else collapses to a
// generic internal error so Heksher's own diagnostics never leak.
var passthroughStatuses = map[int]bool{
	http.StatusBadRequest:          true,
	http.StatusNotFound:            true,
	http.StatusUnprocessableEntity: true,
}

func PassthroughStatus(code int) bool {
	return passthroughStatuses[code]
}

// AsPassthrough returns the StatusError when err should be forwarded to the
// caller with its original status and body.
func AsPassthrough(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) && PassthroughStatus(se.StatusCode) {
		return se, true
	}
	return nil, false
}

// TranslateError maps a Heksher client error to the error returned to the
// caller, for the non-passthrough path.
func TranslateError(err error) *pkgerrors.Error {
	if err == nil {
		return nil
	}

	var se *StatusError
	if errors.As(err, &se) {
		if PassthroughStatus(se.StatusCode) {
			sentinel := pkgerrors.ErrBadRequest
			switch se.StatusCode {
			case http.StatusNotFound:
				sentinel = pkgerrors.ErrNotFound
			case http.StatusUnprocessableEntity:
				sentinel = pkgerrors.ErrValidation
			}
			return sentinel.WithCause(se).WithDetail("upstream", string(se.Body))
		}
		return pkgerrors.ErrInternal.WithCause(se)
	}

	// Network-level failure, never reached the server.
	return pkgerrors.ErrInternal.WithCause(err)
}

// IsNotFound reports whether err is a 404 from Heksher.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
