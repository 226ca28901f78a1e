package service

import (
	"errors"
	"fmt"
)

// Kind partitions service failures so a UI can render distinct
// messages per failure class.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindStore      Kind = "store"
	KindUpload     Kind = "upload"
	KindDelete     Kind = "delete"
	KindInvalidURL Kind = "invalid_url"
	KindInternal   Kind = "internal"
)

// Error is the service-layer error envelope: a kind, a numeric code,
// and the underlying cause.
type Error struct {
	kind Kind
	code int
	err  error
}

func (e Error) Error() string {
	if e.err == nil {
		return string(e.kind)
	}
	return e.err.Error()
}

func (e Error) Unwrap() error {
	return e.err
}

// Kind returns the failure class.
func (e Error) Kind() Kind {
	return e.kind
}

// Code returns the numeric error code.
func (e Error) Code() int {
	return e.code
}

// KindOf classifies any error returned by this package. Errors from
// outside the taxonomy report KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var svcErr Error
	if errors.As(err, &svcErr) {
		return svcErr.kind
	}
	return KindInternal
}

// CodeOf returns the numeric code of a service error, or
// ErrCodeInternal for foreign errors.
func CodeOf(err error) int {
	if err == nil {
		return 0
	}
	var svcErr Error
	if errors.As(err, &svcErr) {
		return svcErr.code
	}
	return ErrCodeInternal
}

func makeError(kind Kind, code int, err error) error {
	if err == nil {
		err = fmt.Errorf("%s", kind)
	}

	var existing Error
	if errors.As(err, &existing) {
		if existing.kind != "" {
			return existing
		}
	}

	return Error{kind: kind, code: code, err: err}
}

func validationErr(err error, code int) error {
	return makeError(KindValidation, code, err)
}

func notFoundErr(err error, code int) error {
	return makeError(KindNotFound, code, err)
}

func storeErr(err error) error {
	return makeError(KindStore, ErrCodeStoreFailure, err)
}

func uploadErr(err error) error {
	return makeError(KindUpload, ErrCodeUploadFailure, err)
}

func deleteErr(err error) error {
	return makeError(KindDelete, ErrCodeDeleteFailure, err)
}

func invalidURLErr(err error) error {
	return makeError(KindInvalidURL, ErrCodeInvalidURL, err)
}

func internalErr(err error) error {
	return makeError(KindInternal, ErrCodeInternal, err)
}
