package errs

import (
	"errors"
	"net/http"
)

// Kind classifies a booking failure so handlers and clients can branch on it
// without matching on message text.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindRoomUnavailable
	KindTypeMismatch
	KindSlotTaken
	KindCapacityExceeded
	KindNotFound
	KindConflict
)

// Error carries a failure kind plus the human-readable message that remains
// the wire contract for clients.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// HTTPStatus maps the kind to the status code the API serves.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindRoomUnavailable, KindTypeMismatch, KindSlotTaken, KindCapacityExceeded:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func RoomUnavailable() *Error {
	return New(KindRoomUnavailable, "The room is not available.")
}

func TypeMismatch() *Error {
	return New(KindTypeMismatch, "The room type does not match the reservation type.")
}

func SlotTaken() *Error {
	return New(KindSlotTaken, "The room is already reserved for this time.")
}

func CapacityExceeded() *Error {
	return New(KindCapacityExceeded, "The room does not have enough available seats.")
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// KindOf unwraps err and reports its kind, or KindInternal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
