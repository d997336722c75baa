// Package envelope defines the uniform {code, message, data} response shape
// returned by every service operation exposed to clients.
package envelope

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Response is the envelope. Code 200 means success; any other code carries a
// human-readable message and no data.
type Response[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    *T     `json:"data,omitempty"`
}

func (r Response[T]) OK() bool { return r.Code == http.StatusOK }

// StatusCoder is implemented by typed service errors.
type StatusCoder interface {
	StatusCode() int
}

type publicMessager interface {
	PublicMessage() string
}

const genericFailure = "operation failed"

func OK[T any](data T, message string) Response[T] {
	return Response[T]{Code: http.StatusOK, Message: message, Data: &data}
}

// Empty is a success envelope with no data.
func Empty(message string) Response[struct{}] {
	return Response[struct{}]{Code: http.StatusOK, Message: message}
}

func Fail[T any](code int, message string) Response[T] {
	return Response[T]{Code: code, Message: message}
}

// FromError maps a typed service error to its code and message. Errors that
// do not declare a status become a 500 with a generic message.
func FromError[T any](err error) Response[T] {
	if err == nil {
		return Response[T]{Code: http.StatusOK}
	}
	var sc StatusCoder
	if !errors.As(err, &sc) {
		return Fail[T](http.StatusInternalServerError, genericFailure)
	}
	code := sc.StatusCode()
	if code == 0 {
		code = http.StatusInternalServerError
	}
	msg := err.Error()
	var pm publicMessager
	if errors.As(err, &pm) && pm.PublicMessage() != "" {
		msg = pm.PublicMessage()
	}
	return Fail[T](code, msg)
}

// Write sends r as JSON with the HTTP status mirroring r.Code.
func Write[T any](w http.ResponseWriter, r Response[T]) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.Code)
	_ = json.NewEncoder(w).Encode(r)
}
