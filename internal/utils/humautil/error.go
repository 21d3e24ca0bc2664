// Package humautil holds the huma settings shared by the sync server and the desktop peer.
package humautil

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

// Body is the error payload of every failed request.
type Body struct {
	status  int
	Message string `json:"error" doc:"Human readable error"`
}

func (b *Body) Error() string {
	return b.Message
}

func (b *Body) GetStatus() int {
	return b.status
}

func New(status int, msg string, errs ...error) huma.StatusError {
	// Schema violations are plain bad requests for sync clients.
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}

	details := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			details = append(details, err.Error())
		}
	}
	if len(details) > 0 {
		msg = msg + ": " + strings.Join(details, "; ")
	}
	return &Body{status: status, Message: msg}
}

var once sync.Once

// Install swaps huma.NewError for New. Safe to call more than once.
func Install() {
	once.Do(func() {
		huma.NewError = New
	})
}

// Status returns the HTTP status carried by err, or 500.
func Status(err error) int {
	var se huma.StatusError
	if errors.As(err, &se) {
		return se.GetStatus()
	}
	return http.StatusInternalServerError
}
