package syncerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status    int
		kind      Kind
		retryable bool
	}{
		{http.StatusBadRequest, Validation, false},
		{http.StatusUnprocessableEntity, Validation, false},
		{http.StatusNotFound, NotFound, false},
		{http.StatusUnauthorized, Auth, false},
		{http.StatusForbidden, Auth, false},
		{http.StatusInternalServerError, Transient, true},
		{http.StatusBadGateway, Transient, true},
		{http.StatusTooManyRequests, Transient, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := FromStatus("push", tt.status, "")
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.retryable, err.Retryable())
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}
}

func TestFromTransport(t *testing.T) {
	err := FromTransport("probe", fmt.Errorf("dial: %w", timeoutErr{}))
	assert.True(t, err.Retryable())
	assert.Equal(t, "timeout", err.Reason)

	err = FromTransport("probe", errors.New("connection refused"))
	assert.True(t, err.Retryable())

	err = FromTransport("probe", context.Canceled)
	assert.True(t, err.Retryable())
	assert.Equal(t, "canceled", err.Reason)
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("drain: %w", Fatal(NotFound, "delete", "gone", nil))
	assert.Equal(t, NotFound, KindOf(err))
	assert.True(t, Is(err, NotFound))
	assert.False(t, IsRetryable(err))

	assert.Equal(t, Transient, KindOf(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestFatal_NeverTransient(t *testing.T) {
	assert.Equal(t, Validation, Fatal(Transient, "op", "", nil).Kind)
}

func TestError_Message(t *testing.T) {
	err := Retryable("pull", "network", errors.New("refused"))
	assert.Equal(t, "pull: transient: network: refused", err.Error())
	assert.ErrorContains(t, err, "refused")
}
