package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorChain(t *testing.T) {
	base := NewNetworkError("backend unreachable", fmt.Errorf("dial tcp: refused"))
	wrapped := fmt.Errorf("analyze: %w", base)

	assert.True(t, IsType(wrapped, ErrorTypeNetwork))
	assert.False(t, IsType(wrapped, ErrorTypeAPI))
	assert.Equal(t, http.StatusBadGateway, GetStatusCode(wrapped))
	assert.Equal(t, "backend unreachable", UserMessage(wrapped))
	assert.Contains(t, base.Error(), "caused by: dial tcp: refused")
}

func TestNewAPIError(t *testing.T) {
	tests := []struct {
		status int
		want   int
	}{
		{http.StatusBadRequest, http.StatusBadRequest},
		{http.StatusServiceUnavailable, http.StatusServiceUnavailable},
		{http.StatusOK, http.StatusBadGateway},
		{0, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := NewAPIError("Claude does not support video", tt.status)
			assert.Equal(t, tt.want, err.StatusCode)
			assert.Equal(t, "api: Claude does not support video", err.Error())
		})
	}
}

func TestPlainErrors(t *testing.T) {
	err := fmt.Errorf("boom")
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(err))
	assert.Equal(t, "boom", UserMessage(err))
	assert.Empty(t, UserMessage(nil))
	assert.False(t, IsType(nil, ErrorTypeInternal))
}
