package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/apperr"
)

func TestTransportPromotesDeadline(t *testing.T) {
	err := apperr.Transport("search", fmt.Errorf("post: %w", context.DeadlineExceeded))
	require.Equal(t, apperr.KindTimeout, err.Kind)
	require.True(t, apperr.IsTimeout(err))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTransportPlainError(t *testing.T) {
	inner := errors.New("connection refused")
	err := apperr.Transport("search", inner)
	require.Equal(t, apperr.KindTransport, err.Kind)
	require.False(t, apperr.IsTimeout(err))
	require.Equal(t, "search transport: connection refused", err.Error())
}

func TestStatusMessage(t *testing.T) {
	err := apperr.Status("predict", 502, "bad gateway")
	require.Equal(t, "predict status (status 502): bad gateway", err.Error())
}

func TestKindOfSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", apperr.Timeout("predict", "TIMEOUT"))
	require.Equal(t, apperr.KindTimeout, apperr.KindOf(wrapped))
	require.Equal(t, apperr.Kind(""), apperr.KindOf(errors.New("plain")))
}
