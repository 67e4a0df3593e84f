package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream 500")

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := New("test-open", Settings{ConsecutiveFailures: 3, Timeout: time.Hour}, zerolog.Nop())

	calls := 0
	fail := func() error {
		calls++
		return errUpstream
	}

	for i := 0; i < 3; i++ {
		err := b.Do(fail)
		require.ErrorIs(t, err, errUpstream)
	}
	assert.Equal(t, "open", b.State())

	err := b.Do(fail)
	require.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, 3, calls, "open breaker must not call through")
	assert.Contains(t, err.Error(), "test-open")
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New("test-reset", Settings{ConsecutiveFailures: 2, Timeout: time.Hour}, zerolog.Nop())

	require.Error(t, b.Do(func() error { return errUpstream }))
	require.NoError(t, b.Do(func() error { return nil }))
	require.Error(t, b.Do(func() error { return errUpstream }))

	assert.Equal(t, "closed", b.State())
}

func TestBreaker_IgnoredErrorsDoNotTrip(t *testing.T) {
	errNotFound := errors.New("not found")
	b := New("test-ignore", Settings{
		ConsecutiveFailures: 1,
		Timeout:             time.Hour,
		Ignore:              func(err error) bool { return errors.Is(err, errNotFound) },
	}, zerolog.Nop())

	for i := 0; i < 5; i++ {
		err := b.Do(func() error { return errNotFound })
		require.ErrorIs(t, err, errNotFound)
	}
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	b := New("test-recover", Settings{ConsecutiveFailures: 1, Timeout: 20 * time.Millisecond}, zerolog.Nop())

	require.Error(t, b.Do(func() error { return errUpstream }))
	assert.Equal(t, "open", b.State())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, "half-open", b.State())

	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, "closed", b.State())
}
