package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachIsolatedAllSucceed(t *testing.T) {
	var seen []int
	processed, failures := ForEachIsolated("TEST", []int{1, 2, 3}, func(n int) error {
		seen = append(seen, n)
		return nil
	})

	assert.Equal(t, 3, processed)
	assert.Empty(t, failures)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestForEachIsolatedMiddleFailureDoesNotAbort(t *testing.T) {
	boom := errors.New("boom")
	var seen []int
	processed, failures := ForEachIsolated("TEST", []int{1, 2, 3}, func(n int) error {
		seen = append(seen, n)
		if n == 2 {
			return boom
		}
		return nil
	})

	assert.Equal(t, 2, processed)
	require.Len(t, failures, 1)
	assert.Equal(t, 1, failures[0].Index)
	assert.ErrorIs(t, failures[0].Err, boom)
	assert.Equal(t, []int{1, 2, 3}, seen, "items after the failure must still run")
}

func TestForEachIsolatedRecoversPanic(t *testing.T) {
	processed, failures := ForEachIsolated("TEST", []string{"a", "b"}, func(s string) error {
		if s == "a" {
			panic("unexpected state")
		}
		return nil
	})

	assert.Equal(t, 1, processed)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Err.Error(), "panic")
}
