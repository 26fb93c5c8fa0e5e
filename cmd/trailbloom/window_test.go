package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresentFrame(t *testing.T) {
	var calls []string
	begin := func() { calls = append(calls, "begin") }
	present := func() { calls = append(calls, "present") }

	err := presentFrame(begin, func() error {
		calls = append(calls, "render")
		return nil
	}, present)
	assert.NoError(t, err)
	assert.Equal(t, []string{"begin", "render", "present"}, calls)

	calls = nil
	failed := errors.New("bloom failed")
	err = presentFrame(begin, func() error {
		calls = append(calls, "render")
		return failed
	}, present)
	assert.ErrorIs(t, err, failed)
	assert.Equal(t, []string{"begin", "render"}, calls, "a failed frame is not presented")
}
