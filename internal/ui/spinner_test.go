package ui

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestSpinReturnsResult(t *testing.T) {
	var out bytes.Buffer
	ran := false
	err := Spin(&out, "Submitting", func() error {
		ran = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, ran)
	assert.Contains(t, out.String(), "Submitting")
}

func TestSpinPropagatesError(t *testing.T) {
	var out bytes.Buffer
	boom := errors.New("boom")
	err := Spin(&out, "Submitting", func() error { return boom })
	assert.ErrorIs(t, err, boom)
}
