package namer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarantool/go-objgraph/namer"
)

func TestInvalidNameError_Error(t *testing.T) {
	t.Parallel()

	err := namer.InvalidNameError{Name: "name", Problem: "problem"}
	assert.Equal(t, "invalid name 'name': problem", err.Error())
}

func TestInvalidKeyError_Error(t *testing.T) {
	t.Parallel()

	err := namer.InvalidKeyError{Key: "name", Problem: "problem"}
	assert.Equal(t, "invalid key 'name': problem", err.Error())
}

func TestErrors_Sentinels(t *testing.T) {
	t.Parallel()

	nameErr := error(namer.InvalidNameError{Name: "a//b", Problem: "empty segment"})
	require.ErrorIs(t, nameErr, namer.ErrInvalidName)
	assert.NotErrorIs(t, nameErr, namer.ErrInvalidKey)

	keyErr := error(namer.InvalidKeyError{Key: "/x", Problem: "prefix not found"})
	require.ErrorIs(t, keyErr, namer.ErrInvalidKey)
	assert.NotErrorIs(t, keyErr, namer.ErrInvalidName)

	require.ErrorIs(t, namer.CheckName("/abs"), namer.ErrInvalidName)

	_, err := namer.NewDefaultNamer("/tt", nil, nil).ParseKey("/tt/weird/a")
	require.ErrorIs(t, err, namer.ErrInvalidKey)
}
