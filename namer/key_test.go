package namer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tarantool/go-objgraph/namer"
)

func TestNewKey(t *testing.T) {
	t.Parallel()

	key := namer.NewKey("all", namer.KeyTypeHash, "sha256", "/config/hash/sha256/all")

	assert.Equal(t, "all", key.Name())
	assert.Equal(t, namer.KeyTypeHash, key.Type())
	assert.Equal(t, "sha256", key.Property())
	assert.Equal(t, "/config/hash/sha256/all", key.Build())
}
