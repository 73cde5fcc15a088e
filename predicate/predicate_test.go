package predicate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tarantool/go-objgraph/predicate"
)

func TestConstructors(t *testing.T) {
	t.Parallel()

	key := []byte("graphs/a")

	tests := []struct {
		name   string
		pred   predicate.Predicate
		op     predicate.Op
		target predicate.Target
		value  any
	}{
		{"ValueEqual", predicate.ValueEqual(key, []byte("x")), predicate.OpEqual, predicate.TargetValue, []byte("x")},
		{"ValueNotEqual", predicate.ValueNotEqual(key, []byte("x")), predicate.OpNotEqual, predicate.TargetValue, []byte("x")},
		{"VersionEqual", predicate.VersionEqual(key, 1), predicate.OpEqual, predicate.TargetVersion, int64(1)},
		{"VersionNotEqual", predicate.VersionNotEqual(key, 2), predicate.OpNotEqual, predicate.TargetVersion, int64(2)},
		{"VersionGreater", predicate.VersionGreater(key, 3), predicate.OpGreater, predicate.TargetVersion, int64(3)},
		{"VersionLess", predicate.VersionLess(key, 4), predicate.OpLess, predicate.TargetVersion, int64(4)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, key, test.pred.Key())
			assert.Equal(t, test.op, test.pred.Operation())
			assert.Equal(t, test.target, test.pred.Target())
			assert.Equal(t, test.value, test.pred.Value())
		})
	}
}

func TestStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Equal", predicate.OpEqual.String())
	assert.Equal(t, "NotEqual", predicate.OpNotEqual.String())
	assert.Equal(t, "Greater", predicate.OpGreater.String())
	assert.Equal(t, "Less", predicate.OpLess.String())
	assert.Equal(t, "Unknown", predicate.Op(99).String())

	assert.Equal(t, "Version", predicate.TargetVersion.String())
	assert.Equal(t, "Value", predicate.TargetValue.String())
	assert.Equal(t, "Unknown", predicate.Target(99).String())
}

func TestOp_Holds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		op     predicate.Op
		symbol string
		holds  [3]bool // for cmp -1, 0, 1
	}{
		{predicate.OpEqual, "=", [3]bool{false, true, false}},
		{predicate.OpNotEqual, "!=", [3]bool{true, false, true}},
		{predicate.OpGreater, ">", [3]bool{false, false, true}},
		{predicate.OpLess, "<", [3]bool{true, false, false}},
		{predicate.Op(99), "", [3]bool{false, false, false}},
	}

	for _, test := range tests {
		t.Run(test.op.String(), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, test.symbol, test.op.Symbol())

			for i, cmp := range []int{-1, 0, 1} {
				assert.Equal(t, test.holds[i], test.op.Holds(cmp), "cmp %d", cmp)
			}
		})
	}
}

func TestTarget_Supports(t *testing.T) {
	t.Parallel()

	for _, op := range []predicate.Op{predicate.OpEqual, predicate.OpNotEqual, predicate.OpGreater, predicate.OpLess} {
		assert.True(t, predicate.TargetVersion.Supports(op), op.String())
	}

	assert.True(t, predicate.TargetValue.Supports(predicate.OpEqual))
	assert.True(t, predicate.TargetValue.Supports(predicate.OpNotEqual))
	assert.False(t, predicate.TargetValue.Supports(predicate.OpGreater))
	assert.False(t, predicate.TargetValue.Supports(predicate.OpLess))
	assert.False(t, predicate.TargetVersion.Supports(predicate.Op(99)))
	assert.False(t, predicate.Target(99).Supports(predicate.OpEqual))
}
