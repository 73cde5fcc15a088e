package marshaller_test

import (
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	objgraph "github.com/tarantool/go-objgraph"
	"github.com/tarantool/go-objgraph/marshaller"
	"github.com/tarantool/go-objgraph/node"
)

type Employee struct {
	Name    string
	Grade   uint8
	Manager *Employee
	Skills  *objgraph.Set
	Joined  *time.Time
}

func newRegistry(t *testing.T) *objgraph.Registry {
	t.Helper()

	reg := objgraph.NewRegistry()

	_, err := objgraph.Register[Employee](reg, "Employee",
		objgraph.WithFields("Name", "Grade", "Manager", "Skills", "Joined"))
	require.NoError(t, err)

	return reg
}

func allMarshallers() []marshaller.Marshaller {
	return []marshaller.Marshaller{
		marshaller.NewYAMLMarshaller(),
		marshaller.NewMsgpackMarshaller(),
		marshaller.NewJSONMarshaller(),
	}
}

func TestMarshallers_GraphRoundTrip(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	for _, marsh := range allMarshallers() {
		t.Run(marsh.Format(), func(t *testing.T) {
			t.Parallel()

			joined := time.Date(2023, time.July, 1, 12, 0, 0, 0, time.UTC)
			boss := &Employee{Name: "boss", Grade: 9, Joined: &joined}
			boss.Manager = boss
			worker := &Employee{Name: "worker", Grade: 2, Manager: boss, Skills: objgraph.NewSet("go", "sql")}
			ratio := 0.25
			byName := objgraph.NewMap()
			byName.Set("boss", boss)
			byName.Set(worker, "worker key")

			root := objgraph.Object{
				"staff":   &[]any{boss, worker},
				"index":   byName,
				"ratio":   &ratio,
				"pattern": regexp.MustCompile(`^[a-z]+$`),
				"nothing": nil,
				"absent":  node.Undefined,
				"count":   3,
				"big":     int64(1) << 40,
				"huge":    int64(1)<<60 + 1,
				"max":     uint64(math.MaxUint64),
				"half":    0.5,
			}

			data, err := objgraph.NewSerializeContext(reg).Serialize(root)
			require.NoError(t, err)

			encoded, err := marsh.Marshal(data)
			require.NoError(t, err)
			require.NotEmpty(t, encoded)

			decoded, err := marsh.Unmarshal(encoded)
			require.NoError(t, err)
			require.Len(t, decoded.Objects, len(data.Objects))
			require.NoError(t, objgraph.Validate(decoded))

			out, err := objgraph.NewDeserializeContext(reg).Deserialize(decoded)
			require.NoError(t, err)

			restored, ok := out.(objgraph.Object)
			require.True(t, ok)

			assert.Nil(t, restored["nothing"])
			assert.Equal(t, node.Undefined, restored["absent"])
			assert.EqualValues(t, 3, restored["count"])
			assert.EqualValues(t, int64(1)<<40, restored["big"])
			assert.EqualValues(t, int64(1)<<60+1, restored["huge"])
			assert.EqualValues(t, uint64(math.MaxUint64), restored["max"])
			assert.InDelta(t, 0.5, restored["half"], 0)

			restoredRatio, ok := restored["ratio"].(*float64)
			require.True(t, ok)
			assert.InDelta(t, 0.25, *restoredRatio, 0)

			staff, ok := restored["staff"].(*[]any)
			require.True(t, ok)
			require.Len(t, *staff, 2)

			restoredBoss, ok := (*staff)[0].(*Employee)
			require.True(t, ok)
			restoredWorker, ok := (*staff)[1].(*Employee)
			require.True(t, ok)

			assert.Equal(t, "boss", restoredBoss.Name)
			assert.Equal(t, uint8(9), restoredBoss.Grade)
			assert.Same(t, restoredBoss, restoredBoss.Manager)
			assert.Same(t, restoredBoss, restoredWorker.Manager)
			require.NotNil(t, restoredBoss.Joined)
			assert.True(t, joined.Equal(*restoredBoss.Joined))
			require.NotNil(t, restoredWorker.Skills)
			assert.Equal(t, []any{"go", "sql"}, restoredWorker.Skills.Values())

			index, ok := restored["index"].(*objgraph.Map)
			require.True(t, ok)

			value, ok := index.Get("boss")
			require.True(t, ok)
			assert.Same(t, restoredBoss, value)

			value, ok = index.Get(restoredWorker)
			require.True(t, ok)
			assert.Equal(t, "worker key", value)

			pattern, ok := restored["pattern"].(*regexp.Regexp)
			require.True(t, ok)
			assert.Equal(t, `^[a-z]+$`, pattern.String())
		})
	}
}

func TestMarshallers_Deterministic(t *testing.T) {
	t.Parallel()

	data := node.PersistentData{
		Objects: []node.Node{
			node.Object(map[string]node.Node{
				"z": node.Primitive(1), "a": node.Ref(1), "m": node.Primitive("x"),
			}),
			node.UserObject("Employee", map[string]node.Node{"Name": node.Primitive("n"), "Grade": node.Primitive(1)}),
		},
		Root: node.Ref(0),
	}

	for _, marsh := range allMarshallers() {
		t.Run(marsh.Format(), func(t *testing.T) {
			t.Parallel()

			first, err := marsh.Marshal(data)
			require.NoError(t, err)

			for range 10 {
				next, err := marsh.Marshal(data)
				require.NoError(t, err)
				assert.Equal(t, first, next)
			}
		})
	}
}

func TestYAMLMarshaller_Shape(t *testing.T) {
	t.Parallel()

	data, err := objgraph.NewSerializeContext(nil).Serialize(objgraph.Object{"a": 1, "b": "x"})
	require.NoError(t, err)

	encoded, err := marshaller.NewYAMLMarshaller().Marshal(data)
	require.NoError(t, err)

	require.YAMLEq(t, `
objects:
  - type: object
    value:
      a: 1
      b: x
root:
  type: refobj
  value: 0
`, string(encoded))
}

func TestJSONMarshaller_Shape(t *testing.T) {
	t.Parallel()

	data, err := objgraph.NewSerializeContext(nil).Serialize(objgraph.Object{"a": 1, "b": "x"})
	require.NoError(t, err)

	encoded, err := marshaller.NewJSONMarshaller().Marshal(data)
	require.NoError(t, err)

	require.JSONEq(t,
		`{"objects":[{"type":"object","value":{"a":1,"b":"x"}}],"root":{"type":"refobj","value":0}}`,
		string(encoded))
}

func TestMarshallers_UnmarshalErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		marsh marshaller.Marshaller
		input []byte
	}{
		{"yaml syntax", marshaller.NewYAMLMarshaller(), []byte("objects: [\n  - :")},
		{"yaml shape", marshaller.NewYAMLMarshaller(), []byte("- 1\n- 2\n")},
		{"msgpack truncated", marshaller.NewMsgpackMarshaller(), []byte{0x82, 0xa7}},
		{"msgpack trailing", marshaller.NewMsgpackMarshaller(), []byte{0x80, 0x80}},
		{"json syntax", marshaller.NewJSONMarshaller(), []byte(`{"objects": [`)},
		{"json unknown tag", marshaller.NewJSONMarshaller(), []byte(`{"objects": [], "root": {"type": "weird"}}`)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := test.marsh.Unmarshal(test.input)
			require.Error(t, err)

			var unmarshalErr marshaller.UnmarshalError
			require.ErrorAs(t, err, &unmarshalErr)
			assert.Equal(t, test.marsh.Format(), unmarshalErr.Format())
		})
	}
}

func TestJSONMarshaller_MarshalError(t *testing.T) {
	t.Parallel()

	data := node.PersistentData{Root: node.Primitive(make(chan int))}

	_, err := marshaller.NewJSONMarshaller().Marshal(data)

	var marshalErr marshaller.MarshalError
	require.ErrorAs(t, err, &marshalErr)
	assert.Equal(t, marshaller.FormatJSON, marshalErr.Format())
}

func TestByFormat(t *testing.T) {
	t.Parallel()

	for _, format := range []string{marshaller.FormatYAML, marshaller.FormatMsgpack, marshaller.FormatJSON} {
		marsh, ok := marshaller.ByFormat(format)
		require.True(t, ok)
		assert.Equal(t, format, marsh.Format())
	}

	_, ok := marshaller.ByFormat("xml")
	assert.False(t, ok)
}
