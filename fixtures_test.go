package objgraph_test

import (
	"time"

	objgraph "github.com/tarantool/go-objgraph"
)

type Leaf struct {
	Value int
}

type Holder struct {
	Name  string
	Child *Leaf
}

type Person struct {
	Name   string
	Friend *Person
}

type Color string

type Level uint8

type Flag bool

type Settings struct {
	Color   Color
	Level   Level
	Ratio   float32
	Enabled Flag
	Tags    *[]any
	Extra   any
	Created *time.Time
}

func newRegistry() *objgraph.Registry {
	reg := objgraph.NewRegistry()

	objgraph.MustRegister[Leaf](reg, "Leaf", objgraph.WithFields("Value"))
	objgraph.MustRegister[Holder](reg, "Holder", objgraph.WithFields("Name", "Child"))
	objgraph.MustRegister[Person](reg, "Person", objgraph.WithFields("Name", "Friend"))
	objgraph.MustRegister[Settings](reg, "Settings",
		objgraph.WithFields("Color", "Level", "Ratio", "Enabled", "Tags", "Extra", "Created"),
	)

	return reg
}

func roundTrip(reg *objgraph.Registry, value any) (any, error) {
	data, err := objgraph.NewSerializeContext(reg).Serialize(value)
	if err != nil {
		return nil, err
	}

	return objgraph.NewDeserializeContext(reg).Deserialize(data)
}
