// Package marshaller encodes persistent graph data to bytes and back.
//
// Every encoding writes the generic tree produced by
// [node.PersistentData.Tree], so the three formats carry the same shapes.
// Map keys are always written in sorted order, which makes the output stable
// enough to be hashed and signed.
package marshaller

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/tarantool/go-objgraph/node"
)

// Encoding names reported by Marshaller.Format.
const (
	FormatYAML    = "yaml"
	FormatMsgpack = "msgpack"
	FormatJSON    = "json"
)

// jsonAPI matches the standard library encoder and keeps decoded numbers as
// json.Number so integers above 2^53 survive.
var jsonAPI = jsoniter.Config{ //nolint:gochecknoglobals
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// TypedMarshaller is a generic interface for typed marshalling operations.
type TypedMarshaller[T any] interface {
	Marshal(data T) ([]byte, error)
	Unmarshal(data []byte) (T, error)
}

// Marshaller encodes node.PersistentData in a single format.
type Marshaller interface {
	TypedMarshaller[node.PersistentData]

	// Format returns the encoding name.
	Format() string
}

// ByFormat returns the marshaller for a format name.
func ByFormat(format string) (Marshaller, bool) {
	switch format {
	case FormatYAML:
		return NewYAMLMarshaller(), true
	case FormatMsgpack:
		return NewMsgpackMarshaller(), true
	case FormatJSON:
		return NewJSONMarshaller(), true
	default:
		return nil, false
	}
}

func fromTree(format string, tree any) (node.PersistentData, error) {
	data, err := node.PersistentDataFromTree(tree)
	if err != nil {
		return node.PersistentData{}, errUnmarshal(format, err)
	}

	return data, nil
}

// YAMLMarshaller encodes persistent data as YAML.
type YAMLMarshaller struct{}

// NewYAMLMarshaller creates a new YAMLMarshaller.
func NewYAMLMarshaller() YAMLMarshaller {
	return YAMLMarshaller{}
}

// Format implements Marshaller.
func (YAMLMarshaller) Format() string {
	return FormatYAML
}

// Marshal implements Marshaller.
func (YAMLMarshaller) Marshal(data node.PersistentData) ([]byte, error) {
	marshalled, err := yaml.Marshal(data.Tree())
	if err != nil {
		return []byte{}, errMarshal(FormatYAML, err)
	}

	return marshalled, nil
}

// Unmarshal implements Marshaller.
func (YAMLMarshaller) Unmarshal(data []byte) (node.PersistentData, error) {
	var tree any

	err := yaml.Unmarshal(data, &tree)
	if err != nil {
		return node.PersistentData{}, errUnmarshal(FormatYAML, err)
	}

	return fromTree(FormatYAML, tree)
}

// MsgpackMarshaller encodes persistent data as MessagePack.
type MsgpackMarshaller struct{}

// NewMsgpackMarshaller creates a new MsgpackMarshaller.
func NewMsgpackMarshaller() MsgpackMarshaller {
	return MsgpackMarshaller{}
}

// Format implements Marshaller.
func (MsgpackMarshaller) Format() string {
	return FormatMsgpack
}

// Marshal implements Marshaller.
func (MsgpackMarshaller) Marshal(data node.PersistentData) ([]byte, error) {
	var buf bytes.Buffer

	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)

	err := enc.Encode(data.Tree())
	if err != nil {
		return []byte{}, errMarshal(FormatMsgpack, err)
	}

	return buf.Bytes(), nil
}

// Unmarshal implements Marshaller.
func (MsgpackMarshaller) Unmarshal(data []byte) (node.PersistentData, error) {
	reader := bytes.NewReader(data)

	dec := msgpack.NewDecoder(reader)
	dec.UseLooseInterfaceDecoding(true)

	tree, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return node.PersistentData{}, errUnmarshal(FormatMsgpack, err)
	}

	if reader.Len() != 0 {
		return node.PersistentData{}, errUnmarshal(FormatMsgpack,
			fmt.Errorf("%d trailing bytes", reader.Len()))
	}

	return fromTree(FormatMsgpack, tree)
}

// JSONMarshaller encodes persistent data as JSON.
type JSONMarshaller struct{}

// NewJSONMarshaller creates a new JSONMarshaller.
func NewJSONMarshaller() JSONMarshaller {
	return JSONMarshaller{}
}

// Format implements Marshaller.
func (JSONMarshaller) Format() string {
	return FormatJSON
}

// Marshal implements Marshaller.
func (JSONMarshaller) Marshal(data node.PersistentData) ([]byte, error) {
	marshalled, err := jsonAPI.Marshal(data.Tree())
	if err != nil {
		return []byte{}, errMarshal(FormatJSON, err)
	}

	return marshalled, nil
}

// Unmarshal implements Marshaller.
func (JSONMarshaller) Unmarshal(data []byte) (node.PersistentData, error) {
	var tree any

	err := jsonAPI.Unmarshal(data, &tree)
	if err != nil {
		return node.PersistentData{}, errUnmarshal(FormatJSON, err)
	}

	return fromTree(FormatJSON, tree)
}
