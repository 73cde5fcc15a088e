// Package objgraph flattens in-memory object graphs into a linear, indexable
// form and rebuilds equivalent graphs from it, preserving reference identity.
//
// Shared references and cycles survive a round trip: every value with
// identity is stored once in a numbered slot of [node.PersistentData] and
// referenced by index everywhere else.
//
// Supported values:
//   - primitives: nil, [node.Undefined], bool, string, integer and float kinds;
//   - *[]any arrays, *float64 / *bool / *string boxed primitives;
//   - ordered [Map] and [Set] containers;
//   - *time.Time dates and *regexp.Regexp expressions;
//   - [Object] plain records;
//   - pointers to struct types registered with [Register].
//
// Bare slices and maps other than [Object] are rejected with [ErrType] even
// when nil; wrap arrays as *[]any. A nil pointer of any type is a nil
// primitive.
//
// Identity is the pair of pointer type and address. A pointer to an embedded
// parent struct (&d.Base) shares its address with the outer object (&d) but
// has a different type, so the two are stored in separate slots and come
// back as separate objects.
//
// See the [github.com/tarantool/go-objgraph/snapshot] package for storing
// graphs in a key-value backend with hash and signature verification.
package objgraph
