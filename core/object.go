package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Object is any PDF value.
type Object interface {
	Type() ObjectType
	String() string
}

// ObjectType tags the concrete kind of an Object.
type ObjectType int

const (
	ObjNull ObjectType = iota
	ObjBool
	ObjInt
	ObjReal
	ObjString
	ObjName
	ObjArray
	ObjDict
	ObjStream
	ObjIndirect
)

var objectTypeNames = [...]string{
	ObjNull:     "Null",
	ObjBool:     "Bool",
	ObjInt:      "Int",
	ObjReal:     "Real",
	ObjString:   "String",
	ObjName:     "Name",
	ObjArray:    "Array",
	ObjDict:     "Dict",
	ObjStream:   "Stream",
	ObjIndirect: "IndirectRef",
}

func (t ObjectType) String() string {
	if t < 0 || int(t) >= len(objectTypeNames) {
		return "Unknown"
	}
	return objectTypeNames[t]
}

type (
	Null   struct{}
	Bool   bool
	Int    int64
	Real   float64
	String string // raw bytes, not decoded text
	Name   string // without the leading slash
)

func (Null) Type() ObjectType   { return ObjNull }
func (Bool) Type() ObjectType   { return ObjBool }
func (Int) Type() ObjectType    { return ObjInt }
func (Real) Type() ObjectType   { return ObjReal }
func (String) Type() ObjectType { return ObjString }
func (Name) Type() ObjectType   { return ObjName }

func (Null) String() string     { return "null" }
func (b Bool) String() string   { return strconv.FormatBool(bool(b)) }
func (i Int) String() string    { return strconv.FormatInt(int64(i), 10) }
func (r Real) String() string   { return strconv.FormatFloat(float64(r), 'f', -1, 64) }
func (s String) String() string { return string(s) }
func (n Name) String() string   { return "/" + string(n) }

// as type-asserts obj, treating nil as absent.
func as[T Object](obj Object) (T, bool) {
	v, ok := obj.(T)
	return v, ok
}

// Array is a PDF array.
type Array []Object

func (Array) Type() ObjectType { return ObjArray }

func (a Array) String() string {
	parts := make([]string, len(a))
	for i, obj := range a {
		parts[i] = obj.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (a Array) Len() int { return len(a) }

// Get returns the element at index, or nil when out of range.
func (a Array) Get(index int) Object {
	if index < 0 || index >= len(a) {
		return nil
	}
	return a[index]
}

func (a Array) GetInt(index int) (Int, bool)   { return as[Int](a.Get(index)) }
func (a Array) GetReal(index int) (Real, bool) { return as[Real](a.Get(index)) }
func (a Array) GetName(index int) (Name, bool) { return as[Name](a.Get(index)) }

// Dict is a PDF dictionary keyed by name without the slash.
type Dict map[string]Object

func (Dict) Type() ObjectType { return ObjDict }

// String lists entries in key order.
func (d Dict) String() string {
	var b strings.Builder
	b.WriteString("<<")
	for i, k := range d.Keys() {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "/%s %s", k, d[k])
	}
	b.WriteString(">>")
	return b.String()
}

func (d Dict) Get(key string) Object { return d[key] }

func (d Dict) GetName(key string) (Name, bool)               { return as[Name](d[key]) }
func (d Dict) GetInt(key string) (Int, bool)                 { return as[Int](d[key]) }
func (d Dict) GetReal(key string) (Real, bool)               { return as[Real](d[key]) }
func (d Dict) GetString(key string) (String, bool)           { return as[String](d[key]) }
func (d Dict) GetBool(key string) (Bool, bool)               { return as[Bool](d[key]) }
func (d Dict) GetDict(key string) (Dict, bool)               { return as[Dict](d[key]) }
func (d Dict) GetArray(key string) (Array, bool)             { return as[Array](d[key]) }
func (d Dict) GetStream(key string) (*Stream, bool)          { return as[*Stream](d[key]) }
func (d Dict) GetIndirectRef(key string) (IndirectRef, bool) { return as[IndirectRef](d[key]) }

func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

func (d Dict) Set(key string, value Object) { d[key] = value }
func (d Dict) Delete(key string)            { delete(d, key) }

// Keys returns the keys sorted.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stream is a dictionary followed by raw, possibly filtered, data.
type Stream struct {
	Dict Dict
	Data []byte

	once    sync.Once
	decoded []byte
	err     error
}

func (*Stream) Type() ObjectType { return ObjStream }

func (s *Stream) String() string {
	return fmt.Sprintf("stream %s (%d bytes)", s.Dict, len(s.Data))
}

// Decoded runs Decode once and caches the result. It is safe for
// concurrent use.
func (s *Stream) Decoded() ([]byte, error) {
	s.once.Do(func() { s.decoded, s.err = s.Decode() })
	return s.decoded, s.err
}

// IndirectRef points at object Number, Generation.
type IndirectRef struct {
	Number     int
	Generation int
}

func (IndirectRef) Type() ObjectType { return ObjIndirect }

func (r IndirectRef) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}

// IndirectObject is an object body together with its reference.
type IndirectObject struct {
	Ref    IndirectRef
	Object Object
}
