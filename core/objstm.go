package core

import (
	"bytes"
	"fmt"
)

// ObjectStream gives access to the objects packed in a /Type /ObjStm
// stream (PDF 1.5). The stream is decoded on first access and parsed
// objects are cached. It is not safe for concurrent use.
type ObjectStream struct {
	stream  *Stream
	n       int
	first   int
	extends *IndirectRef

	data    []byte
	entries []objStmEntry
	cache   map[int]Object
}

// objStmEntry is one header pair: an object number and its offset
// relative to /First.
type objStmEntry struct {
	num, offset int
}

// NewObjectStream validates the stream dictionary. Decoding is deferred.
func NewObjectStream(stream *Stream) (*ObjectStream, error) {
	if stream == nil {
		return nil, fmt.Errorf("object stream is nil")
	}
	d := stream.Dict
	if t, _ := d.GetName("Type"); t != "ObjStm" {
		return nil, fmt.Errorf("not an object stream: /Type %v", d.Get("Type"))
	}
	n, ok := d.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("object stream has invalid /N %v", d.Get("N"))
	}
	first, ok := d.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("object stream has invalid /First %v", d.Get("First"))
	}

	os := &ObjectStream{stream: stream, n: int(n), first: int(first), cache: make(map[int]Object)}
	switch ext := d.Get("Extends").(type) {
	case nil:
	case IndirectRef:
		os.extends = &ext
	default:
		return nil, fmt.Errorf("object stream has invalid /Extends %T", ext)
	}
	return os, nil
}

// N is the number of objects in the stream.
func (os *ObjectStream) N() int { return os.n }

// First is the offset of the first object in the decoded data.
func (os *ObjectStream) First() int { return os.first }

// Extends is the object stream this one extends, or nil.
func (os *ObjectStream) Extends() *IndirectRef { return os.extends }

func (os *ObjectStream) load() error {
	if os.entries != nil {
		return nil
	}
	data, err := os.stream.Decode()
	if err != nil {
		return fmt.Errorf("decode object stream: %w", err)
	}
	if os.first > len(data) {
		return fmt.Errorf("object stream /First %d is past the data (%d bytes)", os.first, len(data))
	}

	p := NewParser(bytes.NewReader(data[:os.first]))
	entries := make([]objStmEntry, 0, os.n)
	for i := 0; i < os.n; i++ {
		var pair [2]int
		for j := range pair {
			obj, err := p.ParseObject()
			if err != nil {
				return fmt.Errorf("object stream header pair %d: %w", i, err)
			}
			v, ok := obj.(Int)
			if !ok {
				return fmt.Errorf("object stream header pair %d: %T is not an integer", i, obj)
			}
			pair[j] = int(v)
		}
		entries = append(entries, objStmEntry{num: pair[0], offset: pair[1]})
	}
	os.data, os.entries = data, entries
	return nil
}

// GetObjectByIndex returns the index-th object and its object number.
func (os *ObjectStream) GetObjectByIndex(index int) (Object, int, error) {
	if err := os.load(); err != nil {
		return nil, 0, err
	}
	if index < 0 || index >= len(os.entries) {
		return nil, 0, fmt.Errorf("index %d out of range [0, %d)", index, len(os.entries))
	}
	num := os.entries[index].num
	if obj, ok := os.cache[index]; ok {
		return obj, num, nil
	}

	start := os.first + os.entries[index].offset
	end := len(os.data)
	if index+1 < len(os.entries) {
		end = min(end, os.first+os.entries[index+1].offset)
	}
	if start < os.first || start >= len(os.data) || end < start {
		return nil, 0, fmt.Errorf("object %d has invalid offset %d", num, os.entries[index].offset)
	}

	obj, err := NewParser(bytes.NewReader(os.data[start:end])).ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("object %d: %w", num, err)
	}
	os.cache[index] = obj
	return obj, num, nil
}

// GetObjectByNumber returns object num and its index in the stream.
func (os *ObjectStream) GetObjectByNumber(num int) (Object, int, error) {
	if err := os.load(); err != nil {
		return nil, 0, err
	}
	for i, e := range os.entries {
		if e.num == num {
			obj, _, err := os.GetObjectByIndex(i)
			return obj, i, err
		}
	}
	return nil, 0, fmt.Errorf("object %d not found in object stream", num)
}

// ObjectNumbers lists the object numbers in header order.
func (os *ObjectStream) ObjectNumbers() ([]int, error) {
	if err := os.load(); err != nil {
		return nil, err
	}
	nums := make([]int, len(os.entries))
	for i, e := range os.entries {
		nums[i] = e.num
	}
	return nums, nil
}

// ContainsObject reports whether object num is stored in the stream.
func (os *ObjectStream) ContainsObject(num int) (bool, error) {
	nums, err := os.ObjectNumbers()
	if err != nil {
		return false, err
	}
	for _, n := range nums {
		if n == num {
			return true, nil
		}
	}
	return false, nil
}
