package fdt

import (
	"strings"
	"unicode/utf8"
)

// Prop is a single device tree property: an opaque byte value addressed by
// name. Any typed interpretation (string, u32, u64) happens at retrieval
// time, never at parse or construction time.
type Prop struct {
	Name  string
	Value []byte
}

// Node is a single node in the device tree: a name, an ordered list of
// properties, and an ordered list of children. Duplicate property names and
// duplicate child names are tolerated; lookups resolve to the first match.
//
// A Node owns its properties and children. Nothing in this package mutates
// a Node after it is built by Load or by direct construction — callers are
// free to edit the tree themselves and re-serialize with Store.
type Node struct {
	Name     string
	Props    []Prop
	Children []Node
}

// NewNode returns an empty node with the given name and no properties or
// children, ready to be populated with the AddProp* helpers or by directly
// appending to Props/Children.
func NewNode(name string) Node {
	return Node{Name: name}
}

// AddPropRaw appends a property with an opaque byte value.
func (n *Node) AddPropRaw(name string, value []byte) {
	n.Props = append(n.Props, Prop{Name: name, Value: value})
}

// AddPropString appends a NUL-terminated string property.
func (n *Node) AddPropString(name, value string) {
	buf := make([]byte, 0, len(value)+1)
	buf = append(buf, value...)
	buf = append(buf, 0)
	n.AddPropRaw(name, buf)
}

// AddPropStrings appends a property holding a concatenation of
// NUL-terminated strings, e.g. a "compatible" list.
func (n *Node) AddPropStrings(name string, values []string) {
	var buf []byte
	for _, v := range values {
		buf = append(buf, v...)
		buf = append(buf, 0)
	}
	n.AddPropRaw(name, buf)
}

// AddPropU32 appends a single big-endian uint32 property.
func (n *Node) AddPropU32(name string, value uint32) {
	buf := make([]byte, 4)
	buf[0] = byte(value >> 24)
	buf[1] = byte(value >> 16)
	buf[2] = byte(value >> 8)
	buf[3] = byte(value)
	n.AddPropRaw(name, buf)
}

// AddPropU64 appends a single big-endian uint64 property.
func (n *Node) AddPropU64(name string, value uint64) {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(value >> (8 * (7 - i)))
	}
	n.AddPropRaw(name, buf)
}

// AddChild appends a child node and returns a pointer to it within Children,
// so callers can keep populating it in place.
func (n *Node) AddChild(child Node) *Node {
	n.Children = append(n.Children, child)
	return &n.Children[len(n.Children)-1]
}

// Find resolves a relative path against this node. An empty path resolves
// to the node itself. A non-empty path is split at the first '/': the
// prefix names a child to descend into, and the remainder is resolved
// recursively against that child. The first child whose name matches wins.
func (n *Node) Find(relative string) *Node {
	if relative == "" {
		return n
	}

	name, rest, hasSlash := strings.Cut(relative, "/")
	if !hasSlash {
		for i := range n.Children {
			if n.Children[i].Name == relative {
				return &n.Children[i]
			}
		}
		return nil
	}

	for i := range n.Children {
		if n.Children[i].Name == name {
			return n.Children[i].Find(rest)
		}
	}
	return nil
}

// HasProp reports whether the node carries a property with the given name.
func (n *Node) HasProp(name string) bool {
	for i := range n.Props {
		if n.Props[i].Name == name {
			return true
		}
	}
	return false
}

// PropRaw returns the raw byte value of the first property named name, or
// nil if no such property exists. The returned slice aliases the node's
// storage; callers must not mutate it.
func (n *Node) PropRaw(name string) []byte {
	for i := range n.Props {
		if n.Props[i].Name == name {
			return n.Props[i].Value
		}
	}
	return nil
}

// PropString requires the named property's value to end in 0x00, strips the
// terminator, and interprets the remainder as UTF-8.
func (n *Node) PropString(name string) (string, error) {
	raw := n.PropRaw(name)
	if raw == nil {
		return "", newPropError(name, PropNotFound, nil)
	}
	if len(raw) < 1 || raw[len(raw)-1] != 0 {
		return "", newPropError(name, PropMissing0, nil)
	}
	body := raw[:len(raw)-1]
	if !utf8.Valid(body) {
		return "", newPropError(name, PropUtf8Error, nil)
	}
	return string(body), nil
}

// PropU32 interprets the first 4 bytes of the named property's value as a
// big-endian uint32.
func (n *Node) PropU32(name string) (uint32, error) {
	raw := n.PropRaw(name)
	if raw == nil {
		return 0, newPropError(name, PropNotFound, nil)
	}
	if len(raw) < 4 {
		return 0, newPropError(name, PropSliceReadError, &UnexpectedEndOfInputError{Need: 4, Len: len(raw)})
	}
	return uint32(raw[0])<<24 | uint32(raw[1])<<16 | uint32(raw[2])<<8 | uint32(raw[3]), nil
}

// PropU64 interprets the first 8 bytes of the named property's value as a
// big-endian uint64.
func (n *Node) PropU64(name string) (uint64, error) {
	raw := n.PropRaw(name)
	if raw == nil {
		return 0, newPropError(name, PropNotFound, nil)
	}
	if len(raw) < 8 {
		return 0, newPropError(name, PropSliceReadError, &UnexpectedEndOfInputError{Need: 8, Len: len(raw)})
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(raw[i])
	}
	return v, nil
}
