package schemas

import "sort"

// Kind classifies the shape of a schema node
type Kind int

const (
	KindNull Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBool
)

// String returns the completion-detail label for the kind
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	}
	return "null"
}

// Node is one value shape in a variable schema: an object, an array, or a
// scalar sample value. The zero Node is null.
type Node struct {
	value any
}

// Kind reports the node's shape
func (n Node) Kind() Kind {
	switch n.value.(type) {
	case map[string]any:
		return KindObject
	case []any:
		return KindArray
	case string:
		return KindString
	case float64, int, int64, uint64:
		return KindNumber
	case bool:
		return KindBool
	}
	return KindNull
}

// Field returns the named child of an object node
func (n Node) Field(name string) (Node, bool) {
	obj, ok := n.value.(map[string]any)
	if !ok {
		return Node{}, false
	}
	v, ok := obj[name]
	if !ok {
		return Node{}, false
	}
	return Node{value: v}, true
}

// Element returns the shape of an array node's elements, taken from the
// first element. Iteration variables complete against this shape.
func (n Node) Element() (Node, bool) {
	arr, ok := n.value.([]any)
	if !ok || len(arr) == 0 {
		return Node{}, false
	}
	return Node{value: arr[0]}, true
}

// Child is one completion candidate under a node
type Child struct {
	Name string
	Node Node
}

// children lists an object node's fields sorted by name. Array nodes list
// the fields of their element shape.
func (n Node) children() []Child {
	node := n
	if node.Kind() == KindArray {
		elem, ok := node.Element()
		if !ok {
			return nil
		}
		node = elem
	}
	obj, ok := node.value.(map[string]any)
	if !ok {
		return nil
	}
	out := make([]Child, 0, len(obj))
	for name, v := range obj {
		out = append(out, Child{Name: name, Node: Node{value: v}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
