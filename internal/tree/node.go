package tree

import (
	"fmt"

	"github.com/artpar/postbox/internal/core"
	"github.com/google/uuid"
)

// Kind discriminates folders from requests.
type Kind int

const (
	KindFolder Kind = iota
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindRequest:
		return "request"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind as "folder" or "request".
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindFolder, KindRequest:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("unknown node kind %d", int(k))
}

// UnmarshalText decodes "folder" or "request".
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "folder":
		*k = KindFolder
	case "request":
		*k = KindRequest
	default:
		return fmt.Errorf("unknown node kind %q", string(text))
	}
	return nil
}

// Node is a folder or a request in a collection tree.
// Folders own Children; requests own Request. An empty folder has nil Children.
type Node struct {
	ID       string                  `json:"id" yaml:"id"`
	Name     string                  `json:"name" yaml:"name"`
	Kind     Kind                    `json:"kind" yaml:"kind"`
	Children []*Node                 `json:"children,omitempty" yaml:"children,omitempty"`
	Request  *core.RequestDefinition `json:"request,omitempty" yaml:"request,omitempty"`
}

// NewFolder creates an empty folder with a fresh id.
func NewFolder(name string) *Node {
	return &Node{
		ID:   uuid.New().String(),
		Name: name,
		Kind: KindFolder,
	}
}

// NewRequest creates a request node with a fresh id. A nil definition
// becomes a GET with an empty URL.
func NewRequest(name string, def *core.RequestDefinition) *Node {
	if def == nil {
		def = core.NewRequestDefinition("GET", "")
	}
	return &Node{
		ID:      uuid.New().String(),
		Name:    name,
		Kind:    KindRequest,
		Request: def,
	}
}

// IsFolder reports whether the node may own children.
func (n *Node) IsFolder() bool {
	return n != nil && n.Kind == KindFolder
}

// Clone returns a deep copy of the node and its subtree, ids included.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := n.shallowCopy()
	if n.Request != nil {
		clone.Request = n.Request.Clone()
	}
	if len(n.Children) > 0 {
		clone.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}

func (n *Node) shallowCopy() *Node {
	c := *n
	return &c
}

// Walk visits every node in pre-order. Returning false from fn stops the walk.
func Walk(nodes []*Node, fn func(n *Node, depth int) bool) {
	walk(nodes, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(n *Node, depth int) bool) bool {
	for _, n := range nodes {
		if !fn(n, depth) {
			return false
		}
		if n.IsFolder() && !walk(n.Children, depth+1, fn) {
			return false
		}
	}
	return true
}

// FindByID searches the whole tree for a node with the given id.
func FindByID(nodes []*Node, id string) (*Node, bool) {
	var found *Node
	Walk(nodes, func(n *Node, _ int) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// IDs returns every id in the tree in pre-order.
func IDs(nodes []*Node) []string {
	var ids []string
	Walk(nodes, func(n *Node, _ int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}
