package query

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cdtdelta/tablekit/internal/model"
)

// DefaultMaxDepth bounds advanced filter nesting. A lone root group has
// depth 1.
const DefaultMaxDepth = 3

var (
	// ErrTreeTooDeep is returned when a tree nests groups beyond the limit.
	ErrTreeTooDeep = errors.New("filter tree exceeds maximum depth")

	// ErrNodeNotFound is returned by tree edits that name a missing node.
	ErrNodeNotFound = errors.New("filter node not found")
)

// NodeType tags a filter tree node.
type NodeType string

const (
	NodeRule  NodeType = "rule"
	NodeGroup NodeType = "group"
)

// Node is an advanced filter tree node: a Rule leaf (Field, Operator,
// Value) or a Group (Logic, Children).
type Node struct {
	Type     NodeType `json:"type" yaml:"type"`
	ID       string   `json:"id" yaml:"id"`
	Field    string   `json:"field,omitempty" yaml:"field,omitempty"`
	Operator Operator `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value    Value    `json:"value,omitzero" yaml:"value,omitempty"`
	Logic    Logic    `json:"logic,omitempty" yaml:"logic,omitempty"`
	Children []Node   `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewRule creates a rule node with a fresh id.
func NewRule(field string, op Operator, v Value) Node {
	return Node{Type: NodeRule, ID: uuid.NewString(), Field: field, Operator: op, Value: v}
}

// NewGroup creates a group node with a fresh id.
func NewGroup(logic Logic, children ...Node) Node {
	return Node{Type: NodeGroup, ID: uuid.NewString(), Logic: logic, Children: children}
}

// Filter returns the flat filter a rule node stands for.
func (n Node) Filter() Filter {
	return Filter{ID: n.ID, ColumnID: n.Field, Operator: n.Operator, Value: n.Value}
}

// Clone returns a deep copy of the subtree.
func (n Node) Clone() Node {
	n.Value = n.Value.Clone()
	if n.Children != nil {
		children := make([]Node, len(n.Children))
		for i, c := range n.Children {
			children[i] = c.Clone()
		}
		n.Children = children
	}
	return n
}

// Evaluate folds the tree over a row. AND groups need every child (and pass
// when empty); OR groups need one child (and reject when empty).
func (e *Evaluator) Evaluate(row model.Row, n Node) (bool, error) {
	switch n.Type {
	case NodeRule:
		return e.MatchFilter(row, n.Filter())
	case NodeGroup:
		if err := checkLogic(n.Logic); err != nil {
			return false, err
		}
		if n.Logic == OR {
			for _, c := range n.Children {
				ok, err := e.Evaluate(row, c)
				if err != nil {
					return false, err
				}
				if ok {
					return true, nil
				}
			}
			return false, nil
		}
		for _, c := range n.Children {
			ok, err := e.Evaluate(row, c)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, fmt.Errorf("unknown filter node type %q", n.Type)
	}
}

// ValidateTree checks node types, group logic, depth, and every rule on a
// known column.
// maxDepth <= 0 disables the depth check.
func (e *Evaluator) ValidateTree(n Node, maxDepth int) error {
	if maxDepth > 0 && Depth(n) > maxDepth {
		return fmt.Errorf("%w: depth %d, limit %d", ErrTreeTooDeep, Depth(n), maxDepth)
	}
	return e.validateNode(n)
}

func (e *Evaluator) validateNode(n Node) error {
	switch n.Type {
	case NodeRule:
		return e.validate(n.Filter())
	case NodeGroup:
		if err := checkLogic(n.Logic); err != nil {
			return err
		}
		for _, c := range n.Children {
			if err := e.validateNode(c); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown filter node type %q", n.Type)
	}
}

// Depth returns the group nesting depth of a subtree. Rules count zero.
func Depth(n Node) int {
	if n.Type != NodeGroup {
		return 0
	}
	deepest := 0
	for _, c := range n.Children {
		if d := Depth(c); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// CountRules returns the number of rule leaves.
func CountRules(n Node) int {
	if n.Type == NodeRule {
		return 1
	}
	count := 0
	for _, c := range n.Children {
		count += CountRules(c)
	}
	return count
}

// Find returns the node with the given id.
func Find(root Node, id string) (Node, bool) {
	if root.ID == id {
		return root, true
	}
	for _, c := range root.Children {
		if n, ok := Find(c, id); ok {
			return n, true
		}
	}
	return Node{}, false
}

// AddChild returns a copy of root with child appended to the group parentID.
// The result must stay within maxDepth (<= 0 disables the check).
func AddChild(root Node, parentID string, child Node, maxDepth int) (Node, error) {
	parent, ok := Find(root, parentID)
	if !ok || parent.Type != NodeGroup {
		return root, fmt.Errorf("%w: group %q", ErrNodeNotFound, parentID)
	}
	out, _ := rewrite(root, parentID, func(n Node) (Node, bool) {
		n.Children = append(n.Children, child.Clone())
		return n, true
	})
	if maxDepth > 0 && Depth(out) > maxDepth {
		return root, fmt.Errorf("%w: depth %d, limit %d", ErrTreeTooDeep, Depth(out), maxDepth)
	}
	return out, nil
}

// ReplaceNode returns a copy of root with node id swapped for n.
func ReplaceNode(root Node, id string, n Node) (Node, error) {
	out, found := rewrite(root, id, func(Node) (Node, bool) {
		return n.Clone(), true
	})
	if !found {
		return root, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	return out, nil
}

// SetLogic returns a copy of root with the logic of group id changed.
func SetLogic(root Node, id string, logic Logic) (Node, error) {
	if err := checkLogic(logic); err != nil {
		return root, err
	}
	n, ok := Find(root, id)
	if !ok || n.Type != NodeGroup {
		return root, fmt.Errorf("%w: group %q", ErrNodeNotFound, id)
	}
	out, _ := rewrite(root, id, func(n Node) (Node, bool) {
		n.Logic = logic
		return n, true
	})
	return out, nil
}

// RemoveNode returns a copy of root without node id. Removing the root
// empties it instead.
func RemoveNode(root Node, id string) Node {
	if root.ID == id {
		root = root.Clone()
		root.Children = nil
		return root
	}
	out, _ := rewrite(root, id, func(Node) (Node, bool) {
		return Node{}, false
	})
	return out
}

// rewrite copies the tree, applying fn to the node with the given id. fn
// returning keep=false drops the node from its parent.
func rewrite(n Node, id string, fn func(Node) (Node, bool)) (Node, bool) {
	n = n.Clone()
	if n.ID == id {
		out, _ := fn(n)
		return out, true
	}
	found := false
	var children []Node
	for _, c := range n.Children {
		if c.ID == id {
			found = true
			if out, keep := fn(c.Clone()); keep {
				children = append(children, out)
			}
			continue
		}
		out, ok := rewrite(c, id, fn)
		found = found || ok
		children = append(children, out)
	}
	if n.Children != nil {
		n.Children = children
	}
	return n, found
}
