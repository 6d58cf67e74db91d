package query

import (
	"errors"
	"testing"

	"github.com/cdtdelta/tablekit/internal/model"
)

func treeColumns() []model.Column {
	return []model.Column{
		{ID: "status", Kind: model.KindString, Filterable: true},
		{ID: "age", Kind: model.KindNumber, Filterable: true},
	}
}

func TestEvaluateTree(t *testing.T) {
	e := NewEvaluator(treeColumns(), nil)
	r := row("1", map[string]any{"status": "open", "age": 40})

	// status = open AND (age < 18 OR age > 30)
	tree := NewGroup(AND,
		NewRule("status", OpEquals, TextValue("open")),
		NewGroup(OR,
			NewRule("age", OpLessThan, NumberValue("18")),
			NewRule("age", OpGreaterThan, NumberValue("30")),
		),
	)
	ok, err := e.Evaluate(r, tree)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !ok {
		t.Error("expected row to match nested tree")
	}

	r.Values["age"] = 25
	ok, _ = e.Evaluate(r, tree)
	if ok {
		t.Error("expected age 25 to fail the OR branch")
	}
}

func TestEvaluateEmptyGroups(t *testing.T) {
	e := NewEvaluator(treeColumns(), nil)
	r := row("1", map[string]any{"status": "open"})

	if ok, _ := e.Evaluate(r, NewGroup(AND)); !ok {
		t.Error("expected empty AND group to match")
	}
	if ok, _ := e.Evaluate(r, NewGroup(OR)); ok {
		t.Error("expected empty OR group to match nothing")
	}
	if _, err := e.Evaluate(r, Node{Type: "bogus"}); err == nil {
		t.Error("expected error for unknown node type")
	}
}

func TestValidateTreeDepth(t *testing.T) {
	e := NewEvaluator(treeColumns(), nil)
	deep := NewGroup(AND, NewGroup(OR, NewGroup(AND, NewGroup(OR))))

	if d := Depth(deep); d != 4 {
		t.Fatalf("expected depth 4, got %d", d)
	}
	if err := e.ValidateTree(deep, DefaultMaxDepth); !errors.Is(err, ErrTreeTooDeep) {
		t.Errorf("expected ErrTreeTooDeep, got %v", err)
	}
	if err := e.ValidateTree(deep, 0); err != nil {
		t.Errorf("expected no depth limit with 0, got %v", err)
	}

	bad := NewGroup(AND, NewRule("age", OpContains, TextValue("4")))
	if err := e.ValidateTree(bad, DefaultMaxDepth); !errors.Is(err, ErrInvalidOperator) {
		t.Errorf("expected invalid operator in tree, got %v", err)
	}
}

func TestTreeEditing(t *testing.T) {
	root := NewGroup(AND)
	rule := NewRule("status", OpEquals, TextValue("open"))

	root, err := AddChild(root, root.ID, rule, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("AddChild failed: %v", err)
	}
	sub := NewGroup(OR)
	root, err = AddChild(root, root.ID, sub, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("AddChild failed: %v", err)
	}
	if CountRules(root) != 1 || len(root.Children) != 2 {
		t.Fatalf("unexpected tree shape: %+v", root)
	}

	root, err = SetLogic(root, sub.ID, AND)
	if err != nil {
		t.Fatalf("SetLogic failed: %v", err)
	}
	if n, _ := Find(root, sub.ID); n.Logic != AND {
		t.Errorf("expected sub group logic AND, got %s", n.Logic)
	}

	replaced := rule
	replaced.Value = TextValue("closed")
	root, err = ReplaceNode(root, rule.ID, replaced)
	if err != nil {
		t.Fatalf("ReplaceNode failed: %v", err)
	}
	if n, _ := Find(root, rule.ID); n.Value.Text != "closed" {
		t.Errorf("expected replaced value closed, got %q", n.Value.Text)
	}

	root = RemoveNode(root, rule.ID)
	if _, ok := Find(root, rule.ID); ok {
		t.Error("expected rule to be removed")
	}
	if len(root.Children) != 1 {
		t.Errorf("expected 1 child after removal, got %d", len(root.Children))
	}

	root = RemoveNode(root, root.ID)
	if root.Type != NodeGroup || len(root.Children) != 0 {
		t.Errorf("expected removing the root to empty it, got %+v", root)
	}
}

func TestAddChildRespectsDepth(t *testing.T) {
	inner := NewGroup(OR)
	root := NewGroup(AND, NewGroup(AND, inner))

	_, err := AddChild(root, inner.ID, NewGroup(AND), DefaultMaxDepth)
	if !errors.Is(err, ErrTreeTooDeep) {
		t.Errorf("expected ErrTreeTooDeep, got %v", err)
	}
	if _, err := AddChild(root, "missing", NewGroup(AND), DefaultMaxDepth); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestTreeEditsDoNotMutateInput(t *testing.T) {
	child := NewGroup(OR)
	child.Children = make([]Node, 0, 4)
	root := NewGroup(AND, child)

	if _, err := AddChild(root, child.ID, NewRule("status", OpIsEmpty, NoValue()), 0); err != nil {
		t.Fatalf("AddChild failed: %v", err)
	}
	if spare := root.Children[0].Children[:1]; spare[0].ID != "" {
		t.Error("expected original tree to be unchanged")
	}
}

func TestUnknownLogicRejected(t *testing.T) {
	e := NewEvaluator(treeColumns(), nil)
	r := row("1", map[string]any{"status": "open"})
	rule := NewRule("status", OpEquals, TextValue("open"))

	lower := NewGroup("or", rule)
	if err := e.ValidateTree(lower, DefaultMaxDepth); !errors.Is(err, ErrInvalidLogic) {
		t.Errorf("expected ErrInvalidLogic for lowercase logic, got %v", err)
	}
	nested := NewGroup(AND, NewGroup("xor", rule))
	if err := e.ValidateTree(nested, DefaultMaxDepth); !errors.Is(err, ErrInvalidLogic) {
		t.Errorf("expected ErrInvalidLogic for nested group, got %v", err)
	}
	if _, err := e.Evaluate(r, nested); !errors.Is(err, ErrInvalidLogic) {
		t.Errorf("expected Evaluate to fail on unknown logic, got %v", err)
	}
	if _, err := SetLogic(NewGroup(AND), "missing", "xor"); !errors.Is(err, ErrInvalidLogic) {
		t.Errorf("expected SetLogic to reject unknown logic, got %v", err)
	}
}
