package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nooga/dynobj/pkg/driver"
	"github.com/nooga/dynobj/pkg/vm"
)

// scenario is a trace file: initial elements and the operations applied to
// them in order.
type scenario struct {
	Elements []any     `yaml:"elements"`
	Ops      []traceOp `yaml:"ops"`
}

// traceOp is a single-key mapping such as {set: {index: 1, value: 2.5}} or
// {length: 2}.
type traceOp struct {
	name   string
	index  int
	size   int
	value  any
	length int
}

func (op *traceOp) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: an operation must be a mapping with exactly one key", node.Line)
	}
	op.name = node.Content[0].Value
	arg := node.Content[1]
	switch op.name {
	case "set":
		var a struct {
			Index int `yaml:"index"`
			Value any `yaml:"value"`
		}
		if err := arg.Decode(&a); err != nil {
			return err
		}
		op.index, op.value = a.Index, a.Value
	case "delete":
		return arg.Decode(&op.index)
	case "length":
		return arg.Decode(&op.length)
	case "push":
		return arg.Decode(&op.value)
	case "insert":
		var a struct {
			Offset int `yaml:"offset"`
			Size   int `yaml:"size"`
		}
		if err := arg.Decode(&a); err != nil {
			return err
		}
		op.index, op.size = a.Offset, a.Size
	case "remove":
		var a struct {
			Start int `yaml:"start"`
			End   int `yaml:"end"`
		}
		if err := arg.Decode(&a); err != nil {
			return err
		}
		op.index, op.length = a.Start, a.End
	default:
		return fmt.Errorf("line %d: unknown operation %q", node.Line, op.name)
	}
	return nil
}

func (op traceOp) String() string {
	switch op.name {
	case "set":
		return fmt.Sprintf("set(%d, %v)", op.index, op.value)
	case "delete":
		return fmt.Sprintf("delete(%d)", op.index)
	case "length":
		return fmt.Sprintf("length(%d)", op.length)
	case "push":
		return fmt.Sprintf("push(%v)", op.value)
	case "insert":
		return fmt.Sprintf("insert(%d, %d)", op.index, op.size)
	case "remove":
		return fmt.Sprintf("remove(%d, %d)", op.index, op.length)
	}
	return op.name
}

type traceCmd struct {
	root *rootCommand
}

func getCmdTrace(root *rootCommand) *cobra.Command {
	c := &traceCmd{root: root}
	return &cobra.Command{
		Use:   "trace FILE.yaml",
		Short: "Apply array operations and show the storage strategy after each",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
}

func (c *traceCmd) run(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var sc scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	engine, realm, err := c.root.newEngine()
	if err != nil {
		return err
	}
	elements := make([]vm.Value, len(sc.Elements))
	for i, e := range sc.Elements {
		if elements[i], err = toValue(engine, realm, e); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	arrVal := realm.NewArray(elements...)
	arr := arrVal.AsArray()

	out := c.root.gs.stdout
	fmt.Fprintf(out, "%-24s %s  %s\n", "initial", kindColor.Sprint(arr.Kind()), arrVal.Inspect())
	for _, op := range sc.Ops {
		before := arr.Kind()
		if err := apply(engine, realm, arr, op); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		kind := kindColor.Sprint(arr.Kind())
		if after := arr.Kind(); after != before {
			kind = transitionColor.Sprintf("%s -> %s", before, after)
		}
		fmt.Fprintf(out, "%-24s %s  %s\n", op, kind, arrVal.Inspect())
	}
	return nil
}

func apply(engine *driver.Engine, realm *vm.Realm, arr *vm.ArrayObject, op traceOp) error {
	switch op.name {
	case "set", "push":
		v, err := toValue(engine, realm, op.value)
		if err != nil {
			return err
		}
		if op.name == "push" {
			return arr.Push(v)
		}
		return arr.SetElement(op.index, v)
	case "delete":
		if !arr.DeleteElement(op.index) {
			return fmt.Errorf("element %d cannot be deleted", op.index)
		}
		return nil
	case "length":
		return arr.SetLength(op.length)
	case "insert":
		return arr.AddRange(op.index, op.size)
	case "remove":
		return arr.RemoveRange(op.index, op.length)
	}
	return fmt.Errorf("unknown operation %q", op.name)
}

// toValue converts a decoded YAML value. Sequences and mappings become
// engine arrays and objects; scalars go through the interop normalizer.
func toValue(engine *driver.Engine, realm *vm.Realm, v any) (vm.Value, error) {
	switch x := v.(type) {
	case []any:
		elems := make([]vm.Value, len(x))
		for i, e := range x {
			ev, err := toValue(engine, realm, e)
			if err != nil {
				return vm.Undefined, err
			}
			elems[i] = ev
		}
		return realm.NewArray(elems...), nil
	case map[string]any:
		obj := realm.NewObject()
		for k, e := range x {
			ev, err := toValue(engine, realm, e)
			if err != nil {
				return vm.Undefined, err
			}
			obj.AsPlainObject().SetOwn(k, ev)
		}
		return obj, nil
	}
	return engine.Normalize(v)
}
