package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nooga/dynobj/pkg/vm"
)

type execCmd struct {
	root  *rootCommand
	flags string
	read  []int
}

func getCmdExec(root *rootCommand) *cobra.Command {
	c := &execCmd{root: root}
	cmd := &cobra.Command{
		Use:   "exec PATTERN INPUT",
		Short: "Run a regular expression and show which capture groups were materialized",
		Args:  cobra.ExactArgs(2),
		RunE:  c.run,
	}
	cmd.Flags().StringVar(&c.flags, "flags", "", "regular expression flags (gimsuy)")
	cmd.Flags().IntSliceVar(&c.read, "read", nil, "capture groups to read before printing the result")
	return cmd
}

func (c *execCmd) run(_ *cobra.Command, args []string) error {
	_, realm, err := c.root.newEngine()
	if err != nil {
		return err
	}
	reVal, err := realm.NewRegExp(args[0], c.flags)
	if err != nil {
		return err
	}
	result, err := reVal.AsRegExpObject().Exec(args[1])
	if err != nil {
		return err
	}
	out := c.root.gs.stdout
	if result.IsNull() {
		fmt.Fprintln(out, "no match")
		return nil
	}

	arr := result.AsArray()
	for _, i := range c.read {
		if !arr.HasElement(i) {
			return fmt.Errorf("group %d does not exist", i)
		}
		fmt.Fprintf(out, "group %d: %s\n", i, arr.GetElement(i).Inspect())
	}
	fmt.Fprintf(out, "materialized %d of %d groups (%s)\n",
		arr.Length()-arr.UnresolvedGroups(), arr.Length(), kindColor.Sprint(arr.Kind()))

	index, _ := arr.GetOwn("index")
	fmt.Fprintf(out, "index %s: %s\n", index.ToString(), vm.NewValueFromArray(arr).Inspect())
	return nil
}
