package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/deepnoodle-ai/mirror"
	"github.com/deepnoodle-ai/mirror/errz"
	"github.com/deepnoodle-ai/mirror/types"
	"github.com/spf13/cobra"
)

func newCallCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call FILE [ARGS...]",
		Short: "Instantiate a class and invoke one of its methods",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.call,
	}
	cmd.Flags().String("class", "", "class to instantiate (default: the file name)")
	cmd.Flags().StringP("method", "m", "", "method to invoke")
	cmd.MarkFlagRequired("method")
	return cmd
}

// parseArg reads a command line argument as the narrowest scalar it spells.
func parseArg(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func (a *app) call(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	u, class, err := a.load(cmd, args[0])
	if err != nil {
		return err
	}
	t, err := u.Load(ctx, class)
	if err != nil {
		return err
	}
	d, err := mirror.Class(t)
	if err != nil {
		return err
	}
	instance, err := d.New(ctx)
	if err != nil {
		return err
	}
	bound, err := mirror.Of(instance)
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("method")
	callArgs := make([]any, 0, len(args)-1)
	for _, arg := range args[1:] {
		callArgs = append(callArgs, parseArg(arg))
	}
	m, ok := bound.MethodBySignature(name, types.TypesOf(callArgs...)...)
	if !ok {
		return errz.NewMethodNotFound(t.String(), name, "", types.Strings(types.TypesOf(callArgs...)))
	}
	out, err := m.Invoke(ctx, callArgs...)
	if err != nil {
		var e *errz.Error
		if errors.As(err, &e) && e.Cause != nil {
			a.log.Debug().Err(e.Cause).Msg("invocation cause")
		}
		return err
	}
	if out != nil {
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}
	return nil
}
