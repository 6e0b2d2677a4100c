package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepnoodle-ai/mirror"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Compile a script in memory and print the members of a class",
		Args:  cobra.ExactArgs(1),
		RunE:  a.inspect,
	}
	cmd.Flags().String("class", "", "class to inspect (default: the file name)")
	cmd.Flags().StringP("output", "o", "text", "output format (json, text)")
	cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

// unitName derives the unit name from a script path.
func unitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (a *app) load(cmd *cobra.Command, path string) (*mirror.Unit, string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	unit := unitName(path)
	class, _ := cmd.Flags().GetString("class")
	if class == "" {
		class = unit
	}
	u, err := mirror.CompileUnit(cmd.Context(), unit, string(src), a.compileOptions()...)
	if err != nil {
		return nil, "", err
	}
	return u, class, nil
}

func (a *app) inspect(cmd *cobra.Command, args []string) error {
	u, class, err := a.load(cmd, args[0])
	if err != nil {
		return err
	}
	t, err := u.Load(cmd.Context(), class)
	if err != nil {
		return err
	}
	d, err := mirror.Class(t)
	if err != nil {
		return err
	}
	r := newReport(d)
	out := cmd.OutOrStdout()
	format, _ := cmd.Flags().GetString("output")
	switch strings.ToLower(format) {
	case "json":
		data, err := marshal(r, a.cfg.NoColor)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case "text", "":
		fmt.Fprint(out, r.text())
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
	return nil
}
