package cliplugins

import (
	"fmt"

	"github.com/spf13/cobra"

	"fswatcher/internal/cli"
)

type IgnoresCommand struct {
	cmd    *cobra.Command
	appCtx *cli.AppContext
}

func NewIgnoresCommand(appCtx *cli.AppContext) *IgnoresCommand {
	return &IgnoresCommand{appCtx: appCtx}
}

func (c *IgnoresCommand) Meta() *cobra.Command {
	if c.cmd != nil {
		return c.cmd
	}
	c.cmd = &cobra.Command{
		Use:   "ignores",
		Short: "Show or extend the ignore registry",
		Long:  "Without flags, lists the registry. With --add, registers new entries of the given --kind.",
	}
	c.cmd.Flags().StringP("kind", "k", "pattern", "ignore kind: explicit, predictive or pattern")
	c.cmd.Flags().StringSliceP("add", "a", nil, "values to register")
	c.cmd.RegisterFlagCompletionFunc("kind", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"explicit", "predictive", "pattern"}, cobra.ShellCompDirectiveNoFileComp
	})
	return c.cmd
}

func (c *IgnoresCommand) Execute(cmd *cobra.Command, args []string) error {
	values, _ := cmd.Flags().GetStringSlice("add")
	if len(values) > 0 {
		kind, _ := cmd.Flags().GetString("kind")
		body := map[string]interface{}{"kind": kind, "values": values}
		if err := c.appCtx.PostJSON("/ignores", body); err != nil {
			return err
		}
		fmt.Printf("registered %d %s ignore(s)\n", len(values), kind)
		return nil
	}

	var registry struct {
		Explicit   []string `json:"explicit"`
		Predictive []string `json:"predictive"`
		Patterns   []string `json:"patterns"`
	}
	if err := c.appCtx.GetJSON("/ignores", &registry); err != nil {
		return err
	}

	printSection("explicit", registry.Explicit)
	printSection("predictive", registry.Predictive)
	printSection("patterns", registry.Patterns)
	return nil
}

func printSection(name string, values []string) {
	fmt.Printf("%s (%d):\n", name, len(values))
	for _, v := range values {
		fmt.Printf("  %s\n", v)
	}
}
