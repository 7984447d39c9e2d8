package cliplugins

import (
	"fmt"

	"github.com/spf13/cobra"

	"fswatcher/internal/cli"
)

type StatusCommand struct {
	cmd    *cobra.Command
	appCtx *cli.AppContext
}

func NewStatusCommand(appCtx *cli.AppContext) *StatusCommand {
	return &StatusCommand{appCtx: appCtx}
}

func (c *StatusCommand) Meta() *cobra.Command {
	if c.cmd != nil {
		return c.cmd
	}
	c.cmd = &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Long:  "Shows the configured roots and whether each one is being watched.",
	}
	return c.cmd
}

func (c *StatusCommand) Execute(cmd *cobra.Command, args []string) error {
	var status struct {
		Roots    []string        `json:"roots"`
		Watching map[string]bool `json:"watching"`
	}
	if err := c.appCtx.GetJSON("/status", &status); err != nil {
		return err
	}

	if len(status.Roots) == 0 {
		fmt.Println("no roots configured")
		return nil
	}
	for _, root := range status.Roots {
		state := "stopped"
		if status.Watching[root] {
			state = "watching"
		}
		fmt.Printf("%-10s %s\n", state, root)
	}
	return nil
}
