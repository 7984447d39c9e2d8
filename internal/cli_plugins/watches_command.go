package cliplugins

import (
	"fmt"

	"github.com/spf13/cobra"

	"fswatcher/internal/cli"
)

type WatchesCommand struct {
	cmd    *cobra.Command
	appCtx *cli.AppContext
}

func NewWatchesCommand(appCtx *cli.AppContext) *WatchesCommand {
	return &WatchesCommand{appCtx: appCtx}
}

func (c *WatchesCommand) Meta() *cobra.Command {
	if c.cmd != nil {
		return c.cmd
	}
	c.cmd = &cobra.Command{
		Use:   "watches",
		Short: "List every watched directory",
	}
	c.cmd.Flags().BoolP("stats", "s", false, "also print the engine counters")
	return c.cmd
}

func (c *WatchesCommand) Execute(cmd *cobra.Command, args []string) error {
	var watches struct {
		Directories []string `json:"directories"`
	}
	if err := c.appCtx.GetJSON("/watches", &watches); err != nil {
		return err
	}

	for _, dir := range watches.Directories {
		fmt.Println(dir)
	}
	fmt.Printf("%d directories watched\n", len(watches.Directories))

	withStats, _ := cmd.Flags().GetBool("stats")
	if !withStats {
		return nil
	}

	var stats map[string]interface{}
	if err := c.appCtx.GetJSON("/stats", &stats); err != nil {
		return err
	}
	for key, value := range stats {
		fmt.Printf("%-20s %v\n", key, value)
	}
	return nil
}
