package cliplugins

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fswatcher/internal/cli"
)

type JournalCommand struct {
	cmd    *cobra.Command
	appCtx *cli.AppContext
}

func NewJournalCommand(appCtx *cli.AppContext) *JournalCommand {
	return &JournalCommand{appCtx: appCtx}
}

func (c *JournalCommand) Meta() *cobra.Command {
	if c.cmd != nil {
		return c.cmd
	}
	c.cmd = &cobra.Command{
		Use:   "journal",
		Short: "Show recent change notifications",
	}
	c.cmd.Flags().IntP("count", "n", 20, "number of entries to show")
	return c.cmd
}

func (c *JournalCommand) Execute(cmd *cobra.Command, args []string) error {
	n, _ := cmd.Flags().GetInt("count")

	var journal struct {
		Entries []struct {
			ID        string    `json:"ID"`
			Dir       string    `json:"Dir"`
			Kind      string    `json:"Kind"`
			Paths     []string  `json:"Paths"`
			Timestamp time.Time `json:"Timestamp"`
		} `json:"entries"`
	}
	if err := c.appCtx.GetJSON(fmt.Sprintf("/journal?n=%d", n), &journal); err != nil {
		return err
	}

	if len(journal.Entries) == 0 {
		fmt.Println("journal is empty")
		return nil
	}
	for _, e := range journal.Entries {
		fmt.Printf("%s  %-18s %s", e.Timestamp.Format(time.RFC3339), e.Kind, e.Dir)
		if len(e.Paths) > 0 {
			fmt.Printf("  (%d paths)", len(e.Paths))
		}
		fmt.Println()
	}
	return nil
}
