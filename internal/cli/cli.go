package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	pkgcli "fswatcher/pkg/cli"
)

// AutoCompleteTerminal is a raw-mode interactive console over a cobra
// command tree, with history and tab completion.
type AutoCompleteTerminal struct {
	RootCommand    *cobra.Command
	History        []string
	MaxHistorySize int
	oldState       *term.State
}

func NewAutoCompleteTerminal(rootCmd *cobra.Command, maxHistorySize int) *AutoCompleteTerminal {
	return &AutoCompleteTerminal{
		RootCommand:    rootCmd,
		History:        []string{},
		MaxHistorySize: maxHistorySize,
	}
}

func (t *AutoCompleteTerminal) handleAutocomplete(line []rune, position int) ([]rune, int) {
	completions := t.getCompletions(string(line))
	if len(completions) <= 0 {
		return line, position
	}
	if len(completions) == 1 {
		// single candidate, complete in place
		newLine := t.completeCommand(string(line), completions[0])
		line = []rune(newLine)
		position = len(line)
		fmt.Print("\r> ", string(line))
	} else {
		// interactive pick from the candidates
		selectedCompletion := t.showInteractiveCompletions(completions)
		if selectedCompletion != "" {
			newLine := t.completeCommand(string(line), selectedCompletion)
			line = []rune(newLine)
			position = len(line)
			fmt.Print("\r> ", string(line))
		}
	}
	return line, position
}

func (t *AutoCompleteTerminal) Start(ctx context.Context, cancelFunc context.CancelFunc) error {
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	t.oldState = oldState
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	var line []rune
	var position int
	var historyPos int

	fmt.Print("> ")

	buf := make([]byte, 3)

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\n Console is shutting down gracefully.")
			return nil
		default:
			_, err := os.Stdin.Read(buf)
			if err != nil {
				return err
			}
			switch {
			case buf[0] == 3: // Ctrl+C
				fmt.Println("\nExiting")
				cancelFunc()
				return nil

			case buf[0] == 9: // Tab
				line, position = t.handleAutocomplete(line, position)

			case buf[0] == 13: // Enter
				fmt.Println()
				command := string(line)
				if command != "" {
					t.addToHistory(command)
					// leave raw mode while the command runs
					term.Restore(int(os.Stdin.Fd()), t.oldState)

					parts := strings.Fields(command)
					args := append([]string{os.Args[0]}, parts...)

					originalArgs := os.Args
					os.Args = args

					err := t.RootCommand.Execute()
					if err != nil {
						fmt.Println(err)
					}

					os.Args = originalArgs

					// back to raw mode
					var rawErr error
					t.oldState, rawErr = term.MakeRaw(int(os.Stdin.Fd()))
					if rawErr != nil {
						return rawErr
					}
				}

				line = []rune{}
				position = 0
				historyPos = len(t.History)
				fmt.Print("> ")

			case buf[0] == 27 && buf[1] == 91: // arrow keys
				if buf[2] == 65 { // up
					if historyPos > 0 {
						historyPos--
						line = []rune(t.History[historyPos])
						position = len(line)
						fmt.Print("\r> ", string(line), strings.Repeat(" ", 10), "\r> ", string(line))
					}
				} else if buf[2] == 66 { // down
					if historyPos < len(t.History) {
						historyPos++
						if historyPos == len(t.History) {
							line = []rune{}
						} else {
							line = []rune(t.History[historyPos])
						}
						position = len(line)
						fmt.Print("\r> ", string(line), strings.Repeat(" ", 10), "\r> ", string(line))
					}
				} else if buf[2] == 67 { // right
					if position < len(line) {
						position++
						fmt.Print("\r> ", string(line[:position]))
					}
				} else if buf[2] == 68 { // left
					if position > 0 {
						position--
						fmt.Print("\r> ", string(line[:position]))
					}
				}

			case buf[0] == 127: // backspace
				if position > 0 {
					if position < len(line) {
						line = append(line[:position-1], line[position:]...)
					} else {
						line = line[:position-1]
					}
					position--
					fmt.Print("\r> ", string(line), " ", "\r> ", string(line[:position]))
				}

			default:
				// insert the typed rune at the cursor
				if position == len(line) {
					line = append(line, rune(buf[0]))
				} else {
					line = append(line[:position+1], line[position:]...)
					line[position] = rune(buf[0])
				}
				position++
				fmt.Print("\r> ", string(line[:position]))
			}

			buf[0], buf[1], buf[2] = 0, 0, 0
		}
	}

}

// CliStart runs the console: one-shot when args are present,
// interactive raw-mode terminal otherwise.
func CliStart(ctx context.Context, args []string, appCtx *AppContext, plugins ...pkgcli.CommandPlugin) {
	c := pkgcli.NewCLI()
	for _, p := range plugins {
		c.RegisterPlugin(p)
	}

	if len(args) > 0 {
		if err := c.Run(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		appCtx.CancelFunc()
		return
	}

	terminal := NewAutoCompleteTerminal(c.Root(), 100)
	fmt.Println("Interactive console with tab completion")
	fmt.Println("Press Tab to complete, Ctrl+C to exit")

	if err := terminal.Start(ctx, appCtx.CancelFunc); err != nil {
		fmt.Printf("Terminal failed: %v\n", err)
		os.Exit(1)
	}
}

// showInteractiveCompletions lists the candidates and lets the user
// pick one by number.
func (t *AutoCompleteTerminal) showInteractiveCompletions(completions []string) string {
	fmt.Print("\n")

	row, col := getCursorPosition()
	printOptions(completions, row+1, col)

	// temporarily leave raw mode so the numeric choice reads normally
	term.Restore(int(os.Stdin.Fd()), t.oldState)

	fmt.Print("\nPick an option (1-", len(completions), ") or press Enter to cancel: ")

	var choice int
	var input string
	fmt.Scanln(&input)

	if input != "" {
		fmt.Sscanf(input, "%d", &choice)
	}

	var err error
	t.oldState, err = term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Println("Cannot return to raw mode:", err)
		return ""
	}

	if choice > 0 && choice <= len(completions) {
		fmt.Print("> ")
		return completions[choice-1]
	}

	fmt.Print("> ")
	return ""
}

// addToHistory appends a command, dropping consecutive duplicates.
func (t *AutoCompleteTerminal) addToHistory(command string) {
	if len(t.History) > 0 && t.History[len(t.History)-1] == command {
		return
	}

	t.History = append(t.History, command)
	if len(t.History) > t.MaxHistorySize {
		t.History = t.History[1:]
	}
}

// getCompletions returns the completion candidates for the input.
func (t *AutoCompleteTerminal) getCompletions(input string) []string {
	if input == "" {
		return getCobraCommands(t.RootCommand)
	}

	parts := strings.Fields(input)

	if len(parts) == 1 {
		return getMatchingCommands(t.RootCommand, parts[0])
	}

	cmd, _, lastPart := findCobraCommandAndFlags(t.RootCommand, parts)
	if cmd != nil {
		if strings.HasPrefix(lastPart, "-") {
			return getMatchingFlags(cmd, lastPart)
		}

		// completing a flag value is not supported
		if len(parts) >= 2 && strings.HasPrefix(parts[len(parts)-2], "-") {
			return []string{}
		}

		if len(cmd.Commands()) > 0 {
			return getMatchingCommands(cmd, lastPart)
		}
	}

	return []string{}
}

// getCobraCommands returns all top-level command names.
func getCobraCommands(rootCmd *cobra.Command) []string {
	var result []string
	for _, cmd := range rootCmd.Commands() {
		if !cmd.Hidden {
			result = append(result, cmd.Name())
		}
	}
	return result
}

// getMatchingCommands returns command names starting with prefix.
func getMatchingCommands(parentCmd *cobra.Command, prefix string) []string {
	var matches []string
	for _, cmd := range parentCmd.Commands() {
		if !cmd.Hidden && strings.HasPrefix(cmd.Name(), prefix) {
			matches = append(matches, cmd.Name())
		}
	}
	return matches
}

// getMatchingFlags returns flag spellings starting with prefix.
func getMatchingFlags(cmd *cobra.Command, prefix string) []string {
	var matches []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if len(flag.Shorthand) > 0 {
			shortFlag := "-" + flag.Shorthand
			if strings.HasPrefix(shortFlag, prefix) {
				matches = append(matches, shortFlag)
			}
		}

		fullFlag := "--" + flag.Name
		if strings.HasPrefix(fullFlag, prefix) {
			matches = append(matches, fullFlag)
		}
	})
	return matches
}

// findCobraCommandAndFlags walks the typed parts down the command tree.
func findCobraCommandAndFlags(rootCmd *cobra.Command, parts []string) (*cobra.Command, []string, string) {
	cmd := rootCmd
	cmdPath := []string{}
	var i int

	for i = 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "-") {
			break
		}

		found := false
		for _, subCmd := range cmd.Commands() {
			if subCmd.Name() == part {
				cmd = subCmd
				cmdPath = append(cmdPath, part)
				found = true
				break
			}
		}

		if !found {
			break
		}
	}

	flags := parts[i:]
	lastPart := ""
	if len(parts) > 0 {
		lastPart = parts[len(parts)-1]
	}

	return cmd, flags, lastPart
}

// completeCommand splices the chosen completion into the input line.
func (t *AutoCompleteTerminal) completeCommand(input, completion string) string {
	if input == "" {
		return completion
	}

	parts := strings.Fields(input)

	if len(parts) == 1 && !strings.HasSuffix(input, " ") {
		return completion
	}

	newInput := strings.Join(parts[:len(parts)-1], " ") + " " + completion
	return newInput
}

func getCursorPosition() (int, int) {
	fmt.Print("\033[6n")

	var row, col int

	fmt.Scanf("\033[%d;%dR", &row, &col)
	return row, col
}

func printOptions(options []string, startRow, startCol int) {
	for i, option := range options {
		fmt.Printf("\033[%d;%dH%d. %s\n", startRow+i, startCol, i+1, option)
	}
}
