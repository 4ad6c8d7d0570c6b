package cmd

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/giygas/druglabel-checker/interactions"
	"github.com/giygas/druglabel-checker/tui"
	"github.com/giygas/druglabel-checker/validation"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive terminal interface",
	Long: `Start the terminal interface: enter two drug names, then scroll through the
label excerpts and the cross-mention result.

Console logging is off while the interface runs; the log file still records it.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	service := interactions.NewService(newLabelSource(appConfig))
	model := tui.NewModel(cmd.Context(), service, validation.NewNameValidator())

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
