package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/giygas/druglabel-checker/interactions"
	"github.com/giygas/druglabel-checker/render"
	"github.com/spf13/cobra"
)

var checkJSON bool

var errNameRequired = errors.New("drug name is required")

var checkCmd = &cobra.Command{
	Use:   "check [drug-a] [drug-b]",
	Short: "Show label excerpts for two drugs and check for cross-mentions",
	Long: `Looks up the openFDA label of each drug, prints its interaction, warning and
precaution excerpts, then reports whether either drug is named in the other's
"Drug Interactions" or "Warnings and Cautions" text.

Missing drug names are read from standard input.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	promptOut := out
	if checkJSON {
		promptOut = cmd.ErrOrStderr()
	} else {
		fmt.Fprintln(out, render.Banner)
	}

	names, err := readDrugNames(cmd.InOrStdin(), promptOut, args)
	if err != nil {
		return err
	}

	service := interactions.NewService(newLabelSource(appConfig))
	report, err := service.Check(cmd.Context(), names[0], names[1])
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), render.LookupFailed)
		return fmt.Errorf("could not retrieve label data: %w", err)
	}

	if checkJSON {
		return render.WriteJSON(out, report)
	}
	return render.WriteReport(out, report)
}

var prompts = [2]string{"Enter first drug name: ", "Enter second drug name: "}

// readDrugNames takes names from args and prompts on in for the rest.
func readDrugNames(in io.Reader, out io.Writer, args []string) ([2]string, error) {
	var names [2]string
	copy(names[:], args)

	reader := bufio.NewReader(in)
	for i := range names {
		if i >= len(args) {
			fmt.Fprint(out, prompts[i])
			line, err := reader.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return names, fmt.Errorf("failed to read drug name: %w", err)
			}
			names[i] = line
		}
		names[i] = strings.TrimSpace(names[i])
		if names[i] == "" {
			return names, errNameRequired
		}
	}
	return names, nil
}
