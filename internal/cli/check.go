package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/leaddist/internal/core"
)

// readUpload loads a sheet from disk and derives its format from the extension.
func readUpload(path string) ([]byte, core.Format, error) {
	format, err := core.FormatForFile(path)
	if err != nil {
		return nil, 0, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	return data, format, nil
}

func checkCmd() *cobra.Command {
	var asJSON bool

	c := &cobra.Command{
		Use:   "check FILE",
		Short: "Parse and validate a sheet and report rejected rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, format, err := readUpload(args[0])
			if err != nil {
				return err
			}

			result, err := core.Prepare(data, format)
			if err != nil && core.KindOf(err) != core.KindNoAcceptedRecords {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(map[string]any{
					"accepted":         len(result.Accepted),
					"skippedCount":     len(result.Rejected),
					"validationErrors": result.Rejected,
				}); encErr != nil {
					return encErr
				}
			} else {
				writeFileLine(out, args[0], format, len(data))
				writeCheckReport(out, result)
			}
			return err
		},
	}

	c.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return c
}
