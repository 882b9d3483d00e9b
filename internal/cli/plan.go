package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/leaddist/internal/core"
)

func defaultUploader() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "distctl"
}

// defaultPlanPath puts leads.csv's plan next to it as leads.plan.json.
func defaultPlanPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".plan.json"
}

func planCmd() *cobra.Command {
	var (
		rosterPath string
		outPath    string
		uploadedBy string
	)

	c := &cobra.Command{
		Use:   "plan FILE",
		Short: "Split a sheet across the roster and write the plan as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := LoadRoster(rosterPath)
			if err != nil {
				return err
			}

			data, format, err := readUpload(args[0])
			if err != nil {
				return err
			}

			dest := outPath
			if dest == "" {
				dest = defaultPlanPath(args[0])
			}
			recorder := NewFileRecorder(dest)

			out, err := core.NewDistributor(roster, recorder).Distribute(cmd.Context(), core.Upload{
				FileName:   filepath.Base(args[0]),
				Format:     format,
				Data:       data,
				UploadedBy: uploadedBy,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			writePlanReport(w, out)
			fmt.Fprintf(w, "plan written to %s\n", recorder.LastPath())
			return nil
		},
	}

	c.Flags().StringVarP(&rosterPath, "roster", "r", "", "YAML roster file (required)")
	c.Flags().StringVarP(&outPath, "out", "o", "", "plan output path (default: FILE with .plan.json)")
	c.Flags().StringVar(&uploadedBy, "uploaded-by", defaultUploader(), "principal recorded as the uploader")
	_ = c.MarkFlagRequired("roster")
	return c
}
