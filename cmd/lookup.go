package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-api/internal/service"
)

var lookupOutput string

var lookupCmd = &cobra.Command{
	Use:   "lookup <sessionId>",
	Short: "Resolve a session identifier and print the lead with its transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc, cleanup, err := openService(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		detail, err := svc.Get(ctx, args[0])
		if err != nil {
			return err
		}

		return renderDetail(os.Stdout, detail, lookupOutput)
	},
}

func renderDetail(w io.Writer, detail *service.Detail, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(detail); err != nil {
			return eris.Wrap(err, "lookup: encode json")
		}
	case "yaml":
		if err := yaml.NewEncoder(w).Encode(detail); err != nil {
			return eris.Wrap(err, "lookup: encode yaml")
		}
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
	return nil
}

func init() {
	lookupCmd.Flags().StringVarP(&lookupOutput, "output", "o", "json", "output format: json or yaml")
	rootCmd.AddCommand(lookupCmd)
}
