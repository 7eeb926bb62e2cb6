package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/lead-api/internal/service"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print aggregate qualification stats for the collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc, cleanup, err := openService(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		st, err := svc.Stats(ctx)
		if err != nil {
			return err
		}

		printStats(st)
		return nil
	},
}

func printStats(st *service.Stats) {
	p := message.NewPrinter(language.English)

	p.Printf("Analysed leads:     %d\n", st.Total)
	p.Printf("Qualified:          %d\n", st.Qualified)
	p.Printf("Not qualified:      %d\n", st.NotQualified)
	p.Printf("Qualification rate: %.1f%%\n", st.QualificationRate*100)
	p.Printf("Avg confidence:     %.3f\n", st.AvgConfidence)
	p.Printf("Avg messages:       %.1f\n", st.AvgMessages)

	if len(st.IntentBreakdown) == 0 {
		return
	}
	fmt.Println("\nIntent breakdown:")
	intents := make([]string, 0, len(st.IntentBreakdown))
	for intent := range st.IntentBreakdown {
		intents = append(intents, intent)
	}
	// Highest count first, ties alphabetical.
	sort.Slice(intents, func(i, j int) bool {
		ci, cj := st.IntentBreakdown[intents[i]], st.IntentBreakdown[intents[j]]
		if ci != cj {
			return ci > cj
		}
		return intents[i] < intents[j]
	})
	for _, intent := range intents {
		p.Printf("  %-20s %d\n", intent, st.IntentBreakdown[intent])
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
