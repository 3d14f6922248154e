package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"splice/internal/cut"
	"splice/internal/cutset"
)

type setStats struct {
	Segments   int            `json:"segments"`
	Counts     map[string]int `json:"counts"`
	MinSeconds float64        `json:"min_seconds"`
	MeanSec    float64        `json:"mean_seconds"`
	MaxSeconds float64        `json:"max_seconds"`
	TotalSec   float64        `json:"total_seconds"`
	Attributes map[string]int `json:"attributes"`
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats <set-file>",
		Short: "Summarize a cut set file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := cutset.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read set file: %w", err)
			}

			stats := summarizeSet(set)
			if asJSON {
				return writeJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Segments: %d\n", stats.Segments)
			for _, kind := range []string{"cut", "padding", "mixed"} {
				if n := stats.Counts[kind]; n > 0 {
					fmt.Fprintf(out, "  %-8s %d\n", kind+":", n)
				}
			}
			if stats.Segments > 0 {
				fmt.Fprintf(out, "Duration: min %.3fs  mean %.3fs  max %.3fs  total %.3fs\n",
					stats.MinSeconds, stats.MeanSec, stats.MaxSeconds, stats.TotalSec)
			}
			if len(stats.Attributes) > 0 {
				fmt.Fprintln(out, "Attributes:")
				names := make([]string, 0, len(stats.Attributes))
				for name := range stats.Attributes {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "  %-16s %d\n", name, stats.Attributes[name])
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the summary as JSON")
	return cmd
}

func summarizeSet(set cutset.Set) setStats {
	stats := setStats{
		Counts:     map[string]int{},
		Attributes: map[string]int{},
	}

	for _, seg := range set.Segments() {
		stats.Segments++
		duration := seg.Duration()
		stats.TotalSec += duration
		if stats.Segments == 1 || duration < stats.MinSeconds {
			stats.MinSeconds = duration
		}
		if duration > stats.MaxSeconds {
			stats.MaxSeconds = duration
		}

		var names []string
		switch s := seg.(type) {
		case cut.Cut:
			stats.Counts["cut"]++
			names = s.Attributes().Names()
		case cut.PaddingCut:
			stats.Counts["padding"]++
			names = s.Attributes().Names()
		case cut.MixedCut:
			stats.Counts["mixed"]++
			names = mixedAttributeNames(s)
		}
		for _, name := range names {
			stats.Attributes[name]++
		}
	}

	if stats.Segments > 0 {
		stats.MeanSec = stats.TotalSec / float64(stats.Segments)
	}
	return stats
}
