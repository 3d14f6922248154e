package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"splice/internal/cut"
	"splice/internal/cutset"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <set-file>",
		Short: "Display the segments in a cut set file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.ensureLogger().With("component", "show")

			set, err := cutset.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read set file: %w", err)
			}
			logger.Debug("set file loaded", "path", args[0], "segments", set.Len())

			if asJSON {
				records := make([]map[string]any, 0, set.Len())
				for _, seg := range set.Segments() {
					records = append(records, cut.Serialize(seg))
				}
				return writeJSON(cmd, records)
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, set.Len())
			total := 0.0
			for _, seg := range set.Segments() {
				rows = append(rows, segmentRow(seg))
				total += seg.Duration()
			}

			headers := []string{"ID", "KIND", "START", "DURATION", "CH", "RECORDING", "ATTRIBUTES"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft}
			fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
			fmt.Fprintf(out, "%d segments, %.3fs total\n", set.Len(), total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit serialized records as JSON")
	return cmd
}

func segmentRow(seg cut.Segment) []string {
	id := seg.ID()
	duration := formatSeconds(seg.Duration())

	switch s := seg.(type) {
	case cut.Cut:
		recording := "-"
		if rec, ok := s.Recording(); ok {
			recording = rec.ID
		}
		return []string{
			id, "cut",
			formatSeconds(s.Start()), duration,
			strconv.Itoa(s.Channel()), recording,
			attributeList(s.Attributes().Names()),
		}
	case cut.PaddingCut:
		return []string{
			id, "padding",
			"-", duration,
			"-", "-",
			attributeList(s.Attributes().Names()),
		}
	case cut.MixedCut:
		kind := fmt.Sprintf("mixed(%d)", len(s.Tracks()))
		return []string{
			id, kind,
			"-", duration,
			"-", "-",
			attributeList(mixedAttributeNames(s)),
		}
	default:
		return []string{id, "unknown", "-", duration, "-", "-", ""}
	}
}

// mixedAttributeNames lists the attribute names of the first data track,
// which is the track attribute reads delegate to.
func mixedAttributeNames(m cut.MixedCut) []string {
	for _, track := range m.Tracks() {
		if c, ok := track.Cut.(cut.Cut); ok {
			return c.Attributes().Names()
		}
	}
	return nil
}

func attributeList(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
