package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"splice/internal/cut"
	"splice/internal/cutset"
	"splice/internal/manifest"
)

func newPadCommand(ctx *commandContext) *cobra.Command {
	var (
		duration  float64
		direction string
		padValues []string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "pad <set-file>",
		Short: "Pad every segment and write a new set file",
		Long: `Pad every segment in a set file to a target duration and write the
result to a new set file. A duration of 0 pads to the longest member,
which reconciles sets whose members carry different frame shifts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.ensureLogger().With("component", "pad")

			opts, err := padOptions(direction, padValues)
			if err != nil {
				return err
			}

			set, err := cutset.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read set file: %w", err)
			}

			padded, err := set.Pad(duration, opts...)
			if err != nil {
				return fmt.Errorf("pad set: %w", err)
			}

			if err := cutset.WriteFile(output, padded); err != nil {
				return fmt.Errorf("write set file: %w", err)
			}

			target := duration
			if target <= 0 {
				target = set.MaxDuration()
			}
			logger.Debug("padded set written", "path", output, "segments", padded.Len(), "target", target)
			fmt.Fprintf(cmd.OutOrStdout(), "Padded %d segments to %.3fs -> %s\n", padded.Len(), target, output)
			return nil
		},
	}

	cmd.Flags().Float64VarP(&duration, "duration", "d", 0, "Target duration in seconds (0 pads to the longest member)")
	cmd.Flags().StringVar(&direction, "direction", "right", "Side to pad: left or right")
	cmd.Flags().StringArrayVar(&padValues, "pad-value", nil, "Fill value for a temporal attribute, as name=value (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination set file (required)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func padOptions(direction string, padValues []string) ([]cut.PadOption, error) {
	var opts []cut.PadOption

	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "right":
		opts = append(opts, cut.WithDirection(manifest.PadRight))
	case "left":
		opts = append(opts, cut.WithDirection(manifest.PadLeft))
	default:
		return nil, fmt.Errorf("invalid direction %q (want left or right)", direction)
	}

	for _, pair := range padValues {
		name, raw, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("invalid pad value %q (want name=value)", pair)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid pad value %q: %w", pair, err)
		}
		opts = append(opts, cut.WithPadValue(name, value))
	}

	return opts, nil
}
