package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"splice/internal/cut"
	"splice/internal/cutset"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <set-file>",
		Short: "Check every record in a cut set file",
		Long: `Decode every record in a cut set file and report each invalid one
with its position. Unlike show, validation continues past bad records
so one malformed line does not hide the rest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			problems, total, err := validateSetFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, problem := range problems {
				fmt.Fprintln(out, problem)
			}
			if len(problems) > 0 {
				return fmt.Errorf("found %d problems in %d records", len(problems), total)
			}
			fmt.Fprintf(out, "OK: %d records\n", total)
			return nil
		},
	}
}

func validateSetFile(path string) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open set file: %w", err)
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".jsonl.gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, 0, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		return validateJSONLines(gz)
	case strings.HasSuffix(path, ".jsonl"):
		return validateJSONLines(f)
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return validateYAMLRecords(f)
	default:
		return nil, 0, fmt.Errorf("%w: %s", cutset.ErrUnknownFormat, path)
	}
}

func validateJSONLines(r io.Reader) ([]string, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	seen := map[string]int{}
	var problems []string
	line, total := 0, 0

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		total++

		var record map[string]any
		if err := json.Unmarshal([]byte(text), &record); err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		seg, err := cut.Deserialize(record)
		if err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if first, dup := seen[seg.ID()]; dup {
			problems = append(problems, fmt.Sprintf("line %d: duplicate id %q (first seen on line %d)", line, seg.ID(), first))
			continue
		}
		seen[seg.ID()] = line
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan records: %w", err)
	}
	return problems, total, nil
}

func validateYAMLRecords(r io.Reader) ([]string, int, error) {
	var records []map[string]any
	if err := yaml.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("decode yaml: %w", err)
	}

	seen := map[string]int{}
	var problems []string
	for i, record := range records {
		position := i + 1
		seg, err := cut.Deserialize(record)
		if err != nil {
			problems = append(problems, fmt.Sprintf("record %d: %v", position, err))
			continue
		}
		if first, dup := seen[seg.ID()]; dup {
			problems = append(problems, fmt.Sprintf("record %d: duplicate id %q (first seen in record %d)", position, seg.ID(), first))
			continue
		}
		seen[seg.ID()] = position
	}
	return problems, len(records), nil
}
