package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"splice/internal/cut"
	"splice/internal/cutset"
	"splice/internal/registry"
)

func newRegistryCommand(ctx *commandContext) *cobra.Command {
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the persistent cut registry",
	}

	registryCmd.AddCommand(newRegistryImportCommand(ctx))
	registryCmd.AddCommand(newRegistryExportCommand(ctx))
	registryCmd.AddCommand(newRegistryListCommand(ctx))
	registryCmd.AddCommand(newRegistryShowCommand(ctx))
	registryCmd.AddCommand(newRegistryRemoveCommand(ctx))
	registryCmd.AddCommand(newRegistryClearCommand(ctx))
	registryCmd.AddCommand(newRegistryStatsCommand(ctx))

	return registryCmd
}

func newRegistryImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <set-file>",
		Short: "Import a cut set file into the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.ensureLogger().With("component", "registry")

			set, err := cutset.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read set file: %w", err)
			}

			return ctx.withRegistry(func(store *registry.Store) error {
				n, err := store.ImportSet(cmd.Context(), set)
				if err != nil {
					return fmt.Errorf("import set: %w", err)
				}
				logger.Debug("set imported", "path", args[0], "records", n)
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records from %s\n", n, args[0])
				return nil
			})
		},
	}
}

func newRegistryExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <set-file>",
		Short: "Export every registry record to a cut set file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.ensureLogger().With("component", "registry")

			return ctx.withRegistry(func(store *registry.Store) error {
				set, err := store.ExportSet(cmd.Context())
				if err != nil {
					return fmt.Errorf("export set: %w", err)
				}
				if err := cutset.WriteFile(args[0], set); err != nil {
					return fmt.Errorf("write set file: %w", err)
				}
				logger.Debug("set exported", "path", args[0], "records", set.Len())
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", set.Len(), args[0])
				return nil
			})
		},
	}
}

func newRegistryListCommand(ctx *commandContext) *cobra.Command {
	var kinds []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registry records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRegistry(func(store *registry.Store) error {
				segments, err := store.List(cmd.Context(), kinds...)
				if err != nil {
					return fmt.Errorf("list records: %w", err)
				}

				if asJSON {
					records := make([]map[string]any, 0, len(segments))
					for _, seg := range segments {
						records = append(records, cut.Serialize(seg))
					}
					return writeJSON(cmd, records)
				}

				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(segments))
				for _, seg := range segments {
					rows = append(rows, segmentRow(seg))
				}
				headers := []string{"ID", "KIND", "START", "DURATION", "CH", "RECORDING", "ATTRIBUTES"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft}
				fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
				fmt.Fprintf(out, "%d records\n", len(segments))
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&kinds, "kind", nil, "Filter by record kind: cut, padding, or mixed (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit serialized records as JSON")
	return cmd
}

func newRegistryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one registry record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRegistry(func(store *registry.Store) error {
				seg, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("get record: %w", err)
				}
				if seg == nil {
					return fmt.Errorf("no record with id %q", args[0])
				}
				return writeJSON(cmd, cut.Serialize(seg))
			})
		},
	}
}

func newRegistryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove records by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRegistry(func(store *registry.Store) error {
				out := cmd.OutOrStdout()
				for _, id := range args {
					removed, err := store.Remove(cmd.Context(), id)
					if err != nil {
						return fmt.Errorf("remove %q: %w", id, err)
					}
					if removed {
						fmt.Fprintf(out, "Removed %s\n", id)
					} else {
						fmt.Fprintf(out, "No record with id %s\n", id)
					}
				}
				return nil
			})
		},
	}
}

func newRegistryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every record from the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRegistry(func(store *registry.Store) error {
				n, err := store.Clear(cmd.Context())
				if err != nil {
					return fmt.Errorf("clear registry: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d records\n", n)
				return nil
			})
		},
	}
}

func newRegistryStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record counts by kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRegistry(func(store *registry.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return fmt.Errorf("registry stats: %w", err)
				}
				total, err := store.Count(cmd.Context())
				if err != nil {
					return fmt.Errorf("registry count: %w", err)
				}

				if asJSON {
					return writeJSON(cmd, map[string]any{"total": total, "counts": stats})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Records: %d\n", total)
				kinds := make([]string, 0, len(stats))
				for kind := range stats {
					kinds = append(kinds, kind)
				}
				sort.Strings(kinds)
				for _, kind := range kinds {
					fmt.Fprintf(out, "  %-8s %d\n", kind+":", stats[kind])
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the counts as JSON")
	return cmd
}
