package cmd

import (
	"fmt"
	"sort"
	"strings"

	"db-reconcile/internal/report"
	"db-reconcile/internal/schema"
	"db-reconcile/internal/typedesc"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the live schema in dependency order",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := schema.NewIntrospector(DB, Dialect, SchemaName, Logger)

		var transcript report.List
		snap, err := in.Snapshot(cmd.Context(), &transcript)
		if err != nil {
			printTranscript(&transcript, false)
			return err
		}

		deps := schema.Dependencies(snap.Tables, snap.ForeignKeys)
		names := schema.SortByDependencies(snap.Tables.Names(), deps, Logger)

		fmt.Printf("🔍 %s schema [%s]: %d tables\n", Dialect.Name, SchemaName, len(names))
		for i, name := range names {
			t := snap.Tables[name]
			fmt.Printf("\n[%02d] %s (%s)", i+1, name, t.Type)
			if len(deps[name]) > 0 {
				fmt.Printf(" -> %s", strings.Join(deps[name], ", "))
			}
			fmt.Println()
			printColumns(snap.Columns[name])
			printForeignKeys(snap.ForeignKeys[name])
			printIndexes(snap.Indexes[name])
		}
		return nil
	},
}

func printColumns(cols map[string]*schema.Column) {
	names := make([]string, 0, len(cols))
	for n := range cols {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		c := cols[n]
		desc := typedesc.Descriptor{Base: c.TypeName, Size: c.Size, Decimals: c.Decimals}
		null := ""
		if c.Nullable == schema.NullNo {
			null = " NOT NULL"
		}
		fmt.Printf("    %-30s %s%s\n", n, desc, null)
	}
}

func printForeignKeys(fks map[string]*schema.ForeignKey) {
	names := make([]string, 0, len(fks))
	for n := range fks {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fk := fks[n]
		fmt.Printf("    FK  %-26s (%s) -> %s (%s)\n", n,
			strings.Join(fk.Columns, ", "), fk.RefTable, strings.Join(fk.RefColumns, ", "))
	}
}

func printIndexes(idx map[string]*schema.Index) {
	names := make([]string, 0, len(idx))
	for n := range idx {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		ix := idx[n]
		kind := "IDX"
		if ix.Unique {
			kind = "UK "
		}
		cols := strings.Join(ix.Columns, ", ")
		if cols == "" {
			cols = "expression"
		}
		fmt.Printf("    %s %-26s (%s)\n", kind, n, cols)
	}
}

func init() {
	RootCmd.AddCommand(inspectCmd)
}
