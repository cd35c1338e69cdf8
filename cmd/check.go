package cmd

import (
	"fmt"
	"time"

	"db-reconcile/internal/model"
	"db-reconcile/internal/reconcile"
	"db-reconcile/internal/report"
	"db-reconcile/internal/schema"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	dryRun  bool
	verbose bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the database with the model and add what is missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		modelFile := viper.GetString("model.file")
		if modelFile == "" {
			return fmt.Errorf("model.file is required (via --model or config)")
		}
		m, err := model.Load(modelFile, viper.GetString("model.fieldtypes"))
		if err != nil {
			return err
		}

		actions, err := IndexActions(Dialect)
		if err != nil {
			return err
		}

		var exec reconcile.Executor = reconcile.NewSQLExecutor(DB)
		var recorder *reconcile.RecordingExecutor
		if dryRun {
			recorder = &reconcile.RecordingExecutor{}
			exec = recorder
			fmt.Println("[SIMULATION] Dry-Run Mode Active: no statement will be executed.")
		}

		fmt.Printf("Checking %d entities against %s schema [%s]\n", len(m.Entities), Dialect.Name, SchemaName)
		start := time.Now()

		uiprogress.Start()
		bar := uiprogress.AddBar(len(m.Entities)).AppendCompleted().PrependElapsed()
		current := ""
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return fmt.Sprintf("Checking %-24s", current)
		})

		in := schema.NewIntrospector(DB, Dialect, SchemaName, Logger)
		r := reconcile.New(in, exec, m.FieldTypes,
			reconcile.WithLogger(Logger),
			reconcile.WithIndexActions(actions...),
			reconcile.WithProgress(func(done, total int, entity string) {
				current = entity
				bar.Set(done)
			}),
		)

		var transcript report.List
		res, err := r.CheckDB(cmd.Context(), m.Entities, &transcript, CheckOptions())
		uiprogress.Stop()

		printTranscript(&transcript, verbose)
		if err != nil {
			return err
		}

		fmt.Println("--------------------------------------------------")
		if recorder != nil {
			fmt.Println("Statements that would run:")
			for i, stmt := range recorder.Statements() {
				fmt.Printf("[%02d] %s;\n", i+1, stmt)
			}
		}
		fmt.Printf("Tables created: %d, statements executed: %d\n", len(res.Created), len(res.Statements))
		Logger.Info("check done", zap.Duration("elapsed", time.Since(start)))

		if failures := multierr.Errors(res.Failures); len(failures) > 0 {
			return fmt.Errorf("check finished with %d failed statements", len(failures))
		}
		return nil
	},
}

var severityIcons = map[report.Severity]string{
	report.Verbose:   " ",
	report.Info:      "i",
	report.Important: "✓",
	report.Warning:   "!",
	report.Error:     "x",
}

func printTranscript(l *report.List, verbose bool) {
	floor := report.Info
	if verbose {
		floor = report.Verbose
	}
	fmt.Println("\nReconciliation Report:")
	for _, msg := range l.AtLeast(floor) {
		fmt.Printf("[%s] %-9s %s\n", severityIcons[msg.Severity], msg.Severity, msg.Text)
	}
}

func init() {
	RootCmd.AddCommand(checkCmd)

	checkCmd.Flags().String("model", "", "model file (YAML)")
	checkCmd.Flags().String("field-types", "", "field type file overriding the model's field types")
	checkCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the statements instead of executing them")
	checkCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also print verbose messages")
	checkCmd.Flags().Bool("add-missing", true, "Create missing tables, columns, foreign keys and indexes")
	checkCmd.Flags().Bool("promote", false, "Change sanctioned type promotions back to the declared type")
	checkCmd.Flags().Bool("widen", false, "Enlarge columns smaller than declared")

	viper.BindPFlag("model.file", checkCmd.Flags().Lookup("model"))
	viper.BindPFlag("model.fieldtypes", checkCmd.Flags().Lookup("field-types"))
	viper.BindPFlag("check.add_missing", checkCmd.Flags().Lookup("add-missing"))
	viper.BindPFlag("check.promote", checkCmd.Flags().Lookup("promote"))
	viper.BindPFlag("check.widen", checkCmd.Flags().Lookup("widen"))
}
