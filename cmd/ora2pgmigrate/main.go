// Package main contains the CLI for the Oracle-to-PostgreSQL migration
// tool. It uses cobra for command/flag handling.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ora2pg/migrator/applier"
	"github.com/ora2pg/migrator/config"
	"github.com/ora2pg/migrator/migrate"
	"github.com/ora2pg/migrator/migrateerr"
	"github.com/ora2pg/migrator/monitoring"
	"github.com/ora2pg/migrator/report"
)

type rootFlags struct {
	configPath string
}

type planFlags struct {
	rootFlags
}

type applyFlags struct {
	rootFlags
	planFile string
}

type migrateFlags struct {
	rootFlags
	skipValidate bool
}

type validateFlags struct {
	rootFlags
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "ora2pgmigrate",
		Short: "One-shot Oracle to PostgreSQL schema and data migration",
	}

	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(applyCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(migrate.ErrorExitCode(err))
	}
}

func planCmd() *cobra.Command {
	flags := &planFlags{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Introspect the source schema and write plan.sql without touching the target",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runPlan(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "ora2pgmigrate.yaml", "Path to the YAML config file")
	return cmd
}

func applyCmd() *cobra.Command {
	flags := &applyFlags{}
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a previously generated plan.sql to the target",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runApply(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "ora2pgmigrate.yaml", "Path to the YAML config file")
	cmd.Flags().StringVar(&flags.planFile, "plan", "", "Plan SQL file to apply (defaults to output.dir/output.plan_sql)")
	return cmd
}

func migrateCmd() *cobra.Command {
	flags := &migrateFlags{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Plan, apply and load data in one run",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMigrate(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "ora2pgmigrate.yaml", "Path to the YAML config file")
	cmd.Flags().BoolVar(&flags.skipValidate, "skip-validate", false, "Skip the post-load row-count validation pass")
	return cmd
}

func validateCmd() *cobra.Command {
	flags := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compare source and target row counts for a previously migrated schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runValidate(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "ora2pgmigrate.yaml", "Path to the YAML config file")
	return cmd
}

func loadConfigAndLogger(path string) (*config.Config, *monitoring.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	log, err := monitoring.New(monitoring.Config{
		Level:      monitoring.InfoLevel,
		Format:     monitoring.TextFormat,
		OutputPath: cfg.Output.Dir + "/migration.log",
		ErrorPath:  cfg.Output.Dir + "/migration-error.log",
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func runPlan(flags *planFlags) error {
	ctx := context.Background()
	cfg, log, err := loadConfigAndLogger(flags.configPath)
	if err != nil {
		return err
	}

	plan, err := migrate.BuildPlan(ctx, cfg, log)
	if err != nil {
		return err
	}

	path, err := report.WritePlanSQL(cfg.Output.Dir, cfg.Output.PlanSQL, plan.Plan)
	if err != nil {
		return err
	}

	warnings := report.CheckPlanCoverage(plan.Snapshot, plan.Plan)
	for _, w := range warnings {
		log.Warn(w.Description, map[string]any{"kind": w.Kind})
	}

	fmt.Printf("plan written to %s (%d statements, %d warnings)\n", path, len(plan.Plan), len(warnings))
	return nil
}

func runApply(flags *applyFlags) error {
	ctx := context.Background()
	cfg, log, err := loadConfigAndLogger(flags.configPath)
	if err != nil {
		return err
	}

	planPath := flags.planFile
	if planPath == "" {
		planPath = cfg.Output.Dir + "/" + cfg.Output.PlanSQL
	}
	data, err := os.ReadFile(planPath)
	if err != nil {
		return fmt.Errorf("reading plan file: %w", err)
	}
	statements := applier.SplitStatements(string(data))

	pool, result, err := migrate.ApplyPlan(ctx, cfg, statements, log)
	if pool != nil {
		defer pool.Close()
	}
	fmt.Printf("applied %d/%d statements\n", result.Applied, result.Applied+result.Failed)
	return err
}

func runMigrate(flags *migrateFlags) error {
	ctx := context.Background()
	cfg, log, err := loadConfigAndLogger(flags.configPath)
	if err != nil {
		return err
	}
	metrics := monitoring.NewMetrics()

	plan, err := migrate.BuildPlan(ctx, cfg, log)
	if err != nil {
		return err
	}

	if _, err := report.WritePlanSQL(cfg.Output.Dir, cfg.Output.PlanSQL, plan.Plan); err != nil {
		return err
	}

	rep, err := report.New(cfg.Output)
	if err != nil {
		return err
	}
	_ = rep.Log(fmt.Sprintf("migration started: %d tables, %d statements", len(plan.Snapshot.Tables), len(plan.Plan)))

	if cfg.Migrate.DryRun {
		_ = rep.Log("dry run requested; skipping apply and load")
		return nil
	}

	pool, applyResult, err := migrate.ApplyPlan(ctx, cfg, plan.Plan, log)
	if pool != nil {
		defer pool.Close()
	}
	if err != nil {
		_ = rep.Log(fmt.Sprintf("ddl application failed: %v", err))
		return err
	}
	_ = rep.Log(fmt.Sprintf("ddl applied: %d statements", applyResult.Applied))

	stats := migrate.LoadData(ctx, cfg, plan.Snapshot, plan.Mapper, pool, metrics, log)
	for _, s := range stats {
		_ = rep.LogTableStats(s)
	}

	if flags.skipValidate {
		return nil
	}

	results, err := migrate.ValidateRowCounts(ctx, cfg, plan.Snapshot, pool)
	if err != nil {
		_ = rep.Log(fmt.Sprintf("row count validation failed: %v", err))
		return err
	}
	for table, r := range results {
		_ = rep.LogValidation(table, r)
	}
	if !report.AllMatch(results) {
		return migrateerr.New(migrateerr.ValidationMismatch, "row count mismatch after migration", nil)
	}

	fmt.Printf("migration complete: %d tables, %d rows copied\n", len(stats), metrics.Snapshot()["rows_copied"])
	return nil
}

func runValidate(flags *validateFlags) error {
	ctx := context.Background()
	cfg, log, err := loadConfigAndLogger(flags.configPath)
	if err != nil {
		return err
	}

	plan, err := migrate.BuildPlan(ctx, cfg, log)
	if err != nil {
		return err
	}

	pool, _, err := migrate.ApplyPlan(ctx, cfg, nil, log)
	if pool != nil {
		defer pool.Close()
	}
	if err != nil {
		return err
	}

	results, err := migrate.ValidateRowCounts(ctx, cfg, plan.Snapshot, pool)
	if err != nil {
		return err
	}
	for table, r := range results {
		status := "MATCH"
		if !r.Match {
			status = "MISMATCH"
		}
		fmt.Printf("%s: oracle=%d postgres=%d (%s)\n", table, r.Oracle, r.Postgres, status)
	}
	if !report.AllMatch(results) {
		return migrateerr.New(migrateerr.ValidationMismatch, "row count mismatch", nil)
	}
	return nil
}
