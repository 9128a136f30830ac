package migrate

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ora2pg/migrator/applier"
	"github.com/ora2pg/migrator/catalog"
	"github.com/ora2pg/migrator/config"
	"github.com/ora2pg/migrator/dbconn"
	"github.com/ora2pg/migrator/ident"
	"github.com/ora2pg/migrator/loader"
	"github.com/ora2pg/migrator/migrateerr"
	"github.com/ora2pg/migrator/monitoring"
	"github.com/ora2pg/migrator/oradb"
	"github.com/ora2pg/migrator/planner"
	"github.com/ora2pg/migrator/report"
)

// PlanResult is the outcome of introspecting the source and planning
// target DDL, shared by the plan/apply/migrate subcommands so apply and
// migrate never have to re-derive the identifier mapping plan used.
type PlanResult struct {
	Snapshot *catalog.CatalogSnapshot
	Mapper   *ident.Mapper
	Plan     []string
}

// BuildPlan opens the source, takes a catalog snapshot and produces the
// ordered DDL plan for it. The Introspector connection is closed before
// returning; planning itself needs no live connection.
func BuildPlan(ctx context.Context, cfg *config.Config, log *monitoring.Logger) (*PlanResult, error) {
	log.Info("connecting to oracle for catalog introspection", map[string]any{"owner": cfg.Oracle.Owner})

	in, err := catalog.Open(ctx, catalog.Config{
		DSN:           cfg.Oracle.DSN,
		User:          cfg.Oracle.User,
		Password:      cfg.Oracle.Password,
		Owner:         cfg.Oracle.Owner,
		IncludeTables: cfg.Migrate.IncludeTables,
		ExcludeTables: cfg.Migrate.ExcludeTables,
	})
	if err != nil {
		return nil, err
	}
	defer in.Close()

	_ = in.SetCurrentSchema(ctx)

	snap, err := in.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("catalog snapshot complete", map[string]any{
		"tables": len(snap.Tables), "sequences": len(snap.Sequences), "foreign_keys": len(snap.ForeignKeys),
	})

	if len(snap.Tables) == 0 {
		return nil, migrateerr.New(migrateerr.Catalog, noTablesMessage, nil).WithContext("owner", cfg.Oracle.Owner)
	}

	mapper := ident.NewMapper()
	plan := planner.Plan(snap, mapper, planner.Config{
		TargetSchema: cfg.Postgres.Schema,
		Deferrable:   cfg.Migrate.FksDeferrable,
	})

	return &PlanResult{Snapshot: snap, Mapper: mapper, Plan: plan}, nil
}

// ApplyPlan executes the planned DDL against Postgres through a fresh
// pgx pool, returning the pool for the caller to reuse during data load
// (or close if only DDL was requested).
func ApplyPlan(ctx context.Context, cfg *config.Config, plan []string, log *monitoring.Logger) (*pgxpool.Pool, applier.Result, error) {
	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, applier.Result{}, migrateerr.New(migrateerr.Connectivity, "connecting to postgres", err)
	}

	log.Info("applying ddl plan", map[string]any{"statements": len(plan)})
	result, err := applier.New(pool).Apply(ctx, plan)
	if err != nil {
		log.Error("ddl application had failures", map[string]any{"failed": result.Failed, "applied": result.Applied})
		return pool, result, err
	}
	return pool, result, nil
}

// LoadData migrates row data for every table in snap using pool for the
// target side, returning one TableStats per table.
func LoadData(ctx context.Context, cfg *config.Config, snap *catalog.CatalogSnapshot, mapper *ident.Mapper, pool *pgxpool.Pool, metrics *monitoring.Metrics, log *monitoring.Logger) []loader.TableStats {
	retry := dbconn.DefaultRetryConfig()
	dialer := NewDialer(cfg.Oracle, pool, retry)

	specs := make([]loader.TableSpec, 0, len(snap.Tables))
	for _, t := range snap.Tables {
		cols := snap.ColumnsFor(t.Name)
		colNames := make([]string, len(cols))
		for i, c := range cols {
			colNames[i] = c.Name
		}
		specs = append(specs, loader.TableSpec{
			Owner:        snap.Owner,
			Name:         t.Name,
			Columns:      colNames,
			TargetSchema: cfg.Postgres.Schema,
		})
	}

	ld := loader.New(loader.Config{
		Parallelism: cfg.Postgres.CopyParallelism,
		BatchRows:   cfg.Postgres.CopyBatchRows,
		ArraySize:   cfg.Oracle.ArraySize,
		OutDir:      cfg.Output.Dir,
		Deferrable:  cfg.Migrate.FksDeferrable,
	}, mapper, dialer)

	log.Info("loading table data", map[string]any{"tables": len(specs), "parallelism": cfg.Postgres.CopyParallelism})
	stats := ld.LoadAll(ctx, specs)

	for _, s := range stats {
		if s.Status == loader.StatusOK {
			metrics.IncrementTablesMigrated()
			metrics.AddRowsCopied(s.Rows)
		} else {
			metrics.IncrementErrorCount(string(migrateerr.Table))
		}
		if s.FailedBatches > 0 {
			for i := 0; i < s.FailedBatches; i++ {
				metrics.IncrementFailedBatches()
			}
		}
	}

	return stats
}

// ValidateRowCounts compares Oracle and Postgres row counts for every
// migrated table, opening a dedicated Oracle connection for the count
// queries independent of the worker pool used during load.
func ValidateRowCounts(ctx context.Context, cfg *config.Config, snap *catalog.CatalogSnapshot, pool *pgxpool.Pool) (map[string]report.CountResult, error) {
	retry := dbconn.DefaultRetryConfig()
	db, err := OpenOracleForCatalog(ctx, cfg.Oracle, retry)
	if err != nil {
		return nil, err
	}
	source := oradb.NewConn(db)
	defer source.Close()

	target, err := AcquireCounter(ctx, pool)
	if err != nil {
		return nil, err
	}
	defer target.Close()

	tables := make([]string, len(snap.Tables))
	for i, t := range snap.Tables {
		tables[i] = t.Name
	}

	return report.ValidateCounts(ctx, cfg.Oracle.Owner, cfg.Postgres.Schema, tables, source, target)
}

// ErrorExitCode maps a migration error to the process exit status the
// CLI reports, per the documented contract: 0 success, 1 no tables
// discovered, 2 row-count mismatch, 3 for any other fatal error.
func ErrorExitCode(err error) int {
	if err == nil {
		return 0
	}
	if migrateerr.Is(err, migrateerr.ValidationMismatch) {
		return 2
	}
	if migrateerr.Is(err, migrateerr.Catalog) && err.(*migrateerr.Error).Message == noTablesMessage {
		return 1
	}
	return 3
}

// noTablesMessage is the message of the Catalog-kind error BuildPlan
// returns when the owner has no tables; ErrorExitCode maps it to 1.
const noTablesMessage = "no tables discovered for owner"
