// Package retry re-runs operations that failed for transient reasons.
//
// The PostgreSQL sink wraps each per-class load transaction in an Executor,
// so a dropped connection or a deadlock does not fail the whole conversion.
//
//	executor := retry.NewPostgreSQLExecutor().WithOnRetry(func(attempt int, err error, delay time.Duration) {
//	    logger.Verbose("retrying in %s: %v", delay, err)
//	})
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return loadTable(ctx, tbl)
//	})
//
// Classification recognizes transient SQLSTATE classes (08, 53, 57),
// serialization failures, deadlocks, lock timeouts, errors pgx marks safe to
// retry and common network failures.
package retry
