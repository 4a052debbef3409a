package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
)

// Table names for audit history.
const (
	auditRunsTable  = "bootup_audit_runs"
	urlResultsTable = "bootup_url_results"
	faultsTable     = "bootup_faults"
)

// historyTables lists the history tables in creation order.
var historyTables = []string{auditRunsTable, urlResultsTable, faultsTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the history database and migrates it to the latest schema.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// disabled reports whether the store is a no-op.
func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun creates a new audit run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(source, pageURL string, startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(auditRunsTable, hs.backend)
	args := []any{source, pageURL, formatTime(startTime, hs.backend), string(configJSON)}

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (source, page_url, start_time, config_params) VALUES ($1, $2, $3, $4) RETURNING run_id`, quotedTableName)
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (source, page_url, start_time, config_params) VALUES (?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert audit run: %w", err)
	}
	return runID, nil
}

// EndRun updates the audit run with the outcome and its duration.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, outcome *schema.AggregateOutcome) error {
	if hs.disabled() {
		return nil
	}
	if outcome == nil {
		return fmt.Errorf("run %d: outcome is nil", runID)
	}

	quotedTableName := quoteTableName(auditRunsTable, hs.backend)

	var raw any
	query := rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName), hs.backend)
	if err := hs.db.QueryRow(query, runID).Scan(&raw); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := storedTime(raw)
	if err != nil {
		return fmt.Errorf("failed to parse start_time: %w", err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	update := rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, multiplier = ?, total_bootup_ms = ?,
		tbt_impact_ms = ?, score = ?, not_applicable = ?, extension_overhead = ? WHERE run_id = ?`, quotedTableName), hs.backend)
	_, err = hs.db.Exec(update,
		formatTime(endTime, hs.backend), durationMs, outcome.Multiplier, outcome.TotalBootupTimeMs,
		outcome.TBTImpactMs, outcome.Score, outcome.NotApplicable, outcome.HadExcessiveExtensionOverhead, runID)
	if err != nil {
		return fmt.Errorf("failed to update audit run: %w", err)
	}
	return nil
}

// RecordURLResult stores one ranked row of an audit run.
func (hs *HistoryStoreImpl) RecordURLResult(runID int64, rank int, analysisTime time.Time, result schema.URLResult) error {
	if hs.disabled() {
		return nil
	}

	rankColumn := "rank"
	if hs.backend == schema.MySQLBackend {
		rankColumn = "`rank`"
	}
	query := rebind(fmt.Sprintf(`
		INSERT INTO %s (run_id, %s, url, analysis_time, total_ms, scripting_ms, script_parse_compile_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, quoteTableName(urlResultsTable, hs.backend), rankColumn), hs.backend)

	_, err := hs.db.Exec(query, runID, rank, result.URL, formatTime(analysisTime, hs.backend),
		result.Total, result.Scripting, result.ScriptParseCompile)
	if err != nil {
		return fmt.Errorf("failed to insert url result: %w", err)
	}
	return nil
}

// RecordFault stores a fault raised during an audit. Faults without an ID get a fresh UUID.
func (hs *HistoryStoreImpl) RecordFault(fault schema.Fault) error {
	if hs.disabled() {
		return nil
	}

	if fault.ID == "" {
		fault.ID = uuid.NewString()
	}
	if fault.Occurred.IsZero() {
		fault.Occurred = time.Now()
	}

	query := rebind(fmt.Sprintf(`INSERT INTO %s (fault_id, audit, level, source, message, occurred) VALUES (?, ?, ?, ?, ?, ?)`,
		quoteTableName(faultsTable, hs.backend)), hs.backend)
	_, err := hs.db.Exec(query, fault.ID, fault.Audit, fault.Level, fault.Source, fault.Message, formatTime(fault.Occurred, hs.backend))
	if err != nil {
		return fmt.Errorf("failed to insert fault: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	for _, table := range historyTables {
		var count int64
		row := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalRuns = int(status.TableSizes[auditRunsTable])
	status.TotalURLResults = int(status.TableSizes[urlResultsTable])
	status.TotalFaults = int(status.TableSizes[faultsTable])

	if status.TotalRuns == 0 {
		return status, nil
	}

	quotedRuns := quoteTableName(auditRunsTable, hs.backend)

	var lastRaw any
	row := hs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
	if err := row.Scan(&status.LastRunID, &lastRaw); err != nil {
		return status, fmt.Errorf("failed to get last run info: %w", err)
	}
	lastRunTime, err := storedTime(lastRaw)
	if err != nil {
		return status, fmt.Errorf("failed to parse last run time: %w", err)
	}
	status.LastRunTime = lastRunTime

	var oldestRaw any
	row = hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns))
	if err := row.Scan(&oldestRaw); err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}
	oldestRunTime, err := storedTime(oldestRaw)
	if err != nil {
		return status, fmt.Errorf("failed to parse oldest run time: %w", err)
	}
	status.OldestRunTime = oldestRunTime

	return status, nil
}

// GetAllRuns retrieves every recorded audit run ordered by ID.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.AuditRunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, source, page_url, start_time, end_time, run_duration_ms, multiplier,
		total_bootup_ms, tbt_impact_ms, score, not_applicable, extension_overhead, config_params
		FROM %s ORDER BY run_id`, quoteTableName(auditRunsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AuditRunRecord
	for rows.Next() {
		var record schema.AuditRunRecord
		var startRaw, endRaw any
		var duration sql.NullInt32
		var configParams sql.NullString

		if err := rows.Scan(&record.RunID, &record.Source, &record.PageURL, &startRaw, &endRaw, &duration,
			&record.Multiplier, &record.TotalBootupTimeMs, &record.TBTImpactMs, &record.Score,
			&record.NotApplicable, &record.ExtensionOverhead, &configParams); err != nil {
			return nil, fmt.Errorf("failed to scan audit run: %w", err)
		}

		if record.StartTime, err = storedTime(startRaw); err != nil {
			return nil, fmt.Errorf("failed to parse start time of run %d: %w", record.RunID, err)
		}
		if endRaw != nil {
			endTime, err := storedTime(endRaw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end time of run %d: %w", record.RunID, err)
			}
			record.EndTime = &endTime
		}
		if duration.Valid {
			record.RunDurationMs = &duration.Int32
		}
		if configParams.Valid {
			record.ConfigParams = &configParams.String
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit runs: %w", err)
	}
	return results, nil
}

// GetAllURLResults retrieves every recorded ranked row ordered by run and rank.
func (hs *HistoryStoreImpl) GetAllURLResults() ([]schema.URLResultRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	rankColumn := "rank"
	if hs.backend == schema.MySQLBackend {
		rankColumn = "`rank`"
	}
	query := fmt.Sprintf(`SELECT run_id, %[1]s, url, analysis_time, total_ms, scripting_ms, script_parse_compile_ms
		FROM %[2]s ORDER BY run_id, %[1]s`, rankColumn, quoteTableName(urlResultsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query url results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.URLResultRecord
	for rows.Next() {
		var record schema.URLResultRecord
		var analysisRaw any
		if err := rows.Scan(&record.RunID, &record.Rank, &record.URL, &analysisRaw,
			&record.Total, &record.Scripting, &record.ScriptParseCompile); err != nil {
			return nil, fmt.Errorf("failed to scan url result: %w", err)
		}
		if record.AnalysisTime, err = storedTime(analysisRaw); err != nil {
			return nil, fmt.Errorf("failed to parse analysis time: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating url results: %w", err)
	}
	return results, nil
}

// storedTime converts a scanned time column. SQLite yields RFC3339 text while
// MySQL (with parseTime=true) and PostgreSQL yield native times.
func storedTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseSQLiteTime(v)
	case []byte:
		return parseSQLiteTime(string(v))
	default:
		return time.Time{}, fmt.Errorf("unexpected time value %T", raw)
	}
}
