package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ykvlv/autoreply-bot/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct {
	db   *sql.DB
	q    querier
	inTx bool
}

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single connection: SQLite is a single-writer engine, and it serializes
	// every transaction started by Atomically.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return NewSQLiteRepo(db), nil
}

// NewSQLiteRepo wraps an already opened and migrated database.
func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db, q: db}
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// Atomically runs fn inside a single transaction.
func (r *SQLiteRepo) Atomically(ctx context.Context, fn func(Repo) error) error {
	if r.inTx {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin tx", err)
	}
	if err := fn(&SQLiteRepo{db: r.db, q: tx, inTx: true}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit tx", err)
	}
	return nil
}

// --- Reply state ---

func (r *SQLiteRepo) GetReplyState(ctx context.Context, ownerID int64) (*domain.ReplyState, error) {
	var (
		autoInt   int
		message   string
		customInt int
		updatedAt int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT auto_reply_enabled, default_message, custom_rules_enabled, updated_at
		FROM reply_state
		WHERE owner_id = ?`,
		ownerID,
	).Scan(&autoInt, &message, &customInt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get reply state", err)
	}
	return &domain.ReplyState{
		OwnerID:            ownerID,
		AutoReplyEnabled:   autoInt != 0,
		DefaultMessage:     message,
		CustomRulesEnabled: customInt != 0,
		UpdatedAt:          fromMillis(updatedAt),
	}, nil
}

// SaveReplyState inserts or replaces the owner's state row.
func (r *SQLiteRepo) SaveReplyState(ctx context.Context, st *domain.ReplyState) error {
	if st == nil {
		return errors.New("nil reply state")
	}
	updated := st.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO reply_state (owner_id, auto_reply_enabled, default_message, custom_rules_enabled, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			auto_reply_enabled   = excluded.auto_reply_enabled,
			default_message      = excluded.default_message,
			custom_rules_enabled = excluded.custom_rules_enabled,
			updated_at           = excluded.updated_at`,
		st.OwnerID, boolToInt(st.AutoReplyEnabled), st.DefaultMessage,
		boolToInt(st.CustomRulesEnabled), toMillis(updated),
	)
	if err != nil {
		return storageErr("save reply state", err)
	}
	return nil
}

// --- Time rules ---

// AddRule appends a rule; r.Seq is set to the assigned ordering key.
func (r *SQLiteRepo) AddRule(ctx context.Context, ownerID int64, rule *domain.TimeRule) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO time_rules (owner_id, rule_id, category, start_m, end_m)
		VALUES (?, ?, ?, ?, ?)`,
		ownerID, rule.ID, rule.Category, int(rule.Start), int(rule.End),
	)
	if err != nil {
		return storageErr("add rule", err)
	}
	if seq, err := res.LastInsertId(); err == nil {
		rule.Seq = seq
	}
	return nil
}

func (r *SQLiteRepo) ListRules(ctx context.Context, ownerID int64) ([]domain.TimeRule, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT seq, rule_id, category, start_m, end_m
		FROM time_rules
		WHERE owner_id = ?
		ORDER BY seq ASC`,
		ownerID,
	)
	if err != nil {
		return nil, storageErr("list rules", err)
	}
	defer rows.Close()

	var res []domain.TimeRule
	for rows.Next() {
		var (
			rule       domain.TimeRule
			start, end int
		)
		if err := rows.Scan(&rule.Seq, &rule.ID, &rule.Category, &start, &end); err != nil {
			return nil, storageErr("scan rule", err)
		}
		rule.Start, rule.End = domain.ClockTime(start), domain.ClockTime(end)
		res = append(res, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list rules", err)
	}
	return res, nil
}

func (r *SQLiteRepo) GetRule(ctx context.Context, ownerID int64, ruleID string) (*domain.TimeRule, error) {
	var (
		rule       domain.TimeRule
		start, end int
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT seq, rule_id, category, start_m, end_m
		FROM time_rules
		WHERE owner_id = ? AND rule_id = ?`,
		ownerID, ruleID,
	).Scan(&rule.Seq, &rule.ID, &rule.Category, &start, &end)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRuleNotFound, ruleID)
	}
	if err != nil {
		return nil, storageErr("get rule", err)
	}
	rule.Start, rule.End = domain.ClockTime(start), domain.ClockTime(end)
	return &rule, nil
}

func (r *SQLiteRepo) UpdateRuleWindow(ctx context.Context, ownerID int64, ruleID string, start, end domain.ClockTime) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE time_rules
		SET start_m = ?, end_m = ?
		WHERE owner_id = ? AND rule_id = ?`,
		int(start), int(end), ownerID, ruleID,
	)
	if err != nil {
		return false, storageErr("update rule", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("update rule", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepo) DeleteRule(ctx context.Context, ownerID int64, ruleID string) (int64, error) {
	return r.deleteRules(ctx, "delete rule",
		`DELETE FROM time_rules WHERE owner_id = ? AND rule_id = ?`, ownerID, ruleID)
}

func (r *SQLiteRepo) DeleteRulesByCategory(ctx context.Context, ownerID int64, category string) (int64, error) {
	return r.deleteRules(ctx, "delete category",
		`DELETE FROM time_rules WHERE owner_id = ? AND category = ?`, ownerID, category)
}

func (r *SQLiteRepo) DeleteAllRules(ctx context.Context, ownerID int64) (int64, error) {
	return r.deleteRules(ctx, "delete all rules",
		`DELETE FROM time_rules WHERE owner_id = ?`, ownerID)
}

func (r *SQLiteRepo) deleteRules(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storageErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr(op, err)
	}
	return n, nil
}

// --- Temporary override ---

func (r *SQLiteRepo) GetOverride(ctx context.Context, ownerID int64) (*domain.TempOverride, error) {
	var (
		category     string
		expiresAt    sql.NullInt64
		saved        string
		savedEnabled int
		activatedAt  int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT category, expires_at, saved_rules, saved_rules_enabled, activated_at
		FROM temp_override
		WHERE owner_id = ?`,
		ownerID,
	).Scan(&category, &expiresAt, &saved, &savedEnabled, &activatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get override", err)
	}
	rules, err := decodeSnapshot(saved)
	if err != nil {
		return nil, err
	}
	return &domain.TempOverride{
		OwnerID:           ownerID,
		Category:          category,
		ExpiresAt:         fromNullInt64(expiresAt),
		SavedRules:        rules,
		SavedRulesEnabled: savedEnabled != 0,
		ActivatedAt:       fromMillis(activatedAt),
	}, nil
}

func (r *SQLiteRepo) SaveOverride(ctx context.Context, o *domain.TempOverride) error {
	if o == nil {
		return errors.New("nil override")
	}
	saved, err := encodeSnapshot(o.SavedRules)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO temp_override (owner_id, category, expires_at, saved_rules, saved_rules_enabled, activated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			category            = excluded.category,
			expires_at          = excluded.expires_at,
			saved_rules         = excluded.saved_rules,
			saved_rules_enabled = excluded.saved_rules_enabled,
			activated_at        = excluded.activated_at`,
		o.OwnerID, o.Category, toNullInt64(o.ExpiresAt), saved,
		boolToInt(o.SavedRulesEnabled), toMillis(o.ActivatedAt),
	)
	if err != nil {
		return storageErr("save override", err)
	}
	return nil
}

func (r *SQLiteRepo) ClearOverride(ctx context.Context, ownerID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM temp_override WHERE owner_id = ?`, ownerID); err != nil {
		return storageErr("clear override", err)
	}
	return nil
}

// --- Pending confirmation ---

func (r *SQLiteRepo) GetPending(ctx context.Context, ownerID int64) (*domain.PendingConfirmation, error) {
	var (
		action    string
		target    string
		createdAt int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT action, target, created_at
		FROM pending_confirmation
		WHERE owner_id = ?`,
		ownerID,
	).Scan(&action, &target, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get pending", err)
	}
	// Action is validated by the gate so a corrupt row can still be cleared.
	return &domain.PendingConfirmation{
		OwnerID:   ownerID,
		Action:    domain.Action(action),
		Target:    target,
		CreatedAt: fromMillis(createdAt),
	}, nil
}

// SetPending replaces any existing pending confirmation.
func (r *SQLiteRepo) SetPending(ctx context.Context, p *domain.PendingConfirmation) error {
	if p == nil {
		return errors.New("nil pending confirmation")
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO pending_confirmation (owner_id, action, target, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			action     = excluded.action,
			target     = excluded.target,
			created_at = excluded.created_at`,
		p.OwnerID, string(p.Action), p.Target, toMillis(p.CreatedAt),
	)
	if err != nil {
		return storageErr("set pending", err)
	}
	return nil
}

func (r *SQLiteRepo) ClearPending(ctx context.Context, ownerID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM pending_confirmation WHERE owner_id = ?`, ownerID); err != nil {
		return storageErr("clear pending", err)
	}
	return nil
}

// --- Reply ledger ---

// IncrementLedger adds one to the recipient's count for date, inserting the row if needed.
func (r *SQLiteRepo) IncrementLedger(ctx context.Context, ownerID, recipientID int64, date string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO reply_ledger (owner_id, recipient_id, date, count)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(owner_id, recipient_id, date) DO UPDATE SET
			count = count + 1`,
		ownerID, recipientID, date,
	)
	if err != nil {
		return storageErr("increment ledger", err)
	}
	return nil
}

// LedgerRange returns entries with from <= date <= to, newest date first.
func (r *SQLiteRepo) LedgerRange(ctx context.Context, ownerID int64, from, to string) ([]domain.LedgerEntry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT recipient_id, date, count
		FROM reply_ledger
		WHERE owner_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC, count DESC, recipient_id ASC`,
		ownerID, from, to,
	)
	if err != nil {
		return nil, storageErr("ledger range", err)
	}
	defer rows.Close()

	var res []domain.LedgerEntry
	for rows.Next() {
		e := domain.LedgerEntry{OwnerID: ownerID}
		if err := rows.Scan(&e.RecipientID, &e.Date, &e.Count); err != nil {
			return nil, storageErr("scan ledger", err)
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("ledger range", err)
	}
	return res, nil
}
