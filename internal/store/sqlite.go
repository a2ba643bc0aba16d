package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/models"
	"tradejournal/internal/trading"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trading plans own trades and capital additions
	CREATE TABLE IF NOT EXISTS trading_plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		risk_reward_ratio REAL NOT NULL,
		max_loss_amount REAL NOT NULL,
		initial_capital REAL NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	-- Trades; exit columns are NULL until the trade is closed
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		entry_price REAL NOT NULL,
		entry_time DATETIME NOT NULL,
		quantity REAL NOT NULL,
		stop_loss REAL NOT NULL,
		take_profit REAL NOT NULL,
		risk_amount REAL NOT NULL,
		reward_amount REAL NOT NULL,
		exit_price REAL,
		exit_time DATETIME,
		pnl REAL,
		pnl_percentage REAL,
		notes TEXT,
		screenshot TEXT,
		tags TEXT,
		trading_plan_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (trading_plan_id) REFERENCES trading_plans(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_trades_plan ON trades(trading_plan_id);
	CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status);
	CREATE INDEX IF NOT EXISTS idx_trades_exit_time ON trades(exit_time);

	-- Append-only capital ledger
	CREATE TABLE IF NOT EXISTS capital_additions (
		id TEXT PRIMARY KEY,
		amount REAL NOT NULL,
		description TEXT,
		added_at DATETIME NOT NULL,
		trading_plan_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (trading_plan_id) REFERENCES trading_plans(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_capital_plan ON capital_additions(trading_plan_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Trading plans ---

// SavePlan inserts a new trading plan.
func (s *SQLiteStore) SavePlan(ctx context.Context, plan *models.TradingPlan) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trading_plans
		(id, name, description, risk_reward_ratio, max_loss_amount, initial_capital, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID, plan.Name, plan.Description, plan.RiskRewardRatio, plan.MaxLossAmount,
		plan.InitialCapital, plan.IsActive, plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}
	return nil
}

// GetPlan returns a single trading plan by ID.
func (s *SQLiteStore) GetPlan(ctx context.Context, id string) (*models.TradingPlan, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, risk_reward_ratio, max_loss_amount, initial_capital, is_active, created_at, updated_at
		FROM trading_plans WHERE id = ?`, id)

	plan, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// ListPlans returns all trading plans, newest first.
func (s *SQLiteStore) ListPlans(ctx context.Context) ([]models.TradingPlan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, risk_reward_ratio, max_loss_amount, initial_capital, is_active, created_at, updated_at
		FROM trading_plans ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []models.TradingPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

// UpdatePlan updates an existing trading plan.
func (s *SQLiteStore) UpdatePlan(ctx context.Context, plan *models.TradingPlan) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trading_plans
		SET name = ?, description = ?, risk_reward_ratio = ?, max_loss_amount = ?, initial_capital = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		plan.Name, plan.Description, plan.RiskRewardRatio, plan.MaxLossAmount,
		plan.InitialCapital, plan.IsActive, plan.UpdatedAt, plan.ID,
	)
	if err != nil {
		return fmt.Errorf("updating plan: %w", err)
	}
	return requireRow(res, apperrors.ErrPlanNotFound)
}

// DeletePlan removes a plan; its trades and capital additions cascade.
func (s *SQLiteStore) DeletePlan(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trading_plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	return requireRow(res, apperrors.ErrPlanNotFound)
}

// --- Trades ---

const tradeColumns = `id, symbol, type, status, entry_price, entry_time, quantity, stop_loss, take_profit,
	risk_amount, reward_amount, exit_price, exit_time, pnl, pnl_percentage, notes, screenshot, tags,
	trading_plan_id, created_at, updated_at`

// SaveTrade inserts a new trade.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.Trade) error {
	tags, err := marshalTags(trade.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.ID, trade.Symbol, trade.Type, trade.Status, trade.EntryPrice, trade.EntryTime,
		trade.Quantity, trade.StopLoss, trade.TakeProfit, trade.RiskAmount, trade.RewardAmount,
		trade.ExitPrice, trade.ExitTime, trade.PnL, trade.PnLPercentage,
		trade.Notes, trade.Screenshot, tags, trade.TradingPlanID, trade.CreatedAt, trade.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving trade: %w", err)
	}
	return nil
}

// GetTrade returns a single trade by ID.
func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, id)
	trade, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrTradeNotFound
	}
	if err != nil {
		return nil, err
	}
	return trade, nil
}

// ListTrades returns trades matching the filter, newest first.
func (s *SQLiteStore) ListTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE 1=1`
	var args []interface{}

	if filter.PlanID != "" {
		query += ` AND trading_plan_id = ?`
		args = append(args, filter.PlanID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Symbol != "" {
		query += ` AND symbol = ?`
		args = append(args, filter.Symbol)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *trade)
	}
	return trades, rows.Err()
}

// UpdateTrade updates a trade's mutable fields. Exit fields are written only
// through CloseTrade.
func (s *SQLiteStore) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	tags, err := marshalTags(trade.Tags)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE trades
		SET symbol = ?, type = ?, entry_price = ?, entry_time = ?, quantity = ?, stop_loss = ?,
			take_profit = ?, risk_amount = ?, reward_amount = ?, notes = ?, screenshot = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		trade.Symbol, trade.Type, trade.EntryPrice, trade.EntryTime, trade.Quantity, trade.StopLoss,
		trade.TakeProfit, trade.RiskAmount, trade.RewardAmount, trade.Notes, trade.Screenshot, tags,
		trade.UpdatedAt, trade.ID,
	)
	if err != nil {
		return fmt.Errorf("updating trade: %w", err)
	}
	return requireRow(res, apperrors.ErrTradeNotFound)
}

// DeleteTrade removes a trade.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting trade: %w", err)
	}
	return requireRow(res, apperrors.ErrTradeNotFound)
}

// OpenTrade transitions a PENDING trade to OPEN.
func (s *SQLiteStore) OpenTrade(ctx context.Context, id string) (*models.Trade, error) {
	return s.transition(ctx, id, func(t models.Trade) (models.Trade, error) {
		return trading.Open(t)
	})
}

// CloseTrade atomically closes an OPEN trade, computing and persisting its
// realized P&L. The update is guarded on the OPEN status so that of two
// concurrent closes only one can succeed.
func (s *SQLiteStore) CloseTrade(ctx context.Context, id string, exitPrice float64, exitTime time.Time) (*models.Trade, error) {
	return s.transition(ctx, id, func(t models.Trade) (models.Trade, error) {
		return trading.Close(t, exitPrice, exitTime)
	})
}

// CancelTrade transitions a PENDING or OPEN trade to CANCELLED.
func (s *SQLiteStore) CancelTrade(ctx context.Context, id string) (*models.Trade, error) {
	return s.transition(ctx, id, func(t models.Trade) (models.Trade, error) {
		return trading.Cancel(t)
	})
}

// transition reads a trade, applies a pure lifecycle function to it and writes
// the new state back in the same transaction, guarded on the status the
// transition started from.
func (s *SQLiteStore) transition(ctx context.Context, id string, fn func(models.Trade) (models.Trade, error)) (*models.Trade, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, id)
	trade, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrTradeNotFound
	}
	if err != nil {
		return nil, err
	}

	from := trade.Status
	updated, err := fn(*trade)
	if err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()

	res, err := tx.ExecContext(ctx, `
		UPDATE trades
		SET status = ?, exit_price = ?, exit_time = ?, pnl = ?, pnl_percentage = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		updated.Status, updated.ExitPrice, updated.ExitTime, updated.PnL, updated.PnLPercentage,
		updated.UpdatedAt, id, from,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n != 1 {
		// Lost the race: the row's status changed between read and write.
		return nil, apperrors.NewStateError("transition", string(from), "trade state changed concurrently")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &updated, nil
}

// --- Capital additions ---

// SaveCapitalAddition inserts a new capital ledger entry.
func (s *SQLiteStore) SaveCapitalAddition(ctx context.Context, addition *models.CapitalAddition) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO capital_additions (id, amount, description, added_at, trading_plan_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		addition.ID, addition.Amount, addition.Description, addition.AddedAt,
		addition.TradingPlanID, addition.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving capital addition: %w", err)
	}
	return nil
}

// ListCapitalAdditions returns capital entries, optionally scoped to a plan,
// newest deposits first.
func (s *SQLiteStore) ListCapitalAdditions(ctx context.Context, planID string) ([]models.CapitalAddition, error) {
	query := `SELECT id, amount, description, added_at, trading_plan_id, created_at FROM capital_additions`
	var args []interface{}
	if planID != "" {
		query += ` WHERE trading_plan_id = ?`
		args = append(args, planID)
	}
	query += ` ORDER BY added_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var additions []models.CapitalAddition
	for rows.Next() {
		var a models.CapitalAddition
		if err := rows.Scan(&a.ID, &a.Amount, &a.Description, &a.AddedAt, &a.TradingPlanID, &a.CreatedAt); err != nil {
			return nil, err
		}
		additions = append(additions, a)
	}
	return additions, rows.Err()
}

// DeleteCapitalAddition removes a single ledger entry.
func (s *SQLiteStore) DeleteCapitalAddition(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM capital_additions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting capital addition: %w", err)
	}
	return requireRow(res, apperrors.ErrNotFound)
}

// CapitalAddedTotal returns the sum of all capital additions for a plan.
func (s *SQLiteStore) CapitalAddedTotal(ctx context.Context, planID string) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM capital_additions WHERE trading_plan_id = ?`, planID,
	).Scan(&total)
	return total, err
}

// --- Scan helpers ---

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPlan(row scanner) (*models.TradingPlan, error) {
	var p models.TradingPlan
	var description sql.NullString
	err := row.Scan(&p.ID, &p.Name, &description, &p.RiskRewardRatio, &p.MaxLossAmount,
		&p.InitialCapital, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	return &p, nil
}

func scanTrade(row scanner) (*models.Trade, error) {
	var t models.Trade
	var exitPrice, pnl, pnlPct sql.NullFloat64
	var exitTime sql.NullTime
	var notes, screenshot, tags sql.NullString

	err := row.Scan(&t.ID, &t.Symbol, &t.Type, &t.Status, &t.EntryPrice, &t.EntryTime,
		&t.Quantity, &t.StopLoss, &t.TakeProfit, &t.RiskAmount, &t.RewardAmount,
		&exitPrice, &exitTime, &pnl, &pnlPct, &notes, &screenshot, &tags,
		&t.TradingPlanID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if exitPrice.Valid {
		t.ExitPrice = &exitPrice.Float64
	}
	if exitTime.Valid {
		t.ExitTime = &exitTime.Time
	}
	if pnl.Valid {
		t.PnL = &pnl.Float64
	}
	if pnlPct.Valid {
		t.PnLPercentage = &pnlPct.Float64
	}
	t.Notes = notes.String
	t.Screenshot = screenshot.String
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &t.Tags); err != nil {
			return nil, fmt.Errorf("decoding trade tags: %w", err)
		}
	}
	return &t, nil
}

func marshalTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding trade tags: %w", err)
	}
	return string(data), nil
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
