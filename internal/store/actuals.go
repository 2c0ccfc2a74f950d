package store

import (
	"database/sql"
	"fmt"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
)

// UpsertActual 写入/更新历史口径事实
// 已锁定的行拒绝覆盖——锁定后只能走显式修正流程。
func (s *Store) UpsertActual(a *model.HistoricalActual) error {
	var locked int
	err := s.db.QueryRow(
		`SELECT is_locked FROM historical_actuals WHERE unit_id=? AND year=? AND stage=? AND key=?`,
		a.UnitID, a.Year, a.Stage, a.Key,
	).Scan(&locked)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("查询历史事实失败: %w", err)
	}
	if locked == 1 {
		return fmt.Errorf("历史事实已锁定: %s/%d/%s/%s", a.UnitID, a.Year, a.Stage, a.Key)
	}

	_, err = s.db.Exec(`
		INSERT INTO historical_actuals
			(unit_id, year, stage, key, value_numeric, is_locked,
			 source_batch_id, source_suggestion_id, source_preview_batch_id, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?, datetime('now'))
		ON CONFLICT (unit_id, year, stage, key) DO UPDATE SET
			value_numeric = excluded.value_numeric,
			source_batch_id = excluded.source_batch_id,
			source_suggestion_id = excluded.source_suggestion_id,
			source_preview_batch_id = excluded.source_preview_batch_id,
			updated_at = datetime('now')
	`, a.UnitID, a.Year, a.Stage, a.Key, a.ValueNumeric,
		nullable(a.SourceBatchID), nullable(a.SourceSuggestionID), nullable(a.SourcePreviewBatchID))
	if err != nil {
		return fmt.Errorf("写入历史事实失败: %w", err)
	}
	return nil
}

// BatchUpsertActuals 批量写入（单事务）
func (s *Store) BatchUpsertActuals(actuals []*model.HistoricalActual) error {
	if len(actuals) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO historical_actuals
			(unit_id, year, stage, key, value_numeric, is_locked,
			 source_batch_id, source_suggestion_id, source_preview_batch_id, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?, datetime('now'))
		ON CONFLICT (unit_id, year, stage, key) DO UPDATE SET
			value_numeric = excluded.value_numeric,
			updated_at = datetime('now')
		WHERE historical_actuals.is_locked = 0
	`)
	if err != nil {
		return fmt.Errorf("预编译失败: %w", err)
	}
	defer stmt.Close()

	for _, a := range actuals {
		if _, err := stmt.Exec(a.UnitID, a.Year, a.Stage, a.Key, a.ValueNumeric,
			nullable(a.SourceBatchID), nullable(a.SourceSuggestionID), nullable(a.SourcePreviewBatchID)); err != nil {
			return fmt.Errorf("写入 %s 失败: %w", a.Key, err)
		}
	}
	return tx.Commit()
}

// LockActuals 冻结某单位某年某期别的全部事实
func (s *Store) LockActuals(unitID string, year int, stage model.Stage) (int64, error) {
	res, err := s.db.Exec(
		`UPDATE historical_actuals SET is_locked=1, updated_at=datetime('now')
		 WHERE unit_id=? AND year=? AND stage=? AND is_locked=0`,
		unitID, year, stage,
	)
	if err != nil {
		return 0, fmt.Errorf("锁定失败: %w", err)
	}
	return res.RowsAffected()
}

// GetFinalActual 取某单位某年 FINAL 期别锁定值（同比检查专用）
// 仅锁定值可作同比基准；无记录返回 nil。
func (s *Store) GetFinalActual(unitID string, year int, key string) (*float64, error) {
	var v float64
	err := s.db.QueryRow(
		`SELECT value_numeric FROM historical_actuals
		 WHERE unit_id=? AND year=? AND stage=? AND key=? AND is_locked=1`,
		unitID, year, model.StageFinal, key,
	).Scan(&v)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询决算值失败: %w", err)
	}
	return &v, nil
}

// ListActuals 按单位+年份列出
func (s *Store) ListActuals(unitID string, year int) ([]*model.HistoricalActual, error) {
	rows, err := s.db.Query(
		`SELECT id, unit_id, year, stage, key, value_numeric, is_locked,
		        COALESCE(source_batch_id,''), COALESCE(source_suggestion_id,''), COALESCE(source_preview_batch_id,'')
		 FROM historical_actuals WHERE unit_id=? AND year=? ORDER BY stage, key`,
		unitID, year,
	)
	if err != nil {
		return nil, fmt.Errorf("查询历史事实失败: %w", err)
	}
	defer rows.Close()

	var out []*model.HistoricalActual
	for rows.Next() {
		a := &model.HistoricalActual{}
		var locked int
		if err := rows.Scan(&a.ID, &a.UnitID, &a.Year, &a.Stage, &a.Key, &a.ValueNumeric, &locked,
			&a.SourceBatchID, &a.SourceSuggestionID, &a.SourcePreviewBatchID); err != nil {
			return nil, err
		}
		a.IsLocked = locked == 1
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
