package store

import (
	"database/sql"
	"fmt"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
)

// BatchInsertPreviewFields 写入一批归档抽取候选字段
func (s *Store) BatchInsertPreviewFields(fields []*model.ArchivePreviewField) error {
	if len(fields) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO archive_preview_fields
			(batch_id, key, raw_value, normalized_value, confidence, match_source, confirmed, corrected_value)
		VALUES (?, ?, ?, ?, ?, ?, 0, NULL)
	`)
	if err != nil {
		return fmt.Errorf("预编译失败: %w", err)
	}
	defer stmt.Close()

	for _, f := range fields {
		if _, err := stmt.Exec(f.BatchID, f.Key, f.RawValue, f.NormalizedVal, f.Confidence, f.MatchSource); err != nil {
			return fmt.Errorf("写入候选字段 %s 失败: %w", f.Key, err)
		}
	}
	return tx.Commit()
}

// ConfirmPreviewField 人工确认候选字段，可带修正值
func (s *Store) ConfirmPreviewField(id int64, correctedValue *float64) error {
	res, err := s.db.Exec(
		`UPDATE archive_preview_fields SET confirmed=1, corrected_value=? WHERE id=?`,
		correctedValue, id,
	)
	if err != nil {
		return fmt.Errorf("确认候选字段失败: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("候选字段不存在: %d", id)
	}
	return nil
}

// ListPreviewFields 按批次列出候选字段
func (s *Store) ListPreviewFields(batchID string) ([]*model.ArchivePreviewField, error) {
	rows, err := s.db.Query(`
		SELECT id, batch_id, key, COALESCE(raw_value,''), normalized_value,
		       confidence, COALESCE(match_source,''), confirmed, corrected_value
		FROM archive_preview_fields WHERE batch_id=? ORDER BY id
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("查询候选字段失败: %w", err)
	}
	defer rows.Close()

	var out []*model.ArchivePreviewField
	for rows.Next() {
		f := &model.ArchivePreviewField{}
		var confirmed int
		var normalized, corrected sql.NullFloat64
		if err := rows.Scan(&f.ID, &f.BatchID, &f.Key, &f.RawValue, &normalized,
			&f.Confidence, &f.MatchSource, &confirmed, &corrected); err != nil {
			return nil, err
		}
		f.Confirmed = confirmed == 1
		if normalized.Valid {
			f.NormalizedVal = &normalized.Float64
		}
		if corrected.Valid {
			f.CorrectedValue = &corrected.Float64
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// PromotePreviewBatch 将批次内已确认字段晋升为历史口径事实
// 修正值优先于归一化值；返回晋升条数。
func (s *Store) PromotePreviewBatch(batchID, unitID string, year int, stage model.Stage) (int, error) {
	fields, err := s.ListPreviewFields(batchID)
	if err != nil {
		return 0, err
	}

	var actuals []*model.HistoricalActual
	for _, f := range fields {
		if !f.Confirmed {
			continue
		}
		value := f.NormalizedVal
		if f.CorrectedValue != nil {
			value = f.CorrectedValue
		}
		if value == nil {
			continue
		}
		actuals = append(actuals, &model.HistoricalActual{
			UnitID:               unitID,
			Year:                 year,
			Stage:                stage,
			Key:                  f.Key,
			ValueNumeric:         *value,
			SourcePreviewBatchID: batchID,
		})
	}

	if err := s.BatchUpsertActuals(actuals); err != nil {
		return 0, err
	}
	return len(actuals), nil
}
