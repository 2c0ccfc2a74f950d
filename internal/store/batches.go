package store

import (
	"database/sql"
	"fmt"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
)

// CreateBatch 新建导入批次
func (s *Store) CreateBatch(b *model.ImportBatch) error {
	_, err := s.db.Exec(`
		INSERT INTO import_batches (id, unit_id, year, stage, caliber, filename, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, datetime('now'))
	`, b.ID, b.UnitID, b.Year, b.Stage, b.Caliber, b.Filename, b.Status)
	if err != nil {
		return fmt.Errorf("创建导入批次失败: %w", err)
	}
	return nil
}

// UpdateBatchStatus 更新批次状态
func (s *Store) UpdateBatchStatus(id, status string) error {
	res, err := s.db.Exec(`UPDATE import_batches SET status=? WHERE id=?`, status, id)
	if err != nil {
		return fmt.Errorf("更新批次状态失败: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("批次不存在: %s", id)
	}
	return nil
}

// BatchInsertParsedCells 落一批解析证据
func (s *Store) BatchInsertParsedCells(batchID string, cells []model.ParsedCell) error {
	if len(cells) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO parsed_cells
			(batch_id, sheet_name, cell_address, anchor_desc, raw_value, normalized_value, value_type, number_format)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("预编译失败: %w", err)
	}
	defer stmt.Close()

	for _, c := range cells {
		if _, err := stmt.Exec(batchID, c.SheetName, c.CellAddress, c.AnchorDesc,
			c.RawValue, c.NormalizedValue, c.ValueType, c.NumberFormat); err != nil {
			return fmt.Errorf("写入证据 %s!%s 失败: %w", c.SheetName, c.CellAddress, err)
		}
	}
	return tx.Commit()
}

// ListParsedCells 按批次取证据单元格
func (s *Store) ListParsedCells(batchID string) ([]model.ParsedCell, error) {
	rows, err := s.db.Query(`
		SELECT sheet_name, cell_address, COALESCE(anchor_desc,''), COALESCE(raw_value,''),
		       normalized_value, COALESCE(value_type,''), COALESCE(number_format,'')
		FROM parsed_cells WHERE batch_id=? ORDER BY id
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("查询证据失败: %w", err)
	}
	defer rows.Close()

	var out []model.ParsedCell
	for rows.Next() {
		var c model.ParsedCell
		var normalized sql.NullFloat64
		if err := rows.Scan(&c.SheetName, &c.CellAddress, &c.AnchorDesc, &c.RawValue,
			&normalized, &c.ValueType, &c.NumberFormat); err != nil {
			return nil, err
		}
		if normalized.Valid {
			c.NormalizedValue = &normalized.Float64
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
