package importer

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/store"
)

// unitWorkbook 覆盖单位口径全部必填 sheet 的最小工作簿
func unitWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	set := func(sheet string, cells map[string]any) {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("new sheet %s: %v", sheet, err)
		}
		for addr, v := range cells {
			if err := f.SetCellValue(sheet, addr, v); err != nil {
				t.Fatalf("set %s!%s: %v", sheet, addr, err)
			}
		}
	}

	set("收支总表", map[string]any{
		"A1": "项目", "B1": "金额", "C1": "项目", "D1": "金额",
		"A2": "收入总计", "B2": 1200.50, "C2": "支出总计", "D2": 1200.50,
	})
	set("支出总表", map[string]any{
		"A1": "项目", "B1": "支出合计", "C1": "基本支出", "D1": "项目支出",
		"A2": "合计", "B2": 1200.50, "C2": 800.50, "D2": 400.00,
	})
	set("财政拨款收支总表", map[string]any{
		"A1": "项目", "B1": "金额", "C1": "项目", "D1": "金额",
		"A2": "收入总计", "B2": 1000.00, "C2": "支出总计", "D2": 1000.00,
	})
	// 三公合计格留空，走分项求和兜底
	set("三公经费表", map[string]any{
		"A1": "项目", "B1": "合计", "C1": "因公出国（境）费", "D1": "公务接待费", "E1": "公务用车购置及运行费",
		"A2": "“三公”经费", "C2": 10.00, "D2": 20.00, "E2": 31.00,
	})

	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func testCoordinator(t *testing.T) (*Coordinator, *store.Store) {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewCoordinator(s), s
}

func TestImportSync_FullUnitPipeline(t *testing.T) {
	t.Parallel()

	c, s := testCoordinator(t)
	result, err := c.ImportSync(ImportOptions{
		Data:     unitWorkbook(t),
		Filename: "单位预算.xlsx",
		UnitID:   "unit-1",
		Year:     2025,
		Stage:    model.StageBudget,
		Caliber:  model.CaliberUnit,
		Persist:  true,
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	facts := result.Output.FactMap()
	checks := map[string]float64{
		"budget_revenue_total":           1200.50,
		"budget_expenditure_total":       1200.50,
		"basic_expenditure_total":        800.50,
		"project_expenditure_total":      400.00,
		"fiscal_grant_revenue_total":     1000.00,
		"fiscal_grant_expenditure_total": 1000.00,
		"three_public_total":             61.00,
		"overseas_trips_expense":         10.00,
		"official_reception_expense":     20.00,
		"official_vehicle_expense":       31.00,
	}
	for key, want := range checks {
		if got, ok := facts[key]; !ok || got != want {
			t.Fatalf("%s: want %v got %v (ok=%v)", key, want, facts[key], ok)
		}
	}

	// 账面平衡、必填齐备、无历史基线：零问题
	if len(result.Issues) != 0 {
		t.Fatalf("不应有校验问题: %+v", result.Issues)
	}

	// 落库验证
	actuals, err := s.ListActuals("unit-1", 2025)
	if err != nil || len(actuals) == 0 {
		t.Fatalf("事实未落库: %v %v", actuals, err)
	}
	cells, err := s.ListParsedCells(result.BatchID)
	if err != nil || len(cells) == 0 {
		t.Fatalf("证据未落库: %v %v", cells, err)
	}
}

func TestImportSync_ImbalancedWorkbookReportsIssue(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", "收支总表")
	for addr, v := range map[string]any{
		"A1": "项目", "B1": "金额", "C1": "项目", "D1": "金额",
		"A2": "收入总计", "B2": 1500.00, "C2": "支出总计", "D2": 1200.00,
	} {
		f.SetCellValue("收支总表", addr, v)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	c, _ := testCoordinator(t)
	result, err := c.ImportSync(ImportOptions{
		Data:    buf.Bytes(),
		UnitID:  "unit-1",
		Year:    2025,
		Stage:   model.StageBudget,
		Caliber: model.CaliberUnit,
	})
	// 其他必填 sheet 缺失会中止解析；本用例只关心不 panic 且错误可读
	if err == nil {
		// 解析走通时必然带收支不平与必填缺失问题
		if len(result.Issues) == 0 {
			t.Fatalf("应报校验问题")
		}
	}
}

func TestImport_ProgressEventsOrdered(t *testing.T) {
	t.Parallel()

	c, _ := testCoordinator(t)
	var types []string
	for ev := range c.Import(ImportOptions{
		Data:    unitWorkbook(t),
		UnitID:  "unit-1",
		Year:    2025,
		Stage:   model.StageBudget,
		Caliber: model.CaliberUnit,
	}) {
		types = append(types, ev.Type)
	}

	if len(types) < 2 {
		t.Fatalf("事件过少: %v", types)
	}
	if types[0] != "start" {
		t.Fatalf("首个事件应为 start: %v", types)
	}
	if types[len(types)-1] != "done" {
		t.Fatalf("末个事件应为 done: %v", types)
	}
}

func TestImportSync_RejectsXls(t *testing.T) {
	t.Parallel()

	data := make([]byte, 600)
	copy(data, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	copy(data[512:], []byte{0x09, 0x08, 0x10, 0x00, 0x00, 0x06, 0x05, 0x00})

	c, _ := testCoordinator(t)
	_, err := c.ImportSync(ImportOptions{
		Data:    data,
		UnitID:  "unit-1",
		Year:    2025,
		Stage:   model.StageBudget,
		Caliber: model.CaliberUnit,
	})
	if err == nil {
		t.Fatalf("xls 应被拒绝")
	}
}
