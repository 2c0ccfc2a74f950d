package parser

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// 带过期缓存的求和工作簿：C1 缓存 999，实际应为 A1+B1=30
func staleSumFile(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	if err := f.SetCellValue("Sheet1", "A1", 10); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := f.SetCellValue("Sheet1", "B1", 20); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := f.SetCellValue("Sheet1", "C1", 999); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := f.SetCellFormula("Sheet1", "C1", "SUM(A1:B1)"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return f
}

func TestRecalc_FixesStaleSumCache(t *testing.T) {
	t.Parallel()

	f := staleSumFile(t)
	defer f.Close()

	changed, err := NewRecalculator(f, "Sheet1").Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed != 1 {
		t.Fatalf("want 1 changed got %d", changed)
	}

	got, err := f.GetCellValue("Sheet1", "C1")
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if v := ParseAmount(got, ""); v == nil || *v != 30 {
		t.Fatalf("C1: want 30 got %q", got)
	}

	// 公式文本保持原样
	formula, err := f.GetCellFormula("Sheet1", "C1")
	if err != nil || formula == "" {
		t.Fatalf("公式不应被清除: %q err=%v", formula, err)
	}
}

func TestRecalc_Idempotent(t *testing.T) {
	t.Parallel()

	f := staleSumFile(t)
	defer f.Close()

	rc := NewRecalculator(f, "Sheet1")
	if _, err := rc.Run(); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// 第二轮不应再落笔
	changed, err := NewRecalculator(f, "Sheet1").Run()
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if changed != 0 {
		t.Fatalf("重复执行应稳定: changed=%d", changed)
	}
}

func TestRecalc_TwoTermAddition(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "B2", 1.25)
	f.SetCellValue("Sheet1", "B3", 2.75)
	f.SetCellValue("Sheet1", "B4", 0)
	if err := f.SetCellFormula("Sheet1", "B4", "B2+B3"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	changed, err := NewRecalculator(f, "Sheet1").Run()
	if err != nil || changed != 1 {
		t.Fatalf("changed=%d err=%v", changed, err)
	}
	got, _ := f.GetCellValue("Sheet1", "B4")
	if v := ParseAmount(got, ""); v == nil || *v != 4 {
		t.Fatalf("B4: want 4 got %q", got)
	}
}

func TestRecalc_FormulaChainResolved(t *testing.T) {
	t.Parallel()

	// C1 = SUM(A1:B1)，D1 = SUM(C1)，两级都带坏缓存
	f := staleSumFile(t)
	defer f.Close()
	f.SetCellValue("Sheet1", "D1", 777)
	if err := f.SetCellFormula("Sheet1", "D1", "SUM(C1)"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := NewRecalculator(f, "Sheet1").Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := f.GetCellValue("Sheet1", "D1")
	if v := ParseAmount(got, ""); v == nil || *v != 30 {
		t.Fatalf("D1 沿链重算: want 30 got %q", got)
	}
}

func TestRecalc_CycleRefused(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", 5)
	f.SetCellValue("Sheet1", "A2", 7)
	if err := f.SetCellFormula("Sheet1", "A1", "SUM(A2)"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := f.SetCellFormula("Sheet1", "A2", "SUM(A1)"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	changed, err := NewRecalculator(f, "Sheet1").Run()
	if err != nil {
		t.Fatalf("环不应报错: %v", err)
	}
	if changed != 0 {
		t.Fatalf("环上的单元格不应被改写: changed=%d", changed)
	}
}

func TestRecalc_UnrecognizedFormulaUntouched(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", 42)
	if err := f.SetCellFormula("Sheet1", "A1", "VLOOKUP(B1,C1:D9,2,0)"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	changed, err := NewRecalculator(f, "Sheet1").Run()
	if err != nil || changed != 0 {
		t.Fatalf("不可识别公式应原样保留: changed=%d err=%v", changed, err)
	}
}

func TestRoundTo2(t *testing.T) {
	t.Parallel()

	if got := RoundTo2(18976.7551); got != 18976.76 {
		t.Fatalf("want 18976.76 got %v", got)
	}
	if got := RoundTo2(-0.001); got != 0 {
		t.Fatalf("-0 规避失败: %v", got)
	}
}
