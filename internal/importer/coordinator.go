package importer

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/parser"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/store"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/validate"
)

// Coordinator 导入协调器
// 串起一次上传的完整链路：打开→公式重算→映射取数→行项目→校验→落库，
// 经进度通道向前端推送各阶段事件。
type Coordinator struct {
	store  *store.Store
	lookup validate.ActualLookup
}

// NewCoordinator 创建导入协调器
func NewCoordinator(s *store.Store) *Coordinator {
	return &Coordinator{
		store:  s,
		lookup: validate.NewCachedLookup(s, 5*time.Minute),
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	Data     []byte        // 工作簿字节流
	Filename string        // 原始文件名
	UnitID   string        // 单位标识
	Year     int           // 预算年度
	Stage    model.Stage   // 期别
	Caliber  model.Caliber // 口径，决定映射表变体
	Persist  bool          // 是否落库（预览模式传 false）

	// 平衡容差；0 取默认
	BalanceTolerance float64
	// 功能分类科目表 sheet 名（空则按默认名查找）
	LineItemSheet string
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string    `json:"type"` // start/info/warning/error/done
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ImportResult 导入结果
type ImportResult struct {
	BatchID string                  `json:"batchId"`
	Output  *model.ParseOutput      `json:"output"`
	Issues  []model.ValidationIssue `json:"issues"`
}

// Import 执行导入，返回进度通道；最终 done/error 事件携带结果
func (c *Coordinator) Import(opts ImportOptions) <-chan ProgressEvent {
	ch := make(chan ProgressEvent, 100)
	go func() {
		defer close(ch)
		c.doImport(opts, ch)
	}()
	return ch
}

// ImportSync 同步执行（API 处理器用；进度事件仅记日志）
func (c *Coordinator) ImportSync(opts ImportOptions) (*ImportResult, error) {
	var result *ImportResult
	var importErr error
	for ev := range c.Import(opts) {
		switch ev.Type {
		case "done":
			result = ev.Data.(*ImportResult)
		case "error":
			importErr = fmt.Errorf("%s", ev.Message)
			if err, ok := ev.Data.(error); ok {
				importErr = err
			}
		default:
			log.Printf("[import] %s", ev.Message)
		}
	}
	if importErr != nil {
		return nil, importErr
	}
	return result, nil
}

func (c *Coordinator) doImport(opts ImportOptions, ch chan ProgressEvent) {
	batchID := uuid.New().String()
	c.send(ch, "start", fmt.Sprintf("开始解析 %s", opts.Filename), map[string]string{"batchId": batchID})

	wb, err := parser.OpenWorkbook(opts.Data)
	if err != nil {
		c.send(ch, "error", fmt.Sprintf("打开工作簿失败: %v", err), err)
		return
	}
	defer wb.Close()

	c.send(ch, "info", fmt.Sprintf("工作簿打开成功（引擎 %s，%d 个 sheet）", wb.Engine, len(wb.SheetNames())), nil)

	// 公式重算：总计格常带未刷新的缓存值；次级引擎下无公式信息，跳过
	if x := wb.Excelize(); x != nil {
		for _, sheetName := range wb.SheetNames() {
			rc := parser.NewRecalculator(x, sheetName)
			changed, err := rc.Run()
			if err != nil {
				c.send(ch, "warning", fmt.Sprintf("sheet %q 公式重算失败: %v", sheetName, err), nil)
				continue
			}
			if changed > 0 {
				c.send(ch, "info", fmt.Sprintf("sheet %q 修正 %d 个过期公式缓存", sheetName, changed), nil)
			}
		}
	} else {
		c.send(ch, "warning", "次级读表引擎不含公式信息，跳过公式重算", nil)
	}

	rules := parser.MappingRulesFor(opts.Caliber)
	engine := parser.NewEngine(wb, rules)
	output, err := engine.Parse()
	if err != nil {
		c.send(ch, "error", fmt.Sprintf("取数失败: %v", err), err)
		return
	}
	c.send(ch, "info", fmt.Sprintf("取数完成: %d 项数值事实、%d 项文本、%d 个证据单元格",
		len(output.Facts), len(output.Texts), len(output.ParsedCells)), nil)

	// 功能分类科目表：存在才抽取
	lineItemSheet := opts.LineItemSheet
	if lineItemSheet == "" {
		lineItemSheet = "一般公共预算支出表"
	}
	if sheet := wb.ResolveSheet(lineItemSheet, []string{"一般公共预算支出功能分类预算表"}); sheet != nil {
		li := parser.NewLineItemExtractor().Extract(sheet)
		output.Facts = append(output.Facts, li.Facts...)
		output.Texts = append(output.Texts, li.Texts...)
		if len(li.Facts) > 0 {
			c.send(ch, "info", fmt.Sprintf("功能分类科目表抽出 %d 个行项目", len(li.Facts)), nil)
		}
	}

	// 交叉校验
	fields := make([]model.ValidateField, 0, len(output.Facts))
	for _, f := range output.Facts {
		v := f.ValueNumeric
		fields = append(fields, model.ValidateField{Key: f.Key, NormalizedValue: &v})
	}
	validator := validate.New(opts.BalanceTolerance, parser.RequiredKeys(rules), c.lookup)
	issues := validator.Validate(fields, opts.UnitID, opts.Year)
	c.send(ch, "info", fmt.Sprintf("校验完成: %d 个问题", len(issues)), nil)

	result := &ImportResult{BatchID: batchID, Output: output, Issues: issues}

	if opts.Persist {
		if err := c.persist(batchID, opts, output); err != nil {
			c.send(ch, "error", fmt.Sprintf("落库失败: %v", err), err)
			return
		}
		c.send(ch, "info", "事实与证据已落库", nil)
	}

	c.send(ch, "done", "导入完成", result)
}

// persist 批次、证据与事实落库
func (c *Coordinator) persist(batchID string, opts ImportOptions, output *model.ParseOutput) error {
	batch := &model.ImportBatch{
		ID:       batchID,
		UnitID:   opts.UnitID,
		Year:     opts.Year,
		Stage:    opts.Stage,
		Caliber:  opts.Caliber,
		Filename: opts.Filename,
		Status:   "parsed",
	}
	if err := c.store.CreateBatch(batch); err != nil {
		return err
	}
	if err := c.store.BatchInsertParsedCells(batchID, output.ParsedCells); err != nil {
		return err
	}

	actuals := make([]*model.HistoricalActual, 0, len(output.Facts))
	for _, f := range output.Facts {
		actuals = append(actuals, &model.HistoricalActual{
			UnitID:        opts.UnitID,
			Year:          opts.Year,
			Stage:         opts.Stage,
			Key:           f.Key,
			ValueNumeric:  f.ValueNumeric,
			SourceBatchID: batchID,
		})
	}
	if err := c.store.BatchUpsertActuals(actuals); err != nil {
		return err
	}
	return c.store.UpdateBatchStatus(batchID, "saved")
}

func (c *Coordinator) send(ch chan ProgressEvent, typ, msg string, data any) {
	select {
	case ch <- ProgressEvent{Type: typ, Message: msg, Data: data, Timestamp: time.Now()}:
	default:
		// 通道已满，丢弃事件
	}
}
