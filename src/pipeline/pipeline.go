package pipeline

import (
	"DelayClassifier/src/config"
	"DelayClassifier/src/datasource/file"
	"DelayClassifier/src/evaluation"
	"DelayClassifier/src/model"
	"DelayClassifier/src/processor"
	"DelayClassifier/src/report"
	"DelayClassifier/src/storage"
	"fmt"
	"io"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Result 一次运行的全部产物
type Result struct {
	RunID     string
	StartedAt time.Time

	// 各阶段之后的行数
	Loaded  int
	Cleaned int
	Derived int

	UndefinedDerived int // 派生时长无法计算的行数(按策略处理之前)

	Codes       map[string]*processor.CodeMap
	Features    []string
	Summaries   []processor.ColumnSummary
	Partition   processor.Partition
	TrainLabels []int
	Actual      []int

	Evaluations []evaluation.Evaluation
	Predictions map[string][]int
	Baseline    float64
	Outputs     []string
}

// stage 流水线中的一个 DataProcess 及其名称
type stage struct {
	name string
	proc processor.DataProcess
	rows *int
}

// Run 执行一次完整流水线：读取、清洗、派生、编码、打标签、划分、训练、评估、输出
// 文本报告写入 stdout
func Run(cfg *config.Config, logger *storage.Logger, stdout io.Writer) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), StartedAt: time.Now()}
	log := func(level storage.LogLevel, msg string, fields ...zap.Field) {
		logger.Log(level, msg, append([]zap.Field{zap.String("run_id", res.RunID)}, fields...)...)
	}
	log(storage.INFO, "开始处理", zap.String("input", cfg.Input.Path))

	cols := cfg.Columns
	df, err := file.Load(cfg.Input, cols.Required())
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	res.Loaded = df.Nrow()
	log(storage.INFO, "数据读取完成", zap.Int("rows", res.Loaded), zap.Int("columns", df.Ncol()))

	deriver := processor.NewFeatureDeriver(cfg)
	stages := []stage{
		{name: "clean", proc: processor.NewCleaner(cfg), rows: &res.Cleaned},
		{name: "derive", proc: deriver, rows: &res.Derived},
	}
	for _, s := range stages {
		df, err = s.proc.DataProcessFunc(df)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		*s.rows = df.Nrow()
		log(storage.DEBUG, "阶段完成", zap.String("stage", s.name), zap.Int("rows", df.Nrow()))
	}
	res.UndefinedDerived = deriver.Undefined
	if deriver.Undefined > 0 {
		log(storage.WARNING, "派生时长无法计算",
			zap.Int("rows", deriver.Undefined), zap.String("policy", cfg.Missing.Derived))
	}

	res.Summaries = processor.Describe(df, []string{cols.Target, cols.DepartureDelay, cols.ArrivalDelay})
	log(storage.DEBUG, "列统计", zap.String("summary", processor.FormatSummaries(res.Summaries)))

	df, res.Codes, err = processor.Encode(df, cols.Categorical)
	if err != nil {
		return nil, err
	}
	for _, name := range cols.Categorical {
		log(storage.DEBUG, "编码完成", zap.String("column", name), zap.Int("codes", res.Codes[name].Len()))
	}

	df, err = processor.AddLabel(df, cols.Target, cols.Label, cfg.Label.Threshold)
	if err != nil {
		return nil, err
	}

	res.Partition, err = processor.Split(df, processor.SplitOptions{
		TestFraction: cfg.Split.TestFraction,
		Seed:         cfg.Split.Seed,
		Stratify:     cfg.Split.Stratify,
		LabelCol:     cols.Label,
	})
	if err != nil {
		return nil, err
	}
	log(storage.INFO, "训练/测试集划分完成",
		zap.Int("train", res.Partition.Train.Nrow()), zap.Int("test", res.Partition.Test.Nrow()),
		zap.Bool("stratify", cfg.Split.Stratify))

	if err := res.fit(cfg, df, log); err != nil {
		return nil, err
	}

	if err := report.WriteText(stdout, res.Evaluations); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	if err := res.writeOutputs(cfg.Report); err != nil {
		return nil, err
	}
	for _, path := range res.Outputs {
		log(storage.INFO, "输出文件已保存", zap.String("path", path))
	}

	log(storage.INFO, "处理完成", zap.Duration("elapsed", time.Since(res.StartedAt)))
	return res, nil
}

type logFunc func(level storage.LogLevel, msg string, fields ...zap.Field)

// fit 训练两个分类器并在测试集上评估
func (res *Result) fit(cfg *config.Config, df dataframe.DataFrame, log logFunc) error {
	label := cfg.Columns.Label
	res.Features = processor.FeatureColumns(df, cfg.Columns.Target, label)

	var err error
	res.TrainLabels, err = processor.Labels(res.Partition.Train, label)
	if err != nil {
		return err
	}
	res.Actual, err = processor.Labels(res.Partition.Test, label)
	if err != nil {
		return err
	}
	if evaluation.Distinct(res.TrainLabels) < 2 {
		log(storage.WARNING, "训练集只有一个类别", zap.Int("majority", evaluation.Majority(res.TrainLabels)))
	}
	res.Baseline = evaluation.MajorityBaseline(res.TrainLabels, res.Actual)

	schema := model.NewSchema(res.Features, label)
	train, err := schema.Instances(res.Partition.Train)
	if err != nil {
		return fmt.Errorf("train instances: %w", err)
	}
	test, err := schema.Instances(res.Partition.Test)
	if err != nil {
		return fmt.Errorf("test instances: %w", err)
	}

	res.Predictions = make(map[string][]int)
	for _, c := range model.New(cfg) {
		start := time.Now()
		if err := c.Fit(train); err != nil {
			return fmt.Errorf("%s: %w", c.Name(), err)
		}
		pred, err := c.Predict(test)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Name(), err)
		}
		e, err := evaluation.Evaluate(c.Name(), res.Actual, pred)
		if err != nil {
			return err
		}
		res.Predictions[c.Name()] = pred
		res.Evaluations = append(res.Evaluations, e)

		log(storage.INFO, "模型评估完成", zap.String("classifier", c.Name()),
			zap.Float64("accuracy", e.Accuracy), zap.Duration("elapsed", time.Since(start)))
		if e.Accuracy < res.Baseline {
			log(storage.WARNING, "准确率低于多数类基线", zap.String("classifier", c.Name()),
				zap.Float64("accuracy", e.Accuracy), zap.Float64("baseline", res.Baseline))
		}
	}
	return nil
}

// writeOutputs 路径为空的输出跳过
func (res *Result) writeOutputs(out config.Report) error {
	panels := report.Panels(res.Evaluations)

	if out.Heatmap != "" {
		if err := report.SaveHeatmaps(out.Heatmap, panels); err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, out.Heatmap)
	}
	if out.HTML != "" {
		if err := report.SaveHTML(out.HTML, panels); err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, out.HTML)
	}
	if out.Workbook != "" {
		wb := report.Workbook{
			RunID:       res.RunID,
			Baseline:    res.Baseline,
			Evaluations: res.Evaluations,
			TestRows:    res.Partition.TestIdx,
			Actual:      res.Actual,
			Predictions: res.Predictions,
			Codes:       res.Codes,
		}
		if err := report.SaveWorkbook(out.Workbook, wb); err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, out.Workbook)
	}
	return nil
}
