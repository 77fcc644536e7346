package report

import (
	"DelayClassifier/src/evaluation"
	"DelayClassifier/src/processor"
	"DelayClassifier/src/utils"
	"fmt"
	"io"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// 工作簿中的页名
const (
	SummarySheet     = "Summary"
	PredictionsSheet = "Predictions"
	EncodingsSheet   = "Encodings"
)

// Workbook 导出到 xlsx 的内容
type Workbook struct {
	RunID       string
	Baseline    float64
	Evaluations []evaluation.Evaluation
	TestRows    []int // 测试集在清洗后表中的行号
	Actual      []int
	Predictions map[string][]int
	Codes       map[string]*processor.CodeMap
}

func (wb Workbook) summaryFrame() dataframe.DataFrame {
	var (
		names, metrics []string
		values         []float64
	)
	add := func(name, metric string, v float64) {
		names = append(names, name)
		metrics = append(metrics, metric)
		values = append(values, v)
	}

	add("Majority Baseline", "accuracy", wb.Baseline)
	for _, e := range wb.Evaluations {
		add(e.Name, "accuracy", e.Accuracy)
		for _, c := range e.Classes {
			add(e.Name, fmt.Sprintf("precision[%d]", c.Class), c.Precision)
			add(e.Name, fmt.Sprintf("recall[%d]", c.Class), c.Recall)
			add(e.Name, fmt.Sprintf("f1[%d]", c.Class), c.F1)
			add(e.Name, fmt.Sprintf("support[%d]", c.Class), float64(c.Support))
		}
		for actual := 0; actual < 2; actual++ {
			for pred := 0; pred < 2; pred++ {
				add(e.Name, fmt.Sprintf("confusion[actual=%d,predicted=%d]", actual, pred), float64(e.Matrix[actual][pred]))
			}
		}
	}
	return dataframe.New(
		series.New(names, series.String, "Classifier"),
		series.New(metrics, series.String, "Metric"),
		series.New(values, series.Float, "Value"),
	)
}

func (wb Workbook) predictionsFrame() dataframe.DataFrame {
	cols := []series.Series{
		series.New(wb.TestRows, series.Int, "Row"),
		series.New(wb.Actual, series.Int, "Actual"),
	}
	for _, e := range wb.Evaluations {
		if pred, ok := wb.Predictions[e.Name]; ok {
			cols = append(cols, series.New(pred, series.Int, e.Name))
		}
	}
	return dataframe.New(cols...)
}

func (wb Workbook) encodingsFrame() dataframe.DataFrame {
	names := make([]string, 0, len(wb.Codes))
	for name := range wb.Codes {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		columns, values []string
		codes           []int
	)
	for _, name := range names {
		for code, v := range wb.Codes[name].Values() {
			columns = append(columns, name)
			codes = append(codes, code)
			values = append(values, v)
		}
	}
	return dataframe.New(
		series.New(columns, series.String, "Column"),
		series.New(codes, series.Int, "Code"),
		series.New(values, series.String, "Value"),
	)
}

// build 生成工作簿，调用方负责 Close
func (wb Workbook) build() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{PredictionsSheet, EncodingsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("新建 %s 失败: %w", name, err)
		}
	}

	sheets := []struct {
		name string
		df   dataframe.DataFrame
	}{
		{SummarySheet, wb.summaryFrame()},
		{PredictionsSheet, wb.predictionsFrame()},
		{EncodingsSheet, wb.encodingsFrame()},
	}
	for _, s := range sheets {
		if s.df.Err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", s.name, s.df.Err)
		}
		if err := utils.WriteSheet(f, s.name, s.df); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}
	if wb.RunID != "" {
		if err := f.SetDocProps(&excelize.DocProperties{Identifier: wb.RunID, Title: "Flight delay classification"}); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// WriteWorkbook 写出 xlsx 内容
func WriteWorkbook(w io.Writer, wb Workbook) error {
	f, err := wb.build()
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// SaveWorkbook 保存到 path
func SaveWorkbook(path string, wb Workbook) error {
	f, err := wb.build()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}
