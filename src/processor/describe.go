package processor

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary 数值列的描述统计，NaN 不计入
type ColumnSummary struct {
	Name      string
	Count     int
	Undefined int
	Mean      float64
	Std       float64
	Min       float64
	Median    float64
	Max       float64
}

func (s ColumnSummary) String() string {
	return fmt.Sprintf("%s: count=%d undefined=%d mean=%.2f std=%.2f min=%.2f median=%.2f max=%.2f",
		s.Name, s.Count, s.Undefined, s.Mean, s.Std, s.Min, s.Median, s.Max)
}

// Describe 计算 columns 的描述统计
func Describe(df dataframe.DataFrame, columns []string) []ColumnSummary {
	out := make([]ColumnSummary, 0, len(columns))
	for _, name := range columns {
		values := df.Col(name).Float()
		defined := make([]float64, 0, len(values))
		for _, v := range values {
			if !math.IsNaN(v) {
				defined = append(defined, v)
			}
		}

		s := ColumnSummary{Name: name, Count: len(defined), Undefined: len(values) - len(defined)}
		if len(defined) > 0 {
			s.Mean, s.Std = stat.MeanStdDev(defined, nil)
			s.Min = floats.Min(defined)
			s.Max = floats.Max(defined)
			s.Median = Median(defined)
		}
		if len(defined) < 2 {
			s.Std = 0
		}
		out = append(out, s)
	}
	return out
}

// FormatSummaries 多列统计拼成一段文本
func FormatSummaries(summaries []ColumnSummary) string {
	lines := make([]string, len(summaries))
	for i, s := range summaries {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}
