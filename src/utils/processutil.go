package utils

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// TimeLayouts 时间字段可接受的格式，按顺序尝试
var TimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
}

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// 辅助函数：判断DataFrame是否有某列
func HasColumn(df dataframe.DataFrame, name string) bool {
	return Contains(df.Names(), name)
}

// MissingColumns 返回 df 中不存在的列
func MissingColumns(df dataframe.DataFrame, names []string) []string {
	var missing []string
	for _, name := range names {
		if !HasColumn(df, name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// IsMissing NA 或空字符串都视为缺失
func IsMissing(el series.Element) bool {
	return el.IsNA() || strings.TrimSpace(el.String()) == ""
}

// ParseTime 依次尝试 TimeLayouts，缺失或无法解析时 ok 为 false
func ParseTime(el series.Element) (t time.Time, ok bool) {
	if IsMissing(el) {
		return time.Time{}, false
	}
	s := strings.TrimSpace(el.String())
	for _, layout := range TimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SubSeriesTime 计算 colName1 - colName2 的分钟数，写入新列 colName3
// 任一时间无法解析时结果为 NaN
func SubSeriesTime(df dataframe.DataFrame, colName1, colName2, colName3 string) (dataframe.DataFrame, error) {
	if missing := MissingColumns(df, []string{colName1, colName2}); len(missing) > 0 {
		return df, fmt.Errorf("SubSeriesTime: 缺少列 %v", missing)
	}

	// 获取两列的所有元素
	col1 := df.Col(colName1)
	col2 := df.Col(colName2)

	// 预分配切片容量
	durations := make([]float64, 0, df.Nrow())

	// 遍历每一行计算时间差
	for i := 0; i < df.Nrow(); i++ {
		endTime, ok1 := ParseTime(col1.Elem(i))
		startTime, ok2 := ParseTime(col2.Elem(i))
		if !ok1 || !ok2 {
			durations = append(durations, math.NaN())
			continue
		}
		durations = append(durations, endTime.Sub(startTime).Minutes())
	}

	// 创建时间差列并添加到DataFrame
	out := df.Mutate(series.New(durations, series.Float, colName3))
	if out.Err != nil {
		return df, fmt.Errorf("SubSeriesTime: %w", out.Err)
	}
	return out, nil
}

// WriteSheet 把 df 写入工作簿 f 的 sheetName 页，第一行为列名
func WriteSheet(f *excelize.File, sheetName string, df dataframe.DataFrame) error {
	// 写入列名
	colNames := df.Names()
	for i, name := range colNames {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("写入列名失败: %w", err)
		}
	}

	// 写入数据
	for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
		for colIdx, colName := range colNames {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			val := df.Col(colName).Val(rowIdx)
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return fmt.Errorf("写入 %s 失败: %w", cell, err)
			}
		}
	}
	return nil
}
