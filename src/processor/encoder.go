package processor

import (
	"DelayClassifier/src/utils"
	"fmt"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// CodeMap 分类列取值与整数编码的一一映射
// 编码按取值的字典序分配(0..k-1)，同一份数据每次运行结果相同
type CodeMap struct {
	Column string
	values []string
	codes  map[string]int
}

// NewCodeMap 根据观察到的取值建立映射，重复值只编码一次
func NewCodeMap(column string, observed []string) *CodeMap {
	codes := make(map[string]int)
	for _, v := range observed {
		codes[v] = 0
	}
	values := make([]string, 0, len(codes))
	for v := range codes {
		values = append(values, v)
	}
	sort.Strings(values)
	for i, v := range values {
		codes[v] = i
	}
	return &CodeMap{Column: column, values: values, codes: codes}
}

func (m *CodeMap) Encode(value string) (int, bool) {
	code, ok := m.codes[value]
	return code, ok
}

func (m *CodeMap) Decode(code int) (string, bool) {
	if code < 0 || code >= len(m.values) {
		return "", false
	}
	return m.values[code], true
}

func (m *CodeMap) Len() int { return len(m.values) }

// Values 按编码顺序返回所有取值
func (m *CodeMap) Values() []string {
	out := make([]string, len(m.values))
	copy(out, m.values)
	return out
}

// Transform 编码一组取值，遇到未知取值返回错误
func (m *CodeMap) Transform(values []string) ([]int, error) {
	out := make([]int, len(values))
	for i, v := range values {
		code, ok := m.codes[v]
		if !ok {
			return nil, fmt.Errorf("column %s: unseen value %q", m.Column, v)
		}
		out[i] = code
	}
	return out, nil
}

// Encode 把 columns 中的每一列转为文本后编码为整数列
// 返回编码后的表和每列的映射，不保留任何包级状态
func Encode(df dataframe.DataFrame, columns []string) (dataframe.DataFrame, map[string]*CodeMap, error) {
	maps := make(map[string]*CodeMap, len(columns))
	for _, col := range columns {
		if !utils.HasColumn(df, col) {
			return dataframe.DataFrame{}, nil, fmt.Errorf("encode: %w: %s", ErrUnknownColumn, col)
		}

		// 缺失值转为文本 "NaN"，作为一个独立的类别
		values := df.Col(col).Records()
		cm := NewCodeMap(col, values)
		codes, err := cm.Transform(values)
		if err != nil {
			return dataframe.DataFrame{}, nil, err
		}

		df = df.Mutate(series.New(codes, series.Int, col))
		if df.Err != nil {
			return dataframe.DataFrame{}, nil, fmt.Errorf("encode %s: %w", col, df.Err)
		}
		maps[col] = cm
	}
	return df, maps, nil
}
