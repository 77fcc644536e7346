package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/sjwhitworth/golearn/base"
)

var (
	ErrUndefinedFeature = errors.New("undefined feature value")
	ErrUnknownColumn    = errors.New("unknown column")
)

// ClassValues 类别属性预先登记的取值，训练集和测试集共用
var ClassValues = []string{"0", "1"}

// Schema 特征列和类别列的 golearn 属性定义
// 同一个 Schema 生成的训练集和测试集属性完全一致
type Schema struct {
	Features []string
	Label    string

	attrs []*base.FloatAttribute
	class *base.CategoricalAttribute
}

func NewSchema(features []string, label string) *Schema {
	s := &Schema{Features: features, Label: label}
	for _, name := range features {
		s.attrs = append(s.attrs, base.NewFloatAttribute(name))
	}
	s.class = base.NewCategoricalAttribute()
	s.class.SetName(label)
	for _, v := range ClassValues {
		s.class.GetSysValFromString(v)
	}
	return s
}

// NewInstances 用一个新的 Schema 把 df 转为 golearn 数据集
func NewInstances(df dataframe.DataFrame, features []string, label string) (*base.DenseInstances, error) {
	return NewSchema(features, label).Instances(df)
}

// Instances 特征列按浮点数读取，任何 NaN/Inf 都返回 ErrUndefinedFeature
func (s *Schema) Instances(df dataframe.DataFrame) (*base.DenseInstances, error) {
	names := make(map[string]bool, df.Ncol())
	for _, n := range df.Names() {
		names[n] = true
	}
	for _, col := range append([]string{s.Label}, s.Features...) {
		if !names[col] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, col)
		}
	}

	rows := df.Nrow()
	columns := make([][]float64, len(s.Features))
	for i, name := range s.Features {
		columns[i] = df.Col(name).Float()
		for row, v := range columns[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: row %d column %s", ErrUndefinedFeature, row, name)
			}
		}
	}
	labels, err := df.Col(s.Label).Int()
	if err != nil {
		return nil, fmt.Errorf("label column %s: %w", s.Label, err)
	}

	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(s.attrs))
	for i, a := range s.attrs {
		specs[i] = inst.AddAttribute(a)
	}
	classSpec := inst.AddAttribute(s.class)
	if err := inst.AddClassAttribute(s.class); err != nil {
		return nil, fmt.Errorf("add class attribute: %w", err)
	}
	if err := inst.Extend(rows); err != nil {
		return nil, fmt.Errorf("extend instances: %w", err)
	}

	for row := 0; row < rows; row++ {
		for i, spec := range specs {
			inst.Set(spec, row, base.PackFloatToBytes(columns[i][row]))
		}
		inst.Set(classSpec, row, s.class.GetSysValFromString(strconv.Itoa(labels[row])))
	}
	return inst, nil
}

// Labels 读出数据集每一行的类别
func Labels(grid base.FixedDataGrid) ([]int, error) {
	_, rows := grid.Size()
	out := make([]int, rows)
	for i := 0; i < rows; i++ {
		v, err := strconv.Atoi(base.GetClass(grid, i))
		if err != nil {
			return nil, fmt.Errorf("row %d: class %q: %w", i, base.GetClass(grid, i), err)
		}
		out[i] = v
	}
	return out, nil
}
