package processor

import (
	"DelayClassifier/src/config"
	"DelayClassifier/src/utils"
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Cleaner 处理目标列和延误原因列的缺失值
type Cleaner struct {
	Columns config.Columns
	Policy  config.MissingPolicy
}

func NewCleaner(cfg *config.Config) *Cleaner {
	return &Cleaner{Columns: cfg.Columns, Policy: cfg.Missing}
}

// DataProcessFunc 删除目标列缺失(或不是数字)的行，补齐延误原因
func (c *Cleaner) DataProcessFunc(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	target := c.Columns.Target
	if !utils.HasColumn(df, target) {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s", ErrUnknownColumn, target)
	}

	// 第一步：删除目标列缺失的行
	df = df.Filter(dataframe.F{
		Colname:    target,
		Comparator: series.CompFunc,
		Comparando: func(el series.Element) bool {
			return !utils.IsMissing(el) && !math.IsNaN(el.Float())
		},
	})
	df, err := checkFrame(df, "drop missing target")
	if err != nil {
		return df, err
	}

	// 第二步：目标列转为数值
	df = df.Mutate(series.New(df.Col(target).Float(), series.Float, target))
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("convert target: %w", df.Err)
	}

	// 第三步：延误原因
	reason := c.Columns.Reason
	if !utils.HasColumn(df, reason) {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s", ErrUnknownColumn, reason)
	}

	switch c.Policy.Reason {
	case config.PolicyDrop:
		df = df.Filter(dataframe.F{
			Colname:    reason,
			Comparator: series.CompFunc,
			Comparando: func(el series.Element) bool {
				return !utils.IsMissing(el)
			},
		})
		return checkFrame(df, "drop missing reason")
	default:
		return c.fillReason(df), nil
	}
}

func (c *Cleaner) fillReason(df dataframe.DataFrame) dataframe.DataFrame {
	col := df.Col(c.Columns.Reason)
	values := make([]string, col.Len())
	for i := range values {
		el := col.Elem(i)
		if utils.IsMissing(el) {
			values[i] = c.Policy.ReasonPlaceholder
			continue
		}
		values[i] = el.String()
	}
	return df.Mutate(series.New(values, series.String, c.Columns.Reason))
}
