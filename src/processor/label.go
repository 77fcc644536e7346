package processor

import (
	"DelayClassifier/src/utils"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DelayThreshold 长延误阈值(分钟)
const DelayThreshold = 30.0

// 1 = 长延误, 0 = 短延误
const (
	ShortDelay = 0
	LongDelay  = 1
)

// Label 延误严格大于 30 分钟为 1，否则为 0
func Label(minutes float64) int {
	return LabelAt(minutes, DelayThreshold)
}

func LabelAt(minutes, threshold float64) int {
	if minutes > threshold {
		return LongDelay
	}
	return ShortDelay
}

// AddLabel 根据 target 列生成标签列 labelCol
func AddLabel(df dataframe.DataFrame, target, labelCol string, threshold float64) (dataframe.DataFrame, error) {
	if !utils.HasColumn(df, target) {
		return dataframe.DataFrame{}, fmt.Errorf("label: %w: %s", ErrUnknownColumn, target)
	}

	minutes := df.Col(target).Float()
	labels := make([]int, len(minutes))
	for i, m := range minutes {
		labels[i] = LabelAt(m, threshold)
	}

	out := df.Mutate(series.New(labels, series.Int, labelCol))
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("label: %w", out.Err)
	}
	return out, nil
}

// Labels 读取标签列
func Labels(df dataframe.DataFrame, labelCol string) ([]int, error) {
	if !utils.HasColumn(df, labelCol) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, labelCol)
	}
	return df.Col(labelCol).Int()
}
