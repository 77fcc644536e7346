// data.go
package processor

import (
	"DelayClassifier/src/utils"
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"
)

var (
	ErrNoRows          = errors.New("no rows left")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrDegenerateSplit = errors.New("degenerate train/test split")
)

// DataProcess 流水线中的一个处理阶段，输入输出都是 DataFrame
type DataProcess interface {
	DataProcessFunc(df dataframe.DataFrame) (dataframe.DataFrame, error)
}

// checkFrame gota 的操作不返回 error，而是写入 DataFrame.Err
func checkFrame(df dataframe.DataFrame, op string) (dataframe.DataFrame, error) {
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", op, df.Err)
	}
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", op, ErrNoRows)
	}
	return df, nil
}

// FeatureColumns 除 exclude 以外的所有列，保持原有顺序
func FeatureColumns(df dataframe.DataFrame, exclude ...string) []string {
	var cols []string
	for _, name := range df.Names() {
		if !utils.Contains(exclude, name) {
			cols = append(cols, name)
		}
	}
	return cols
}
