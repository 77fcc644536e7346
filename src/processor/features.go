package processor

import (
	"DelayClassifier/src/config"
	"DelayClassifier/src/utils"
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

// FeatureDeriver 计算起飞/到达延误分钟数，并删除原始时间列和标识列
type FeatureDeriver struct {
	Columns config.Columns
	Policy  string

	// Undefined 最近一次处理中派生字段无法计算的行数
	Undefined int
}

func NewFeatureDeriver(cfg *config.Config) *FeatureDeriver {
	return &FeatureDeriver{Columns: cfg.Columns, Policy: cfg.Missing.Derived}
}

func (d *FeatureDeriver) DataProcessFunc(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	cols := d.Columns
	df, err := utils.SubSeriesTime(df, cols.ActualDeparture, cols.ScheduledDeparture, cols.DepartureDelay)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	df, err = utils.SubSeriesTime(df, cols.ActualArrival, cols.ScheduledArrival, cols.ArrivalDelay)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	drop := []string{cols.ScheduledDeparture, cols.ActualDeparture, cols.ScheduledArrival, cols.ActualArrival}
	drop = append(drop, cols.Identifiers...)
	df = df.Drop(drop)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("drop columns: %w", df.Err)
	}

	derived := []string{cols.DepartureDelay, cols.ArrivalDelay}
	d.Undefined = countUndefined(df, derived)
	if d.Undefined == 0 {
		return df, nil
	}

	switch d.Policy {
	case config.PolicyPropagate:
		return df, nil
	case config.PolicyImputeZero:
		for _, name := range derived {
			df = imputeColumn(df, name, 0)
		}
		return df, nil
	case config.PolicyImputeMedian:
		for _, name := range derived {
			df = imputeColumn(df, name, Median(df.Col(name).Float()))
		}
		return df, nil
	default:
		for _, name := range derived {
			df = df.Filter(dataframe.F{
				Colname:    name,
				Comparator: series.CompFunc,
				Comparando: func(el series.Element) bool {
					return !math.IsNaN(el.Float())
				},
			})
		}
		return checkFrame(df, "drop undefined derived rows")
	}
}

func countUndefined(df dataframe.DataFrame, names []string) int {
	n := 0
	cols := make([][]float64, len(names))
	for i, name := range names {
		cols[i] = df.Col(name).Float()
	}
	for row := 0; row < df.Nrow(); row++ {
		for _, col := range cols {
			if math.IsNaN(col[row]) {
				n++
				break
			}
		}
	}
	return n
}

func imputeColumn(df dataframe.DataFrame, name string, value float64) dataframe.DataFrame {
	values := df.Col(name).Float()
	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = value
		}
	}
	return df.Mutate(series.New(values, series.Float, name))
}

// Median 忽略 NaN 的经验中位数，没有有效值时返回 0
func Median(values []float64) float64 {
	defined := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}
	if len(defined) == 0 {
		return 0
	}
	sort.Float64s(defined)
	return stat.Quantile(0.5, stat.Empirical, defined, nil)
}
