package processor

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/go-gota/gota/dataframe"
)

// SplitOptions 训练/测试划分参数
type SplitOptions struct {
	TestFraction float64
	Seed         int64
	Stratify     bool
	LabelCol     string // Stratify 时使用
}

// Partition 划分结果，TrainIdx/TestIdx 为原表中的行号
type Partition struct {
	Train    dataframe.DataFrame
	Test     dataframe.DataFrame
	TrainIdx []int
	TestIdx  []int
}

// Split 按固定比例和种子划分，相同输入和种子得到相同结果
func Split(df dataframe.DataFrame, opts SplitOptions) (Partition, error) {
	var labels []int
	if opts.Stratify {
		var err error
		labels, err = Labels(df, opts.LabelCol)
		if err != nil {
			return Partition{}, fmt.Errorf("stratify: %w", err)
		}
	}

	train, test, err := SplitIndices(df.Nrow(), labels, opts)
	if err != nil {
		return Partition{}, err
	}

	p := Partition{
		Train:    df.Subset(train),
		Test:     df.Subset(test),
		TrainIdx: train,
		TestIdx:  test,
	}
	if p.Train.Err != nil {
		return Partition{}, fmt.Errorf("split train: %w", p.Train.Err)
	}
	if p.Test.Err != nil {
		return Partition{}, fmt.Errorf("split test: %w", p.Test.Err)
	}
	return p, nil
}

// SplitIndices 测试集大小为 round(fraction*n)；labels 非空时按类别分层
func SplitIndices(n int, labels []int, opts SplitOptions) (train, test []int, err error) {
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		return nil, nil, fmt.Errorf("%w: test fraction %v", ErrDegenerateSplit, opts.TestFraction)
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	if len(labels) > 0 {
		if len(labels) != n {
			return nil, nil, fmt.Errorf("stratify: %d labels for %d rows", len(labels), n)
		}
		train, test = stratifiedIndices(labels, opts.TestFraction, rng)
	} else {
		perm := rng.Perm(n)
		nTest := int(math.Round(opts.TestFraction * float64(n)))
		test, train = perm[:nTest], perm[nTest:]
	}

	if len(train) == 0 || len(test) == 0 {
		return nil, nil, fmt.Errorf("%w: %d rows give train=%d test=%d", ErrDegenerateSplit, n, len(train), len(test))
	}
	return train, test, nil
}

func stratifiedIndices(labels []int, fraction float64, rng *rand.Rand) (train, test []int) {
	byClass := make(map[int][]int)
	for i, l := range labels {
		byClass[l] = append(byClass[l], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	for _, c := range classes {
		idx := byClass[c]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		k := int(math.Round(fraction * float64(len(idx))))
		test = append(test, idx[:k]...)
		train = append(train, idx[k:]...)
	}
	return train, test
}
