package evaluation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sjwhitworth/golearn/base"
	gle "github.com/sjwhitworth/golearn/evaluation"
)

var ErrLengthMismatch = errors.New("actual and predicted lengths differ")

// Classes 报告中的类别，按标签值升序
var Classes = []int{0, 1}

// Matrix 2x2 混淆矩阵，行为真实类别，列为预测类别
type Matrix [2][2]int

// RowSums 每个真实类别的行数
func (m Matrix) RowSums() [2]int {
	return [2]int{m[0][0] + m[0][1], m[1][0] + m[1][1]}
}

// ColSums 每个预测类别的行数
func (m Matrix) ColSums() [2]int {
	return [2]int{m[0][0] + m[1][0], m[0][1] + m[1][1]}
}

func (m Matrix) Total() int {
	return m[0][0] + m[0][1] + m[1][0] + m[1][1]
}

func (m Matrix) Max() int {
	max := 0
	for _, row := range m {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// ClassMetrics 单个类别的指标，0/0 记为 0
type ClassMetrics struct {
	Class     int
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

type Average struct {
	Precision float64
	Recall    float64
	F1        float64
}

// Evaluation 一个分类器在测试集上的结果
type Evaluation struct {
	Name     string
	Accuracy float64
	Classes  []ClassMetrics
	Macro    Average
	Weighted Average
	Matrix   Matrix
}

// Evaluate 比较真实类别和预测类别
func Evaluate(name string, actual, predicted []int) (Evaluation, error) {
	if len(actual) != len(predicted) {
		return Evaluation{}, fmt.Errorf("%s: %w: %d vs %d", name, ErrLengthMismatch, len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return Evaluation{}, fmt.Errorf("%s: no test rows", name)
	}

	ref, err := classGrid(actual)
	if err != nil {
		return Evaluation{}, err
	}
	gen, err := classGrid(predicted)
	if err != nil {
		return Evaluation{}, err
	}
	cm, err := gle.GetConfusionMatrix(ref, gen)
	if err != nil {
		return Evaluation{}, fmt.Errorf("%s: confusion matrix: %w", name, err)
	}
	return FromConfusion(name, cm), nil
}

// FromConfusion 由 golearn 混淆矩阵计算各项指标
func FromConfusion(name string, cm gle.ConfusionMatrix) Evaluation {
	e := Evaluation{Name: name}
	for i, actual := range Classes {
		for j, pred := range Classes {
			e.Matrix[i][j] = cm[strconv.Itoa(actual)][strconv.Itoa(pred)]
		}
	}

	total := e.Matrix.Total()
	if total > 0 {
		e.Accuracy = zeroNaN(gle.GetAccuracy(cm))
	}

	support := e.Matrix.RowSums()
	for i, c := range Classes {
		class := strconv.Itoa(c)
		m := ClassMetrics{
			Class:     c,
			Precision: zeroNaN(gle.GetPrecision(class, cm)),
			Recall:    zeroNaN(gle.GetRecall(class, cm)),
			Support:   support[i],
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		e.Classes = append(e.Classes, m)

		e.Macro.Precision += m.Precision / float64(len(Classes))
		e.Macro.Recall += m.Recall / float64(len(Classes))
		e.Macro.F1 += m.F1 / float64(len(Classes))
		if total > 0 {
			w := float64(m.Support) / float64(total)
			e.Weighted.Precision += m.Precision * w
			e.Weighted.Recall += m.Recall * w
			e.Weighted.F1 += m.F1 * w
		}
	}
	return e
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Report 按 classification report 的版式输出
func (e Evaluation) Report() string {
	const width = len("weighted avg")
	var b strings.Builder
	total := e.Matrix.Total()

	fmt.Fprintf(&b, "%*s %10s %10s %10s %10s\n\n", width, "", "precision", "recall", "f1-score", "support")
	for _, m := range e.Classes {
		fmt.Fprintf(&b, "%*d %10.2f %10.2f %10.2f %10d\n", width, m.Class, m.Precision, m.Recall, m.F1, m.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s %10s %10s %10.2f %10d\n", width, "accuracy", "", "", e.Accuracy, total)
	fmt.Fprintf(&b, "%*s %10.2f %10.2f %10.2f %10d\n", width, "macro avg", e.Macro.Precision, e.Macro.Recall, e.Macro.F1, total)
	fmt.Fprintf(&b, "%*s %10.2f %10.2f %10.2f %10d\n", width, "weighted avg", e.Weighted.Precision, e.Weighted.Recall, e.Weighted.F1, total)
	return b.String()
}

// MajorityBaseline 总是预测训练集多数类时在测试集上的准确率
// 两类数量相同时取 0
func MajorityBaseline(train, test []int) float64 {
	if len(test) == 0 {
		return 0
	}
	majority := Majority(train)
	hit := 0
	for _, l := range test {
		if l == majority {
			hit++
		}
	}
	return float64(hit) / float64(len(test))
}

// Majority 出现次数最多的类别
func Majority(labels []int) int {
	counts := make(map[int]int)
	for _, l := range labels {
		counts[l]++
	}
	best, bestCount := Classes[0], -1
	for _, c := range Classes {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

// Distinct 标签中出现的类别数
func Distinct(labels []int) int {
	seen := make(map[int]bool)
	for _, l := range labels {
		seen[l] = true
	}
	return len(seen)
}

// classGrid 只有类别属性的 golearn 数据集
func classGrid(labels []int) (base.FixedDataGrid, error) {
	class := base.NewCategoricalAttribute()
	class.SetName("class")
	for _, c := range Classes {
		class.GetSysValFromString(strconv.Itoa(c))
	}

	inst := base.NewDenseInstances()
	spec := inst.AddAttribute(class)
	if err := inst.AddClassAttribute(class); err != nil {
		return nil, err
	}
	if err := inst.Extend(len(labels)); err != nil {
		return nil, err
	}
	for i, l := range labels {
		inst.Set(spec, i, class.GetSysValFromString(strconv.Itoa(l)))
	}
	return inst, nil
}
