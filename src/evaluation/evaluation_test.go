package evaluation

import (
	"strings"
	"testing"

	gle "github.com/sjwhitworth/golearn/evaluation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	actual := []int{0, 0, 0, 0, 1, 1, 1, 0, 1, 0}
	predicted := []int{0, 0, 1, 0, 1, 0, 1, 0, 1, 1}

	e, err := Evaluate("Random Forest Classifier", actual, predicted)
	require.NoError(t, err)

	assert.Equal(t, Matrix{{4, 2}, {1, 3}}, e.Matrix)
	assert.Equal(t, [2]int{6, 4}, e.Matrix.RowSums())
	assert.Equal(t, [2]int{5, 5}, e.Matrix.ColSums())
	assert.Equal(t, len(actual), e.Matrix.Total())
	assert.InDelta(t, 0.7, e.Accuracy, 1e-9)

	require.Len(t, e.Classes, 2)
	assert.InDelta(t, 0.8, e.Classes[0].Precision, 1e-9)
	assert.InDelta(t, 4.0/6.0, e.Classes[0].Recall, 1e-9)
	assert.Equal(t, 6, e.Classes[0].Support)
	assert.InDelta(t, 0.6, e.Classes[1].Precision, 1e-9)
	assert.InDelta(t, 0.75, e.Classes[1].Recall, 1e-9)
	assert.InDelta(t, 2*0.6*0.75/1.35, e.Classes[1].F1, 1e-9)
	assert.Equal(t, 4, e.Classes[1].Support)

	assert.InDelta(t, 0.7, e.Macro.Precision, 1e-9)
	assert.InDelta(t, 0.8*0.6+0.6*0.4, e.Weighted.Precision, 1e-9)
}

func TestEvaluateConfusionSums(t *testing.T) {
	actual := []int{1, 1, 1, 0, 0, 1, 0, 1}
	predicted := []int{1, 0, 0, 0, 1, 1, 1, 1}

	e, err := Evaluate("KNN Classifier", actual, predicted)
	require.NoError(t, err)

	var wantRows, wantCols [2]int
	for i := range actual {
		wantRows[actual[i]]++
		wantCols[predicted[i]]++
	}
	assert.Equal(t, wantRows, e.Matrix.RowSums())
	assert.Equal(t, wantCols, e.Matrix.ColSums())
	assert.Equal(t, len(actual), e.Matrix.Total())
}

func TestEvaluateNeverPredicted(t *testing.T) {
	// 从未预测类别 1，精确率按 0 处理
	e, err := Evaluate("KNN Classifier", []int{0, 1, 0}, []int{0, 0, 0})
	require.NoError(t, err)

	assert.Equal(t, 0.0, e.Classes[1].Precision)
	assert.Equal(t, 0.0, e.Classes[1].Recall)
	assert.Equal(t, 0.0, e.Classes[1].F1)
	assert.Equal(t, 1, e.Classes[1].Support)
}

func TestEvaluateErrors(t *testing.T) {
	_, err := Evaluate("x", []int{0, 1}, []int{0})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Evaluate("x", nil, nil)
	assert.Error(t, err)
}

func TestFromConfusion(t *testing.T) {
	cm := gle.ConfusionMatrix{
		"0": {"0": 50, "1": 10},
		"1": {"0": 5, "1": 35},
	}
	e := FromConfusion("Random Forest Classifier", cm)
	assert.Equal(t, Matrix{{50, 10}, {5, 35}}, e.Matrix)
	assert.InDelta(t, 0.85, e.Accuracy, 1e-9)
}

func TestReport(t *testing.T) {
	e, err := Evaluate("Random Forest Classifier", []int{0, 0, 1, 1}, []int{0, 1, 1, 1})
	require.NoError(t, err)

	lines := strings.Split(e.Report(), "\n")
	assert.Contains(t, lines[0], "precision")
	assert.Contains(t, lines[0], "f1-score")
	assert.Equal(t, "           0       1.00       0.50       0.67          2", lines[2])
	assert.Equal(t, "           1       0.67       1.00       0.80          2", lines[3])
	assert.True(t, strings.HasPrefix(lines[5], "    accuracy"))
	assert.True(t, strings.HasSuffix(lines[5], "0.75          4"))
	assert.True(t, strings.HasPrefix(lines[6], "   macro avg"))
	assert.True(t, strings.HasPrefix(lines[7], "weighted avg"))
}

func TestMajorityBaseline(t *testing.T) {
	train := make([]int, 0, 700)
	for i := 0; i < 700; i++ {
		if i < 280 {
			train = append(train, 1)
		} else {
			train = append(train, 0)
		}
	}
	test := make([]int, 300)
	for i := 0; i < 120; i++ {
		test[i] = 1
	}

	assert.Equal(t, 0, Majority(train))
	assert.InDelta(t, 0.6, MajorityBaseline(train, test), 1e-9)
	assert.Equal(t, 0.0, MajorityBaseline(train, nil))
	assert.Equal(t, 0, Majority([]int{0, 1}))
	assert.Equal(t, 1, Majority([]int{1, 1, 0}))
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, 1, Distinct([]int{1, 1}))
	assert.Equal(t, 2, Distinct([]int{0, 1, 1}))
	assert.Equal(t, 0, Distinct(nil))
}
