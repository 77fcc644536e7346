package report

import (
	"DelayClassifier/src/evaluation"
	"fmt"
	"io"
)

// WriteText 每个分类器输出一行准确率和一段分类报告
func WriteText(w io.Writer, evals []evaluation.Evaluation) error {
	for _, e := range evals {
		if _, err := fmt.Fprintf(w, "%s Accuracy: %v\n", e.Name, e.Accuracy); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, e.Report()); err != nil {
			return err
		}
	}
	return nil
}
