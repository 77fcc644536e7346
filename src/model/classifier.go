package model

import (
	"DelayClassifier/src/config"
	"errors"
	"fmt"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/knn"
)

var (
	ErrNotFitted  = errors.New("classifier not fitted")
	ErrTooFewRows = errors.New("too few training rows")
	ErrNoFeatures = errors.New("no feature columns")
)

// Classifier 在训练集上拟合，对测试集每一行给出一个类别
type Classifier interface {
	Name() string
	Fit(train base.FixedDataGrid) error
	Predict(test base.FixedDataGrid) ([]int, error)
}

// Neighbors k 近邻
type Neighbors struct {
	K         int
	Distance  string
	Algorithm string

	knn *knn.KNNClassifier
}

func NewNeighbors(cfg config.Neighbors) *Neighbors {
	return &Neighbors{K: cfg.K, Distance: cfg.Distance, Algorithm: cfg.Algorithm}
}

func (n *Neighbors) Name() string { return "KNN Classifier" }

func (n *Neighbors) Fit(train base.FixedDataGrid) error {
	if len(base.NonClassAttributes(train)) == 0 {
		return ErrNoFeatures
	}
	if _, rows := train.Size(); rows < n.K {
		return fmt.Errorf("%w: k=%d rows=%d", ErrTooFewRows, n.K, rows)
	}
	cls := knn.NewKnnClassifier(n.Distance, n.Algorithm, n.K)
	if err := cls.Fit(train); err != nil {
		return fmt.Errorf("knn fit: %w", err)
	}
	n.knn = cls
	return nil
}

func (n *Neighbors) Predict(test base.FixedDataGrid) ([]int, error) {
	if n.knn == nil {
		return nil, ErrNotFitted
	}
	pred, err := n.knn.Predict(test)
	if err != nil {
		return nil, fmt.Errorf("knn predict: %w", err)
	}
	return Labels(pred)
}

// New 按配置创建两个分类器，顺序固定为森林、近邻
func New(cfg *config.Config) []Classifier {
	return []Classifier{NewForest(cfg.Forest), NewNeighbors(cfg.Neighbors)}
}
