package model

import (
	"DelayClassifier/src/config"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/trees"
)

// Forest 随机森林：每棵 ID3 树在一份自助采样上训练，每个节点只在随机选出的
// Features 个特征中找分裂，预测时多数投票
// 随机性全部由 Seed 派生，不读全局随机源，相同输入和种子得到相同的森林
type Forest struct {
	Estimators int
	Features   int // 0 表示 floor(sqrt(n))
	Seed       int64

	trees []*trees.ID3DecisionTree
}

func NewForest(cfg config.Forest) *Forest {
	return &Forest{Estimators: cfg.Estimators, Features: cfg.Features, Seed: cfg.Seed}
}

func (f *Forest) Name() string { return "Random Forest Classifier" }

// FeaturesPerTree 每棵树使用的特征数
func FeaturesPerTree(configured, available int) int {
	if configured > 0 {
		return configured
	}
	n := int(math.Floor(math.Sqrt(float64(available))))
	if n < 1 {
		return 1
	}
	return n
}

func (f *Forest) Fit(train base.FixedDataGrid) error {
	attrs := base.NonClassAttributes(train)
	if len(attrs) == 0 {
		return ErrNoFeatures
	}
	features := FeaturesPerTree(f.Features, len(attrs))
	if features > len(attrs) {
		return fmt.Errorf("forest: %d features per tree but only %d available", features, len(attrs))
	}
	if f.Estimators < 1 {
		return fmt.Errorf("forest: %d estimators", f.Estimators)
	}
	_, rows := train.Size()
	if rows == 0 {
		return fmt.Errorf("%w: forest has no rows", ErrTooFewRows)
	}

	rng := rand.New(rand.NewSource(f.Seed))
	fitted := make([]*trees.ID3DecisionTree, 0, f.Estimators)
	for i := 0; i < f.Estimators; i++ {
		sample := make([]int, rows)
		for j := range sample {
			sample[j] = rng.Intn(rows)
		}
		bag, err := project(train, attrs, sample)
		if err != nil {
			return fmt.Errorf("forest tree %d: %w", i, err)
		}

		rule := &subspaceRule{Features: features, Seed: rng.Int63()}
		tree := trees.NewID3DecisionTreeFromRule(0, rule)
		if err := tree.Fit(bag); err != nil {
			return fmt.Errorf("forest tree %d fit: %w", i, err)
		}
		fitted = append(fitted, tree)
	}
	f.trees = fitted
	return nil
}

// Predict 每棵树投一票，票数相同时取 0
func (f *Forest) Predict(test base.FixedDataGrid) ([]int, error) {
	if len(f.trees) == 0 {
		return nil, ErrNotFitted
	}
	_, rows := test.Size()
	votes := make([]int, rows)
	for i, t := range f.trees {
		pred, err := t.Predict(test)
		if err != nil {
			return nil, fmt.Errorf("forest tree %d predict: %w", i, err)
		}
		labels, err := Labels(pred)
		if err != nil {
			return nil, fmt.Errorf("forest tree %d: %w", i, err)
		}
		for r, l := range labels {
			if l == 1 {
				votes[r]++
			}
		}
	}

	out := make([]int, rows)
	for r, v := range votes {
		if 2*v > len(f.trees) {
			out[r] = 1
		}
	}
	return out, nil
}

// subspaceRule 每个节点随机选 Features 个候选特征，取信息增益最大的分裂
// 特征必须留在树里：ID3 只剩一个特征时直接给出叶子，不再分裂
// 子节点按 map 顺序展开，所以节点的随机源由树种子和节点数据共同决定
type subspaceRule struct {
	Features int
	Seed     int64
	gain     trees.InformationGainRuleGenerator
}

func (r *subspaceRule) GenerateSplitRule(f base.FixedDataGrid) *trees.DecisionTreeRule {
	candidates := base.NonClassAttributes(f)
	k := r.Features
	if k > len(candidates) {
		k = len(candidates)
	}
	rng := rand.New(rand.NewSource(r.nodeSeed(f, candidates)))
	picked := rng.Perm(len(candidates))[:k]
	sort.Ints(picked)
	selection := make([]base.Attribute, k)
	for i, p := range picked {
		selection[i] = candidates[p]
	}
	return r.gain.GetSplitRuleFromSelection(selection, f)
}

func (r *subspaceRule) nodeSeed(f base.FixedDataGrid, candidates []base.Attribute) int64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(r.Seed))
	h.Write(buf[:])
	_, rows := f.Size()
	binary.LittleEndian.PutUint64(buf[:], uint64(rows))
	h.Write(buf[:])
	if rows == 0 {
		return int64(h.Sum64())
	}
	for _, row := range []int{0, rows - 1} {
		for _, spec := range base.ResolveAttributes(f, candidates) {
			h.Write(f.Get(spec, row))
		}
	}
	return int64(h.Sum64())
}

// project 复制 grid 中 rows 指定的行，只保留 attrs 和类别属性
func project(grid base.FixedDataGrid, attrs []base.Attribute, rows []int) (*base.DenseInstances, error) {
	classAttrs := grid.AllClassAttributes()
	all := make([]base.Attribute, 0, len(attrs)+len(classAttrs))
	all = append(all, attrs...)
	all = append(all, classAttrs...)

	out := base.NewDenseInstances()
	src := make([]base.AttributeSpec, len(all))
	dst := make([]base.AttributeSpec, len(all))
	for i, a := range all {
		spec, err := grid.GetAttribute(a)
		if err != nil {
			return nil, err
		}
		src[i] = spec
		dst[i] = out.AddAttribute(a)
	}
	for _, c := range classAttrs {
		if err := out.AddClassAttribute(c); err != nil {
			return nil, err
		}
	}
	if err := out.Extend(len(rows)); err != nil {
		return nil, err
	}
	for i, r := range rows {
		for k := range all {
			out.Set(dst[k], i, grid.Get(src[k], r))
		}
	}
	return out, nil
}
