package report

import (
	"DelayClassifier/src/evaluation"
	"fmt"
	"image/color"
)

// Theme 热力图配色，从 Light 渐变到 Dark
type Theme struct {
	Name  string
	Light color.NRGBA
	Dark  color.NRGBA
}

var (
	Blues  = Theme{Name: "Blues", Light: color.NRGBA{R: 0xf7, G: 0xfb, B: 0xff, A: 0xff}, Dark: color.NRGBA{R: 0x08, G: 0x30, B: 0x6b, A: 0xff}}
	Greens = Theme{Name: "Greens", Light: color.NRGBA{R: 0xf7, G: 0xfc, B: 0xf5, A: 0xff}, Dark: color.NRGBA{R: 0x00, G: 0x44, B: 0x1b, A: 0xff}}
)

// DefaultThemes 按分类器顺序分配的配色
var DefaultThemes = []Theme{Blues, Greens}

// Panel 一个分类器的混淆矩阵面板
type Panel struct {
	Title  string
	Matrix evaluation.Matrix
	Theme  Theme
}

// Panels 为每个评估结果生成面板
func Panels(evals []evaluation.Evaluation) []Panel {
	panels := make([]Panel, len(evals))
	for i, e := range evals {
		panels[i] = Panel{
			Title:  e.Name + " Confusion Matrix",
			Matrix: e.Matrix,
			Theme:  DefaultThemes[i%len(DefaultThemes)],
		}
	}
	return panels
}

func hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// scaleMax 色阶上限，至少为 1
func scaleMax(m evaluation.Matrix) int {
	if max := m.Max(); max > 1 {
		return max
	}
	return 1
}
