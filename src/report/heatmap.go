package report

import (
	"DelayClassifier/src/evaluation"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var ErrNoPanels = errors.New("no heatmap panels")

// 整张图 14x6 英寸，面板横向排列
const (
	FigureWidth  = 14 * vg.Inch
	FigureHeight = 6 * vg.Inch
)

// matrixGrid 把混淆矩阵适配为 plotter.GridXYZ
// 列为预测类别，行为真实类别，真实类别 0 画在上方
type matrixGrid struct {
	m evaluation.Matrix
}

func (g matrixGrid) Dims() (c, r int)   { return 2, 2 }
func (g matrixGrid) Z(c, r int) float64 { return float64(g.m[1-r][c]) }
func (g matrixGrid) X(c int) float64    { return float64(c) }
func (g matrixGrid) Y(r int) float64    { return float64(r) }

const paletteSize = 256

func themePalette(t Theme) (palette.Palette, error) {
	// moreland 要求亮度递增：先深后浅，再反转成低值浅、高值深
	cm, err := moreland.NewLuminance([]color.Color{t.Dark, t.Light})
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", t.Name, err)
	}
	cm.SetMin(0)
	cm.SetMax(1)
	// 颜色数取偶数，Reverse 在奇数长度时不填中间一格
	return palette.Reverse(cm).Palette(paletteSize), nil
}

// panelPlot 单个面板：热力图 + 格子中的计数
func panelPlot(p Panel) (*plot.Plot, error) {
	pal, err := themePalette(p.Theme)
	if err != nil {
		return nil, err
	}

	pl := plot.New()
	pl.Title.Text = p.Title
	pl.X.Label.Text = "Predicted"
	pl.Y.Label.Text = "Actual"

	grid := matrixGrid{m: p.Matrix}
	hm := plotter.NewHeatMap(grid, pal)
	hm.Min = 0
	hm.Max = float64(scaleMax(p.Matrix))
	pl.Add(hm)

	var xys plotter.XYs
	var labels []string
	c, r := grid.Dims()
	for row := 0; row < r; row++ {
		for col := 0; col < c; col++ {
			xys = append(xys, plotter.XY{X: grid.X(col), Y: grid.Y(row)})
			labels = append(labels, strconv.Itoa(int(grid.Z(col, row))))
		}
	}
	annot, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	for i := range annot.TextStyle {
		annot.TextStyle[i].XAlign = draw.XCenter
		annot.TextStyle[i].YAlign = draw.YCenter
		// 深色格子用白字
		if v, _ := strconv.Atoi(labels[i]); float64(v) > hm.Max/2 {
			annot.TextStyle[i].Color = color.White
		}
	}
	pl.Add(annot)

	ticks := []plot.Tick{{Value: 0, Label: "0"}, {Value: 1, Label: "1"}}
	pl.X.Tick.Marker = plot.ConstantTicks(ticks)
	pl.Y.Tick.Marker = plot.ConstantTicks([]plot.Tick{{Value: 1, Label: "0"}, {Value: 0, Label: "1"}})
	pl.X.Min, pl.X.Max = -0.5, 1.5
	pl.Y.Min, pl.Y.Max = -0.5, 1.5
	return pl, nil
}

// WriteHeatmaps 把所有面板横向排列画成一张 PNG
func WriteHeatmaps(w io.Writer, panels []Panel) error {
	if len(panels) == 0 {
		return ErrNoPanels
	}

	row := make([]*plot.Plot, len(panels))
	for i, p := range panels {
		pl, err := panelPlot(p)
		if err != nil {
			return err
		}
		row[i] = pl
	}

	img := vgimg.New(FigureWidth, FigureHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(panels),
		PadX:      vg.Inch / 2,
		PadTop:    vg.Inch / 4,
		PadBottom: vg.Inch / 4,
		PadLeft:   vg.Inch / 4,
		PadRight:  vg.Inch / 4,
	}
	canvases := plot.Align([][]*plot.Plot{row}, tiles, dc)
	for i, pl := range row {
		pl.Draw(canvases[0][i])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("写入 PNG 失败: %w", err)
	}
	return nil
}

// SaveHeatmaps 写入文件 path
func SaveHeatmaps(path string, panels []Panel) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建 %s 失败: %w", path, err)
	}
	if err := WriteHeatmaps(f, panels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
