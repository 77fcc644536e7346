package report

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var classAxis = []string{"0", "1"}

func heatmapChart(p Panel) *charts.HeatMap {
	data := make([]opts.HeatMapData, 0, 4)
	for actual := 0; actual < 2; actual++ {
		for pred := 0; pred < 2; pred++ {
			// y 轴从下往上排列，真实类别 0 放在上方
			data = append(data, opts.HeatMapData{Value: [3]interface{}{pred, 1 - actual, p.Matrix[actual][pred]}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: p.Title, Width: "600px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: p.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "Predicted", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: []string{"1", "0"}, Name: "Actual", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(scaleMax(p.Matrix)),
			InRange:    &opts.VisualMapInRange{Color: []string{hex(p.Theme.Light), hex(p.Theme.Dark)}},
		}),
	)
	hm.SetXAxis(classAxis).
		AddSeries("count", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
		)
	return hm
}

// WriteHTML 所有面板渲染到同一个 echarts 页面
func WriteHTML(w io.Writer, panels []Panel) error {
	if len(panels) == 0 {
		return ErrNoPanels
	}

	page := components.NewPage()
	page.PageTitle = "Confusion Matrices"
	page.SetLayout(components.PageFlexLayout)
	for _, p := range panels {
		page.AddCharts(heatmapChart(p))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}

func SaveHTML(path string, panels []Panel) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建 %s 失败: %w", path, err)
	}
	if err := WriteHTML(f, panels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
