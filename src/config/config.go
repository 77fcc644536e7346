package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// 缺失数据处理策略
const (
	PolicyDrop         = "drop"
	PolicyFill         = "fill"
	PolicyImputeMedian = "impute-median"
	PolicyImputeZero   = "impute-zero"
	PolicyPropagate    = "propagate"
)

// 默认参数，与分析脚本保持一致
const (
	DefaultTestFraction      = 0.3
	DefaultSeed              = 42
	DefaultEstimators        = 100
	DefaultNeighbors         = 5
	DefaultDelayThreshold    = 30.0
	DefaultReasonPlaceholder = "Unknown"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config 结构体定义了应用程序的配置结构
type Config struct {
	Input     Input         `json:"input"`
	Columns   Columns       `json:"columns"`
	Missing   MissingPolicy `json:"missing"`
	Label     Label         `json:"label"`
	Split     Split         `json:"split"`
	Forest    Forest        `json:"forest"`
	Neighbors Neighbors     `json:"neighbors"`
	Report    Report        `json:"report"`
	Log       Log           `json:"log"`
	Watch     Watch         `json:"watch"`
}

// Input 输入数据源
type Input struct {
	Path      string `json:"path"`       // csv 或 xlsx 文件路径
	Format    string `json:"format"`     // "csv" / "xlsx"，为空时按扩展名判断
	Sheet     string `json:"sheet"`      // xlsx 工作表名，为空取第一个
	HeaderRow int    `json:"header_row"` // xlsx 标题行(从0开始)
	Encoding  string `json:"encoding"`   // 文本编码，如 gbk；为空按 UTF-8 处理
}

// Columns 数据集列名映射
type Columns struct {
	Target             string   `json:"target"`
	Reason             string   `json:"reason"`
	ScheduledDeparture string   `json:"scheduled_departure"`
	ActualDeparture    string   `json:"actual_departure"`
	ScheduledArrival   string   `json:"scheduled_arrival"`
	ActualArrival      string   `json:"actual_arrival"`
	Identifiers        []string `json:"identifiers"` // 不参与训练的标识列
	Categorical        []string `json:"categorical"`
	DepartureDelay     string   `json:"departure_delay"`
	ArrivalDelay       string   `json:"arrival_delay"`
	Label              string   `json:"label"`
}

// MissingPolicy 缺失值处理策略
type MissingPolicy struct {
	Target            string `json:"target"`  // 目标列缺失: 只支持 drop
	Reason            string `json:"reason"`  // 延误原因缺失: fill / drop
	ReasonPlaceholder string `json:"reason_placeholder"`
	Derived           string `json:"derived"` // 派生时长无法计算: drop / impute-median / impute-zero / propagate
}

type Label struct {
	Threshold float64 `json:"threshold"`
}

type Split struct {
	TestFraction float64 `json:"test_fraction"`
	Seed         int64   `json:"seed"`
	Stratify     bool    `json:"stratify"`
}

type Forest struct {
	Estimators int   `json:"estimators"`
	Features   int   `json:"features"` // 每棵树的特征数，0 表示 sqrt(n)
	Seed       int64 `json:"seed"`
}

type Neighbors struct {
	K         int    `json:"k"`
	Distance  string `json:"distance"`
	Algorithm string `json:"algorithm"`
}

// Report 输出文件，为空表示不输出
type Report struct {
	Heatmap  string `json:"heatmap"`
	HTML     string `json:"html"`
	Workbook string `json:"workbook"`
}

type Log struct {
	Name    string `json:"name"`
	MaxSize string `json:"max_size"` // 例如 "10 * 1024 * 1024"
}

type Watch struct {
	CheckInterval Duration `json:"check_interval"` // schedule 模式的运行间隔
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Columns: Columns{
			Target:             "DelayMinutes",
			Reason:             "DelayReason",
			ScheduledDeparture: "ScheduledDeparture",
			ActualDeparture:    "ActualDeparture",
			ScheduledArrival:   "ScheduledArrival",
			ActualArrival:      "ActualArrival",
			Identifiers:        []string{"FlightID", "FlightNumber", "TailNumber"},
			Categorical:        []string{"Airline", "Origin", "Destination", "DelayReason", "AircraftType", "Cancelled", "Diverted"},
			DepartureDelay:     "DepartureDelay",
			ArrivalDelay:       "ArrivalDelay",
			Label:              "DelayCategory",
		},
		Input: Input{
			Path: "flight_delays.csv",
		},
		Missing: MissingPolicy{
			Target:            PolicyDrop,
			Reason:            PolicyFill,
			ReasonPlaceholder: DefaultReasonPlaceholder,
			Derived:           PolicyDrop,
		},
		Label: Label{Threshold: DefaultDelayThreshold},
		Split: Split{
			TestFraction: DefaultTestFraction,
			Seed:         DefaultSeed,
		},
		Forest: Forest{
			Estimators: DefaultEstimators,
			Seed:       DefaultSeed,
		},
		Neighbors: Neighbors{
			K:         DefaultNeighbors,
			Distance:  "euclidean",
			Algorithm: "linear",
		},
		Report: Report{
			Heatmap: "confusion_matrices.png",
		},
		Log: Log{
			Name:    "flightdelay.log",
			MaxSize: "10 * 1024 * 1024",
		},
		Watch: Watch{
			CheckInterval: Duration(time.Hour),
		},
	}
}

// LoadConfig 读取 jsonFolder/jsonFile，文件中出现的字段覆盖默认值
func LoadConfig(jsonFolder, jsonFile string) (*Config, error) {
	cfg := Default()
	if jsonFile == "" {
		return cfg, nil
	}

	data, err := readFile(filepath.Join(jsonFolder, jsonFile))
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析Config失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

// Validate 检查配置取值范围
func (c *Config) Validate() error {
	var errs []error

	if c.Input.Path == "" {
		errs = append(errs, fmt.Errorf("input.path 不能为空"))
	}
	if c.Input.HeaderRow < 0 {
		errs = append(errs, fmt.Errorf("input.header_row 不能为负数: %d", c.Input.HeaderRow))
	}
	switch c.Input.Format {
	case "", "csv", "xlsx":
	default:
		errs = append(errs, fmt.Errorf("未知的 input.format: %q", c.Input.Format))
	}

	if c.Missing.Target != PolicyDrop {
		errs = append(errs, fmt.Errorf("missing.target 只支持 %q: %q", PolicyDrop, c.Missing.Target))
	}
	switch c.Missing.Reason {
	case PolicyFill, PolicyDrop:
	default:
		errs = append(errs, fmt.Errorf("未知的 missing.reason: %q", c.Missing.Reason))
	}
	switch c.Missing.Derived {
	case PolicyDrop, PolicyImputeMedian, PolicyImputeZero, PolicyPropagate:
	default:
		errs = append(errs, fmt.Errorf("未知的 missing.derived: %q", c.Missing.Derived))
	}

	if c.Split.TestFraction <= 0 || c.Split.TestFraction >= 1 {
		errs = append(errs, fmt.Errorf("split.test_fraction 必须在 (0,1) 之间: %v", c.Split.TestFraction))
	}
	if c.Forest.Estimators < 1 {
		errs = append(errs, fmt.Errorf("forest.estimators 必须大于0: %d", c.Forest.Estimators))
	}
	if c.Forest.Features < 0 {
		errs = append(errs, fmt.Errorf("forest.features 不能为负数: %d", c.Forest.Features))
	}
	if c.Neighbors.K < 1 {
		errs = append(errs, fmt.Errorf("neighbors.k 必须大于0: %d", c.Neighbors.K))
	}
	switch c.Neighbors.Distance {
	case "euclidean", "manhattan", "cosine":
	default:
		errs = append(errs, fmt.Errorf("未知的 neighbors.distance: %q", c.Neighbors.Distance))
	}
	switch c.Neighbors.Algorithm {
	case "linear", "kdtree":
	default:
		errs = append(errs, fmt.Errorf("未知的 neighbors.algorithm: %q", c.Neighbors.Algorithm))
	}
	if time.Duration(c.Watch.CheckInterval) <= 0 {
		errs = append(errs, fmt.Errorf("watch.check_interval 必须大于0"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, combineErrors(errs))
	}
	return nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	msg := "配置校验遇到多个错误:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// Required 返回输入文件必须包含的列
func (c Columns) Required() []string {
	cols := []string{
		c.Target, c.Reason,
		c.ScheduledDeparture, c.ActualDeparture,
		c.ScheduledArrival, c.ActualArrival,
	}
	cols = append(cols, c.Identifiers...)
	for _, col := range c.Categorical {
		if col == c.Reason {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
// 用于从JSON字符串解析Duration
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
// 用于将Duration序列化为JSON字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
