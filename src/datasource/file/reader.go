// reader.go
package file

import (
	"DelayClassifier/src/config"
	"DelayClassifier/src/utils"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrEmptyInput    = errors.New("input has no data rows")
	ErrMissingColumn = errors.New("input is missing required columns")
)

// NaNValues 读取时视为缺失的取值
var NaNValues = []string{"", "NA", "NaN", "nan", "null", "NULL"}

// 所有列按字符串读入，类型转换由后续步骤负责
func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(NaNValues),
	}
}

// Load 按格式读取输入文件并校验必需列
func Load(in config.Input, required []string) (dataframe.DataFrame, error) {
	var (
		df  dataframe.DataFrame
		err error
	)

	switch format(in) {
	case "xlsx":
		df, err = ReadXLSX(in.Path, in.Sheet, in.HeaderRow)
	default:
		df, err = ReadCSVFile(in.Path, in.Encoding)
	}
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	if missing := utils.MissingColumns(df, required); len(missing) > 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w: %s", in.Path, ErrMissingColumn, strings.Join(missing, ", "))
	}
	return df, nil
}

func format(in config.Input) string {
	if in.Format != "" {
		return in.Format
	}
	switch strings.ToLower(filepath.Ext(in.Path)) {
	case ".xlsx", ".xlsm":
		return "xlsx"
	default:
		return "csv"
	}
}

// ReadCSVFile 读取分隔文本文件
func ReadCSVFile(filePath, encoding string) (dataframe.DataFrame, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	df, err := ReadCSV(f, encoding)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", filePath, err)
	}
	return df, nil
}

// ReadCSV 先按 encoding 解码(默认 UTF-8，自动去掉 BOM)，再转换为 DataFrame
func ReadCSV(r io.Reader, encoding string) (dataframe.DataFrame, error) {
	dec, err := decoder(encoding)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	reader := csv.NewReader(transform.NewReader(r, dec))
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("csv 解析失败: %w", err)
	}
	return loadRecords(records)
}

func decoder(name string) (transform.Transformer, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("不支持的编码 %q: %w", name, err)
	}
	return enc.NewDecoder(), nil
}

func loadRecords(records [][]string) (dataframe.DataFrame, error) {
	if len(records) < 2 {
		return dataframe.DataFrame{}, ErrEmptyInput
	}
	df := dataframe.LoadRecords(records, loadOptions()...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("转换为dataframe失败: %w", df.Err)
	}
	return df, nil
}

// ReadXLSX 读取 xlsx 工作表，headerRow 为标题行(从0开始)，之后的行为数据
func ReadXLSX(filePath, sheetName string, headerRow int) (dataframe.DataFrame, error) {
	// 1. 使用tealeg/xlsx打开Excel文件
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("xlsx open file false: %w", err)
	}

	// 2. 获取工作表
	if len(xlFile.Sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("excel文件中没有工作表: %s", filePath)
	}
	sheet := xlFile.Sheets[0]
	if sheetName != "" {
		s, ok := xlFile.Sheet[sheetName]
		if !ok {
			return dataframe.DataFrame{}, fmt.Errorf("工作表 %q 不存在: %s", sheetName, filePath)
		}
		sheet = s
	}

	// 3. 转换为Gota DataFrame
	df, err := convertSheetToDataFrame(sheet, headerRow)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", filePath, err)
	}
	return df, nil
}

// convertSheetToDataFrame 将xlsx.Sheet转换为dataframe.DataFrame
func convertSheetToDataFrame(sheet *xlsx.Sheet, headerRow int) (dataframe.DataFrame, error) {
	if len(sheet.Rows) <= headerRow {
		return dataframe.DataFrame{}, ErrEmptyInput
	}

	// 获取列名
	var headers []string
	for _, cell := range sheet.Rows[headerRow].Cells {
		headers = append(headers, strings.TrimSpace(cell.String()))
	}
	// 去掉末尾的空列
	for len(headers) > 0 && headers[len(headers)-1] == "" {
		headers = headers[:len(headers)-1]
	}

	records := [][]string{headers}
	for _, row := range sheet.Rows[headerRow+1:] {
		if row == nil {
			continue
		}
		record := make([]string, len(headers))
		empty := true
		for i, cell := range row.Cells {
			if i >= len(headers) { // 确保不超出列数范围
				break
			}
			record[i] = cell.String()
			if record[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		records = append(records, record)
	}

	return loadRecords(records)
}
