package storage

import (
	"DelayClassifier/src/config"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel 定义日志级别类型
type LogLevel int

// 日志级别常量定义
const (
	DEBUG   LogLevel = iota // 调试信息
	INFO                    // 普通信息
	WARNING                 // 警告信息
	ERROR                   // 错误信息
	FATAL                   // 致命错误，只记录不退出
)

const timeLayout = "2006-01-02 15:04:05"

// Logger 日志记录器结构体
// 日志同时写入 stderr(console 格式) 和日志文件(JSON 行)，
// 并推送给所有订阅者
type Logger struct {
	zl          *zap.Logger
	out         *logFile      // 日志文件，可能为 nil
	mu          sync.Mutex    // 保护 subscribers
	subscribers []chan string // 订阅者通道列表
}

// logFile 可重新打开的日志文件
type logFile struct {
	mu   sync.Mutex
	name string
	file *os.File
}

func openLogFile(filename string) (*os.File, error) {
	return os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func (f *logFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return 0, os.ErrClosed
	}
	return f.file.Write(p)
}

func (f *logFile) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	return f.file.Sync()
}

// NewLogger 创建新的日志记录器
// 参数:
//
//	filename: 日志文件路径，为空时只输出到 stderr
//
// 返回值:
//
//	*Logger: 日志记录器实例
//	error: 创建过程中的错误
func NewLogger(filename string) (*Logger, error) {
	l := &Logger{}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	encCfg.EncodeLevel = encodeLevel

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), zapcore.InfoLevel),
	}

	if filename != "" {
		file, err := openLogFile(filename)
		if err != nil {
			return nil, err
		}
		l.out = &logFile{name: filename, file: file}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), l.out, zapcore.DebugLevel))
	}

	l.zl = zap.New(zapcore.NewTee(cores...), zap.Hooks(l.publish))
	return l, nil
}

// NewNopLogger 不输出任何内容，测试使用
func NewNopLogger() *Logger {
	l := &Logger{}
	l.zl = zap.New(zapcore.NewNopCore(), zap.Hooks(l.publish))
	return l
}

// Close 关闭日志文件
func (l *Logger) Close() error {
	_ = l.zl.Sync()
	if l.out == nil {
		return nil
	}

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	if l.out.file != nil {
		err := l.out.file.Close()
		l.out.file = nil
		return err
	}
	return nil
}

// Reopen 重新打开一个文件
// 参数：
// filename：新文件的路径
// 返回值：
// error：重建文件时的错误
func (l *Logger) Reopen(filename string) error {
	if l.out == nil {
		return fmt.Errorf("logger 没有日志文件")
	}

	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	// 关闭旧文件
	if l.out.file != nil {
		_ = l.out.file.Close()
	}

	// 重新打开
	file, err := openLogFile(filename)
	if err != nil {
		l.out.file = nil
		return err
	}
	l.out.file = file
	l.out.name = filename
	return nil
}

// Log 记录日志方法
// 参数:
//
//	level: 日志级别
//	message: 日志消息内容
//	fields: 附加的结构化字段
func (l *Logger) Log(level LogLevel, message string, fields ...zap.Field) {
	if ce := l.zl.Check(level.zapLevel(), message); ce != nil {
		ce.Write(fields...)
	}
}

// publish 通知所有订阅者，格式: [时间] 级别: 消息
func (l *Logger) publish(e zapcore.Entry) error {
	entry := fmt.Sprintf("[%s] %s: %s\n",
		e.Time.Format(timeLayout),
		levelName(e.Level),
		e.Message)

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.subscribers {
		select {
		case ch <- entry: // 尝试发送日志条目
		default: // 如果通道已满则跳过
		}
	}
	return nil
}

// CheckRotate 日志文件超过 cfg.MaxSize 时轮转
func (l *Logger) CheckRotate(cfg config.Log) (bool, error) {
	if l.out == nil {
		return false, nil
	}
	maxSize, err := eval(cfg.MaxSize)
	if err != nil {
		return false, err
	}

	l.out.mu.Lock()
	if l.out.file == nil {
		l.out.mu.Unlock()
		return false, nil
	}
	info, err := l.out.file.Stat()
	l.out.mu.Unlock()
	if err != nil {
		return false, err
	}

	if info.Size() <= maxSize {
		return false, nil
	}
	return true, l.rotateLog()
}

func (l *Logger) rotateLog() error {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	name := l.out.name
	if l.out.file != nil {
		l.out.file.Close()
		ext := filepath.Ext(name)
		rotated := fmt.Sprintf("%s.%s%s", strings.TrimSuffix(name, ext), time.Now().Format("20060102150405"), ext)
		if err := os.Rename(name, rotated); err != nil {
			return fmt.Errorf("日志轮转失败: %w", err)
		}
	}

	file, err := openLogFile(name)
	if err != nil {
		l.out.file = nil
		return err
	}
	l.out.file = file
	return nil
}

// Subscribe 订阅日志消息
// 返回值:
//
//	<-chan string: 只读通道，用于接收日志消息
func (l *Logger) Subscribe() <-chan string {
	l.mu.Lock()
	defer l.mu.Unlock()

	// 创建带缓冲的通道(容量100)
	ch := make(chan string, 100)
	// 将新通道加入订阅者列表
	l.subscribers = append(l.subscribers, ch)
	return ch
}

// String 实现LogLevel的String方法
// 返回值:
//
//	string: 日志级别的字符串表示
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// FATAL 映射到 DPanic: 非 development 模式下 zap 只记录，不会 panic 或退出
func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARNING:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.DPanicLevel
	default:
		return zapcore.InfoLevel
	}
}

func levelName(lv zapcore.Level) string {
	switch lv {
	case zapcore.DebugLevel:
		return DEBUG.String()
	case zapcore.InfoLevel:
		return INFO.String()
	case zapcore.WarnLevel:
		return WARNING.String()
	case zapcore.ErrorLevel:
		return ERROR.String()
	default:
		return FATAL.String()
	}
}

func encodeLevel(lv zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(levelName(lv))
}

// eval 解析 "10 * 1024 * 1024" 形式的大小表达式
func eval(expr string) (int64, error) {
	parts := strings.Split(expr, "*")
	var result int64 = 1
	for _, part := range parts {
		num, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("无法解析日志大小 %q: %w", expr, err)
		}
		result *= num
	}
	return result, nil
}

// 以下是快捷日志方法
func (l *Logger) Debug(msg string, fields ...zap.Field)   { l.Log(DEBUG, msg, fields...) }   // 记录调试信息
func (l *Logger) Info(msg string, fields ...zap.Field)    { l.Log(INFO, msg, fields...) }    // 记录普通信息
func (l *Logger) Warning(msg string, fields ...zap.Field) { l.Log(WARNING, msg, fields...) } // 记录警告信息
func (l *Logger) Error(msg string, fields ...zap.Field)   { l.Log(ERROR, msg, fields...) }   // 记录错误信息
func (l *Logger) Fatal(msg string, fields ...zap.Field)   { l.Log(FATAL, msg, fields...) }   // 记录致命错误
