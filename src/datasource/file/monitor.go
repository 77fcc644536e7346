// monitor.go
package file

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileInfo 文件信息结构体
type FileInfo struct {
	Name     string
	FullPath string
	ModTime  time.Time
}

// FileMonitor 监控单个输入文件，文件被写入或替换时回调
type FileMonitor struct {
	watchDir string
	target   string
	watcher  *fsnotify.Watcher
	lastFile *FileInfo
	mu       sync.Mutex
}

// NewFileMonitor 监听 path 所在目录；编辑器通常先写临时文件再 rename，
// 只监听文件本身会丢失事件
func NewFileMonitor(path string) (*FileMonitor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(abs)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("无法监听目录 %s: %w", dir, err)
	}

	m := &FileMonitor{
		watchDir: dir,
		target:   abs,
		watcher:  watcher,
	}
	if info, err := os.Stat(abs); err == nil {
		m.lastFile = &FileInfo{Name: info.Name(), FullPath: abs, ModTime: info.ModTime()}
	}
	return m, nil
}

func (m *FileMonitor) Close() error {
	return m.watcher.Close()
}

// Watch 阻塞直到 ctx 结束或 watcher 出错。handler 同步执行，
// 同一时间只处理一次变更
func (m *FileMonitor) Watch(ctx context.Context, handler func(string)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != m.target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			file := &FileInfo{Name: info.Name(), FullPath: m.target, ModTime: info.ModTime()}
			if !m.isNewFile(file) {
				continue
			}
			m.updateLastFile(file)
			handler(m.target)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func (m *FileMonitor) isNewFile(file *FileInfo) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastFile == nil ||
		file.ModTime.After(m.lastFile.ModTime) ||
		file.Name != m.lastFile.Name
}

func (m *FileMonitor) updateLastFile(file *FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFile = file
}

// SetupSignalHandler 设置信号处理器
func SetupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived signal: %v, shutting down...\n", sig)
		cancel()
	}()
}
