// Package logger 封装 logrus：全局 logger、按组件命名的入口和统一的纯文本格式。
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LogEntry 暴露底层类型，组件只持有入口，不直接依赖 logrus。
type LogEntry = logrus.Entry

// DefaultLogPath 默认日志文件路径。
const DefaultLogPath = "logs/viewscope.log"

// 不参与字段输出的保留键。
const (
	componentKey = "component"
	callerKey    = "caller"
)

var rootLogger = logrus.StandardLogger()

// Configure 设置全局日志格式并打开 caller 输出。
func Configure() {
	rootLogger.SetReportCaller(true)
	rootLogger.SetFormatter(PlainFormatter{})
}

// SetupFile 把全局日志重定向到文件。终端由 TUI 独占，交互模式下日志只写文件。
// 返回文件 closer 与实际路径。
func SetupFile(path string) (io.Closer, string, error) {
	if path == "" {
		path = DefaultLogPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, "", err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, "", err
	}
	rootLogger.SetOutput(f)
	return f, path, nil
}

// SetRoot 替换全局 logger；nil 恢复为标准 logger。测试用。
func SetRoot(l *logrus.Logger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	rootLogger = l
}

// Named 返回带 component 字段的入口。
func Named(component string) *LogEntry {
	entry := logrus.NewEntry(rootLogger)
	if component == "" {
		return entry
	}
	return entry.WithField(componentKey, component)
}

// SetLevel 应用级别名称；无法识别时回退到 info 并返回错误。
func SetLevel(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		rootLogger.SetLevel(logrus.InfoLevel)
		return nil
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		rootLogger.SetLevel(logrus.InfoLevel)
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	rootLogger.SetLevel(level)
	return nil
}

// Discard 丢弃全局日志输出，供 headless 子命令使用。
func Discard() {
	rootLogger.SetOutput(io.Discard)
}

// PlainFormatter 输出：caller [timestamp] [LEVEL] [component] message k=v...
type PlainFormatter struct{}

func (PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry == nil {
		return nil, nil
	}
	var b bytes.Buffer
	if caller := callerOf(entry); caller != "" {
		b.WriteString(caller)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "[%s] [%s] ", entry.Time.UTC().Format(time.RFC3339Nano), strings.ToUpper(entry.Level.String()))
	if component, _ := entry.Data[componentKey].(string); component != "" {
		fmt.Fprintf(&b, "[%s] ", component)
	}
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != componentKey && k != callerKey {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func callerOf(entry *logrus.Entry) string {
	if entry.HasCaller() && entry.Caller != nil {
		return fmt.Sprintf("%s:%d", trimModulePath(entry.Caller.File), entry.Caller.Line)
	}
	caller, _ := entry.Data[callerKey].(string)
	return caller
}

// trimModulePath 把绝对路径裁剪为 internal/... 或 cmd/... 形式。
func trimModulePath(file string) string {
	file = filepath.ToSlash(file)
	for _, marker := range []string{"/internal/", "/cmd/"} {
		if i := strings.LastIndex(file, marker); i >= 0 {
			return file[i+1:]
		}
	}
	return filepath.Base(file)
}
