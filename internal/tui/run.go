package tui

import (
	"context"

	"viewscope/internal/layoutfile"

	tea "github.com/charmbracelet/bubbletea"
)

// Run 启动 Bubble Tea 程序；若布局来自文件，则监听文件变化并热重载。
func Run(ctx context.Context, opts Options) error {
	model := New(opts)
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	if opts.Layout != nil && opts.Layout.Path != "" {
		w, err := layoutfile.NewWatcher(opts.Layout.Path, layoutfile.DefaultDebounce, func(l *layoutfile.Layout, err error) {
			// 监听器运行在独立 goroutine，只能通过 Send 回到 UI 循环。
			program.Send(LayoutMsg{Layout: l, Err: err})
		})
		if err != nil {
			model.log.WithError(err).Warn("layout watcher unavailable")
		} else {
			defer w.Stop()
			if err := w.Start(ctx); err != nil {
				model.log.WithError(err).Warn("layout watcher failed to start")
			}
		}
	}

	defer opts.Host.Dispose()
	_, err := program.Run()
	return err
}
