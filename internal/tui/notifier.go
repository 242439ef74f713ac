package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/vadiminshakov/roulette/internal/domain"
)

// Notifier prints controller notices, styled by kind.
type Notifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

func (n *Notifier) Notify(notice domain.Notice) {
	style, ok := noticeStyles[notice.Kind]
	if !ok {
		style = noticeStyles[domain.NoticeInfo]
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, style.Render(notice.Message))
}
