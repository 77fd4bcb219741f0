package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nikolayk812/rocketcart/internal/domain"
	"github.com/nikolayk812/rocketcart/internal/port"
)

type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, notice domain.Notice) {
	n.logger.WarnContext(ctx, notice.Message,
		"notice_id", notice.ID.String(),
		"kind", string(notice.Kind),
		"product_id", notice.ProductID,
	)
}

// Feed keeps the most recent notices until the presentation layer drains them.
type Feed struct {
	mu      sync.Mutex
	notices []domain.Notice
	limit   int
}

func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = 50
	}
	return &Feed{limit: limit}
}

func (f *Feed) Notify(_ context.Context, notice domain.Notice) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notices = append(f.notices, notice)
	if over := len(f.notices) - f.limit; over > 0 {
		f.notices = append([]domain.Notice(nil), f.notices[over:]...)
	}
}

// Drain returns pending notices oldest first and empties the feed.
func (f *Feed) Drain() []domain.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()

	notices := f.notices
	f.notices = nil

	if notices == nil {
		return []domain.Notice{}
	}
	return notices
}

type multi []port.Notifier

// Multi fans a notice out to every notifier in order.
func Multi(notifiers ...port.Notifier) port.Notifier {
	return multi(notifiers)
}

func (m multi) Notify(ctx context.Context, notice domain.Notice) {
	for _, n := range m {
		n.Notify(ctx, notice)
	}
}
