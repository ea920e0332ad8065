package service

import (
	"context"
	"kindergarten_backend/pkg/logger"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SelectionTracker 记录每个视图（scope）当前正在进行的加载。
// 同一 scope 开始新的加载时，上一次加载的 context 被取消，其结果不会再写入缓存。
type SelectionTracker struct {
	mu     sync.Mutex
	active map[string]*selection
}

type selection struct {
	token  string
	cancel context.CancelFunc
}

func NewSelectionTracker() *SelectionTracker {
	return &SelectionTracker{active: make(map[string]*selection)}
}

// Begin 为 scope 开始一次新的选择，返回的 done 必须在加载结束后调用。
// scope 为空时只派生一个可取消的 context，不影响其他请求。
func (t *SelectionTracker) Begin(parent context.Context, scope string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	if scope == "" {
		return ctx, cancel
	}

	token := uuid.NewString()

	t.mu.Lock()
	if prev, ok := t.active[scope]; ok {
		logger.Log.Debug("selection superseded", zap.String("scope", scope), zap.String("token", prev.token))
		prev.cancel()
	}
	t.active[scope] = &selection{token: token, cancel: cancel}
	t.mu.Unlock()

	return ctx, func() {
		t.mu.Lock()
		if cur, ok := t.active[scope]; ok && cur.token == token {
			delete(t.active, scope)
		}
		t.mu.Unlock()
		cancel()
	}
}

// Active 当前仍在进行中的 scope 数
func (t *SelectionTracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}
