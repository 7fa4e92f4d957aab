package audit

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Event 审计事件：摄取运行结束、模糊合并等关键动作各发一条
type Event struct {
	Action    string                 // 动作名（如 ingestion.completed / case.merged）
	Source    string                 // 来源slug
	Detail    map[string]interface{} // 附加字段
	Timestamp time.Time
}

// Sink 尽力而为的非阻塞审计落地：缓冲满即丢弃，至多一次投递
// 审计失败绝不影响管道本身的成败判定；Close 后的迟到 Emit 为空操作
// （退出超时后仍在途的摄取运行可能继续发事件，不得因此崩溃）
type Sink struct {
	ch     chan Event
	logger *logrus.Logger
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewSink(logger *logrus.Logger, buffer int) *Sink {
	if buffer <= 0 {
		buffer = 256
	}
	s := &Sink{
		ch:     make(chan Event, buffer),
		logger: logger,
	}
	s.wg.Add(1)
	go s.consume()
	return s
}

// Emit 发射审计事件，不等待落地；缓冲满或已关闭时直接丢弃
func (s *Sink) Emit(action, source string, detail map[string]interface{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.logger.WithField("action", action).Debug("审计通道已关闭，迟到事件丢弃")
		return
	}
	ev := Event{Action: action, Source: source, Detail: detail, Timestamp: time.Now()}
	select {
	case s.ch <- ev:
	default:
		// 丢弃计数走Debug，避免审计堵塞反向放大日志量
		s.logger.WithField("action", action).Debug("审计缓冲已满，事件丢弃")
	}
}

func (s *Sink) consume() {
	defer s.wg.Done()
	for ev := range s.ch {
		s.logger.WithFields(logrus.Fields{
			"audit_action": ev.Action,
			"source":       ev.Source,
			"detail":       ev.Detail,
			"at":           ev.Timestamp.Format(time.RFC3339),
		}).Info("审计事件")
	}
}

// Close 停止接收并排空缓冲（进程退出前调用），重复调用安全
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()
	s.wg.Wait()
}
