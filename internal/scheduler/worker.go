package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ReuniaSync/internal/interfaces"
	"ReuniaSync/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// IngestRunner 任务执行方（生产实现为service.IngestService，测试注入假实现）
type IngestRunner interface {
	Run(ctx context.Context, source model.SourceType, opts interfaces.FetchOptions) (*model.IngestionResult, error)
}

// Job 单个摄取任务
type Job struct {
	ID       string
	Source   model.SourceType
	Options  interfaces.FetchOptions
	Manual   bool // 手动触发的一次性任务（高优先级）
	Attempts int
}

// sourceQueue 单来源队列：手动/定时双通道+限速器
// 单goroutine串行消费，这就是"同来源并发=1"的保证：
// 定时任务与手动触发绝不会同时运行，后到的在队列里等
type sourceQueue struct {
	high    chan *Job
	low     chan *Job
	limiter *rate.Limiter
}

// Worker 消费全部来源队列的工作进程
type Worker struct {
	runner      IngestRunner
	logger      *logrus.Logger
	queues      map[model.SourceType]*sourceQueue
	queueSize   int
	maxAttempts int
	rateWindow  time.Duration

	quit     chan struct{} // 关闭后消费者不再取新任务
	stopping atomic.Bool   // 置位后拒绝新任务入队
	wg       sync.WaitGroup
	started  atomic.Bool
}

func NewWorker(runner IngestRunner, queueSize, maxAttempts int, rateWindow time.Duration, logger *logrus.Logger) *Worker {
	if queueSize <= 0 {
		queueSize = 16
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if rateWindow <= 0 {
		rateWindow = time.Minute
	}
	return &Worker{
		runner:      runner,
		logger:      logger,
		queues:      make(map[model.SourceType]*sourceQueue),
		queueSize:   queueSize,
		maxAttempts: maxAttempts,
		rateWindow:  rateWindow,
		quit:        make(chan struct{}),
	}
}

// RegisterSource 为来源建立独立队列（启动前调用）
func (w *Worker) RegisterSource(source model.SourceType) {
	if _, ok := w.queues[source]; ok {
		return
	}
	w.queues[source] = &sourceQueue{
		high: make(chan *Job, w.queueSize),
		low:  make(chan *Job, w.queueSize),
		// 限速：固定窗口内至多放行一个任务
		limiter: rate.NewLimiter(rate.Every(w.rateWindow), 1),
	}
}

// Start 订阅每个来源的队列，各起一个串行消费goroutine
func (w *Worker) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	for source, q := range w.queues {
		w.wg.Add(1)
		go w.consume(source, q)
	}
	w.logger.WithField("sources", len(w.queues)).Info("摄取worker已启动")
}

// EnqueueManual 手动触发：高优先级一次性任务，独立于日程
func (w *Worker) EnqueueManual(source model.SourceType, opts interfaces.FetchOptions) (string, error) {
	if w.stopping.Load() {
		return "", fmt.Errorf("worker正在退出，拒绝新任务")
	}
	q, ok := w.queues[source]
	if !ok {
		return "", fmt.Errorf("来源%s未注册队列", source)
	}
	job := &Job{ID: uuid.NewString(), Source: source, Options: opts, Manual: true}
	select {
	case q.high <- job:
		return job.ID, nil
	default:
		return "", fmt.Errorf("来源%s队列已满", source)
	}
}

// EnqueueScheduled 定时触发：低优先级；队列满时丢弃本轮（下轮日程会再来）
func (w *Worker) EnqueueScheduled(source model.SourceType, opts interfaces.FetchOptions) {
	if w.stopping.Load() {
		return
	}
	q, ok := w.queues[source]
	if !ok {
		w.logger.WithField("source", source).Error("定时任务指向未注册的来源")
		return
	}
	job := &Job{ID: uuid.NewString(), Source: source, Options: opts}
	select {
	case q.low <- job:
	default:
		w.logger.WithField("source", source).Warn("队列已满，本轮定时任务丢弃")
	}
}

// consume 单来源消费循环：手动任务优先，限速后执行
func (w *Worker) consume(source model.SourceType, q *sourceQueue) {
	defer w.wg.Done()
	for {
		var job *Job
		// 先非阻塞取高优先级
		select {
		case job = <-q.high:
		default:
			select {
			case job = <-q.high:
			case job = <-q.low:
			case <-w.quit:
				return
			}
		}

		// 限速窗口：同来源两次运行之间至少间隔一个窗口
		if err := q.limiter.Wait(context.Background()); err != nil {
			return
		}
		w.runJob(job)
	}
}

// runJob 执行任务：失败按固定次数+指数退避原地重试
// 运行一旦开始就跑到结束或失败，不做中途取消；退出时仅限定等待时长
func (w *Worker) runJob(job *Job) {
	backoff := time.Second
	for {
		job.Attempts++
		_, err := w.runner.Run(context.Background(), job.Source, job.Options)
		if err == nil {
			return
		}
		w.logger.WithError(err).WithFields(logrus.Fields{
			"job_id":  job.ID,
			"source":  job.Source,
			"attempt": job.Attempts,
			"manual":  job.Manual,
		}).Error("摄取任务失败")
		if job.Attempts >= w.maxAttempts {
			w.logger.WithField("job_id", job.ID).Error("重试次数耗尽，任务放弃")
			return
		}
		select {
		case <-time.After(backoff):
		case <-w.quit:
			// 退出中不再重试
			return
		}
		backoff *= 2
	}
}

// Stop 优雅退出：停止接收新任务→等待在途任务至多timeout→超时强制返回
func (w *Worker) Stop(timeout time.Duration) error {
	w.stopping.Store(true)
	close(w.quit)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		w.logger.Info("摄取worker已退出")
		return nil
	case <-time.After(timeout):
		w.logger.Warn("等待在途任务超时，强制退出")
		return fmt.Errorf("等待在途任务超时（%s）", timeout)
	}
}
