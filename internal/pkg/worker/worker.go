package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// NotificationTask 中奖通知任务
type NotificationTask struct {
	UserID      string
	Code        string
	ShopName    string
	Value       string
	Description string
	Retry       int // 重试次数
}

// Sender 投递一条通知
type Sender interface {
	Send(ctx context.Context, task NotificationTask) error
}

// FailureRecorder 记录永久失败的任务
type FailureRecorder interface {
	RecordNotificationFailure()
}

type WorkerPool struct {
	TaskQueue   chan NotificationTask
	RetryQueue  chan NotificationTask // 重试队列
	WorkerNum   int
	MaxRetry    int           // 最大重试次数
	RetryDelay  time.Duration // 第 n 次重试前等待 n*RetryDelay
	SendTimeout time.Duration

	sender   Sender
	failures FailureRecorder
	log      *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorkerPool(sender Sender, failures FailureRecorder, log *zap.Logger, workerNum int, bufferSize int) *WorkerPool {
	if workerNum < 1 {
		workerNum = 1
	}
	if bufferSize < 2 {
		bufferSize = 2
	}
	return &WorkerPool{
		TaskQueue:   make(chan NotificationTask, bufferSize),
		RetryQueue:  make(chan NotificationTask, bufferSize/2),
		WorkerNum:   workerNum,
		MaxRetry:    3,
		RetryDelay:  time.Second,
		SendTimeout: 10 * time.Second,
		sender:      sender,
		failures:    failures,
		log:         log,
	}
}

func (p *WorkerPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.WorkerNum; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	// 启动重试处理协程
	p.wg.Add(1)
	go p.retryWorker(ctx)
	p.log.Info("worker pool started", zap.Int("workers", p.WorkerNum))
}

// Stop 停止所有协程，队列中未处理的任务被丢弃
func (p *WorkerPool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-p.TaskQueue:
			p.handle(ctx, id, task)
		}
	}
}

func (p *WorkerPool) handle(ctx context.Context, id int, task NotificationTask) {
	sendCtx, cancel := context.WithTimeout(ctx, p.SendTimeout)
	err := p.sender.Send(sendCtx, task)
	cancel()
	if err == nil {
		return
	}

	log := p.log.With(zap.Int("worker", id), zap.String("user_id", task.UserID), zap.String("code", task.Code))
	log.Warn("failed to send notification", zap.Error(err))

	if task.Retry >= p.MaxRetry {
		p.logFailedTask(task, err)
		return
	}
	task.Retry++
	select {
	case p.RetryQueue <- task:
		log.Info("task added to retry queue", zap.Int("attempt", task.Retry), zap.Int("max", p.MaxRetry))
	default:
		p.logFailedTask(task, err)
	}
}

func (p *WorkerPool) retryWorker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-p.RetryQueue:
			// 延迟重试，避免立即重试
			timer := time.NewTimer(time.Duration(task.Retry) * p.RetryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			select {
			case p.TaskQueue <- task:
			default:
				p.logFailedTask(task, nil)
			}
		}
	}
}

func (p *WorkerPool) logFailedTask(task NotificationTask, err error) {
	if p.failures != nil {
		p.failures.RecordNotificationFailure()
	}
	p.log.Error("notification dropped",
		zap.String("user_id", task.UserID),
		zap.String("code", task.Code),
		zap.Int("retry", task.Retry),
		zap.Error(err),
	)
}

// AddTask 非阻塞入队，队列满时丢弃并返回 false
func (p *WorkerPool) AddTask(task NotificationTask) bool {
	select {
	case p.TaskQueue <- task:
		return true
	default:
		p.logFailedTask(task, nil)
		return false
	}
}
