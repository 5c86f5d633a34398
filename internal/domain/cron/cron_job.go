package cron

import (
	"context"
	"sync"
	"time"

	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
)

// CronJob is a periodic task. Next tells the manager when the following run
// is due, RunNow requests an extra run right at startup.
type CronJob interface {
	Do(context.Context)
	RunNow() bool
	Next() time.Time
}

// CronJobManager drives every registered job on its own schedule. Start
// blocks until Cancel is called or the context passed to Start is done.
type CronJobManager struct {
	mutex  sync.Mutex
	wait   sync.WaitGroup
	cancel context.CancelFunc
	jobs   []CronJob
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{}
}

func (m *CronJobManager) Register(job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.jobs = append(m.jobs, job)
}

func (m *CronJobManager) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	m.mutex.Lock()
	m.cancel = cancel
	jobs := m.jobs
	m.mutex.Unlock()

	xcontext.Logger(ctx).Infof("Cron job manager started")

	for _, job := range jobs {
		m.wait.Add(1)
		go m.loop(ctx, job)
	}

	m.wait.Wait()
	xcontext.Logger(ctx).Infof("Cron job manager stopped")
}

func (m *CronJobManager) Cancel(ctx context.Context) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.cancel == nil {
		xcontext.Logger(ctx).Warnf("Cron job manager is not running")
		return
	}

	m.cancel()
	m.cancel = nil
}

func (m *CronJobManager) loop(ctx context.Context, job CronJob) {
	defer m.wait.Done()

	if job.RunNow() && ctx.Err() == nil {
		m.run(ctx, job)
	}

	timer := time.NewTimer(time.Until(job.Next()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			m.run(ctx, job)
			timer.Reset(time.Until(job.Next()))
		}
	}
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	xcontext.Logger(ctx).Infof("%T is running...", job)
	job.Do(ctx)
	xcontext.Logger(ctx).Infof("%T ok", job)
}
