package job

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BaSui01/logomotion/types"
	"go.uber.org/zap"
)

// ProgressFunc receives human-readable progress messages while a job runs.
type ProgressFunc func(message string)

// Backend 是托管 API 中异步任务的最小契约：提交与查询。
type Backend interface {
	Submit(ctx context.Context, req *types.GenerationRequest) (Handle, error)
	Status(ctx context.Context, h Handle) (Status, error)
}

// PollObserver is notified after every status query.
type PollObserver interface {
	ObservePoll(state State, err error)
}

// Config 轮询参数。
type Config struct {
	PollInterval    time.Duration `json:"poll_interval" yaml:"poll_interval"`
	MessageInterval time.Duration `json:"message_interval" yaml:"message_interval"`
	// MaxWait bounds AwaitCompletion. 0 means poll until a terminal state.
	MaxWait  time.Duration `json:"max_wait" yaml:"max_wait"`
	Messages []string      `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// DefaultConfig returns 10s polling and 5s message rotation with no wait bound.
func DefaultConfig() Config {
	return Config{
		PollInterval:    10 * time.Second,
		MessageInterval: 5 * time.Second,
		Messages:        DefaultMessages,
	}
}

// Result 是一次已完成任务的结果。
type Result struct {
	Handle    Handle        `json:"handle"`
	ResultRef string        `json:"result_ref"`
	Polls     int           `json:"polls"`
	Elapsed   time.Duration `json:"elapsed"`
}

var errMaxWait = errors.New("job exceeded max wait")

// Poller drives one asynchronous job from submission to a terminal result.
// A Poller holds no per-job state and may be shared.
type Poller struct {
	backend   Backend
	cfg       Config
	newTicker TickerFactory
	observer  PollObserver
	logger    *zap.Logger
}

// NewPoller creates a poller. Zero intervals fall back to DefaultConfig.
func NewPoller(backend Backend, cfg Config, logger *zap.Logger) *Poller {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.MessageInterval <= 0 {
		cfg.MessageInterval = def.MessageInterval
	}
	if len(cfg.Messages) == 0 {
		cfg.Messages = def.Messages
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		backend:   backend,
		cfg:       cfg,
		newTicker: NewRealTicker,
		logger:    logger.With(zap.String("component", "job_poller")),
	}
}

// WithTickerFactory replaces the ticker source, used by tests.
func (p *Poller) WithTickerFactory(f TickerFactory) *Poller {
	if f != nil {
		p.newTicker = f
	}
	return p
}

// WithObserver attaches a poll observer such as a metrics collector.
func (p *Poller) WithObserver(o PollObserver) *Poller {
	p.observer = o
	return p
}

// Config returns the effective configuration.
func (p *Poller) Config() Config { return p.cfg }

// Submit sends req to the backend. A synchronous rejection becomes
// SUBMISSION_ERROR; the upstream message is kept so callers can classify it.
func (p *Poller) Submit(ctx context.Context, req *types.GenerationRequest) (Handle, error) {
	h, err := p.backend.Submit(ctx, req)
	if err != nil {
		if types.IsErrorCode(err, types.ErrConfiguration) {
			return "", err
		}
		return "", types.NewError(types.ErrSubmission, types.Message(err)).
			WithCause(err).
			WithRetryable(false)
	}
	if h == "" {
		return "", types.NewError(types.ErrSubmission, "no job handle returned by the generation service")
	}
	p.logger.Info("job submitted", zap.String("handle", string(h)))
	return h, nil
}

// Run submits req and waits for it to complete.
func (p *Poller) Run(ctx context.Context, req *types.GenerationRequest, onProgress ProgressFunc) (*Result, error) {
	h, err := p.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.AwaitCompletion(ctx, h, onProgress)
}

// AwaitCompletion polls h every PollInterval until it is Done or Failed.
// While pending, onProgress receives the rotating message list on its own
// MessageInterval cadence. The message ticker is stopped on every exit path
// and onProgress is never called after AwaitCompletion returns.
func (p *Poller) AwaitCompletion(ctx context.Context, h Handle, onProgress ProgressFunc) (*Result, error) {
	if h == "" {
		return nil, types.NewInvalidRequestError("empty job handle")
	}
	if onProgress == nil {
		onProgress = func(string) {}
	}
	if p.cfg.MaxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, p.cfg.MaxWait, errMaxWait)
		defer cancel()
	}

	start := time.Now()
	stopMessages := p.startMessages(onProgress)
	defer stopMessages()

	pollTicker := p.newTicker(p.cfg.PollInterval)
	defer pollTicker.Stop()

	current := Pending()
	polls := 0
	log := p.logger.With(zap.String("handle", string(h)))

	for {
		select {
		case <-ctx.Done():
			stopMessages()
			if errors.Is(context.Cause(ctx), errMaxWait) {
				return nil, p.waitExceeded(log, polls)
			}
			return nil, ctx.Err()

		case <-pollTicker.C():
			polls++
			st, err := p.backend.Status(ctx, h)
			if p.observer != nil {
				p.observer.ObservePoll(st.State, err)
			}
			if err != nil {
				stopMessages()
				// 查询途中到达 MaxWait 时，传输层只会报 deadline exceeded。
				if errors.Is(context.Cause(ctx), errMaxWait) {
					return nil, p.waitExceeded(log, polls)
				}
				log.Warn("job status query failed", zap.Int("polls", polls), zap.Error(err))
				return nil, err
			}
			if current, err = current.Next(st); err != nil {
				stopMessages()
				return nil, types.NewError(types.ErrInternalError, err.Error())
			}
			log.Debug("job polled", zap.Int("polls", polls), zap.String("state", string(current.State)))

			switch current.State {
			case StateDone:
				stopMessages()
				onProgress(FetchingMessage)
				if current.ResultRef == "" {
					return nil, types.NewError(types.ErrMissingResult, "Video generation completed, but no download link was found.")
				}
				log.Info("job done", zap.Int("polls", polls), zap.Duration("elapsed", time.Since(start)))
				return &Result{
					Handle:    h,
					ResultRef: current.ResultRef,
					Polls:     polls,
					Elapsed:   time.Since(start),
				}, nil
			case StateFailed:
				stopMessages()
				log.Warn("job failed", zap.String("reason", current.Reason))
				return nil, types.NewError(types.ErrJobFailed, current.Reason)
			}
		}
	}
}

func (p *Poller) waitExceeded(log *zap.Logger, polls int) error {
	log.Warn("job wait bound exceeded", zap.Duration("max_wait", p.cfg.MaxWait), zap.Int("polls", polls))
	return types.NewTimeoutError("video generation did not finish within " + p.cfg.MaxWait.String())
}

// startMessages emits list[0] immediately and list[i mod N] on tick i.
// The returned stop func is idempotent: it stops the ticker once and waits
// for the emitting goroutine to exit.
func (p *Poller) startMessages(onProgress ProgressFunc) func() {
	msgs := p.cfg.Messages
	ticker := p.newTicker(p.cfg.MessageInterval)
	done := make(chan struct{})

	onProgress(MessageAt(msgs, 0))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		var i uint
		for {
			select {
			case <-done:
				return
			case <-ticker.C():
				select {
				case <-done:
					return
				default:
				}
				i++
				onProgress(MessageAt(msgs, i))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
			wg.Wait()
		})
	}
}
