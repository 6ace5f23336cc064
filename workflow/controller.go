package workflow

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/BaSui01/logomotion/llm"
	"github.com/BaSui01/logomotion/llm/job"
	"github.com/BaSui01/logomotion/types"
	"go.uber.org/zap"
)

// Generator is the generation surface the controller sequences.
type Generator interface {
	GenerateLogo(ctx context.Context, description string) (*types.LogoArtifact, error)
	GenerateVideo(ctx context.Context, prompt string, img []byte, mimeType string, aspect types.AspectRatio, onProgress job.ProgressFunc) (*types.VideoArtifact, error)
}

// CredentialSelector stores a newly selected credential.
type CredentialSelector interface {
	Select(key string) error
}

// Controller sequences the two wizard stages and owns the State. Every
// mutation goes through a method that validates the current step first.
// At most one logo and one video request can be in flight.
type Controller struct {
	gen      Generator
	verifier llm.CredentialVerifier
	selector CredentialSelector
	classify Classifier
	logger   *zap.Logger

	mu    sync.Mutex
	state State
	// epoch 在 StartOver 时递增，用于丢弃重置前发起的请求结果。
	epoch uint64
	// 每类产物最近一次发起的请求；StartOver 取消它们。
	logoJob  *inflight
	videoJob *inflight

	subs subscribers
}

// NewController creates a controller in the initial state. selector may be
// nil when credentials are fixed by configuration.
func NewController(gen Generator, verifier llm.CredentialVerifier, selector CredentialSelector, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		gen:      gen,
		verifier: verifier,
		selector: selector,
		classify: ClassifyError,
		logger:   logger.With(zap.String("component", "workflow")),
		state:    InitialState(),
	}
}

// WithClassifier swaps the error classification policy.
func (c *Controller) WithClassifier(f Classifier) *Controller {
	if f != nil {
		c.classify = f
	}
	return c
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe registers h for state change events and returns its id.
func (c *Controller) Subscribe(h EventHandler) string {
	return c.subs.add(h)
}

// Unsubscribe removes a handler.
func (c *Controller) Unsubscribe(id string) {
	c.subs.remove(id)
}

// update applies fn under the lock. A non-nil error from fn leaves the state
// untouched; otherwise the revision is bumped and a snapshot published.
func (c *Controller) update(evType EventType, fn func(s *State) error) error {
	c.mu.Lock()
	if err := fn(&c.state); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state.Revision++
	snap := c.state.clone()
	c.mu.Unlock()

	c.subs.publish(Event{Type: evType, State: snap})
	return nil
}

func (c *Controller) set(evType EventType, fn func(s *State)) {
	_ = c.update(evType, func(s *State) error {
		fn(s)
		return nil
	})
}

// finish applies fn unless StartOver ran since epoch was captured.
func (c *Controller) finish(epoch uint64, fn func(s *State) EventType) (stale bool) {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return true
	}
	evType := fn(&c.state)
	c.state.Revision++
	snap := c.state.clone()
	c.mu.Unlock()

	c.subs.publish(Event{Type: evType, State: snap})
	return false
}

// inflight is the single outstanding generator call for one artifact kind.
// A new call starts only after the previous one of the same kind has exited.
type inflight struct {
	cancel context.CancelFunc
	done   chan struct{}
	prev   <-chan struct{}
}

// claim 必须持有 c.mu 调用：从 ctx 派生本次请求的 context，并替换 *slot。
func claim(ctx context.Context, slot **inflight) (context.Context, *inflight) {
	runCtx, cancel := context.WithCancel(ctx)
	j := &inflight{cancel: cancel, done: make(chan struct{})}
	if *slot != nil {
		j.prev = (*slot).done
	}
	*slot = j
	return runCtx, j
}

// wait blocks until the previous call of the same kind has returned.
func (j *inflight) wait(ctx context.Context) error {
	if j.prev == nil {
		return nil
	}
	select {
	case <-j.prev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *inflight) release() {
	j.cancel()
	close(j.done)
}

// logoRun 是 beginLogo 捕获的输入
type logoRun struct {
	epoch       uint64
	ctx         context.Context
	job         *inflight
	description string
}

// GenerateLogo creates a logo from description and advances to StepAnimate.
func (c *Controller) GenerateLogo(ctx context.Context, description string) (*types.LogoArtifact, error) {
	run, err := c.beginLogo(ctx, description)
	if err != nil {
		return nil, err
	}
	return c.runLogo(run)
}

// StartLogo runs the same checks as GenerateLogo synchronously and then
// generates in the background. The returned task yields the result.
func (c *Controller) StartLogo(ctx context.Context, description string) (*Task[*types.LogoArtifact], error) {
	run, err := c.beginLogo(ctx, description)
	if err != nil {
		return nil, err
	}
	return startTask(func() (*types.LogoArtifact, error) {
		return c.runLogo(run)
	}), nil
}

func (c *Controller) beginLogo(ctx context.Context, description string) (logoRun, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return logoRun{}, types.NewInvalidRequestError("logo description must not be empty")
	}

	run := logoRun{description: description}
	err := c.update(EventLogoStarted, func(s *State) error {
		if s.GeneratingLogo {
			return types.NewError(types.ErrBusy, "a logo is already being generated")
		}
		if s.Step != StepGenerate {
			return types.NewError(types.ErrInvalidTransition, "a logo already exists; start over to create a new one")
		}
		run.epoch = c.epoch
		run.ctx, run.job = claim(ctx, &c.logoJob)
		s.Error = ""
		s.GeneratingLogo = true
		s.Progress = MsgLogoBusy
		return nil
	})
	return run, err
}

func (c *Controller) runLogo(run logoRun) (*types.LogoArtifact, error) {
	defer run.job.release()

	var art *types.LogoArtifact
	err := run.job.wait(run.ctx)
	if err == nil {
		art, err = c.gen.GenerateLogo(run.ctx, run.description)
	}

	if stale := c.finish(run.epoch, func(s *State) EventType {
		if c.logoJob == run.job {
			c.logoJob = nil
		}
		s.GeneratingLogo = false
		s.Progress = ""
		if err != nil {
			c.applyError(s, err, MsgUnknownLogoError)
			return EventError
		}
		s.Logo = art
		s.Step = StepAnimate
		return EventLogoReady
	}); stale {
		return nil, types.NewError(types.ErrInvalidTransition, "workflow was reset while the logo was being generated")
	}

	if err != nil {
		c.logger.Warn("logo generation failed", zap.Error(err))
		return nil, c.surface(err)
	}
	c.logger.Info("logo ready", zap.Int("png_bytes", len(art.PNG)))
	return art, nil
}

// UploadLogo accepts a user-supplied raster logo. Uploads carry no SVG.
func (c *Controller) UploadLogo(data []byte, mimeType string) error {
	if len(data) == 0 {
		return types.NewInvalidRequestError("uploaded image is empty")
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return types.NewInvalidRequestError("uploaded file must be an image, got " + mimeType)
	}

	err := c.update(EventLogoUploaded, func(s *State) error {
		if s.GeneratingLogo {
			return types.NewError(types.ErrBusy, "a logo is already being generated")
		}
		if s.Step != StepGenerate {
			return types.NewError(types.ErrInvalidTransition, "a logo already exists; start over to upload a new one")
		}
		s.Error = ""
		s.Logo = &types.LogoArtifact{
			PNG:      bytes.Clone(data),
			MIMEType: mimeType,
			Uploaded: true,
		}
		s.Step = StepAnimate
		return nil
	})
	if err != nil {
		return err
	}
	c.logger.Info("logo uploaded", zap.Int("bytes", len(data)), zap.String("mime_type", mimeType))
	return nil
}

// GenerateVideo animates the current logo. A credential must be selected;
// otherwise the generator is never called.
func (c *Controller) GenerateVideo(ctx context.Context, prompt string, aspect types.AspectRatio) (*types.VideoArtifact, error) {
	run, err := c.beginVideo(ctx)
	if err != nil {
		return nil, err
	}
	return c.runVideo(run, prompt, aspect)
}

// StartVideo runs the same checks as GenerateVideo synchronously and then
// generates in the background.
func (c *Controller) StartVideo(ctx context.Context, prompt string, aspect types.AspectRatio) (*Task[*types.VideoArtifact], error) {
	run, err := c.beginVideo(ctx)
	if err != nil {
		return nil, err
	}
	return startTask(func() (*types.VideoArtifact, error) {
		return c.runVideo(run, prompt, aspect)
	}), nil
}

// videoRun 是 beginVideo 捕获的输入
type videoRun struct {
	epoch    uint64
	ctx      context.Context
	job      *inflight
	logo     []byte
	mimeType string
}

func (c *Controller) beginVideo(ctx context.Context) (videoRun, error) {
	snap := c.Snapshot()
	if snap.GeneratingVideo {
		return videoRun{}, types.NewError(types.ErrBusy, "a video is already being generated")
	}
	if snap.Step != StepAnimate || snap.Logo == nil || len(snap.Logo.PNG) == 0 {
		c.set(EventError, func(s *State) { s.Error = MsgNoLogo })
		return videoRun{}, types.NewError(types.ErrInvalidTransition, MsgNoLogo)
	}

	if err := c.verifyCredential(ctx); err != nil {
		return videoRun{}, err
	}

	var run videoRun
	err := c.update(EventVideoStarted, func(s *State) error {
		if s.GeneratingVideo {
			return types.NewError(types.ErrBusy, "a video is already being generated")
		}
		if s.Step != StepAnimate || s.Logo == nil {
			return types.NewError(types.ErrInvalidTransition, MsgNoLogo)
		}
		run = videoRun{
			epoch:    c.epoch,
			logo:     bytes.Clone(s.Logo.PNG),
			mimeType: s.Logo.MIMEType,
		}
		run.ctx, run.job = claim(ctx, &c.videoJob)
		s.Error = ""
		s.NeedsCredential = false
		s.GeneratingVideo = true
		s.Video = nil
		return nil
	})
	return run, err
}

func (c *Controller) runVideo(run videoRun, prompt string, aspect types.AspectRatio) (*types.VideoArtifact, error) {
	defer run.job.release()

	onProgress := func(msg string) {
		_ = c.update(EventProgress, func(s *State) error {
			if c.epoch != run.epoch || !s.GeneratingVideo {
				return errStale
			}
			s.Progress = msg
			return nil
		})
	}

	var art *types.VideoArtifact
	err := run.job.wait(run.ctx)
	if err == nil {
		art, err = c.gen.GenerateVideo(run.ctx, prompt, run.logo, run.mimeType, aspect, onProgress)
	}

	if stale := c.finish(run.epoch, func(s *State) EventType {
		if c.videoJob == run.job {
			c.videoJob = nil
		}
		s.GeneratingVideo = false
		s.Progress = ""
		if err != nil {
			c.applyError(s, err, MsgUnknownVideoError)
			return EventError
		}
		s.Video = art
		return EventVideoReady
	}); stale {
		return nil, types.NewError(types.ErrInvalidTransition, "workflow was reset while the video was being generated")
	}

	if err != nil {
		c.logger.Warn("video generation failed", zap.Error(err))
		return nil, c.surface(err)
	}
	c.logger.Info("video ready", zap.Int("bytes", len(art.Data)))
	return art, nil
}

var errStale = types.NewError(types.ErrInvalidTransition, "stale update")

func (c *Controller) verifyCredential(ctx context.Context) error {
	if c.verifier == nil {
		return nil
	}
	ok, err := c.verifier.HasSelectedKey(ctx)
	if err != nil {
		c.logger.Warn("credential verification failed", zap.Error(err))
		c.set(EventError, func(s *State) {
			s.NeedsCredential = true
			s.Error = MsgVerifyKeyFailed
		})
		return types.NewError(types.ErrCredentialInvalid, MsgVerifyKeyFailed).WithCause(err)
	}
	if !ok {
		c.set(EventError, func(s *State) {
			s.NeedsCredential = true
			s.Error = MsgSelectKey
		})
		return types.NewConfigurationError(MsgSelectKey)
	}
	return nil
}

func (c *Controller) applyError(s *State, err error, fallback string) {
	if c.classify(err) == ClassCredentialInvalid {
		s.Error = MsgInvalidKey
		s.NeedsCredential = true
		return
	}
	msg := types.Message(err)
	if msg == "" {
		msg = fallback
	}
	s.Error = msg
}

// surface returns the error the caller sees, reclassified when needed.
func (c *Controller) surface(err error) error {
	if c.classify(err) == ClassCredentialInvalid {
		return types.NewError(types.ErrCredentialInvalid, MsgInvalidKey).WithCause(err)
	}
	return err
}

// SelectCredential stores a new key and clears the previous error.
func (c *Controller) SelectCredential(key string) error {
	if c.selector == nil {
		return types.NewConfigurationError("credential selection is not available")
	}
	if err := c.selector.Select(key); err != nil {
		return err
	}
	c.set(EventCredentialSet, func(s *State) {
		s.NeedsCredential = false
		s.Error = ""
	})
	c.logger.Info("credential selected")
	return nil
}

// StartOver unconditionally returns to the initial state. In-flight
// requests are cancelled and their results discarded; a request started
// afterwards waits for the cancelled one of the same kind to exit.
func (c *Controller) StartOver() State {
	c.mu.Lock()
	c.epoch++
	rev := c.state.Revision
	c.state = InitialState()
	c.state.Revision = rev + 1
	snap := c.state.clone()
	pending := []*inflight{c.logoJob, c.videoJob}
	c.mu.Unlock()

	for _, j := range pending {
		if j != nil {
			j.cancel()
		}
	}

	c.subs.publish(Event{Type: EventReset, State: snap})
	c.logger.Info("workflow reset")
	return snap
}
