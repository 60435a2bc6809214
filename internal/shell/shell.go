// Package shell owns the interaction state of one editing session: the
// uploaded image, the prompt, the busy flag and the latest result or error.
// It calls the editor at most once per submission and never runs two calls
// at the same time.
package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mhpenta/imageedit"
	"github.com/mhpenta/imageedit/internal/preview"
	"github.com/rs/zerolog"
)

const (
	ValidationMessage = "Please upload an image and provide a prompt."
	FailureMessage    = "Failed to edit image. Please try again."
)

var (
	// ErrBusy is returned by Submit while an earlier call has not returned.
	ErrBusy = errors.New("an edit is already in progress")

	// ErrNoResult is returned by Download when there is nothing to save.
	ErrNoResult = errors.New("no edited image to download")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session closed")

	// ErrNotImage rejects uploads whose media type is not image/*.
	ErrNotImage = fmt.Errorf("%w: upload is not an image", imageedit.ErrValidation)
)

// Download is a result image ready to be saved.
type Download struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Option configures a Shell.
type Option func(*Shell)

// WithEditConfig sets the per-request edit options.
func WithEditConfig(cfg *imageedit.EditConfig) Option {
	return func(s *Shell) {
		s.config = cfg
	}
}

// WithTimeout bounds each service call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Shell) {
		s.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Shell) {
		s.logger = logger
	}
}

// Shell is safe for concurrent use.
type Shell struct {
	editor   imageedit.Editor
	previews *preview.Registry
	config   *imageedit.EditConfig
	timeout  time.Duration
	logger   zerolog.Logger

	mu     sync.Mutex
	state  state
	prompt string
	closed bool

	// generation increases on every upload and submission. A completion whose
	// generation no longer matches is stale and dropped.
	generation uint64
	pending    bool
	cancel     context.CancelFunc
}

// New returns an idle shell.
func New(editor imageedit.Editor, previews *preview.Registry, opts ...Option) *Shell {
	s := &Shell{
		editor:   editor,
		previews: previews,
		state:    idle{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload replaces the source image. Any result or error is cleared and an
// in-flight call is abandoned. Types the model cannot read are rejected here
// rather than at submission.
func (s *Shell) Upload(name, mimeType string, data []byte) (View, error) {
	if !strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return s.View(), fmt.Errorf("%w: %q", ErrNotImage, mimeType)
	}
	mimeType = imageedit.NormalizeMIMEType(mimeType)
	if err := imageedit.ValidateInputImage(imageedit.InputImage{Data: data, MIMEType: mimeType}); err != nil {
		return s.View(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return View{}, ErrClosed
	}

	s.releasePreview()
	handle := s.previews.Put(data, mimeType)

	s.generation++
	if s.pending && s.cancel != nil {
		s.logger.Debug().Uint64("generation", s.generation).Msg("upload during edit, abandoning in-flight request")
		s.cancel()
	}

	s.state = ready{src: &SourceImage{
		Name:      name,
		MIMEType:  mimeType,
		Data:      data,
		previewID: handle.ID,
	}}

	return s.viewLocked(), nil
}

// SetPrompt updates the instruction text. Nothing else changes.
func (s *Shell) SetPrompt(text string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = text
	return s.viewLocked()
}

// Submit runs one edit with the current image and prompt and blocks until it
// resolves. Validation and service failures are reported through the
// returned View, not as errors. The error is ErrBusy or ErrClosed.
func (s *Shell) Submit(ctx context.Context) (View, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return View{}, ErrClosed
	}
	if s.pending {
		v := s.viewLocked()
		s.mu.Unlock()
		return v, ErrBusy
	}

	src := s.state.image()
	prompt := s.prompt
	if src == nil || strings.TrimSpace(prompt) == "" {
		s.state = errorShown{src: src, kind: imageedit.ErrorKindValidation, message: ValidationMessage}
		v := s.viewLocked()
		s.mu.Unlock()
		return v, nil
	}

	s.generation++
	gen := s.generation

	var reqCtx context.Context
	var cancel context.CancelFunc
	if s.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}
	s.cancel = cancel
	s.pending = true
	s.state = busy{src: src, generation: gen}
	s.mu.Unlock()

	start := time.Now()
	result, err := s.editor.Edit(reqCtx, imageedit.InputImage{Data: src.Data, MIMEType: src.MIMEType}, prompt, s.config)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = false
	s.cancel = nil

	logger := s.logger.With().Uint64("generation", gen).Dur("duration", time.Since(start)).Logger()

	if s.closed || gen != s.generation {
		logger.Debug().Err(err).Msg("discarding stale edit result")
		return s.viewLocked(), nil
	}

	if err == nil && (result == nil || result.Image == nil) {
		err = imageedit.ErrEmptyResult
	}
	if err != nil {
		kind := imageedit.Classify(err)
		logger.Warn().Err(err).Str("kind", string(kind)).Msg("edit failed")
		s.state = errorShown{src: src, kind: kind, message: FailureMessage}
		return s.viewLocked(), nil
	}

	logger.Info().Int("bytes", len(result.Image.Data)).Bool("advisory", result.Text != "").Msg("edit succeeded")
	s.state = resultReady{src: src, result: result}
	return s.viewLocked(), nil
}

// Download returns the current result named after the original upload.
func (s *Shell) Download() (Download, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rr, ok := s.state.(resultReady)
	if !ok {
		return Download{}, ErrNoResult
	}
	return Download{
		Filename: imageedit.DownloadFilename(rr.src.Name),
		MIMEType: rr.result.Image.MIMEType,
		Data:     rr.result.Image.Data,
	}, nil
}

// View returns a snapshot of the current state.
func (s *Shell) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Close releases the preview and abandons any in-flight call. It is idempotent.
func (s *Shell) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.releasePreview()
	if s.cancel != nil {
		s.cancel()
	}
	s.state = idle{}
	return nil
}

func (s *Shell) releasePreview() {
	if src := s.state.image(); src != nil {
		s.previews.Release(src.previewID)
	}
}

func (s *Shell) viewLocked() View {
	v := View{
		Phase:  s.state.phase(),
		Prompt: s.prompt,
		Busy:   s.pending,
	}

	if src := s.state.image(); src != nil {
		v.HasImage = true
		v.ImageName = src.Name
		v.PreviewID = src.previewID
	}

	switch st := s.state.(type) {
	case resultReady:
		v.ResultDataURI = st.result.DataURI()
		v.Message = st.result.Text
		v.CanDownload = true
	case errorShown:
		v.Error = st.message
		v.ErrorKind = st.kind
	}

	v.CanEdit = !s.closed && !s.pending && v.HasImage && strings.TrimSpace(s.prompt) != ""
	return v
}
