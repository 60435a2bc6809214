package shell

import "github.com/mhpenta/imageedit"

// Phase names the variant of the shell's state.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseReady       Phase = "ready"
	PhaseBusy        Phase = "busy"
	PhaseResultReady Phase = "result_ready"
	PhaseErrorShown  Phase = "error_shown"
)

// SourceImage is one upload. It is replaced wholesale, never mutated.
type SourceImage struct {
	Name     string
	MIMEType string
	Data     []byte

	previewID string
}

// state is the tagged union of display states. Each variant carries only
// the fields that are meaningful for it.
type state interface {
	phase() Phase
	image() *SourceImage
}

type idle struct{}

type ready struct {
	src *SourceImage
}

type busy struct {
	src        *SourceImage
	generation uint64
}

type resultReady struct {
	src    *SourceImage
	result *imageedit.EditResult
}

// errorShown may have no image when validation failed before any upload.
type errorShown struct {
	src     *SourceImage
	kind    imageedit.ErrorKind
	message string
}

func (idle) phase() Phase        { return PhaseIdle }
func (ready) phase() Phase       { return PhaseReady }
func (busy) phase() Phase        { return PhaseBusy }
func (resultReady) phase() Phase { return PhaseResultReady }
func (errorShown) phase() Phase  { return PhaseErrorShown }

func (idle) image() *SourceImage          { return nil }
func (s ready) image() *SourceImage       { return s.src }
func (s busy) image() *SourceImage        { return s.src }
func (s resultReady) image() *SourceImage { return s.src }
func (s errorShown) image() *SourceImage  { return s.src }

// View is the read-only projection of the shell handed to the interface.
type View struct {
	Phase  Phase  `json:"phase"`
	Prompt string `json:"prompt"`

	HasImage  bool   `json:"hasImage"`
	ImageName string `json:"imageName,omitempty"`
	PreviewID string `json:"previewId,omitempty"`

	// Busy is true while a service call is outstanding, including one
	// abandoned by a newer upload.
	Busy        bool `json:"busy"`
	CanEdit     bool `json:"canEdit"`
	CanDownload bool `json:"canDownload"`

	Error     string              `json:"error,omitempty"`
	ErrorKind imageedit.ErrorKind `json:"errorKind,omitempty"`

	// Message is advisory text returned with the edited image.
	Message       string `json:"message,omitempty"`
	ResultDataURI string `json:"resultDataUri,omitempty"`
}
