package wizard

import (
	"time"

	"github.com/google/uuid"

	"gatsby-glass-visualizer/internal/catalog"
)

// Transient advisory messages shown when a selection is coerced.
const (
	neoAngleCoerceMessage = "Neo-Angle (Corner) showers are compatible only with Hinged doors. We have kept your selection as Hinged based on the shape of your shower."
	neoAngleDetectMessage = "We detected a Neo-Angle corner shower. We've automatically set your door type to 'Hinged' to match this specific layout."

	coerceMessageTTL = 6 * time.Second
	detectMessageTTL = 8 * time.Second
)

// Validation targets.
const (
	ValidatingTarget      = "target"
	ValidatingInspiration = "inspiration"
)

// HistoryItem is a frozen snapshot of one generated result. The payload is
// copied by value when the item is created and never changes afterwards.
type HistoryItem struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ImageURL  string    `json:"image_url"`
	Label     string    `json:"label"`
	Payload   Payload   `json:"payload"`
}

// Session is one user's in-progress wizard state. It is only ever touched
// under the store's lock; methods mutate freely without their own locking.
type Session struct {
	ID   string  `json:"id"`
	Form Payload `json:"form"`

	ImageRef              string `json:"image_ref"`
	PreviewURL            string `json:"preview_url"`
	InspirationRef        string `json:"inspiration_ref"`
	InspirationPreviewURL string `json:"inspiration_preview_url"`

	ResultURL  string        `json:"result_url"`
	ShowResult bool          `json:"show_result"`
	History    []HistoryItem `json:"history"`

	CurrentStep    int `json:"current_step"`
	MaxStepReached int `json:"max_step_reached"`

	Loading     bool   `json:"loading"`
	Validating  string `json:"validating,omitempty"`
	Error       string `json:"error,omitempty"`
	InfoMessage string `json:"info_message,omitempty"`

	infoExpiresAt   time.Time
	generationToken string

	UpdatedAt time.Time `json:"updated_at"`
}

// TotalSteps depends only on the mode. The configure path has separate
// selection steps that inspiration mode skips, since style is inferred from
// the inspiration photo.
func (s *Session) TotalSteps() int {
	if s.Form.Mode == ModeInspiration {
		return 4
	}
	return 5
}

// Configure steps: 1 mode, 2 bathroom photo, 3 enclosure type, 4 framing and
// hardware, 5 result. Inspiration steps: 1 mode, 2 bathroom photo,
// 3 inspiration photo, 4 result.
func (s *Session) CanProceedToNextStep() bool {
	switch s.CurrentStep {
	case 1:
		return s.Form.Mode != ""
	case 2:
		return s.ImageRef != "" && s.PreviewURL != ""
	case 3:
		if s.Form.Mode == ModeInspiration {
			return s.InspirationRef != "" && s.InspirationPreviewURL != ""
		}
		return s.Form.EnclosureType != ""
	case 4:
		if s.Form.Mode == ModeInspiration {
			return false // result step, nothing beyond it
		}
		return s.Form.TrackPreference != "" && s.Form.HardwareFinish != "" && s.Form.HandleStyle != ""
	}
	return false
}

// GoToNextStep advances one step when the gating predicate holds, or
// unconditionally when forced. Force exists for auto-advance after an async
// validation succeeds, where the predicate may not yet see the new state.
// Reports whether the step changed.
func (s *Session) GoToNextStep(force bool) bool {
	if !force && !s.CanProceedToNextStep() {
		return false
	}
	if s.CurrentStep >= s.TotalSteps() {
		return false
	}

	s.CurrentStep++
	if s.CurrentStep > s.MaxStepReached {
		s.MaxStepReached = s.CurrentStep
	}
	s.Error = ""
	return true
}

func (s *Session) GoToPreviousStep() bool {
	if s.CurrentStep <= 1 {
		return false
	}
	s.CurrentStep--
	return true
}

// GoToStep jumps directly to a previously reached step. Jumping ahead of the
// high-water mark is rejected.
func (s *Session) GoToStep(n int) bool {
	if n < 1 || n > s.MaxStepReached {
		return false
	}
	s.CurrentStep = n
	return true
}

// HandleEnclosureChange applies an enclosure selection, coercing it to
// hinged when the detected shower shape cannot take the requested type.
func (s *Session) HandleEnclosureChange(newType string) {
	if !enclosureAllowed(s.Form.ShowerShape, newType) {
		s.Form.EnclosureType = "hinged"
		s.setInfo(neoAngleCoerceMessage, coerceMessageTTL)
		return
	}
	s.Form.EnclosureType = newType
}

// ApplyShapeDetection records the shape found by image validation and
// pre-coerces the enclosure type when the current selection is incompatible
// with the detected layout, so the user never lands on an invalid choice.
func (s *Session) ApplyShapeDetection(shape string) {
	s.Form.ShowerShape = shape
	if !enclosureAllowed(shape, s.Form.EnclosureType) {
		s.Form.EnclosureType = "hinged"
		s.setInfo(neoAngleDetectMessage, detectMessageTTL)
	}
}

// enclosureAllowed consults the catalog compatibility matrix. Shapes without
// an entry accept every enclosure type.
func enclosureAllowed(shape, enclosureType string) bool {
	allowed, ok := catalog.Compatibility()[shape]
	if !ok {
		return true
	}
	for _, t := range allowed {
		if t == enclosureType {
			return true
		}
	}
	return false
}

// SetBathroomImage records a validated bathroom photo and discards any
// result produced from the previous photo.
func (s *Session) SetBathroomImage(ref, previewURL string) {
	s.ImageRef = ref
	s.PreviewURL = previewURL
	s.Form.ImageRef = ref
	s.ResultURL = ""
	s.ShowResult = false
}

func (s *Session) SetInspirationImage(ref, previewURL string) {
	s.InspirationRef = ref
	s.InspirationPreviewURL = previewURL
}

func (s *Session) setInfo(msg string, ttl time.Duration) {
	s.InfoMessage = msg
	s.infoExpiresAt = time.Now().Add(ttl)
}

// ClearExpiredInfo drops the advisory message once its deadline has passed.
// Called on every store access, so stale messages never outlive the next
// read.
func (s *Session) ClearExpiredInfo(now time.Time) {
	if s.InfoMessage != "" && !s.infoExpiresAt.IsZero() && now.After(s.infoExpiresAt) {
		s.InfoMessage = ""
		s.infoExpiresAt = time.Time{}
	}
}

// BeginGeneration marks the session loading and returns a fencing token.
// Only the holder of the current token may complete or fail the run, so a
// late result from a superseded request is dropped instead of clobbering
// newer state.
func (s *Session) BeginGeneration() string {
	token := uuid.NewString()
	s.generationToken = token
	s.Loading = true
	s.Error = ""
	s.ShowResult = false
	return token
}

// CompleteGeneration stores the generated image if the token is still
// current. Stale tokens are ignored.
func (s *Session) CompleteGeneration(token, imageURL string) bool {
	if token == "" || token != s.generationToken {
		return false
	}
	s.generationToken = ""
	s.Loading = false
	s.ResultURL = imageURL
	s.ShowResult = true
	s.AddHistoryItem(s.NewHistoryItem(imageURL))
	return true
}

// FailGeneration records the error if the token is still current.
func (s *Session) FailGeneration(token, message string) bool {
	if token == "" || token != s.generationToken {
		return false
	}
	s.generationToken = ""
	s.Loading = false
	s.Error = message
	return true
}

// NewHistoryItem snapshots the current form against a generated image.
func (s *Session) NewHistoryItem(imageURL string) HistoryItem {
	payload := s.Form
	payload.SessionID = uuid.NewString()
	return HistoryItem{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		ImageURL:  imageURL,
		Label:     HistoryLabel(payload),
		Payload:   payload,
	}
}

// AddHistoryItem prepends, most recent first.
func (s *Session) AddHistoryItem(item HistoryItem) {
	s.History = append([]HistoryItem{item}, s.History...)
}

// SelectHistoryItem shows a past result. The live form is replaced by the
// item's frozen payload only when restoreConfig is set, so browsing history
// does not lose in-progress edits.
func (s *Session) SelectHistoryItem(id string, restoreConfig bool) bool {
	for i := range s.History {
		if s.History[i].ID != id {
			continue
		}
		s.ResultURL = s.History[i].ImageURL
		s.ShowResult = true
		if restoreConfig {
			s.Form = s.History[i].Payload
		}
		return true
	}
	return false
}

// HistoryLabel names a snapshot for display.
func HistoryLabel(p Payload) string {
	if p.Mode == ModeInspiration {
		return "Inspiration Match"
	}
	return p.EnclosureType + " • " + p.HardwareFinish
}

// ResetAll restores every field to its initial value in one operation,
// keeping only the session identity.
func (s *Session) ResetAll() {
	id := s.ID
	*s = Session{
		ID:             id,
		Form:           DefaultPayload(),
		CurrentStep:    1,
		MaxStepReached: 1,
		UpdatedAt:      time.Now(),
	}
}
