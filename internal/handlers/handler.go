package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gatsby-glass-visualizer/internal/catalog"
	"gatsby-glass-visualizer/internal/gemini"
	"gatsby-glass-visualizer/internal/prompt"
	"gatsby-glass-visualizer/internal/store"
	"gatsby-glass-visualizer/internal/wizard"
)

type Options struct {
	Gemini         *gemini.Client
	Store          *store.Store // nil when persistence is disabled
	Engine         *prompt.Engine
	Sessions       *wizard.Store
	Logger         *slog.Logger
	MaxUploadBytes int64
	RequestTimeout time.Duration
	MaxConcurrent  int
}

type Handler struct {
	gem            *gemini.Client
	store          *store.Store
	engine         *prompt.Engine
	sessions       *wizard.Store
	logger         *slog.Logger
	maxUploadBytes int64
	requestTimeout time.Duration
	sem            chan struct{}
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}

	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &Handler{
		gem:            opts.Gemini,
		store:          opts.Store,
		engine:         opts.Engine,
		sessions:       opts.Sessions,
		logger:         logger,
		maxUploadBytes: maxUpload,
		requestTimeout: timeout,
		sem:            make(chan struct{}, maxConcurrent),
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/validate-image", h.handleValidateImage)
	mux.HandleFunc("/api/generate-visualization", h.handleGenerate)
	mux.HandleFunc("/api/save-visualization", h.handleSaveVisualization)
	mux.HandleFunc("/api/submit-lead", h.handleSubmitLead)
	mux.HandleFunc("/api/report-issue", h.handleReportIssue)
	mux.HandleFunc("/api/wizard", h.handleWizard)
	mux.HandleFunc("/api/catalog", h.handleCatalog)
	mux.HandleFunc("/api/prompt-stats", h.handlePromptStats)
}

type apiError struct {
	Error string `json:"error"`
}

type imagePayload struct {
	Data      string `json:"data"`
	ImageData string `json:"imageData"` // legacy alias for data
	MimeType  string `json:"mimeType"`
}

func (p imagePayload) input() (gemini.ImageInput, bool) {
	data := p.Data
	if data == "" {
		data = p.ImageData
	}
	if data == "" || p.MimeType == "" {
		return gemini.ImageInput{}, false
	}
	return gemini.ImageInput{DataBase64: data, MimeType: p.MimeType}, true
}

func (p imagePayload) dataURL() string {
	data := p.Data
	if data == "" {
		data = p.ImageData
	}
	if strings.HasPrefix(data, "data:") {
		return data
	}
	return "data:" + p.MimeType + ";base64," + data
}

type validateImageRequest struct {
	imagePayload
	SessionID string `json:"sessionId"`
	Target    string `json:"target"` // "bathroom" (default) or "inspiration"
}

func (h *Handler) handleValidateImage(w http.ResponseWriter, r *http.Request) {
	var req validateImageRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	img, ok := req.input()
	if !ok {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "missing required fields: data, mimeType"})
		return
	}
	if !validImageType(img.MimeType) {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "unsupported image type: " + img.MimeType})
		return
	}

	validationPrompt, err := h.engine.ValidationPrompt()
	if err != nil {
		h.logger.Error("validation template missing", "err", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "server configuration error"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	result, err := h.gem.ValidateImage(ctx, validationPrompt.Text, img)
	if err != nil {
		h.logger.Error("image validation failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, gemini.ValidationResult{
			Valid:  false,
			Reason: "Unable to verify image content. Please try again.",
			Shape:  "standard",
		})
		return
	}

	if result.Valid && req.SessionID != "" {
		ref := req.dataURL()
		h.sessions.Update(req.SessionID, func(sess *wizard.Session) {
			if req.Target == "inspiration" {
				sess.SetInspirationImage(ref, ref)
			} else {
				sess.SetBathroomImage(ref, ref)
				sess.ApplyShapeDetection(result.Shape)
			}
			// Auto-advance: the upload just validated, so the gating
			// predicate is known to hold even if it lags this update.
			sess.GoToNextStep(true)
		})
	}

	writeJSON(w, http.StatusOK, result)
}

type generateRequest struct {
	SessionID        string        `json:"sessionId"`
	BathroomImage    imagePayload  `json:"bathroomImage"`
	InspirationImage *imagePayload `json:"inspirationImage"`
}

type generateResponse struct {
	Image      string `json:"image"`
	PromptHash string `json:"promptHash,omitempty"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	bathroom, ok := req.BathroomImage.input()
	if !ok {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "missing required fields: bathroomImage"})
		return
	}

	sess := h.sessions.Get(req.SessionID)

	var inspiration *gemini.ImageInput
	if sess.Form.Mode == wizard.ModeInspiration {
		if req.InspirationImage == nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "missing required fields: inspirationImage"})
			return
		}
		img, ok := req.InspirationImage.input()
		if !ok {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid inspirationImage"})
			return
		}
		inspiration = &img
	}

	var processed prompt.ProcessedPrompt
	var err error
	if sess.Form.Mode == wizard.ModeInspiration {
		processed, err = h.engine.BuildInspirationPrompt(sess.Form.ShowerShape)
	} else {
		processed, err = h.engine.BuildVisualizationPrompt(sess.Form.PromptConfig())
	}
	if err != nil {
		h.logger.Error("prompt build failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "server configuration error"})
		return
	}

	systemPrompt, err := h.engine.SystemPrompt()
	if err != nil {
		h.logger.Error("system template missing", "err", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "server configuration error"})
		return
	}

	var token string
	h.sessions.Update(req.SessionID, func(sess *wizard.Session) {
		token = sess.BeginGeneration()
	})

	h.sem <- struct{}{}
	defer func() { <-h.sem }()

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	image, err := h.gem.GenerateVisualization(ctx, systemPrompt.Text, processed.Text, bathroom, inspiration)
	if err != nil {
		h.sessions.Update(req.SessionID, func(sess *wizard.Session) {
			sess.FailGeneration(token, "Failed to generate visualization")
		})
		h.logger.Error("generation failed", "session", req.SessionID, "err", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "Failed to generate visualization: " + err.Error()})
		return
	}

	completed := false
	updated := h.sessions.Update(req.SessionID, func(sess *wizard.Session) {
		if sess.CompleteGeneration(token, image) {
			completed = true
			sess.GoToNextStep(true)
		}
	})

	if completed {
		h.persistGeneration(updated, processed)
	}

	writeJSON(w, http.StatusOK, generateResponse{Image: image, PromptHash: processed.Hash})
}

// persistGeneration fans out the snapshot upsert and the event-log insert.
// Failures are logged and swallowed; persistence never blocks the response
// the user is waiting on.
func (h *Handler) persistGeneration(sess wizard.Session, processed prompt.ProcessedPrompt) {
	if h.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.store.SaveVisualization(ctx, store.VisualizationRecord{
			SessionID:          sess.ID,
			Mode:               sess.Form.Mode,
			EnclosureType:      sess.Form.EnclosureType,
			GlassStyle:         sess.Form.GlassStyle,
			HardwareFinish:     sess.Form.HardwareFinish,
			HandleStyle:        sess.Form.HandleStyle,
			TrackPreference:    sess.Form.TrackPreference,
			ShowerShape:        sess.Form.ShowerShape,
			VisualizationImage: sess.ResultURL,
			OriginalImage:      sess.PreviewURL,
			Source:             "Gatsby Glass Visualizer",
		})
	})
	g.Go(func() error {
		return h.store.InsertGenerationEvent(ctx, store.GenerationEvent{
			SessionID:       sess.ID,
			GenerationIndex: len(sess.History),
			TemplateID:      processed.Template.ID,
			TemplateVersion: processed.Template.Version,
			InputHash:       processed.Hash,
			Mode:            sess.Form.Mode,
		})
	})
	if err := g.Wait(); err != nil {
		h.logger.Warn("persistence failed", "session", sess.ID, "err", err)
	}
}

type saveVisualizationRequest struct {
	SessionID          string `json:"sessionId"`
	Mode               string `json:"mode"`
	EnclosureType      string `json:"enclosureType"`
	GlassStyle         string `json:"glassStyle"`
	HardwareFinish     string `json:"hardwareFinish"`
	HandleStyle        string `json:"handleStyle"`
	TrackPreference    string `json:"trackPreference"`
	ShowerShape        string `json:"showerShape"`
	VisualizationImage string `json:"visualizationImage"`
	OriginalImage      string `json:"originalImage"`
}

func (h *Handler) handleSaveVisualization(w http.ResponseWriter, r *http.Request) {
	var req saveVisualizationRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "Session ID is required"})
		return
	}
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, apiError{Error: "persistence is disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	err := h.store.SaveVisualization(ctx, store.VisualizationRecord{
		SessionID:          req.SessionID,
		Mode:               req.Mode,
		EnclosureType:      req.EnclosureType,
		GlassStyle:         req.GlassStyle,
		HardwareFinish:     req.HardwareFinish,
		HandleStyle:        req.HandleStyle,
		TrackPreference:    req.TrackPreference,
		ShowerShape:        req.ShowerShape,
		VisualizationImage: req.VisualizationImage,
		OriginalImage:      req.OriginalImage,
		Source:             "Gatsby Glass Visualizer",
	})
	if err != nil {
		h.logger.Error("save visualization failed", "session", req.SessionID, "err", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "An error occurred while saving visualization data"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type submitLeadRequest struct {
	leadInput
	SessionID          string `json:"sessionId"`
	VisualizationImage string `json:"visualizationImage"`
	OriginalImage      string `json:"originalImage"`
	DoorType           string `json:"doorType"`
	Finish             string `json:"finish"`
	Hardware           string `json:"hardware"`
	ShowerShape        string `json:"showerShape"`
	Source             string `json:"source"`
}

func (h *Handler) handleSubmitLead(w http.ResponseWriter, r *http.Request) {
	var req submitLeadRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if errs := validateLead(req.leadInput); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": errs})
		return
	}
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, apiError{Error: "persistence is disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	leadID, err := h.store.InsertLead(ctx, store.Lead{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		ZipCode:            req.ZipCode,
		VisualizationImage: req.VisualizationImage,
		OriginalImage:      req.OriginalImage,
		DoorType:           req.DoorType,
		Finish:             req.Finish,
		Hardware:           req.Hardware,
		ShowerShape:        req.ShowerShape,
		Source:             req.Source,
	})
	if err != nil {
		h.logger.Error("lead insert failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "Failed to save lead information"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Your information has been submitted successfully",
		"leadId":  leadID,
	})
}

type reportIssueRequest struct {
	SessionID             string `json:"sessionId"`
	IssueMessage          string `json:"issueMessage"`
	VisualizationImageURL string `json:"visualizationImageUrl"`
	Team                  string `json:"team"`
}

func (h *Handler) handleReportIssue(w http.ResponseWriter, r *http.Request) {
	var req reportIssueRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == "" || strings.TrimSpace(req.IssueMessage) == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "Session ID and issue message are required"})
		return
	}
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, apiError{Error: "persistence is disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	err := h.store.InsertIssueReport(ctx, store.IssueReport{
		SessionID:             req.SessionID,
		IssueMessage:          req.IssueMessage,
		VisualizationImageURL: req.VisualizationImageURL,
		Team:                  req.Team,
	})
	if err != nil {
		h.logger.Error("issue report failed", "session", req.SessionID, "err", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "An error occurred while reporting the issue"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type wizardActionRequest struct {
	SessionID string `json:"sessionId"`
	Action    string `json:"action"`
	Force     bool   `json:"force,omitempty"`
	Step      int    `json:"step,omitempty"`
	Value     string `json:"value,omitempty"`
	Field     string `json:"field,omitempty"`
	Config    string `json:"config,omitempty"`
	BoolValue bool   `json:"boolValue,omitempty"`
	HistoryID string `json:"historyId,omitempty"`
	Restore   bool   `json:"restore,omitempty"`
}

// handleWizard serves the per-session step machine: GET returns the current
// state, POST applies one action and returns the updated state.
func (h *Handler) handleWizard(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		id := strings.TrimSpace(r.URL.Query().Get("session_id"))
		if id == "" {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "session_id is required"})
			return
		}
		writeJSON(w, http.StatusOK, h.sessions.Get(id))
		return
	}

	var req wizardActionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "sessionId is required"})
		return
	}

	var unknownAction bool
	updated := h.sessions.Update(req.SessionID, func(sess *wizard.Session) {
		switch req.Action {
		case "next":
			sess.GoToNextStep(req.Force)
		case "previous":
			sess.GoToPreviousStep()
		case "goto":
			sess.GoToStep(req.Step)
		case "mode":
			sess.Form.Mode = req.Value
		case "enclosure":
			sess.HandleEnclosureChange(req.Value)
		case "field":
			applyFieldUpdate(sess, req.Field, req.Value)
		case "config":
			applyConfigUpdate(sess, req.Config, req.Field, req.Value, req.BoolValue)
		case "select-history":
			sess.SelectHistoryItem(req.HistoryID, req.Restore)
		case "reset":
			sess.ResetAll()
		default:
			unknownAction = true
		}
	})
	if unknownAction {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "unknown action: " + req.Action})
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func applyFieldUpdate(sess *wizard.Session, field, value string) {
	switch field {
	case "glass_style":
		sess.Form.GlassStyle = value
	case "hardware_finish":
		sess.Form.HardwareFinish = value
	case "handle_style":
		sess.Form.HandleStyle = value
	case "track_preference":
		sess.Form.TrackPreference = value
	case "shower_shape":
		sess.Form.ShowerShape = value
	case "user_notes":
		sess.Form.UserNotes = value
	}
}

func applyConfigUpdate(sess *wizard.Session, config, field, value string, boolValue bool) {
	switch config {
	case "hinged_config":
		switch field {
		case "to_ceiling":
			sess.Form.HingedConfig.ToCeiling = boolValue
		case "direction":
			sess.Form.HingedConfig.Direction = value
		}
	case "pivot_config":
		if field == "direction" {
			sess.Form.PivotConfig.Direction = value
		}
	case "sliding_config":
		switch field {
		case "configuration":
			sess.Form.SlidingConfig.Configuration = value
		case "direction":
			sess.Form.SlidingConfig.Direction = value
		}
	}
}

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"version":          catalog.Version,
		"glassStyles":      catalog.GlassStyles(),
		"hardwareFinishes": catalog.HardwareFinishes(),
		"enclosureTypes":   catalog.EnclosureTypes(),
		"handleStyles":     catalog.HandleStyles(),
		"trackPreferences": catalog.TrackPreferences(),
		"compatibility":    catalog.Compatibility(),
		"templates":        prompt.Registry(),
	})
}

func (h *Handler) handlePromptStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}

	cache := h.engine.Cache()
	if cache == nil {
		writeJSON(w, http.StatusOK, prompt.Stats{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":    cache.Stats(),
		"mostUsed": cache.MostUsed(5),
		"recent":   cache.Recent(5),
	})
}

// decodeJSON enforces POST, caps the body, and decodes into dst. Writes the
// error response itself and reports whether decoding succeeded.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, apiError{Error: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
