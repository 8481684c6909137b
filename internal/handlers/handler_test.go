package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatsby-glass-visualizer/internal/catalog"
	"gatsby-glass-visualizer/internal/gemini"
	"gatsby-glass-visualizer/internal/prompt"
	"gatsby-glass-visualizer/internal/wizard"
)

// fakeGemini serves canned generateContent responses for both models.
func fakeGemini(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func newTestHandler(t *testing.T, geminiBody string) (*Handler, *wizard.Store) {
	t.Helper()

	upstream := fakeGemini(t, geminiBody)
	t.Cleanup(upstream.Close)

	gem := gemini.New(gemini.Options{
		APIKey:     "test-key",
		BaseURL:    upstream.URL,
		HTTPClient: upstream.Client(),
	})

	engine := prompt.New(prompt.Options{
		Catalog:          catalog.ForPrompt(),
		Cache:            prompt.NewCache(),
		StrictValidation: true,
	})

	sessions := wizard.NewStore()
	h := New(Options{
		Gemini:   gem,
		Engine:   engine,
		Sessions: sessions,
	})
	return h, sessions
}

func postJSON(t *testing.T, h http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func testMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func TestHandleValidateImage_ValidAdvancesWizard(t *testing.T) {
	const verdict = `{"candidates":[{"content":{"parts":[{"text":"{\"isValid\":true,\"shape\":\"neo_angle\"}"}]}}]}`
	h, sessions := newTestHandler(t, verdict)
	mux := testMux(h)

	sessions.Update("sess-1", func(s *wizard.Session) {
		s.GoToNextStep(true) // on the photo step
	})

	rec := postJSON(t, mux, "/api/validate-image", map[string]any{
		"sessionId": "sess-1",
		"data":      "aGVsbG8=",
		"mimeType":  "image/jpeg",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var result gemini.ValidationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Valid)
	assert.Equal(t, "neo_angle", result.Shape)

	sess := sessions.Get("sess-1")
	assert.Equal(t, 3, sess.CurrentStep)
	assert.Equal(t, "neo_angle", sess.Form.ShowerShape)
	assert.Equal(t, "hinged", sess.Form.EnclosureType)
	assert.NotEmpty(t, sess.ImageRef)
}

func TestHandleValidateImage_RejectsBadMimeType(t *testing.T) {
	h, _ := newTestHandler(t, `{}`)
	mux := testMux(h)

	rec := postJSON(t, mux, "/api/validate-image", map[string]any{
		"data":     "aGVsbG8=",
		"mimeType": "image/gif",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGenerate_ReturnsImageAndRecordsHistory(t *testing.T) {
	const generated = `{"candidates":[{"content":{"parts":[{"inlineData":{"data":"Zm9v","mimeType":"image/png"}}]}}]}`
	h, sessions := newTestHandler(t, generated)
	mux := testMux(h)

	sessions.Update("sess-1", func(s *wizard.Session) {
		s.SetBathroomImage("data:image/jpeg;base64,aGVsbG8=", "data:image/jpeg;base64,aGVsbG8=")
	})

	rec := postJSON(t, mux, "/api/generate-visualization", map[string]any{
		"sessionId": "sess-1",
		"bathroomImage": map[string]any{
			"data":     "aGVsbG8=",
			"mimeType": "image/jpeg",
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Image      string `json:"image"`
		PromptHash string `json:"promptHash"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "data:image/png;base64,Zm9v", resp.Image)
	assert.NotEmpty(t, resp.PromptHash)

	sess := sessions.Get("sess-1")
	assert.Equal(t, resp.Image, sess.ResultURL)
	assert.False(t, sess.Loading)
	require.Len(t, sess.History, 1)
	assert.Equal(t, "hinged • matte_black", sess.History[0].Label)
}

func TestHandleGenerate_InspirationRequiresSecondImage(t *testing.T) {
	h, sessions := newTestHandler(t, `{}`)
	mux := testMux(h)

	sessions.Update("sess-1", func(s *wizard.Session) {
		s.Form.Mode = wizard.ModeInspiration
	})

	rec := postJSON(t, mux, "/api/generate-visualization", map[string]any{
		"sessionId": "sess-1",
		"bathroomImage": map[string]any{
			"data":     "aGVsbG8=",
			"mimeType": "image/jpeg",
		},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleWizard_Actions(t *testing.T) {
	h, sessions := newTestHandler(t, `{}`)
	mux := testMux(h)

	rec := postJSON(t, mux, "/api/wizard", map[string]any{
		"sessionId": "sess-1",
		"action":    "enclosure",
		"value":     "sliding",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var sess wizard.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, "sliding", sess.Form.EnclosureType)

	rec = postJSON(t, mux, "/api/wizard", map[string]any{
		"sessionId": "sess-1",
		"action":    "config",
		"config":    "sliding_config",
		"field":     "configuration",
		"value":     "double_door",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "double_door", sessions.Get("sess-1").Form.SlidingConfig.Configuration)

	rec = postJSON(t, mux, "/api/wizard", map[string]any{
		"sessionId": "sess-1",
		"action":    "warp",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleWizard_GetState(t *testing.T) {
	h, sessions := newTestHandler(t, `{}`)
	mux := testMux(h)
	sessions.Get("sess-9")

	req := httptest.NewRequest(http.MethodGet, "/api/wizard?session_id=sess-9", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var sess wizard.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, "sess-9", sess.ID)
	assert.Equal(t, 1, sess.CurrentStep)
}

func TestHandleSubmitLead_ValidationAndMissingStore(t *testing.T) {
	h, _ := newTestHandler(t, `{}`)
	mux := testMux(h)

	rec := postJSON(t, mux, "/api/submit-lead", map[string]any{
		"name":  "",
		"email": "bad",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "name")
	assert.Contains(t, resp.Fields, "email")
	assert.Contains(t, resp.Fields, "zipCode")

	// Valid lead but persistence disabled.
	rec = postJSON(t, mux, "/api/submit-lead", map[string]any{
		"name":    "Jane",
		"email":   "jane@example.com",
		"zipCode": "12345",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleCatalog(t *testing.T) {
	h, _ := newTestHandler(t, `{}`)
	mux := testMux(h)

	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "glassStyles")
	assert.Contains(t, resp, "compatibility")
	assert.Contains(t, resp, "templates")
}
