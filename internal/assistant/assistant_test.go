package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icebreak-chat/icebreak-go/internal/api"
)

func helperAgainst(t *testing.T, handler http.HandlerFunc) *Helper {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(api.New(srv.URL), "", "Ana")
}

func TestAskAppendsBothSides(t *testing.T) {
	h := helperAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": "Try: hey, what is everyone up to?"}`))
	})

	h.Ask(context.Background(), "  hey whats up  ", api.AssistTone)

	lines := h.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, RoleUser, lines[0].Role)
	assert.Equal(t, "hey whats up", lines[0].Content, "draft is trimmed before anything else")
	assert.Equal(t, api.AssistTone, lines[0].Type)
	assert.Equal(t, RoleAssistant, lines[1].Role)
	assert.Equal(t, "Try: hey, what is everyone up to?", lines[1].Content)
}

func TestAskEmptyDraftIsNoop(t *testing.T) {
	h := helperAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty drafts must not reach the wire")
	})

	h.Ask(context.Background(), "   ", api.AssistGeneral)
	assert.Empty(t, h.Lines())
}

func TestAskFailureAppendsApology(t *testing.T) {
	h := helperAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "assistant unavailable"}`, http.StatusServiceUnavailable)
	})

	h.Ask(context.Background(), "help me say hi", api.AssistGeneral)

	lines := h.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, RoleAssistant, lines[1].Role)
	assert.Equal(t, apology, lines[1].Content)
}

func TestEmptyAssistTypeDefaultsToGeneral(t *testing.T) {
	var gotType string
	h := helperAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AssistanceType string `json:"assistance_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			gotType = req.AssistanceType
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": "ok"}`))
	})

	h.Ask(context.Background(), "hello", "")
	assert.Equal(t, api.AssistGeneral, gotType)
}
