package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		BodyHTML([]byte("<p>ok</p>")).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "<p>ok</p>" {
		t.Errorf("Body = %q", w.Body.String())
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Errorf("unexpected HX-Trigger header")
	}
}

func TestHTMXResponseBuilder_EmptyIsNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().Write(w)
	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want 204", w.Code)
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerEvents("accounts:refetch", "stats:refetch").
		TriggerTransactionCreated("42").
		TriggerAlert("Impossible de supprimer ce compte").
		TriggerWarningNotification("attention").
		Write(w)

	var got map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &got); err != nil {
		t.Fatalf("HX-Trigger not JSON: %v", err)
	}
	for _, name := range []string{"accounts:refetch", "stats:refetch", EventTransactionCreated, EventShowAlert, EventShowNotification} {
		if _, ok := got[name]; !ok {
			t.Errorf("HX-Trigger missing %q", name)
		}
	}
	if !strings.Contains(string(got[EventTransactionCreated]), `"accountId":"42"`) {
		t.Errorf("transaction:created payload = %s", got[EventTransactionCreated])
	}
	if !strings.Contains(string(got[EventShowNotification]), `"type":"warning"`) {
		t.Errorf("notification payload = %s", got[EventShowNotification])
	}
	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want 200", w.Code)
	}
}

func TestErrorResponseEscapes(t *testing.T) {
	w := httptest.NewRecorder()
	BadRequestError("<script>").Write(w)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Status code = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "<script>") {
		t.Errorf("message not escaped: %s", w.Body.String())
	}
}

func TestTooManyRequestsError(t *testing.T) {
	w := httptest.NewRecorder()
	TooManyRequestsError().Write(w)
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "60" {
		t.Errorf("unexpected response %d %v", w.Code, w.Header())
	}
}
