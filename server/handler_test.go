package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/precisionx/cakto-bridge/core"
	"github.com/precisionx/cakto-bridge/webhook"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) webhook.Response {
	t.Helper()
	var body webhook.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}

func assertCORSHeaders(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow-origin, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS, GET" {
		t.Fatalf("unexpected allow-methods header %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type" {
		t.Fatalf("unexpected allow-headers header %q", got)
	}
}

func TestHandler_PreflightResponse(t *testing.T) {
	processor := &stubProcessor{}
	handler := NewHandler(processor, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", rec.Code)
	}
	assertCORSHeaders(t, rec)
	body := decodeResponse(t, rec)
	if !body.Ok || !body.Preflight {
		t.Fatalf("expected preflight marker, got %+v", body)
	}
	if processor.calls != 0 {
		t.Fatalf("expected no processing on preflight")
	}
}

func TestHandler_Healthcheck(t *testing.T) {
	processor := &stubProcessor{}
	handler := NewHandler(processor, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for healthcheck, got %d", rec.Code)
	}
	assertCORSHeaders(t, rec)
	body := decodeResponse(t, rec)
	if !body.Ok || body.Message == "" {
		t.Fatalf("expected readiness message, got %+v", body)
	}
	if processor.calls != 0 {
		t.Fatalf("expected no processing on healthcheck")
	}
}

func TestHandler_RejectsUnsupportedMethod(t *testing.T) {
	handler := NewHandler(&stubProcessor{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	assertCORSHeaders(t, rec)
	body := decodeResponse(t, rec)
	if body.Ok || body.Error == "" {
		t.Fatalf("expected method-not-allowed error body, got %+v", body)
	}
	if body.Details != core.ServiceErrorMethodNotAllowed {
		t.Fatalf("expected method-not-allowed text code, got %q", body.Details)
	}
}

func TestHandler_RejectsMalformedBody(t *testing.T) {
	processor := &stubProcessor{}
	handler := NewHandler(processor, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
	if processor.calls != 0 {
		t.Fatalf("expected no processing of malformed body")
	}
}

func TestHandler_ForwardsProcessorResult(t *testing.T) {
	processor := &stubProcessor{
		result: webhook.Result{
			StatusCode: http.StatusOK,
			Body: webhook.Response{
				Ok:          true,
				Email:       "a@b.com",
				UID:         "uid-123",
				ProductName: "Curso X",
			},
		},
	}
	handler := NewHandler(processor, nil)

	payload := `{"secret":"S","event":"purchase_approved","data":{"id":"O1","customer":{"email":"a@b.com","name":"Ana"},"product":{"name":"Curso X"}}}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assertCORSHeaders(t, rec)
	if processor.calls != 1 {
		t.Fatalf("expected one processor call, got %d", processor.calls)
	}
	if processor.lastPayload.Secret != "S" || processor.lastPayload.Data.Customer.Email != "a@b.com" {
		t.Fatalf("expected payload decoded before processing, got %+v", processor.lastPayload)
	}
	body := decodeResponse(t, rec)
	if body.UID != "uid-123" || body.ProductName != "Curso X" {
		t.Fatalf("expected processor body forwarded, got %+v", body)
	}
}

func TestHandler_CollapsesProcessingErrors(t *testing.T) {
	processor := &stubProcessor{
		err: goerrors.New("smtp connection refused", goerrors.CategoryExternal).
			WithTextCode(core.ServiceErrorMailUpstream),
	}
	handler := NewHandler(processor, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"secret":"S"}`)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeResponse(t, rec)
	if body.Ok {
		t.Fatalf("expected error body, got %+v", body)
	}
	if body.Error != "Falha interna ao processar webhook." {
		t.Fatalf("unexpected error message %q", body.Error)
	}
	if body.Details != core.ServiceErrorMailUpstream {
		t.Fatalf("expected stable text code in details, got %q", body.Details)
	}
	if strings.Contains(rec.Body.String(), "smtp connection refused") {
		t.Fatalf("expected raw upstream error text kept out of the response")
	}
}

type stubProcessor struct {
	result webhook.Result
	err    error

	calls       int
	lastPayload webhook.Payload
}

func (s *stubProcessor) Process(_ context.Context, payload webhook.Payload) (webhook.Result, error) {
	s.calls++
	s.lastPayload = payload
	if s.err != nil {
		return webhook.Result{}, s.err
	}
	return s.result, nil
}
