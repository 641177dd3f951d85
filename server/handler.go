// Package server exposes the single inbound HTTP endpoint Cakto posts to.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/precisionx/cakto-bridge/core"
	"github.com/precisionx/cakto-bridge/webhook"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

const healthcheckMessage = "Webhook ativo e pronto para receber POST da Cakto 🚀"

type PurchaseProcessor interface {
	Process(ctx context.Context, payload webhook.Payload) (webhook.Result, error)
}

type Handler struct {
	processor PurchaseProcessor
	logger    core.Logger
}

func NewHandler(processor PurchaseProcessor, logger core.Logger) *Handler {
	if logger == nil {
		logger = glog.Nop()
	}
	return &Handler{processor: processor, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		h.writeJSON(w, http.StatusOK, webhook.Response{Ok: true, Preflight: true})
	case http.MethodGet:
		h.writeJSON(w, http.StatusOK, webhook.Response{Ok: true, Message: healthcheckMessage})
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		h.writeJSON(w, http.StatusMethodNotAllowed, webhook.Response{
			Ok:      false,
			Error:   "Método não permitido",
			Details: core.ServiceErrorMethodNotAllowed,
		})
	}
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.processor == nil {
		h.writeInternalError(w, core.ServiceErrorInternal)
		return
	}

	var payload webhook.Payload
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		h.logger.Warn("malformed webhook body", "error", err.Error())
		h.writeJSON(w, http.StatusBadRequest, webhook.Response{
			Ok:    false,
			Error: "Payload JSON inválido",
		})
		return
	}

	result, err := h.processor.Process(r.Context(), payload)
	if err != nil {
		mapped := core.MapError(err)
		h.logger.Error("webhook processing failed",
			"error", err.Error(),
			"category", string(mapped.Category),
			"text_code", mapped.TextCode,
		)
		h.writeInternalError(w, mapped.TextCode)
		return
	}
	h.writeJSON(w, result.StatusCode, result.Body)
}

// writeInternalError keeps upstream error text out of the response body;
// details carries only the stable text code. The raw error is logged.
func (h *Handler) writeInternalError(w http.ResponseWriter, textCode string) {
	h.writeJSON(w, http.StatusInternalServerError, webhook.Response{
		Ok:      false,
		Error:   "Falha interna ao processar webhook.",
		Details: textCode,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body webhook.Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && h != nil && h.logger != nil {
		h.logger.Error("write response body", "error", err.Error())
	}
}

func writeCORSHeaders(w http.ResponseWriter) {
	header := w.Header()
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
	header.Set("Access-Control-Allow-Headers", "Content-Type")
}
