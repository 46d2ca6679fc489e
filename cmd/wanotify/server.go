package main

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"wanotify/internal/constants"
	"wanotify/internal/errors"
	"wanotify/internal/middleware"
	"wanotify/internal/models"
	"wanotify/internal/service"
)

// Server wires the HTTP surface: vendor webhook, notification trigger, health.
type Server struct {
	cfg       *models.Config
	notifier  *service.Notifier
	processor *service.WebhookProcessor
	logger    *logrus.Logger
}

func NewServer(cfg *models.Config, notifier *service.Notifier, processor *service.WebhookProcessor, logger *logrus.Logger) *http.Server {
	s := &Server{
		cfg:       cfg,
		notifier:  notifier,
		processor: processor,
		logger:    logger,
	}

	router := mux.NewRouter()
	router.Use(middleware.Observability(logger))
	router.HandleFunc("/webhook/whatsapp", s.handleWebhookVerify).Methods(http.MethodGet)
	router.HandleFunc("/webhook/whatsapp", s.handleWebhookEvent).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/notifications/{rule}", s.handleNotify).Methods(http.MethodPost)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSec) * time.Second,
	}
}

// handleWebhookVerify answers the vendor's subscription handshake. Matching
// verify tokens echo the challenge; anything else is rejected without side
// effects.
func (s *Server) handleWebhookVerify(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mode := query.Get("hub.mode")
	token := query.Get("hub.verify_token")
	challenge := query.Get("hub.challenge")

	if mode != "subscribe" || !s.processor.VerifyToken(token) {
		s.logger.Warn("Webhook verification rejected")
		http.Error(w, "verify token does not match", http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(challenge)); err != nil {
		s.logger.WithError(err).Error("Failed to write challenge response")
	}
}

// handleWebhookEvent ingests one vendor callback. The response is always 200:
// the payload is audit-logged before processing and a vendor retry of a
// poisoned payload would fail identically.
func (s *Server) handleWebhookEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, constants.MaxWebhookPayloadBytes))
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read webhook body")
		w.WriteHeader(http.StatusOK)
		return
	}

	s.processor.ProcessPayload(r.Context(), body)

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.logger.WithError(err).Error("Failed to write webhook response")
	}
}

// handleNotify runs one configured rule against the posted document snapshot.
// Per-recipient messaging failures are reported in the body, not the status
// code; only configuration problems fail the call.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	ruleName := mux.Vars(r)["rule"]
	rule := s.cfg.RuleByName(ruleName)
	if rule == nil {
		s.writeError(w, http.StatusNotFound, "unknown notification rule")
		return
	}

	var doc map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(r.Body, constants.MaxWebhookPayloadBytes)).Decode(&doc); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid document snapshot")
		return
	}

	results, err := s.notifier.Dispatch(r.Context(), rule, doc)
	if err != nil {
		s.logger.WithField(service.LogFieldRule, ruleName).WithError(err).Error("Dispatch failed")
		status := http.StatusInternalServerError
		if errors.GetCode(err) == errors.ErrCodeNotFound || errors.GetCode(err) == errors.ErrCodeInvalidInput {
			status = http.StatusUnprocessableEntity
		}
		s.writeError(w, status, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"rule":    ruleName,
		"results": results,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
