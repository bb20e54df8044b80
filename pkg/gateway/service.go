package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"chartbot/pkg/bus"
	"chartbot/pkg/channel"
	"chartbot/pkg/config"

	"github.com/google/uuid"
	"github.com/mymmrac/telego"
)

const (
	defaultHost        = "0.0.0.0"
	defaultPort        = 8080
	defaultWebhookPath = "/api"

	maxUpdateBodyBytes = 1 << 20
)

// ackBody is the fixed acknowledgment returned for every webhook request,
// whatever the inner outcome.
var ackBody = []byte(`{"status":"ok"}` + "\n")

// Service exposes the Telegram webhook endpoint plus health and readiness
// probes.
type Service struct {
	cfg     *config.Config
	log     *slog.Logger
	sender  channel.Sender
	handler channel.Handler

	mu              sync.RWMutex
	startedAt       time.Time
	updatesReceived int64
	repliesSent     int64
}

type statusResponse struct {
	Status          string `json:"status"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	UpdatesReceived int64  `json:"updates_received"`
	RepliesSent     int64  `json:"replies_sent"`
}

// NewService wires the webhook transport to a reply sender and the message
// handler.
func NewService(cfg *config.Config, sender channel.Sender, handler channel.Handler, log *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if sender == nil {
		return nil, errors.New("sender is required")
	}
	if handler == nil {
		return nil, errors.New("handler is required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		cfg:     cfg,
		log:     log.With("component", "gateway.service"),
		sender:  sender,
		handler: handler,
	}, nil
}

// Run serves the webhook endpoint until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	s.startedAt = time.Now().UTC()
	s.mu.Unlock()

	host := strings.TrimSpace(s.cfg.Gateway.Host)
	if host == "" {
		host = defaultHost
	}

	port := s.cfg.Gateway.Port
	if port <= 0 {
		port = defaultPort
	}

	addr := host + ":" + strconv.Itoa(port)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Info("Webhook server started", "address", addr, "path", s.webhookPath())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start webhook server: %w", err)
	}

	return nil
}

func (s *Service) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+s.webhookPath(), s.handleWebhook)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	return mux
}

func (s *Service) webhookPath() string {
	path := strings.TrimSpace(s.cfg.Telegram.WebhookPath)
	if path == "" {
		return defaultWebhookPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return path
}

// handleWebhook processes one Telegram update.
//
// The response is always the fixed acknowledgment with status 200: a
// malformed payload, an update without a message, or a failed reply send
// never surface to Telegram, which would otherwise retry the update.
func (s *Service) handleWebhook(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	log := s.log.With("request_id", requestID)

	defer s.ack(w, log)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateBodyBytes))
	if err != nil {
		log.Warn("Failed to read update body", "error", err)
		return
	}

	var update telego.Update
	if err := json.Unmarshal(body, &update); err != nil {
		log.Warn("Malformed update payload", "error", err)
		return
	}

	message := update.Message
	if message == nil {
		log.Debug("Update without message ignored", "update_id", update.UpdateID)
		return
	}

	s.mu.Lock()
	s.updatesReceived++
	s.mu.Unlock()

	senderID := ""
	if message.From != nil {
		senderID = strconv.FormatInt(message.From.ID, 10)
	}

	chatID := strconv.FormatInt(message.Chat.ID, 10)
	inbound := bus.InboundMessage{
		Channel:  "telegram",
		SenderID: senderID,
		ChatID:   chatID,
		Content:  message.Text,
		Metadata: map[string]string{
			"update_id":  strconv.Itoa(update.UpdateID),
			"request_id": requestID,
		},
	}
	log.Info("Received update", "update_id", update.UpdateID, "chat_id", chatID)

	outbound, err := s.handler(r.Context(), inbound)
	if err != nil {
		log.Error("Failed to process update", "error", err)
		return
	}

	if strings.TrimSpace(outbound.Content) == "" {
		return
	}

	if err := s.sender.Send(r.Context(), outbound.ChatID, outbound.Content); err != nil {
		log.Error("Failed to send reply", "chat_id", outbound.ChatID, "error", err)
		return
	}

	s.mu.Lock()
	s.repliesSent++
	s.mu.Unlock()
}

func (s *Service) ack(w http.ResponseWriter, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(ackBody); err != nil {
		log.Error("Failed to write acknowledgment", "error", err)
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondStatus(w, http.StatusOK, "ok")
}

func (s *Service) handleReady(w http.ResponseWriter, _ *http.Request) {
	statusCode := http.StatusOK
	status := "ready"
	if !s.isReady() {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	s.respondStatus(w, statusCode, status)
}

func (s *Service) respondStatus(w http.ResponseWriter, statusCode int, status string) {
	payload := s.currentStatus(status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Failed to write status response", "error", err)
	}
}

func (s *Service) currentStatus(status string) statusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uptime := int64(0)
	if !s.startedAt.IsZero() {
		uptime = int64(time.Since(s.startedAt).Seconds())
	}

	return statusResponse{
		Status:          status,
		UptimeSeconds:   uptime,
		UpdatesReceived: s.updatesReceived,
		RepliesSent:     s.repliesSent,
	}
}

func (s *Service) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return !s.startedAt.IsZero()
}
