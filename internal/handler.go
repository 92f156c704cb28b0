package courier

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type response struct {
	OK     bool        `json:"ok"`
	Error  string      `json:"error,omitempty"`
	Fields FieldErrors `json:"fields,omitempty"`
}

// Handler serves POST /api/contact. Its limiter and dispatcher are built
// once at startup and shared by every request.
type Handler struct {
	cfg     *Config
	limiter Limiter
	mailer  Dispatcher
	now     Clock
}

func NewHandler(cfg *Config, limiter Limiter, mailer Dispatcher) *Handler {
	return &Handler{cfg: cfg, limiter: limiter, mailer: mailer, now: time.Now}
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) HandleContact(w http.ResponseWriter, r *http.Request) {
	if !h.applyCORS(w, r) {
		writeJSON(w, http.StatusForbidden, response{Error: msgForbiddenOrigin})
		return
	}
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, response{Error: msgMethod})
		return
	}

	ctx := r.Context()
	logger := LoggerFromContext(ctx)
	ip := ClientIP(r)

	limited, err := h.limiter.Limited(ctx, ip)
	if err != nil {
		logger.Error("rate limiter failed", "ip", ip, "err", err)
		writeJSON(w, http.StatusInternalServerError, response{Error: msgSendFailed})
		return
	}
	if limited {
		logger.Info("rate limited", "ip", ip)
		writeJSON(w, http.StatusTooManyRequests, response{Error: msgRateLimited})
		return
	}

	p, status, msg := h.decode(w, r)
	if status != 0 {
		writeJSON(w, status, response{Error: msg})
		return
	}

	p, err = ValidateContact(p, LangFromRequest(r))
	if err != nil {
		var fe FieldErrors
		errors.As(err, &fe)
		writeJSON(w, http.StatusBadRequest, response{Error: msgInvalidInput, Fields: fe})
		return
	}

	// Bots get the same answer as people so they cannot learn the trap.
	if p.IsBot() {
		logger.Info("honeypot filled, dropping submission", "ip", ip)
		writeJSON(w, http.StatusOK, response{OK: true})
		return
	}

	meta := Meta{IP: ip, UserAgent: userAgent(r), Received: h.now()}
	if err := h.mailer.Send(ctx, p, meta); err != nil {
		logger.Error("contact send failed", "ip", ip, "err", err)
		writeJSON(w, http.StatusInternalServerError, response{Error: msgSendFailed})
		return
	}

	logger.Info("contact message sent", "ip", ip)
	writeJSON(w, http.StatusOK, response{OK: true})
}

// decode reads the body once, capped at MaxBodyKB. A non-zero status means
// the request must be rejected with msg.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (ContactRequest, int, string) {
	var p ContactRequest

	maxBytes := int64(h.cfg.MaxBodyKB) * 1024
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return p, http.StatusRequestEntityTooLarge, msgTooLarge
		}
		return p, http.StatusBadRequest, msgInvalidInput
	}

	ct := r.Header.Get("Content-Type")
	isJSON := ct == "" || strings.HasPrefix(ct, "application/json")

	switch {
	case isJSON && h.cfg.AllowJSON:
		if err := json.Unmarshal(body, &p); err != nil {
			return p, http.StatusBadRequest, msgInvalidInput
		}
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded") && h.cfg.AllowForm:
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return p, http.StatusBadRequest, msgInvalidInput
		}
		p.Name = form.Get("name")
		p.Email = form.Get("email")
		p.Message = form.Get("message")
		p.Company = form.Get("company")
	default:
		return p, http.StatusUnsupportedMediaType, msgUnsupported
	}
	return p, 0, ""
}

// applyCORS reports false when allowed origins are configured and the
// request carries an Origin that is not on the list.
func (h *Handler) applyCORS(w http.ResponseWriter, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if len(h.cfg.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	for _, ao := range h.cfg.AllowedOrigins {
		switch ao {
		case "*":
			w.Header().Set("Access-Control-Allow-Origin", "*")
			return true
		case origin:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			return true
		}
	}
	return false
}

func userAgent(r *http.Request) string {
	if ua := r.UserAgent(); ua != "" {
		return ua
	}
	return unknownClient
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
