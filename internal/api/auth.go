package api

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
)

type otpRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *Handler) handleRequestOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondJSON(w, http.StatusBadRequest,
			errorResponse{Error: "invalid request body"})
		return
	}

	email, ok := normalizeEmail(req.Email)
	if !ok {
		h.respondJSON(w, http.StatusBadRequest,
			errorResponse{Error: "invalid email address"})
		return
	}

	if err := h.otp.Issue(r.Context(), email); err != nil {
		h.log.ErrorContext(r.Context(), "issue passcode",
			slog.String("error", err.Error()))
		h.respondJSON(w, http.StatusInternalServerError,
			errorResponse{Error: "failed to issue verification code"})
		return
	}

	h.respondJSON(w, http.StatusAccepted, map[string]string{
		"message": "verification code sent",
		"email":   email,
	})
}

func (h *Handler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondJSON(w, http.StatusBadRequest,
			errorResponse{Error: "invalid request body"})
		return
	}

	email, ok := normalizeEmail(req.Email)
	if !ok {
		h.respondJSON(w, http.StatusBadRequest,
			errorResponse{Error: "invalid email address"})
		return
	}

	if !h.otp.Verify(r.Context(), email, req.OTP) {
		h.respondJSON(w, http.StatusUnauthorized,
			errorResponse{Error: "invalid or expired verification code"})
		return
	}

	tok, ttl, err := h.tokens.Issue(email)
	if err != nil {
		h.log.ErrorContext(r.Context(), "issue token",
			slog.String("error", err.Error()))
		h.respondJSON(w, http.StatusInternalServerError,
			errorResponse{Error: "failed to issue token"})
		return
	}

	h.respondJSON(w, http.StatusOK, tokenResponse{
		AccessToken: tok,
		TokenType:   "bearer",
		ExpiresIn:   int64(ttl.Seconds()),
	})
}

// normalizeEmail accepts a bare RFC 5322 address and lowercases it.
// Display-name forms like "Bob <bob@x.com>" are rejected.
func normalizeEmail(s string) (string, bool) {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", false
	}
	return strings.ToLower(s), true
}
