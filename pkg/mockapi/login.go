package mockapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type loginResponse struct {
	User  loginUser `json:"user"`
	Token string    `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.loginDelay > 0 {
		select {
		case <-time.After(s.loginDelay):
		case <-r.Context().Done():
			return
		}
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, MsgEmailInvalid)
		return
	}

	if msg := validateCredentials(req.Email, req.Password); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if len(s.accounts) > 0 {
		account, ok := s.accounts[req.Email]
		if !ok || bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
			writeError(w, http.StatusUnauthorized, MsgBadCredentials)
			return
		}
	}

	name := req.Email
	if at := strings.Index(req.Email, "@"); at > 0 {
		name = req.Email[:at]
	}
	user := loginUser{ID: "1", Email: req.Email, Name: name}

	token, err := s.issueToken(user)
	if err != nil {
		s.logger.Error("token issuance failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{User: user, Token: token})
}

func validateCredentials(email, password string) string {
	if len(email) < 8 {
		return MsgEmailTooShort
	}
	if len(password) < 8 {
		return MsgPasswordTooShort
	}
	if !emailPattern.MatchString(email) {
		return MsgEmailInvalid
	}
	return ""
}

func (s *Server) issueToken(user loginUser) (string, error) {
	if len(s.secret) == 0 {
		return FakeToken, nil
	}
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.Name,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
