package servicetwin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /user/login
func (t *Twin) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	password, ok := t.config.Users[req.Email]
	if !ok || password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token, err := t.IssueToken(req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}

// IssueToken returns a signed token for the given subject, as a successful login would.
func (t *Twin) IssueToken(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.config.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.config.SigningKey)
}

func (t *Twin) validateToken(tokenStr string) error {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.config.SigningKey, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

func (t *Twin) bearerAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token == "" {
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}
		if err := t.validateToken(token); err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
