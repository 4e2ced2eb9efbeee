// Package session consumes the admin session issued by the travel backend.
// It never issues tokens; it only reads them so the dashboard knows who is
// acting and can forward the credential upstream.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"tripdesk/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Username string   `json:"username"`
	UserID   string   `json:"userId"`
	Role     []string `json:"role"`
	jwt.RegisteredClaims
}

// Data is what the dashboard knows about the signed-in admin.
type Data struct {
	AccessToken string
	Claims      *Claims
}

// Actor names the admin for the audit trail.
func (d *Data) Actor() string {
	if d == nil || d.Claims == nil {
		return "anonymous"
	}
	if d.Claims.Username != "" {
		return d.Claims.Username
	}
	if d.Claims.UserID != "" {
		return d.Claims.UserID
	}
	return "anonymous"
}

var (
	ErrMissingToken = errors.New("missing token")
	ErrExpired      = errors.New("session expired")
)

// Parse reads a token. With a secret the signature is verified; without one
// the token is only decoded, since the backend verifies it on every call.
func Parse(token string, secret []byte) (*Data, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	var err error
	if len(secret) > 0 {
		_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		})
	} else {
		_, _, err = jwt.NewParser().ParseUnverified(token, claims)
		if err == nil {
			err = jwt.NewValidator().Validate(claims)
		}
	}
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return &Data{AccessToken: token, Claims: claims}, nil
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return h[7:]
	}
	if websocket.IsWebSocketUpgrade(r) {
		if tok := r.URL.Query().Get("token"); tok != "" {
			return tok
		}
	}
	if c, err := r.Cookie("session"); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate rejects requests without a usable session and stores the
// session in the request context.
func Authenticate(secret []byte) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			data, err := Parse(tokenFromRequest(r), secret)
			if err != nil {
				status := http.StatusUnauthorized
				msg := "Invalid token"
				switch {
				case errors.Is(err, ErrMissingToken):
					msg = "Missing token"
				case errors.Is(err, ErrExpired):
					msg = "Session expired"
				}
				http.Error(w, msg, status)
				return
			}
			next(w, r.WithContext(NewContext(r.Context(), data)), ps)
		}
	}
}

func NewContext(ctx context.Context, d *Data) context.Context {
	return context.WithValue(ctx, globals.SessionKey, d)
}

func FromContext(ctx context.Context) *Data {
	d, _ := ctx.Value(globals.SessionKey).(*Data)
	return d
}

// Token returns the bearer credential to forward upstream, or "".
func Token(ctx context.Context) string {
	if d := FromContext(ctx); d != nil {
		return d.AccessToken
	}
	return ""
}
