package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/podcastify/podcastify-api/internal/models"
	"github.com/podcastify/podcastify-api/internal/resource"
	"github.com/podcastify/podcastify-api/internal/respond"
	"github.com/podcastify/podcastify-api/internal/store"
)

// AccountStore defines the identity provider's account persistence.
type AccountStore interface {
	CreateAccount(ctx context.Context, email, hashedPw string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

// Revoker records logged-out tokens.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	tokens   *Tokens
	accounts AccountStore
	revoker  Revoker
	log      *zap.Logger
}

func NewHandler(tokens *Tokens, accounts AccountStore, revoker Revoker, log *zap.Logger) *Handler {
	return &Handler{tokens: tokens, accounts: accounts, revoker: revoker, log: log}
}

// IssueToken signs whatever claims the client sends. The claims are not
// checked against the user store.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	claims := map[string]interface{}{}
	if !respond.Decode(w, r, &claims) {
		return
	}
	token, err := h.tokens.Issue(claims)
	if err != nil {
		respond.ServerError(w, r, h.log, "Failed to issue token", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"token": token})
}

// Register creates an identity-provider account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := resource.Validate(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.ServerError(w, r, h.log, "internal error", err)
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), req.Email, string(hashed))
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			respond.Error(w, http.StatusConflict, "account already exists")
			return
		}
		respond.ServerError(w, r, h.log, "Failed to create account", err)
		return
	}

	respond.JSON(w, http.StatusCreated, account)
}

// Login checks credentials and returns a token carrying the account's email and uid.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := resource.Validate(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.accounts.GetAccountByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		respond.ServerError(w, r, h.log, "Failed to sign in", err)
		return
	}
	if account == nil || bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)) != nil {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(map[string]interface{}{"email": account.Email, "uid": account.UID})
	if err != nil {
		respond.ServerError(w, r, h.log, "Failed to issue token", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"token": token, "uid": account.UID, "email": account.Email})
}

// Logout revokes the presented token. Must run behind the auth gate.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized access")
		return
	}
	if jti := TokenID(claims); jti != "" {
		if err := h.revoker.Revoke(r.Context(), jti, h.tokens.Remaining(claims)); err != nil {
			respond.ServerError(w, r, h.log, "Failed to log out", err)
			return
		}
	}
	respond.Message(w, http.StatusOK, "logged out")
}
