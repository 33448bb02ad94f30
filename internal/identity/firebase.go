package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"

	"github.com/stratlink-defense/api/internal/platform/auth"
)

const (
	defaultSignInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"
	defaultHTTPTimeout    = 10 * time.Second
	maxProviderResponse   = 1 << 20
)

// FirebaseProvider implements Provider on top of the Firebase Admin SDK plus
// the Identity Toolkit REST endpoint. The Admin SDK has no password grant, so
// sign-in goes through the same REST call browser SDKs use.
type FirebaseProvider struct {
	admin          *auth.FirebaseVerifier
	apiKey         string
	signInEndpoint string
	httpClient     *http.Client
}

// FirebaseProviderDeps lists the dependencies for NewFirebaseProvider.
type FirebaseProviderDeps struct {
	Admin          *auth.FirebaseVerifier
	WebAPIKey      string
	SignInEndpoint string
	HTTPClient     *http.Client
}

// NewFirebaseProvider validates dependencies and builds the provider.
func NewFirebaseProvider(deps FirebaseProviderDeps) (*FirebaseProvider, error) {
	if deps.Admin == nil {
		return nil, errors.New("firebase provider: admin client is required")
	}
	if strings.TrimSpace(deps.WebAPIKey) == "" {
		return nil, errors.New("firebase provider: web api key is required")
	}

	endpoint := strings.TrimSpace(deps.SignInEndpoint)
	if endpoint == "" {
		endpoint = defaultSignInEndpoint
	}
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}

	return &FirebaseProvider{
		admin:          deps.Admin,
		apiKey:         strings.TrimSpace(deps.WebAPIKey),
		signInEndpoint: endpoint,
		httpClient:     client,
	}, nil
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type providerErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn exchanges an email/password pair for provider session tokens.
func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	if p == nil {
		return Session{}, errors.New("firebase provider: not initialised")
	}

	body, err := json.Marshal(signInRequest{
		Email:             strings.TrimSpace(email),
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return Session{}, fmt.Errorf("firebase provider: encode sign-in request: %w", err)
	}

	endpoint := p.signInEndpoint + "?key=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("firebase provider: build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("firebase provider: sign-in call: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderResponse))
	if err != nil {
		return Session{}, fmt.Errorf("firebase provider: read sign-in response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Session{}, providerErrorFromResponse(resp.StatusCode, payload)
	}

	var parsed signInResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return Session{}, fmt.Errorf("firebase provider: decode sign-in response: %w", err)
	}
	if parsed.LocalID == "" || parsed.IDToken == "" {
		return Session{}, errors.New("firebase provider: incomplete sign-in response")
	}

	expires := time.Duration(0)
	if seconds, err := strconv.Atoi(parsed.ExpiresIn); err == nil {
		expires = time.Duration(seconds) * time.Second
	}

	return Session{
		UID:          parsed.LocalID,
		Email:        parsed.Email,
		DisplayName:  parsed.DisplayName,
		IDToken:      parsed.IDToken,
		RefreshToken: parsed.RefreshToken,
		ExpiresIn:    expires,
	}, nil
}

// Register provisions a provider account through the Admin SDK.
func (p *FirebaseProvider) Register(ctx context.Context, user NewUser) (Account, error) {
	if p == nil {
		return Account{}, errors.New("firebase provider: not initialised")
	}

	record, err := p.admin.CreateUser(ctx, strings.TrimSpace(user.Email), user.Password, strings.TrimSpace(user.DisplayName))
	if err != nil {
		return Account{}, providerErrorFromAdmin(err)
	}
	return accountFromRecord(record), nil
}

// Revoke invalidates every refresh token issued to the UID.
func (p *FirebaseProvider) Revoke(ctx context.Context, uid string) error {
	if p == nil {
		return errors.New("firebase provider: not initialised")
	}
	if err := p.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		return providerErrorFromAdmin(err)
	}
	return nil
}

func accountFromRecord(record *firebaseauth.UserRecord) Account {
	if record == nil || record.UserInfo == nil {
		return Account{}
	}
	return Account{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
	}
}

func providerErrorFromResponse(status int, payload []byte) error {
	var parsed providerErrorResponse
	if err := json.Unmarshal(payload, &parsed); err == nil && parsed.Error.Message != "" {
		return &ProviderError{
			Code:    parsed.Error.Message,
			Message: parsed.Error.Message,
			Status:  status,
		}
	}
	return &ProviderError{
		Code:    "provider_error",
		Message: http.StatusText(status),
		Status:  status,
	}
}

func providerErrorFromAdmin(err error) error {
	if err == nil {
		return nil
	}
	status := http.StatusBadGateway
	switch {
	case firebaseauth.IsEmailAlreadyExists(err):
		status = http.StatusConflict
	case firebaseauth.IsUserNotFound(err):
		status = http.StatusNotFound
	}
	return &ProviderError{
		Code:    "provider_error",
		Message: err.Error(),
		Status:  status,
	}
}
