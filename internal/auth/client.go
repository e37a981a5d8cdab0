package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/educontrol/educontrol/internal/rbac"
)

// DefaultLoginPath is the login route of the school API.
const DefaultLoginPath = "/usuarios/login"

// Authenticator exchanges credentials with the remote authentication endpoint.
type Authenticator interface {
	Authenticate(ctx context.Context, credential, secret string) (Identity, error)
}

// Client talks to the school API's login endpoint.
type Client struct {
	baseURL    string
	loginPath  string
	httpClient *http.Client
}

// NewClient constructs a new client. A zero timeout leaves the transport default.
func NewClient(baseURL, loginPath string, timeout time.Duration) *Client {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		loginPath: "/" + strings.TrimLeft(loginPath, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type loginRequest struct {
	Email    string `json:"correo"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success     bool       `json:"success"`
	UserID      flexString `json:"id_usuario"`
	Role        string     `json:"tipo_usuario"`
	DisplayName flexString `json:"nombre"`
	SubjectID   flexString `json:"rut"`
}

// Authenticate performs exactly one login request. Failures wrap
// ErrAuthenticationRejected or ErrTransportUnavailable.
func (c *Client) Authenticate(ctx context.Context, credential, secret string) (Identity, error) {
	body, err := json.Marshal(loginRequest{Email: credential, Password: secret})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: encode request: %v", ErrTransportUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.loginPath, bytes.NewReader(body))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: build request: %v", ErrTransportUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return Identity{}, fmt.Errorf("%w: status %d", ErrTransportUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Identity{}, fmt.Errorf("%w: status %d", ErrAuthenticationRejected, resp.StatusCode)
	}

	var payload loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return Identity{}, fmt.Errorf("%w: decode response: %v", ErrTransportUnavailable, err)
	}
	return payload.identity()
}

func (p loginResponse) identity() (Identity, error) {
	if !p.Success {
		return Identity{}, fmt.Errorf("%w: success flag not set", ErrAuthenticationRejected)
	}
	if strings.TrimSpace(p.Role) == "" {
		return Identity{}, fmt.Errorf("%w: role missing", ErrAuthenticationRejected)
	}
	role, ok := rbac.ParseRole(p.Role)
	if !ok {
		return Identity{}, fmt.Errorf("%w: unknown role %q", ErrAuthenticationRejected, p.Role)
	}
	userID := strings.TrimSpace(string(p.UserID))
	if userID == "" {
		return Identity{}, fmt.Errorf("%w: user id missing", ErrAuthenticationRejected)
	}
	return Identity{
		UserID:      userID,
		Role:        role,
		DisplayName: string(p.DisplayName),
		SubjectID:   string(p.SubjectID),
	}, nil
}

// flexString accepts a JSON string, number or null. The school API sends
// ids as either.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("auth: expected string or number, got %s", trimmed)
	}
	*f = flexString(n.String())
	return nil
}

var _ Authenticator = (*Client)(nil)
