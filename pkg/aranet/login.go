package aranet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Authenticator performs the login request against the cloud. It never
// retries on its own; the single auth-triggered retry lives in Client.
type Authenticator struct {
	cfg    *Config
	client *http.Client
	log    *zap.Logger
	clock  clockwork.Clock
}

// Login authenticates with the configured credentials and returns a fresh
// session. Every failure mode, network or service, surfaces as an
// AuthenticationError carrying the cause.
func (a *Authenticator) Login(ctx context.Context) (*Session, error) {
	a.log.Info("making login request to Aranet cloud")

	body, err := json.Marshal(map[string]string{
		"login": a.cfg.Username,
		"passw": a.cfg.Password,
	})
	if err != nil {
		return nil, &AuthenticationError{Reason: "cannot encode login payload", Err: err}
	}

	url := a.cfg.Endpoint + "/user/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &AuthenticationError{Reason: "cannot build login request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &AuthenticationError{Reason: "login request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AuthenticationError{Reason: "cannot read login response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &AuthenticationError{
			Reason: fmt.Sprintf("login rejected; [%d] %s", resp.StatusCode, excerpt(raw)),
		}
	}

	var login LoginResponse
	if err := json.Unmarshal(raw, &login); err != nil {
		return nil, &AuthenticationError{Reason: "cannot decode login response", Err: err}
	}
	if login.Auth == "" {
		return nil, &AuthenticationError{Reason: "login response carries no auth token"}
	}

	return &Session{Token: login.Auth, ObtainedAt: a.clock.Now(), Login: &login}, nil
}

// resolveSpaceID maps the configured space name to its id using the spaces
// listed in the login payload. With a single space the id is used even when
// the name does not match, with a warning, matching how the cloud behaves
// for single-space accounts.
func resolveSpaceID(login *LoginResponse, spaceName string, log *zap.Logger) (string, error) {
	if login == nil || len(login.Spaces) == 0 {
		return "", &ConfigError{Reason: "Aranet cloud space list is empty"}
	}

	if len(login.Spaces) == 1 {
		for id, name := range login.Spaces {
			if name != spaceName {
				log.Warn("Aranet cloud space name mismatch",
					zap.String("expected", spaceName),
					zap.String("actual", name),
				)
			}
			return id, nil
		}
	}

	var matches []string
	for id, name := range login.Spaces {
		if name == spaceName {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", &ConfigError{Reason: fmt.Sprintf("space %q not found in Aranet cloud space list", spaceName)}
	case 1:
		return matches[0], nil
	default:
		return "", &ConfigError{Reason: fmt.Sprintf("more than one Aranet cloud space named %q", spaceName)}
	}
}
