package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"feeadmin/internal/log"
	"feeadmin/internal/session"
)

// refreshTransport injects the session's access token into outbound
// requests and, on an unauthorized response, exchanges the refresh
// credential for a new pair and retries the original request exactly once.
// If the exchange fails or no refresh credential is held, the session is
// cleared and ErrSessionExpired is returned.
//
// Concurrent 401s are not coalesced: a burst of parallel requests may each
// trigger its own refresh. The platform tolerates this; the last exchange
// to complete wins the stored pair.
type refreshTransport struct {
	base       http.RoundTripper
	session    *session.Store
	refreshURL string
	log        *log.Logger
}

func (t *refreshTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	outreq := req.Clone(req.Context())
	if token := t.session.AccessToken(); token != "" {
		outreq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(outreq)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	resp.Body.Close()

	refresh := t.session.RefreshToken()
	if refresh == "" {
		_ = t.session.Clear()
		return nil, ErrSessionExpired
	}

	tokens, err := t.exchange(req)
	if err != nil {
		_ = t.session.Clear()
		t.log.Warn("credential refresh failed, session cleared", log.FieldError, err)
		return nil, fmt.Errorf("%w (refresh: %v)", ErrSessionExpired, err)
	}
	if err := t.session.Set(tokens); err != nil {
		t.log.Warn("could not persist refreshed session", log.FieldError, err)
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body for retry: %w", err)
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	return t.base.RoundTrip(retry)
}

// exchange posts the held refresh token to the token endpoint and returns
// the new credential pair.
func (t *refreshTransport) exchange(orig *http.Request) (session.Tokens, error) {
	payload, err := json.Marshal(map[string]string{
		"refresh_token": t.session.RefreshToken(),
	})
	if err != nil {
		return session.Tokens{}, err
	}

	req, err := http.NewRequestWithContext(orig.Context(), http.MethodPost, t.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return session.Tokens{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return session.Tokens{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return session.Tokens{}, decodeError(resp)
	}
	var tokens session.Tokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return session.Tokens{}, fmt.Errorf("decode refresh response: %w", err)
	}
	if tokens.AccessToken == "" {
		return session.Tokens{}, fmt.Errorf("refresh response missing access token")
	}
	return tokens, nil
}
