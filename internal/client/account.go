package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/anchorvcs/anchor/internal/snapshot"
)

// AccountClient talks to a server's account-level surface: login, repo
// listing/creation, and the favorite toggle. Unlike remoteClient, which
// is scoped to a single repository's /repos/{name} URL, AccountClient is
// scoped to the server root, since these operations don't require (or
// in login's case, precede) a local working copy.
type AccountClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewAccountClient addresses a server at baseURL (e.g.
// "https://anchor.example.com"), optionally already bearing a token from
// a prior Login.
func NewAccountClient(baseURL, token string) *AccountClient {
	return &AccountClient{baseURL: baseURL, token: token, http: &http.Client{Timeout: 30 * time.Second}}
}

// Token returns the bearer token currently held, set by Login or passed
// to NewAccountClient.
func (c *AccountClient) Token() string { return c.token }

func (c *AccountClient) do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "account request")
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var body bytes.Buffer
		body.ReadFrom(resp.Body)
		return nil, apperr.Wrap(fmt.Errorf("%s", body.String()), remoteStatusCode(resp.StatusCode), "server returned "+resp.Status)
	}
	return resp, nil
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Status      string `json:"status"`
	Username    string `json:"username"`
}

// Login authenticates with a password. If the account has 2FA enabled,
// the server responds with status "2fa_required" instead of a token; the
// caller is expected to re-prompt and call LoginTwoFactor with the code.
func (c *AccountClient) Login(ctx context.Context, username, password string) (token string, twoFactorRequired bool, err error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", false, apperr.Wrap(err, apperr.CodeInternal, "build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, apperr.Wrap(err, apperr.CodeInternal, "decode login response")
	}
	if out.Status == "2fa_required" {
		return "", true, nil
	}
	c.token = out.AccessToken
	return out.AccessToken, false, nil
}

// LoginTwoFactor completes a login that Login reported as 2fa_required.
func (c *AccountClient) LoginTwoFactor(ctx context.Context, username, code string) (string, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "code": code})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login/2fa", bytes.NewReader(body))
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "build 2fa login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "decode 2fa login response")
	}
	c.token = out.AccessToken
	return out.AccessToken, nil
}

// SSHChallenge requests a fresh login nonce for username.
func (c *AccountClient) SSHChallenge(ctx context.Context, username string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/ssh-challenge?username="+username, nil)
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "build ssh challenge request")
	}
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		Challenge string `json:"challenge"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "decode ssh challenge")
	}
	return out.Challenge, nil
}

// SSHLogin completes a challenge/response login: signature is the
// base64-encoded signature of the challenge nonce under keyID's key.
func (c *AccountClient) SSHLogin(ctx context.Context, username, keyID, signature string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"username":  username,
		"key_id":    keyID,
		"signature": signature,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/ssh-login", bytes.NewReader(body))
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "build ssh login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "decode ssh login response")
	}
	c.token = out.AccessToken
	return out.AccessToken, nil
}

// ListRepos returns every repository's metadata known to the server.
func (c *AccountClient) ListRepos(ctx context.Context) ([]snapshot.Meta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/repos/", nil)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "build list request")
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var metas []snapshot.Meta
	if err := json.NewDecoder(resp.Body).Decode(&metas); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "decode repo list")
	}
	return metas, nil
}

// Sys fetches a single repository's metadata - a minimal reachability
// and identity probe ("is this server up, does this repo exist, what
// does it think its name/visibility are").
func (c *AccountClient) Sys(ctx context.Context, repoName string) (snapshot.Meta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/repos/"+repoName, nil)
	if err != nil {
		return snapshot.Meta{}, apperr.Wrap(err, apperr.CodeInternal, "build sys request")
	}
	resp, err := c.do(req)
	if err != nil {
		return snapshot.Meta{}, err
	}
	defer resp.Body.Close()

	var meta snapshot.Meta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return snapshot.Meta{}, apperr.Wrap(err, apperr.CodeInternal, "decode sys response")
	}
	return meta, nil
}

// CreateRepo creates a new, empty repository named name on the server.
func (c *AccountClient) CreateRepo(ctx context.Context, name string) error {
	body, _ := json.Marshal(map[string]string{"name": name})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/repos/", bytes.NewReader(body))
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "build create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// SetFavorite toggles repoName's favorite flag.
func (c *AccountClient) SetFavorite(ctx context.Context, repoName string, isFavorite bool) error {
	url := c.baseURL + "/repos/" + repoName + "/favorite?is_favorite=" + strconv.FormatBool(isFavorite)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, nil)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "build favorite request")
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
