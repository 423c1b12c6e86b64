// Package httpstore implements storage.MessageStore against a running feed
// service. Calls are not retried; transport failures are returned wrapped.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/CaioAP/scuderia/internal/auth"
	"github.com/CaioAP/scuderia/internal/models"
	"github.com/CaioAP/scuderia/internal/storage"
)

const tokenTTL = 5 * time.Minute

// StatusError is returned for unexpected response codes.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("feed service returned %d", e.Code)
	}
	return fmt.Sprintf("feed service returned %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL string
	signer  *auth.Signer
	http    *http.Client
	// Users resolves viewer ids to the identity carried in the token.
	// Unknown ids are sent with the id alone.
	Users map[int64]*models.User
}

func New(baseURL string, signer *auth.Signer, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		signer:  signer,
		http:    hc,
		Users:   map[int64]*models.User{},
	}
}

func (c *Client) user(id int64) *models.User {
	if u, ok := c.Users[id]; ok && u != nil {
		return u
	}
	return &models.User{ID: id}
}

func (c *Client) do(ctx context.Context, as *models.User, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.signer.Sign(as, tokenTTL)
	if err != nil {
		return fmt.Errorf("sign request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(io.LimitReader(res.Body, 4096)).Decode(&e)
		switch res.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s %s: %w", method, path, storage.ErrNotFound)
		case http.StatusBadRequest:
			return fmt.Errorf("%s %s: %w: %s", method, path, storage.ErrInvalidInput, e.Error)
		}
		return fmt.Errorf("%s %s: %w", method, path, &StatusError{Code: res.StatusCode, Message: e.Error})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) List(ctx context.Context, viewerID int64) ([]*models.Message, error) {
	var items []*models.Message
	if err := c.do(ctx, c.user(viewerID), http.MethodGet, "/api/v1/messages", nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Message{}
	}
	return items, nil
}

func (c *Client) Like(ctx context.Context, viewerID, messageID int64) error {
	return c.do(ctx, c.user(viewerID), http.MethodPost, likePath(messageID), nil, nil)
}

func (c *Client) Unlike(ctx context.Context, viewerID, messageID int64) error {
	return c.do(ctx, c.user(viewerID), http.MethodDelete, likePath(messageID), nil, nil)
}

func (c *Client) Create(ctx context.Context, author *models.User, content string) (*models.Message, error) {
	if err := storage.ValidateCreate(author, content); err != nil {
		return nil, err
	}
	var m models.Message
	body := map[string]string{"content": content}
	if err := c.do(ctx, author, http.MethodPost, "/api/v1/messages", body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func likePath(id int64) string {
	return "/api/v1/messages/" + strconv.FormatInt(id, 10) + "/like"
}
