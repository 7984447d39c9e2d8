package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AppContext carries the dependencies the console commands use: the
// daemon's HTTP API address and a shared client.
type AppContext struct {
	BaseURL    string
	Client     *http.Client
	CancelFunc context.CancelFunc
}

func NewAppContext(baseURL string, cancel context.CancelFunc) *AppContext {
	return &AppContext{
		BaseURL:    baseURL,
		Client:     &http.Client{Timeout: 5 * time.Second},
		CancelFunc: cancel,
	}
}

// GetJSON fetches path from the daemon API and decodes the response.
func (a *AppContext) GetJSON(path string, v interface{}) error {
	resp, err := a.Client.Get(a.BaseURL + path)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// PostJSON sends body to path as JSON.
func (a *AppContext) PostJSON(path string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := a.Client.Post(a.BaseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	return nil
}
