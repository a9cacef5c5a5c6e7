// Copyright (C) 2025 zajel-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// Package httprelay implements relaytransport.Client over HTTP POST for
// announce/fetch/send and a WebSocket stream for upstream receive,
// grounded on the teacher's HTTP and WebSocket transport clients.
package httprelay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zajel/zajel/model"
	"github.com/zajel/zajel/relaytransport"
)

// Relay implements relaytransport.Client against a single relay node
// reachable at baseURL (e.g. "https://relay.example.com").
type Relay struct {
	baseURL    string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

// New returns a Relay using a default 30s-timeout HTTP client.
func New(baseURL string) *Relay {
	return &Relay{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		dialer:     websocket.DefaultDialer,
	}
}

// NewWithClient returns a Relay using a caller-supplied HTTP client,
// e.g. to customise TLS configuration or add retry middleware.
func NewWithClient(baseURL string, httpClient *http.Client) *Relay {
	return &Relay{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		dialer:     websocket.DefaultDialer,
	}
}

type announceRequest struct {
	ChannelID string      `json:"channel_id"`
	Chunk     model.Chunk `json:"chunk"`
}

// Announce publishes chunk under channelID, fire-and-forget: a non-2xx
// response is reported, but the caller is not expected to retry here.
func (r *Relay) Announce(ctx context.Context, channelID string, chunk model.Chunk) error {
	body, err := json.Marshal(announceRequest{ChannelID: channelID, Chunk: chunk})
	if err != nil {
		return fmt.Errorf("marshal announce request: %w", err)
	}
	resp, err := r.post(ctx, "/announce", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("announce: unexpected status %d", resp.StatusCode)
	}
	return nil
}

type fetchResponse struct {
	Chunks []model.Chunk     `json:"chunks"`
	Result model.FetchResult `json:"result"`
}

// Fetch retrieves the chunks known for routingHash at epochLabel.
func (r *Relay) Fetch(ctx context.Context, routingHash, epochLabel string) ([]model.Chunk, model.FetchResult, error) {
	path := fmt.Sprintf("/fetch?routing_hash=%s&epoch=%s", routingHash, epochLabel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return nil, model.FetchNetworkError, fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, model.FetchNetworkError, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, model.FetchBlocked, nil
	}
	if resp.StatusCode/100 != 2 {
		return nil, model.FetchNetworkError, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.FetchNetworkError, nil
	}

	var parsed fetchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, model.FetchNetworkError, fmt.Errorf("decode fetch response: %w", err)
	}
	if len(parsed.Chunks) == 0 {
		return nil, model.FetchEmpty, nil
	}
	return parsed.Chunks, model.FetchSuccess, nil
}

type sendRequest struct {
	ChannelID             string                 `json:"channel_id"`
	Envelope              model.UpstreamEnvelope `json:"envelope"`
	EphemeralAgreementPub string                 `json:"ephemeral_agreement_public"`
}

// Send delivers a sealed upstream envelope to channelID's owner.
func (r *Relay) Send(ctx context.Context, channelID string, envelope model.UpstreamEnvelope, ephemeralAgreementPub string) error {
	body, err := json.Marshal(sendRequest{
		ChannelID:             channelID,
		Envelope:              envelope,
		EphemeralAgreementPub: ephemeralAgreementPub,
	})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}
	resp, err := r.post(ctx, "/upstream/send", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("send: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Receive opens a WebSocket stream of upstream frames addressed to
// channelID's owner and writes them onto frames until ctx is cancelled or
// the connection fails.
func (r *Relay) Receive(ctx context.Context, channelID string, frames chan<- relaytransport.UpstreamFrame) error {
	wsURL := toWebSocketURL(r.baseURL) + "/upstream/receive?channel_id=" + channelID

	conn, _, err := r.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial upstream receive stream: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var frame relaytransport.UpstreamFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read upstream frame: %w", err)
		}
		select {
		case frames <- frame:
		case <-ctx.Done():
			return nil
		}
	}
}

func (r *Relay) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return r.httpClient.Do(req)
}

func toWebSocketURL(httpURL string) string {
	switch {
	case strings.HasPrefix(httpURL, "https://"):
		return "wss://" + strings.TrimPrefix(httpURL, "https://")
	case strings.HasPrefix(httpURL, "http://"):
		return "ws://" + strings.TrimPrefix(httpURL, "http://")
	default:
		return httpURL
	}
}
