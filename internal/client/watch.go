package client

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"classboard/internal/domain"
	"classboard/internal/websocket"

	ws "github.com/gorilla/websocket"
)

// Watch connects to the realtime feed and delivers every invalidation sent to
// this instructor's other clients. The channel closes when ctx ends or the
// connection drops.
func (c *Client) Watch(ctx context.Context) (<-chan domain.ChangeEvent, error) {
	target, err := c.watchURL()
	if err != nil {
		return nil, err
	}

	dialer := ws.Dialer{
		HandshakeTimeout: 15 * time.Second,
	}

	headers := http.Header{}
	headers.Set(clientIDHeader, c.clientID)

	conn, resp, err := dialer.DialContext(ctx, target, headers)
	if err != nil {
		if resp != nil {
			return nil, rejection(resp.StatusCode, nil)
		}
		return nil, fmt.Errorf("dial realtime feed: %w", err)
	}

	events := make(chan domain.ChangeEvent, 16)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer close(events)
		defer conn.Close()

		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil && ws.IsUnexpectedCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) {
					log.Printf("[watch] realtime feed closed: %v", err)
				}
				return
			}

			msgs, err := websocket.SplitFrame(frame)
			if err != nil {
				log.Printf("[watch] malformed frame: %v", err)
			}
			for _, msg := range msgs {
				if msg.Type != websocket.TypeInvalidate {
					continue
				}
				var event domain.ChangeEvent
				if err := msg.UnmarshalPayload(&event); err != nil {
					log.Printf("[watch] malformed invalidation: %v", err)
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

func (c *Client) watchURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"

	q := url.Values{}
	q.Set("token", c.token)
	q.Set("client_id", c.clientID)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
