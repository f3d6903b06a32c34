// Package main provides a CI-friendly smoke test against a running postboard
// server.
//
// It validates:
//   - signup + login over HTTP
//   - websocket handshake with subprotocol selection
//   - ping/pong
//   - post create -> post.created event for the owner only
//   - cached list on the second read
//   - post delete -> post.deleted event
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
)

const (
	subprotocol  = "postboard.events.v1"
	wireVersion  = "v1"
	maxReadBytes = 64 << 10
)

type envelope struct {
	V       string    `json:"v"`
	Type    string    `json:"type"`
	ID      string    `json:"id,omitempty"`
	PostID  int64     `json:"postID,omitempty"`
	TS      time.Time `json:"ts,omitzero"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message,omitempty"`
}

type smokeClient struct {
	name  string
	base  string
	token string
	conn  *websocket.Conn

	inbox chan envelope
	errCh chan error
}

func main() {
	var (
		baseURL = flag.String("url", "http://127.0.0.1:8000", "Server base URL")
		origin  = flag.String("origin", "http://localhost", "Origin header to send on the websocket handshake")
		text    = flag.String("text", "hello postboard", "Post text to create")
		timeout = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		verbose = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if err := validateBaseURL(*baseURL); err != nil {
		fatalf("invalid -url: %v", err)
	}
	root := context.Background()
	stamp := strconv.FormatInt(time.Now().UnixNano(), 36)

	a := &smokeClient{name: "A", base: strings.TrimRight(*baseURL, "/")}
	b := &smokeClient{name: "B", base: a.base}
	a.mustSignupAndLogin(root, "smoke-a-"+stamp+"@example.com", "smoke-pass-1", *timeout)
	b.mustSignupAndLogin(root, "smoke-b-"+stamp+"@example.com", "smoke-pass-2", *timeout)

	a.mustConnect(root, *origin, *timeout)
	defer closeWS(a.conn)
	b.mustConnect(root, *origin, *timeout)
	defer closeWS(b.conn)

	a.mustPing(root, *timeout)

	postID := a.mustCreate(root, *text, *timeout)
	created := a.mustReadUntilType(root, "post.created", *timeout)
	if created.PostID != postID {
		fatalf("post.created id mismatch: got=%d want=%d", created.PostID, postID)
	}
	if *verbose {
		fmt.Printf("created post %d\n", postID)
	}

	if cached := a.mustList(root, *timeout); cached {
		fatalf("first list after create should not be cached")
	}
	if cached := a.mustList(root, *timeout); !cached {
		fatalf("second list should be served from cache")
	}

	a.mustDelete(root, postID, *timeout)
	deleted := a.mustReadUntilType(root, "post.deleted", *timeout)
	if deleted.PostID != postID {
		fatalf("post.deleted id mismatch: got=%d want=%d", deleted.PostID, postID)
	}

	b.mustAssertQuiet(root, 1200*time.Millisecond)

	fmt.Printf("OK: post_id=%d\n", postID)
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("missing host")
	}
	return nil
}

func wsURL(base string) string {
	if rest, ok := strings.CutPrefix(base, "https://"); ok {
		return "wss://" + rest + "/ws"
	}
	return "ws://" + strings.TrimPrefix(base, "http://") + "/ws"
}

func (c *smokeClient) do(parent context.Context, method, path string, body any, stepTimeout time.Duration) (int, []byte) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			fatalf("marshal request: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		fatalf("build request %s %s: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fatalf("%s %s (%s): %v", method, path, c.name, err)
	}
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	if err != nil {
		fatalf("read body %s %s (%s): %v", method, path, c.name, err)
	}
	return res.StatusCode, out
}

func (c *smokeClient) mustSignupAndLogin(parent context.Context, email, pw string, stepTimeout time.Duration) {
	creds := map[string]string{"email": email, "password": pw}

	status, body := c.do(parent, http.MethodPost, "/auth/signup", creds, stepTimeout)
	if status != http.StatusCreated {
		fatalf("signup (%s): status=%d body=%s", c.name, status, body)
	}
	status, body = c.do(parent, http.MethodPost, "/auth/login", creds, stepTimeout)
	if status != http.StatusOK {
		fatalf("login (%s): status=%d body=%s", c.name, status, body)
	}

	var tok struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		fatalf("unmarshal login response (%s): %v", c.name, err)
	}
	if tok.Token == "" || tok.TokenType != "bearer" {
		fatalf("login response malformed (%s): %s", c.name, body)
	}
	c.token = tok.Token
}

func (c *smokeClient) mustCreate(parent context.Context, text string, stepTimeout time.Duration) int64 {
	status, body := c.do(parent, http.MethodPost, "/posts", map[string]string{"text": text}, stepTimeout)
	if status != http.StatusCreated {
		fatalf("create post (%s): status=%d body=%s", c.name, status, body)
	}
	var out struct {
		PostID int64 `json:"postID"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		fatalf("unmarshal create response (%s): %v", c.name, err)
	}
	if out.PostID <= 0 {
		fatalf("create response missing postID (%s): %s", c.name, body)
	}
	return out.PostID
}

func (c *smokeClient) mustList(parent context.Context, stepTimeout time.Duration) (cached bool) {
	status, body := c.do(parent, http.MethodGet, "/posts", nil, stepTimeout)
	if status != http.StatusOK {
		fatalf("list posts (%s): status=%d body=%s", c.name, status, body)
	}
	var out struct {
		Total  int  `json:"total"`
		Cached bool `json:"cached"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		fatalf("unmarshal list response (%s): %v", c.name, err)
	}
	return out.Cached
}

func (c *smokeClient) mustDelete(parent context.Context, id int64, stepTimeout time.Duration) {
	status, body := c.do(parent, http.MethodDelete, "/posts/"+strconv.FormatInt(id, 10), nil, stepTimeout)
	if status != http.StatusOK {
		fatalf("delete post (%s): status=%d body=%s", c.name, status, body)
	}
}

func (c *smokeClient) mustConnect(parent context.Context, origin string, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.token)
	if strings.TrimSpace(origin) != "" {
		h.Set("Origin", origin)
	}

	conn, resp, err := websocket.Dial(ctx, wsURL(c.base), &websocket.DialOptions{
		Subprotocols: []string{subprotocol},
		HTTPHeader:   h,
	})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		fatalf("connect %s: %v", c.name, err)
	}
	if got := conn.Subprotocol(); got != subprotocol {
		fatalf("subprotocol mismatch: got=%q want=%q", got, subprotocol)
	}

	conn.SetReadLimit(maxReadBytes)
	c.conn = conn
	c.inbox = make(chan envelope, 64)
	c.errCh = make(chan error, 1)
	c.startReadLoop()
}

func (c *smokeClient) startReadLoop() {
	go func() {
		defer close(c.inbox)

		for {
			_, data, err := c.conn.Read(context.Background())
			if err != nil {
				select {
				case c.errCh <- err:
				default:
				}
				return
			}

			var env envelope
			if err := json.Unmarshal(data, &env); err != nil {
				select {
				case c.errCh <- fmt.Errorf("bad json: %w", err):
				default:
				}
				return
			}
			if env.V != wireVersion {
				select {
				case c.errCh <- fmt.Errorf("unexpected protocol version %q", env.V):
				default:
				}
				return
			}

			select {
			case c.inbox <- env:
			default:
				select {
				case c.errCh <- errors.New("inbox overflow: consumer too slow"):
				default:
				}
				return
			}
		}
	}()
}

func (c *smokeClient) mustPing(parent context.Context, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	b, err := json.Marshal(envelope{V: wireVersion, Type: "ping", ID: c.name + "-ping"})
	if err != nil {
		fatalf("marshal ping: %v", err)
	}
	if err := c.conn.Write(ctx, websocket.MessageText, b); err != nil {
		fatalf("write ping (%s): %v", c.name, err)
	}
	c.mustReadUntilType(parent, "pong", stepTimeout)
}

func (c *smokeClient) mustAssertQuiet(parent context.Context, wait time.Duration) {
	ctx, cancel := context.WithTimeout(parent, wait)
	defer cancel()

	select {
	case <-ctx.Done():
	case err := <-c.errCh:
		fatalf("connection closed unexpectedly (%s): %v", c.name, err)
	case env, ok := <-c.inbox:
		if !ok {
			fatalf("connection closed unexpectedly (%s)", c.name)
		}
		fatalf("unexpected %s received (%s)", env.Type, c.name)
	}
}

func (c *smokeClient) mustReadUntilType(parent context.Context, wantType string, stepTimeout time.Duration) envelope {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			fatalf("timeout waiting for %q (%s): %v", wantType, c.name, ctx.Err())
		case err := <-c.errCh:
			fatalf("connection error while waiting for %q (%s): %v", wantType, c.name, err)
		case env, ok := <-c.inbox:
			if !ok {
				fatalf("connection closed while waiting for %q (%s)", wantType, c.name)
			}
			switch env.Type {
			case wantType:
				return env
			case "error":
				fatalf("server error (%s): code=%q msg=%q", c.name, env.Code, env.Message)
			}
			fatalf("unexpected envelope type (%s): got=%q want=%q", c.name, env.Type, wantType)
		}
	}
}

func closeWS(conn *websocket.Conn) {
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
