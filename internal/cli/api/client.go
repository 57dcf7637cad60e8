package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"BookDesk/internal/model"
)

// User-facing failure messages, one per failure class. The gateway never
// surfaces raw transport or parse errors to callers.
const (
	MsgNoConnection = "Unable to connect to server. Please check your internet connection and try again."
	MsgTimeout      = "Request timed out. Please try again."
	MsgBadResponse  = "Unable to process server response. Please try again later."
	MsgBadRequest   = "Invalid request. Please check your input and try again."
	MsgNotFound     = "The requested resource was not found. Please try again later."
	MsgServerError  = "Server error occurred. Please try again later."
	MsgUnavailable  = "Server is temporarily unavailable. Please try again later."
	MsgUnexpected   = "An unexpected error occurred. Please try again."
)

// MsgRequestFailed renders the fallback message for a non-2xx status with no
// more specific mapping.
func MsgRequestFailed(status int) string {
	return fmt.Sprintf("Request failed (%d). Please try again.", status)
}

// Client talks to the lending backend. Every call resolves to an Outcome;
// transport and parse failures are classified, never returned as Go errors.
type Client struct {
	baseURL   string
	endpoints Endpoints
	http      *http.Client
	log       *zap.Logger
}

// New builds a gateway client for baseURL. A nil logger disables logging.
func New(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     log,
	}
}

// Call performs one request against an endpoint id and normalizes the result.
// A nil payload sends no body. The returned Data is the raw JSON body of a
// successful response.
func (c *Client) Call(ctx context.Context, method, endpoint string, payload any) model.Outcome[json.RawMessage] {
	reqID := uuid.NewString()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			c.log.Warn("gateway payload marshal failed", zap.String("request_id", reqID), zap.Error(err))
			return model.Fail[json.RawMessage](MsgUnexpected)
		}
		body = bytes.NewReader(b)
	}

	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		c.log.Warn("gateway request build failed", zap.String("request_id", reqID), zap.Error(err))
		return model.Fail[json.RawMessage](MsgUnexpected)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		msg := classifyTransport(err)
		c.log.Warn("gateway transport failure",
			zap.String("request_id", reqID),
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return model.Fail[json.RawMessage](msg)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warn("gateway body read failed", zap.String("request_id", reqID), zap.Error(err))
		return model.Fail[json.RawMessage](classifyTransport(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := classifyStatus(resp.StatusCode, structuredMessage(raw))
		c.log.Warn("gateway request rejected",
			zap.String("request_id", reqID),
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode))
		return model.Fail[json.RawMessage](msg)
	}

	var data json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		c.log.Warn("gateway response parse failed", zap.String("request_id", reqID), zap.Error(err))
		return model.Fail[json.RawMessage](MsgBadResponse)
	}

	c.log.Debug("gateway request ok",
		zap.String("request_id", reqID),
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode))
	return model.Ok(data)
}

// classifyTransport maps a transport-layer error to its user-facing message.
// Timeouts and cancellations are reported before the generic connect failure.
func classifyTransport(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return MsgTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return MsgTimeout
	}
	return MsgNoConnection
}

// classifyStatus maps a non-2xx status to its user-facing message. A
// structured server message wins for validation rejections and for statuses
// with no fixed mapping; the fixed wording wins everywhere else.
func classifyStatus(status int, serverMsg string) string {
	switch {
	case status == http.StatusBadRequest:
		if serverMsg != "" {
			return serverMsg
		}
		return MsgBadRequest
	case status == http.StatusNotFound:
		return MsgNotFound
	case status == http.StatusInternalServerError:
		return MsgServerError
	case status > http.StatusInternalServerError:
		return MsgUnavailable
	default:
		if serverMsg != "" {
			return serverMsg
		}
		return MsgRequestFailed(status)
	}
}

// structuredMessage reads the error field a well-behaved backend puts in an
// error body. Anything unparseable yields "".
func structuredMessage(raw []byte) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// request is the typed front of Call: it decodes a successful body into T and
// reports a decode miss as the malformed-response class.
func request[T any](ctx context.Context, c *Client, method, endpoint string, payload any) model.Outcome[T] {
	raw := c.Call(ctx, method, endpoint, payload)
	if !raw.Success {
		return model.Fail[T](raw.Error)
	}
	var v T
	if err := json.Unmarshal(raw.Data, &v); err != nil {
		c.log.Warn("gateway response decode failed", zap.String("endpoint", endpoint), zap.Error(err))
		return model.Fail[T](MsgBadResponse)
	}
	return model.Ok(v)
}
