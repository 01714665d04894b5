package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"

	"github.com/onurcolak/sms8-gateway-service/environments"
	"github.com/onurcolak/sms8-gateway-service/internal/domain"
	"github.com/onurcolak/sms8-gateway-service/pkg/logger"
)

const (
	sendPath        = "/services/send.php"
	getMessagesPath = "/services/get-msgs.php"
	getDevicesPath  = "/services/get-devices.php"

	unknownError = "Unknown error"
)

// SendParams are the already-validated fields of one send attempt.
type SendParams struct {
	PhoneNumber string
	Message     string
	DeviceID    string
	SimSlot     int
	Prioritize  bool
}

// Client talks to the SMS8 REST API. It performs exactly one HTTP call per
// method invocation; retrying is the caller's job.
type Client struct {
	httpClient     *resty.Client
	defaultBaseURL string
	validate       *validator.Validate
}

func NewClient(cfg environments.SMS8Config) *Client {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = environments.DefaultSMS8BaseURL
	}

	return &Client{
		httpClient:     client,
		defaultBaseURL: baseURL,
		validate:       validator.New(),
	}
}

func (c *Client) Send(ctx context.Context, creds domain.Credentials, p SendParams) (*Envelope, error) {
	devices, err := EncodeDevices(p.DeviceID, p.SimSlot)
	if err != nil {
		return nil, &domain.ValidationError{Field: "deviceId", Reason: err.Error()}
	}

	prioritize := "0"
	if p.Prioritize {
		prioritize = "1"
	}

	return c.get(ctx, creds, sendPath, map[string]string{
		"number":     p.PhoneNumber,
		"message":    p.Message,
		"devices":    devices,
		"type":       "sms",
		"prioritize": prioritize,
	})
}

func (c *Client) GetMessages(ctx context.Context, creds domain.Credentials, filter domain.StatusFilter) (*Envelope, error) {
	params := map[string]string{}
	if filter != "" && filter != domain.FilterAll {
		params["status"] = string(filter)
	}

	return c.get(ctx, creds, getMessagesPath, params)
}

func (c *Client) GetDevices(ctx context.Context, creds domain.Credentials) (*Envelope, error) {
	return c.get(ctx, creds, getDevicesPath, nil)
}

func (c *Client) BaseURL(creds domain.Credentials) string {
	base := strings.TrimSpace(creds.BaseURL)
	if base == "" {
		base = c.defaultBaseURL
	}
	return strings.TrimRight(base, "/")
}

func (c *Client) get(
	ctx context.Context,
	creds domain.Credentials,
	path string,
	params map[string]string,
) (*Envelope, error) {
	url := c.BaseURL(creds) + path

	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", creds.APIKey).
		SetQueryParams(params).
		Get(url)

	duration := time.Since(startTime)

	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}

	logger.Debugf("SMS8 request to %s completed in %v (status: %d)", url, duration, resp.StatusCode())

	return c.decode(resp.StatusCode(), resp.Body())
}

// decode turns a raw response into a well-formed envelope or an UpstreamError.
func (c *Client) decode(statusCode int, body []byte) (*Envelope, error) {
	if statusCode < 200 || statusCode > 299 {
		return nil, &domain.UpstreamError{
			StatusCode: statusCode,
			Message:    errorMessageFromBody(body),
			Payload:    body,
		}
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &domain.UpstreamError{
			Message: fmt.Sprintf("malformed gateway response: %v", err),
			Payload: body,
		}
	}

	if err := c.validate.Struct(&env); err != nil {
		return nil, &domain.UpstreamError{
			Message: fmt.Sprintf("malformed gateway response: %v", err),
			Payload: body,
		}
	}

	env.Raw = json.RawMessage(body)

	if !*env.Success {
		msg := unknownError
		if env.Error != nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		return &env, &domain.UpstreamError{
			Message:  msg,
			Payload:  body,
			Rejected: true,
		}
	}

	return &env, nil
}

// EncodeDevices renders the single device target as the JSON array the
// gateway expects, e.g. ["182|1"].
func EncodeDevices(deviceID string, simSlot int) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode([]string{deviceID + "|" + strconv.Itoa(simSlot)}); err != nil {
		return "", err
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func errorMessageFromBody(body []byte) string {
	var env struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return unknownError
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
