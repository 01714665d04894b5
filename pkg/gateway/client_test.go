package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onurcolak/sms8-gateway-service/environments"
	"github.com/onurcolak/sms8-gateway-service/internal/domain"
)

func newTestServer(t *testing.T, status int, body string, captured *url.URL) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = *r.URL
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestClient() *Client {
	return NewClient(environments.SMS8Config{Timeout: 2 * time.Second})
}

func TestEncodeDevices(t *testing.T) {
	got, err := EncodeDevices("182", 1)
	require.NoError(t, err)
	assert.Equal(t, `["182|1"]`, got)

	got, err = EncodeDevices(`a"b`, 0)
	require.NoError(t, err)
	assert.Equal(t, `["a\"b|0"]`, got)
}

func TestSend_BuildsQuery(t *testing.T) {
	var captured url.URL
	srv := newTestServer(t, http.StatusOK,
		`{"success":true,"data":{"messages":[{"ID":"99","status":"Pending","sentDate":"2024-01-01T00:00:00Z"}]}}`, &captured)

	c := newTestClient()
	env, err := c.Send(context.Background(), domain.Credentials{APIKey: "secret", BaseURL: srv.URL + "/"}, SendParams{
		PhoneNumber: "+212661234567",
		Message:     "Hello & bye",
		DeviceID:    "182",
		SimSlot:     1,
		Prioritize:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "/services/send.php", captured.Path)

	q := captured.Query()
	assert.Equal(t, "secret", q.Get("key"))
	assert.Equal(t, "+212661234567", q.Get("number"))
	assert.Equal(t, "Hello & bye", q.Get("message"))
	assert.Equal(t, `["182|1"]`, q.Get("devices"))
	assert.Equal(t, "sms", q.Get("type"))
	assert.Equal(t, "1", q.Get("prioritize"))
	assert.True(t, strings.Contains(captured.RawQuery, "devices=%5B%22182%7C1%22%5D"), captured.RawQuery)

	require.Len(t, env.Messages(), 1)
	assert.Equal(t, "99", env.Messages()[0].ID.String())
	assert.NotEmpty(t, env.Raw)
}

func TestGetMessages_AllOmitsStatus(t *testing.T) {
	var captured url.URL
	srv := newTestServer(t, http.StatusOK, `{"success":true,"data":{"messages":[]}}`, &captured)

	c := newTestClient()
	_, err := c.GetMessages(context.Background(), domain.Credentials{APIKey: "k", BaseURL: srv.URL}, domain.FilterAll)
	require.NoError(t, err)

	assert.Equal(t, "/services/get-msgs.php", captured.Path)
	_, has := captured.Query()["status"]
	assert.False(t, has)

	_, err = c.GetMessages(context.Background(), domain.Credentials{APIKey: "k", BaseURL: srv.URL}, domain.FilterDelivered)
	require.NoError(t, err)
	assert.Equal(t, "Delivered", captured.Query().Get("status"))
}

func TestGetDevices_OnlyKey(t *testing.T) {
	var captured url.URL
	srv := newTestServer(t, http.StatusOK,
		`{"success":true,"data":{"devices":[{"ID":7,"name":"Pixel","status":"Online","lastSeen":"t","simCards":[{"slot":"1","operator":"Orange","number":212600}]}]}}`,
		&captured)

	c := newTestClient()
	env, err := c.GetDevices(context.Background(), domain.Credentials{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	assert.Equal(t, "/services/get-devices.php", captured.Path)
	assert.Equal(t, url.Values{"key": {"k"}}, captured.Query())

	devices := env.Devices()
	require.Len(t, devices, 1)
	assert.Equal(t, "7", devices[0].ID.String())
	require.Len(t, devices[0].SimCards, 1)
	assert.Equal(t, FlexInt(1), devices[0].SimCards[0].Slot)
	assert.Equal(t, "212600", devices[0].SimCards[0].Number.String())
}

func TestGetMessages_KeepsLargeNumericIDs(t *testing.T) {
	srv := newTestServer(t, http.StatusOK,
		`{"success":true,"data":{"messages":[{"ID":12345678901234567,"status":"Sent","number":212661234567890123,"deviceID":9007199254740993,"simSlot":1}]}}`,
		nil)

	c := newTestClient()
	env, err := c.GetMessages(context.Background(), domain.Credentials{APIKey: "k", BaseURL: srv.URL}, domain.FilterAll)
	require.NoError(t, err)

	messages := env.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "12345678901234567", messages[0].ID.String())
	assert.Equal(t, "212661234567890123", messages[0].Number.String())
	assert.Equal(t, "9007199254740993", messages[0].DeviceID.String())
	assert.Equal(t, FlexInt(1), messages[0].SimSlot)
}

func TestDecode_EmptyArrayDataIsEmpty(t *testing.T) {
	for _, body := range []string{
		`{"success":true,"data":[]}`,
		`{"success":true,"data":[ ]}`,
		`{"success":true,"data":null}`,
	} {
		t.Run(body, func(t *testing.T) {
			srv := newTestServer(t, http.StatusOK, body, nil)

			c := newTestClient()
			env, err := c.GetDevices(context.Background(), domain.Credentials{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)
			assert.Empty(t, env.Devices())
			assert.Empty(t, env.Messages())
		})
	}
}

func TestDecode_NonEmptyArrayDataIsMalformed(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"success":true,"data":[{"ID":"1"}]}`, nil)

	c := newTestClient()
	_, err := c.GetDevices(context.Background(), domain.Credentials{BaseURL: srv.URL})

	ue, ok := domain.AsUpstream(err)
	require.True(t, ok)
	assert.Contains(t, ue.Message, "malformed gateway response")
}

func TestDecode_SuccessFalseIsRejected(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"success":false,"error":{"message":"Invalid API key"}}`, nil)

	c := newTestClient()
	env, err := c.GetDevices(context.Background(), domain.Credentials{BaseURL: srv.URL})
	require.Error(t, err)
	require.NotNil(t, env)

	ue, ok := domain.AsUpstream(err)
	require.True(t, ok)
	assert.True(t, ue.Rejected)
	assert.Equal(t, "Invalid API key", ue.Message)
	assert.Contains(t, string(ue.Payload), "Invalid API key")
}

func TestDecode_SuccessFalseWithoutMessage(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"success":false}`, nil)

	c := newTestClient()
	_, err := c.GetDevices(context.Background(), domain.Credentials{BaseURL: srv.URL})

	ue, ok := domain.AsUpstream(err)
	require.True(t, ok)
	assert.Equal(t, "Unknown error", ue.Message)
}

func TestDecode_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "THIS IS NOT JSON"},
		{"missing success", `{"data":{"messages":[]}}`},
		{"device without id", `{"success":true,"data":{"devices":[{"name":"Pixel"}]}}`},
		{"non numeric sim slot", `{"success":true,"data":{"messages":[{"ID":"1","simSlot":"first"}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, http.StatusOK, tt.body, nil)

			c := newTestClient()
			_, err := c.GetMessages(context.Background(), domain.Credentials{BaseURL: srv.URL}, domain.FilterAll)
			require.Error(t, err)

			ue, ok := domain.AsUpstream(err)
			require.True(t, ok, "expected UpstreamError, got %T", err)
			assert.False(t, ue.Rejected)
			assert.Contains(t, ue.Message, "malformed gateway response")
		})
	}
}

func TestDecode_Non2xx(t *testing.T) {
	srv := newTestServer(t, http.StatusBadGateway, "upstream down", nil)

	c := newTestClient()
	_, err := c.GetDevices(context.Background(), domain.Credentials{BaseURL: srv.URL})

	ue, ok := domain.AsUpstream(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, ue.StatusCode)
	assert.Equal(t, "upstream down", ue.Message)
	assert.False(t, ue.Rejected)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := newTestClient()
	_, err := c.GetDevices(context.Background(), domain.Credentials{BaseURL: base})
	require.Error(t, err)

	var te *domain.TransportError
	assert.ErrorAs(t, err, &te)
}

func TestBaseURL_DefaultsWhenEmpty(t *testing.T) {
	c := newTestClient()

	assert.Equal(t, environments.DefaultSMS8BaseURL, c.BaseURL(domain.Credentials{}))
	assert.Equal(t, "http://x", c.BaseURL(domain.Credentials{BaseURL: " http://x/ "}))
}
