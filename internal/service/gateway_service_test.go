package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onurcolak/sms8-gateway-service/environments"
	"github.com/onurcolak/sms8-gateway-service/internal/domain"
	"github.com/onurcolak/sms8-gateway-service/pkg/gateway"
)

//
// Test fakes – only for this file.
//

type sendOutcome struct {
	env *gateway.Envelope
	err error
}

type fakeGateway struct {
	sendOutcomes []sendOutcome
	sendCalls    []gateway.SendParams

	messagesEnv   *gateway.Envelope
	messagesErr   error
	messagesCalls []domain.StatusFilter

	devicesEnv *gateway.Envelope
	devicesErr error
}

func (g *fakeGateway) Send(ctx context.Context, creds domain.Credentials, p gateway.SendParams) (*gateway.Envelope, error) {
	g.sendCalls = append(g.sendCalls, p)

	idx := len(g.sendCalls) - 1
	if idx >= len(g.sendOutcomes) {
		idx = len(g.sendOutcomes) - 1
	}
	out := g.sendOutcomes[idx]
	return out.env, out.err
}

func (g *fakeGateway) GetMessages(ctx context.Context, creds domain.Credentials, filter domain.StatusFilter) (*gateway.Envelope, error) {
	g.messagesCalls = append(g.messagesCalls, filter)
	return g.messagesEnv, g.messagesErr
}

func (g *fakeGateway) GetDevices(ctx context.Context, creds domain.Credentials) (*gateway.Envelope, error) {
	return g.devicesEnv, g.devicesErr
}

type fakeCache struct {
	entries map[string]*domain.SentMessageCache
}

func (c *fakeCache) CacheSentMessage(ctx context.Context, entry domain.SentMessageCache) error {
	if c.entries == nil {
		c.entries = make(map[string]*domain.SentMessageCache)
	}
	c.entries[entry.MessageID] = &entry
	return nil
}

func (c *fakeCache) GetAllCachedMessages(ctx context.Context) (map[string]*domain.SentMessageCache, error) {
	return c.entries, nil
}

func envelope(t *testing.T, body string) *gateway.Envelope {
	t.Helper()

	var env gateway.Envelope
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	env.Raw = json.RawMessage(body)
	return &env
}

func rejected(msg string) error {
	return &domain.UpstreamError{Message: msg, Rejected: true}
}

func newTestService(api gatewayAPI, cache sentCache) (*GatewayService, *[]time.Duration) {
	svc := NewGatewayService(api, cache, environments.SMS8Config{
		DefaultRetries: 2,
		BackoffStep:    time.Second,
	})

	var delays []time.Duration
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	svc.now = func() time.Time {
		return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	}

	return svc, &delays
}

func validRequest() domain.SendRequest {
	return domain.SendRequest{
		PhoneNumber: "+212661234567",
		Message:     "Hello",
		DeviceID:    "182",
		SimSlot:     0,
	}
}

//
// Tests
//

func TestSendMessage_Success(t *testing.T) {
	api := &fakeGateway{sendOutcomes: []sendOutcome{{
		env: envelope(t, `{"success":true,"data":{"messages":[{"ID":"99","status":"Pending","sentDate":"2024-01-01T00:00:00Z"}]}}`),
	}}}
	cache := &fakeCache{}
	svc, delays := newTestService(api, cache)

	res, err := svc.SendMessage(context.Background(), domain.Credentials{APIKey: "k"}, validRequest())
	require.NoError(t, err)

	assert.True(t, res.Success)
	require.NotNil(t, res.MessageID)
	assert.Equal(t, "99", *res.MessageID)
	assert.Equal(t, domain.StatusPending, res.Status)
	assert.Equal(t, 0, res.SimSlot)
	assert.Equal(t, "2024-01-01T00:00:00Z", res.SentDate)
	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, *delays)
	assert.Contains(t, cache.entries, "99")
}

func TestSendMessage_MissingMessageSynthesizesQueued(t *testing.T) {
	api := &fakeGateway{sendOutcomes: []sendOutcome{{
		env: envelope(t, `{"success":true,"data":{"messages":[]}}`),
	}}}
	cache := &fakeCache{}
	svc, _ := newTestService(api, cache)

	res, err := svc.SendMessage(context.Background(), domain.Credentials{}, validRequest())
	require.NoError(t, err)

	assert.Nil(t, res.MessageID)
	assert.Equal(t, domain.StatusQueued, res.Status)
	assert.Equal(t, "2024-05-01T12:00:00Z", res.SentDate)
	assert.Empty(t, cache.entries, "nothing to cache without a message id")
}

func TestSendMessage_RetriesUntilExhausted(t *testing.T) {
	api := &fakeGateway{sendOutcomes: []sendOutcome{
		{err: rejected("device offline")},
		{err: rejected("device busy")},
		{err: rejected("invalid number")},
	}}
	svc, delays := newTestService(api, nil)

	res, err := svc.SendMessage(context.Background(), domain.Credentials{}, validRequest())
	require.Error(t, err)
	assert.Nil(t, res)

	assert.Len(t, api.sendCalls, 3)

	var exhausted *domain.RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)

	ue, ok := domain.AsUpstream(err)
	require.True(t, ok)
	assert.Equal(t, "invalid number", ue.Message)
	assert.True(t, domain.IsRejected(err))

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays)
}

func TestSendMessage_RecoversAfterTransportFailure(t *testing.T) {
	api := &fakeGateway{sendOutcomes: []sendOutcome{
		{err: &domain.TransportError{Err: errors.New("connection reset")}},
		{env: envelope(t, `{"success":true,"data":{"messages":[{"ID":7,"status":"Sent"}]}}`)},
	}}
	svc, delays := newTestService(api, nil)

	res, err := svc.SendMessage(context.Background(), domain.Credentials{}, validRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Attempts)
	require.NotNil(t, res.MessageID)
	assert.Equal(t, "7", *res.MessageID)
	assert.Equal(t, domain.StatusSent, res.Status)
	assert.Equal(t, []time.Duration{time.Second}, *delays)
}

func TestSendMessage_ZeroRetriesMakesOneAttempt(t *testing.T) {
	api := &fakeGateway{sendOutcomes: []sendOutcome{{err: rejected("nope")}}}
	svc, delays := newTestService(api, nil)

	req := validRequest()
	zero := 0
	req.RetryAttempts = &zero

	_, err := svc.SendMessage(context.Background(), domain.Credentials{}, req)
	require.Error(t, err)
	assert.Len(t, api.sendCalls, 1)
	assert.Empty(t, *delays)
}

func TestSendMessage_ValidationErrors(t *testing.T) {
	tooMany := 6

	tests := []struct {
		name   string
		mutate func(r *domain.SendRequest)
	}{
		{"blank phone", func(r *domain.SendRequest) { r.PhoneNumber = "   " }},
		{"blank message", func(r *domain.SendRequest) { r.Message = "" }},
		{"blank device", func(r *domain.SendRequest) { r.DeviceID = " " }},
		{"phone without digits", func(r *domain.SendRequest) { r.PhoneNumber = "call me" }},
		{"bad sim slot", func(r *domain.SendRequest) { r.SimSlot = 2 }},
		{"too many retries", func(r *domain.SendRequest) { r.RetryAttempts = &tooMany }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeGateway{}
			svc, _ := newTestService(api, nil)

			req := validRequest()
			tt.mutate(&req)

			_, err := svc.SendMessage(context.Background(), domain.Credentials{}, req)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err), "expected validation error, got %v", err)
			assert.Empty(t, api.sendCalls)
		})
	}
}

func TestSendMessage_TrimsPhoneNumber(t *testing.T) {
	api := &fakeGateway{sendOutcomes: []sendOutcome{{env: envelope(t, `{"success":true}`)}}}
	svc, _ := newTestService(api, nil)

	req := validRequest()
	req.PhoneNumber = "  \t+212 661-234567 \n"

	res, err := svc.SendMessage(context.Background(), domain.Credentials{}, req)
	require.NoError(t, err)

	assert.Equal(t, "+212 661-234567", api.sendCalls[0].PhoneNumber)
	assert.Equal(t, "+212 661-234567", res.PhoneNumber)
}

func TestBackoffDelay_IsLinear(t *testing.T) {
	for k := 1; k <= 5; k++ {
		assert.Equal(t, time.Duration(k)*time.Second, BackoffDelay(k, time.Second), "attempt %d", k)
	}
	assert.Zero(t, BackoffDelay(0, time.Second))
}

func TestNormalizePhoneNumber(t *testing.T) {
	for _, raw := range []string{"+212661234567", "0661234567", "(555) 123"} {
		padded := fmt.Sprintf("  %s\t ", raw)

		got, err := NormalizePhoneNumber(padded)
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	}

	for _, raw := range []string{"", "   ", "+", "abc-def"} {
		_, err := NormalizePhoneNumber(raw)
		assert.True(t, domain.IsValidation(err), "expected %q to be rejected", raw)
	}
}

func TestListMessages_FilterAndEmpty(t *testing.T) {
	api := &fakeGateway{messagesEnv: envelope(t, `{"success":true,"data":{"messages":[]}}`)}
	svc, _ := newTestService(api, nil)

	records, err := svc.ListMessages(context.Background(), domain.Credentials{}, domain.FilterFailed)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, []domain.StatusFilter{domain.FilterFailed}, api.messagesCalls)
}

func TestListMessages_KeepsSeventeenDigitID(t *testing.T) {
	api := &fakeGateway{messagesEnv: envelope(t, `{"success":true,"data":{"messages":[
		{"ID":12345678901234567,"status":"Sent","number":"+1555","deviceID":182,"simSlot":0}
	]}}`)}
	svc, _ := newTestService(api, nil)

	records, err := svc.ListMessages(context.Background(), domain.Credentials{}, domain.FilterAll)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "12345678901234567", records[0].ID)
}

func TestListMessages_IsIdempotent(t *testing.T) {
	api := &fakeGateway{messagesEnv: envelope(t, `{"success":true,"data":{"messages":[
		{"ID":"1","status":"Sent","number":"+1555","message":"hi","deviceID":182,"simSlot":"1","sentDate":"a","type":"sms"},
		{"ID":"2","status":"Delivered","number":"+1556","message":"yo","deviceID":"182","simSlot":0,"sentDate":"b","deliveredDate":"c","type":"sms"}
	]}}`)}
	svc, _ := newTestService(api, nil)

	first, err := svc.ListMessages(context.Background(), domain.Credentials{}, domain.FilterAll)
	require.NoError(t, err)
	second, err := svc.ListMessages(context.Background(), domain.Credentials{}, domain.FilterAll)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "182", first[0].DeviceID)
	assert.Equal(t, 1, first[0].SimSlot)
	assert.Equal(t, "c", first[1].DeliveredDate)
}

func TestListMessages_RejectsUnknownFilter(t *testing.T) {
	api := &fakeGateway{}
	svc, _ := newTestService(api, nil)

	_, err := svc.ListMessages(context.Background(), domain.Credentials{}, domain.StatusFilter("Lost"))
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, api.messagesCalls)
}

func TestListDevices_DefaultsMissingFields(t *testing.T) {
	api := &fakeGateway{devicesEnv: envelope(t,
		`{"success":true,"data":{"devices":[{"ID":"7","name":"Pixel","status":"Online","lastSeen":"t"}]}}`)}
	svc, _ := newTestService(api, nil)

	devices, err := svc.ListDevices(context.Background(), domain.Credentials{})
	require.NoError(t, err)
	require.Len(t, devices, 1)

	d := devices[0]
	assert.Equal(t, "7", d.ID)
	assert.Equal(t, "Pixel", d.Name)
	assert.Equal(t, domain.DeviceOnline, d.Status)
	assert.Equal(t, "Unknown", d.Model)
	assert.Equal(t, "Unknown", d.AndroidVersion)
	assert.Equal(t, "Unknown", d.AppVersion)
	assert.NotNil(t, d.SimCards)
	assert.Empty(t, d.SimCards)
}

func TestListDevices_PropagatesUpstreamError(t *testing.T) {
	api := &fakeGateway{devicesErr: rejected("Invalid API key")}
	svc, _ := newTestService(api, nil)

	_, err := svc.ListDevices(context.Background(), domain.Credentials{})
	assert.True(t, domain.IsRejected(err))
}

func TestGetCachedMessages_NoRedisConfigured(t *testing.T) {
	svc, _ := newTestService(&fakeGateway{}, nil)

	cached, err := svc.GetCachedMessages(context.Background())
	require.ErrorIs(t, err, domain.ErrCacheDisabled)
	assert.Nil(t, cached)
}
