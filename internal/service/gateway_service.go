package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/onurcolak/sms8-gateway-service/environments"
	"github.com/onurcolak/sms8-gateway-service/internal/domain"
	"github.com/onurcolak/sms8-gateway-service/pkg/gateway"
	"github.com/onurcolak/sms8-gateway-service/pkg/logger"
	"github.com/onurcolak/sms8-gateway-service/pkg/validator"
)

// Small internal interfaces so we can test without a real gateway or Redis.
type gatewayAPI interface {
	Send(ctx context.Context, creds domain.Credentials, p gateway.SendParams) (*gateway.Envelope, error)
	GetMessages(ctx context.Context, creds domain.Credentials, filter domain.StatusFilter) (*gateway.Envelope, error)
	GetDevices(ctx context.Context, creds domain.Credentials) (*gateway.Envelope, error)
}

type sentCache interface {
	CacheSentMessage(ctx context.Context, entry domain.SentMessageCache) error
	GetAllCachedMessages(ctx context.Context) (map[string]*domain.SentMessageCache, error)
}

type GatewayService struct {
	api    gatewayAPI
	cache  sentCache
	config environments.SMS8Config

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func NewGatewayService(api gatewayAPI, cache sentCache, config environments.SMS8Config) *GatewayService {
	if config.BackoffStep <= 0 {
		config.BackoffStep = time.Second
	}

	return &GatewayService{
		api:    api,
		cache:  cache,
		config: config,
		sleep:  sleepContext,
		now:    time.Now,
	}
}

// BackoffDelay is the wait before attempt k+1, after k failed attempts.
// Growth is linear: 1x, 2x, 3x the step.
func BackoffDelay(attempt int, step time.Duration) time.Duration {
	if attempt < 1 {
		return 0
	}
	return time.Duration(attempt) * step
}

// SendMessage validates req and sends it, retrying on any gateway or
// transport failure. After the last attempt the returned error is a
// *domain.RetryExhaustedError wrapping the final failure.
func (s *GatewayService) SendMessage(
	ctx context.Context,
	creds domain.Credentials,
	req domain.SendRequest,
) (*domain.SendResult, error) {
	params, retries, err := s.prepareSend(req)
	if err != nil {
		return nil, err
	}

	maxAttempts := retries + 1
	calledAt := s.now()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		env, err := s.api.Send(ctx, creds, params)
		if err == nil {
			result := s.buildSendResult(params, env, attempt, calledAt)
			s.cacheResult(ctx, result)

			logger.Infof("SMS to %s accepted on attempt %d/%d (status: %s)",
				params.PhoneNumber, attempt, maxAttempts, result.Status)

			return result, nil
		}

		if domain.IsValidation(err) {
			return nil, err
		}

		lastErr = err
		if attempt == maxAttempts {
			break
		}

		delay := BackoffDelay(attempt, s.config.BackoffStep)
		logger.Warnf("SMS send attempt %d/%d failed: %v (retrying in %v)", attempt, maxAttempts, err, delay)

		if err := s.sleep(ctx, delay); err != nil {
			return nil, &domain.RetryExhaustedError{
				Attempts: attempt,
				Last:     &domain.TransportError{Err: err},
			}
		}
	}

	logger.Errorf("SMS send to %s failed after %d attempts: %v", params.PhoneNumber, maxAttempts, lastErr)

	return nil, &domain.RetryExhaustedError{Attempts: maxAttempts, Last: lastErr}
}

func (s *GatewayService) prepareSend(req domain.SendRequest) (gateway.SendParams, int, error) {
	message := req.Message
	deviceID := strings.TrimSpace(req.DeviceID)

	if strings.TrimSpace(req.PhoneNumber) == "" || strings.TrimSpace(message) == "" || deviceID == "" {
		return gateway.SendParams{}, 0, &domain.ValidationError{
			Reason: "Phone number, message, and device ID are required",
		}
	}

	phone, err := NormalizePhoneNumber(req.PhoneNumber)
	if err != nil {
		return gateway.SendParams{}, 0, err
	}

	if !validator.ValidSimSlot(req.SimSlot) {
		return gateway.SendParams{}, 0, &domain.ValidationError{Field: "simSlot", Reason: "must be 0 or 1"}
	}

	retries := s.config.DefaultRetries
	if req.RetryAttempts != nil {
		retries = *req.RetryAttempts
	}
	if retries < 0 || retries > domain.MaxRetryAttempts {
		return gateway.SendParams{}, 0, &domain.ValidationError{
			Field:  "retryAttempts",
			Reason: fmt.Sprintf("must be between 0 and %d", domain.MaxRetryAttempts),
		}
	}

	return gateway.SendParams{
		PhoneNumber: phone,
		Message:     message,
		DeviceID:    deviceID,
		SimSlot:     req.SimSlot,
		Prioritize:  req.Prioritize,
	}, retries, nil
}

func (s *GatewayService) buildSendResult(
	params gateway.SendParams,
	env *gateway.Envelope,
	attempts int,
	calledAt time.Time,
) *domain.SendResult {
	result := &domain.SendResult{
		Success:     true,
		PhoneNumber: params.PhoneNumber,
		Message:     params.Message,
		DeviceID:    params.DeviceID,
		SimSlot:     params.SimSlot,
		Status:      domain.StatusQueued,
		SentDate:    calledAt.UTC().Format(time.RFC3339),
		Attempts:    attempts,
		Response:    env.Raw,
	}

	messages := env.Messages()
	if len(messages) == 0 {
		return result
	}

	first := messages[0]
	if id := first.ID.String(); id != "" {
		result.MessageID = &id
	}
	if first.Status != "" {
		result.Status = domain.DeliveryStatus(first.Status)
	}
	if first.SentDate != "" {
		result.SentDate = first.SentDate
	}

	return result
}

func (s *GatewayService) cacheResult(ctx context.Context, result *domain.SendResult) {
	if s.cache == nil || result.MessageID == nil {
		return
	}

	entry := domain.SentMessageCache{
		MessageID:   *result.MessageID,
		PhoneNumber: result.PhoneNumber,
		DeviceID:    result.DeviceID,
		Status:      result.Status,
		Attempts:    result.Attempts,
		CachedAt:    s.now().UTC(),
	}

	if err := s.cache.CacheSentMessage(ctx, entry); err != nil {
		logger.Warnf("Failed to cache sent message %s: %v", entry.MessageID, err)
	}
}

// ListMessages returns message history, optionally filtered by status.
// An empty history is not an error.
func (s *GatewayService) ListMessages(
	ctx context.Context,
	creds domain.Credentials,
	filter domain.StatusFilter,
) ([]domain.MessageRecord, error) {
	if filter == "" {
		filter = domain.FilterAll
	}
	if !filter.Valid() {
		return nil, &domain.ValidationError{Field: "messageStatus", Reason: fmt.Sprintf("unsupported filter %q", filter)}
	}

	env, err := s.api.GetMessages(ctx, creds, filter)
	if err != nil {
		return nil, err
	}

	messages := env.Messages()
	records := make([]domain.MessageRecord, 0, len(messages))
	for _, m := range messages {
		records = append(records, domain.MessageRecord{
			ID:            m.ID.String(),
			Status:        domain.DeliveryStatus(m.Status),
			PhoneNumber:   m.Number.String(),
			Message:       m.Message,
			DeviceID:      m.DeviceID.String(),
			SimSlot:       int(m.SimSlot),
			SentDate:      m.SentDate,
			DeliveredDate: m.DeliveredDate,
			Type:          m.Type,
		})
	}

	return records, nil
}

// ListDevices returns the devices registered with the account.
func (s *GatewayService) ListDevices(ctx context.Context, creds domain.Credentials) ([]domain.DeviceRecord, error) {
	env, err := s.api.GetDevices(ctx, creds)
	if err != nil {
		return nil, err
	}

	devices := env.Devices()
	records := make([]domain.DeviceRecord, 0, len(devices))
	for _, d := range devices {
		simCards := make([]domain.SimCard, 0, len(d.SimCards))
		for _, sim := range d.SimCards {
			simCards = append(simCards, domain.SimCard{
				Slot:     int(sim.Slot),
				Operator: sim.Operator,
				Number:   sim.Number.String(),
			})
		}

		records = append(records, domain.DeviceRecord{
			ID:             d.ID.String(),
			Name:           d.Name,
			Status:         domain.DeviceStatus(d.Status),
			LastSeen:       d.LastSeen,
			Model:          orUnknown(d.Model),
			AndroidVersion: orUnknown(d.AndroidVersion.String()),
			AppVersion:     orUnknown(d.AppVersion.String()),
			SimCards:       simCards,
		})
	}

	return records, nil
}

func (s *GatewayService) GetCachedMessages(ctx context.Context) (map[string]*domain.SentMessageCache, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheDisabled
	}
	return s.cache.GetAllCachedMessages(ctx)
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return domain.UnknownValue
	}
	return v
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
