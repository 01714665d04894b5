package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/spf13/cast"

	"github.com/onurcolak/sms8-gateway-service/internal/domain"
	"github.com/onurcolak/sms8-gateway-service/pkg/logger"
	"github.com/onurcolak/sms8-gateway-service/pkg/validator"
)

const (
	noMessagesFound = "No messages found"
	noDevicesFound  = "No devices found. Make sure you have the SMS8 app installed and configured on your Android device."
)

type gatewayService interface {
	SendMessage(ctx context.Context, creds domain.Credentials, req domain.SendRequest) (*domain.SendResult, error)
	ListMessages(ctx context.Context, creds domain.Credentials, filter domain.StatusFilter) ([]domain.MessageRecord, error)
	ListDevices(ctx context.Context, creds domain.Credentials) ([]domain.DeviceRecord, error)
}

type executionRecorder interface {
	Record(ctx context.Context, executionID string, itemIndex int, records []domain.Record) error
}

// Result is the output of one batch run.
type Result struct {
	ExecutionID string          `json:"executionId"`
	Records     []domain.Record `json:"records"`
}

// ItemError aborts a FailFast batch at the given item.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Executor runs one node operation over a batch of items, strictly in order.
//
// An explicit success:false from the gateway is always turned into an output
// record and never stops the batch. Every other failure (validation,
// transport, non-2xx, malformed body) stops a FailFast batch, or is recorded
// as an error item in CollectErrors mode.
type Executor struct {
	gateway  gatewayService
	recorder executionRecorder
	validate *validator.CustomValidator
	now      func() time.Time
}

func NewExecutor(gateway gatewayService, recorder executionRecorder) *Executor {
	return &Executor{
		gateway:  gateway,
		recorder: recorder,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (e *Executor) Execute(
	ctx context.Context,
	op domain.Operation,
	creds domain.Credentials,
	items []domain.Item,
	mode domain.ProcessingMode,
) (*Result, error) {
	if !op.Valid() {
		return nil, &domain.ValidationError{Field: "operation", Reason: fmt.Sprintf("unsupported operation %q", op)}
	}
	if mode == "" {
		mode = domain.ModeFailFast
	}
	if mode != domain.ModeFailFast && mode != domain.ModeCollectErrors {
		return nil, &domain.ValidationError{Field: "mode", Reason: fmt.Sprintf("unsupported mode %q", mode)}
	}

	result := &Result{
		ExecutionID: newExecutionID(),
		Records:     make([]domain.Record, 0, len(items)),
	}

	logger.Infof("[Execution %s] %s over %d items (mode: %s)", result.ExecutionID, op, len(items), mode)

	for i, item := range items {
		records, err := e.runItem(ctx, op, creds, item)
		if err != nil {
			if mode == domain.ModeFailFast {
				logger.Errorf("[Execution %s] item %d failed, aborting batch: %v", result.ExecutionID, i, err)
				return nil, &ItemError{Index: i, Err: err}
			}

			logger.Warnf("[Execution %s] item %d failed, continuing: %v", result.ExecutionID, i, err)
			records = []domain.Record{{
				Success:   false,
				Operation: op,
				Error:     err.Error(),
				Input:     item.Input,
			}}
		}

		e.record(ctx, result.ExecutionID, i, records)
		result.Records = append(result.Records, records...)
	}

	return result, nil
}

func (e *Executor) runItem(
	ctx context.Context,
	op domain.Operation,
	creds domain.Credentials,
	item domain.Item,
) ([]domain.Record, error) {
	switch op {
	case domain.OperationSendSMS:
		return e.sendSMS(ctx, creds, item)
	case domain.OperationGetMessages:
		return e.getMessages(ctx, creds, item)
	case domain.OperationGetDevices:
		return e.getDevices(ctx, creds)
	}
	return nil, fmt.Errorf("unsupported operation %q", op)
}

// validateItem applies the item's field rules so that a bad item fails on its
// own, under the batch's processing mode.
func (e *Executor) validateItem(item domain.Item) error {
	err := e.validate.Validate(item)
	if err == nil {
		return nil
	}

	var ve *validator.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	messages := make([]string, 0, len(ve.Errors))
	for _, field := range ve.Fields() {
		messages = append(messages, ve.Errors[field])
	}

	return &domain.ValidationError{Reason: strings.Join(messages, "; ")}
}

func (e *Executor) sendSMS(ctx context.Context, creds domain.Credentials, item domain.Item) ([]domain.Record, error) {
	if err := e.validateItem(item); err != nil {
		return nil, err
	}

	calledAt := e.now()

	simSlot, err := ParseSimSlot(item.SimSlot)
	if err != nil {
		return nil, err
	}

	req := domain.SendRequest{
		PhoneNumber:   item.PhoneNumber,
		Message:       item.Message,
		DeviceID:      item.DeviceID,
		SimSlot:       simSlot,
		Prioritize:    item.Prioritize,
		RetryAttempts: item.RetryAttempts,
	}

	res, err := e.gateway.SendMessage(ctx, creds, req)
	if err != nil {
		ue, ok := domain.AsUpstream(err)
		if !ok || !ue.Rejected {
			return nil, err
		}

		attempts := 1
		var exhausted *domain.RetryExhaustedError
		if errors.As(err, &exhausted) {
			attempts = exhausted.Attempts
		}

		return []domain.Record{{
			Success:     false,
			Operation:   domain.OperationSendSMS,
			PhoneNumber: strings.TrimSpace(req.PhoneNumber),
			Message:     req.Message,
			DeviceID:    strings.TrimSpace(req.DeviceID),
			SimSlot:     &simSlot,
			Status:      string(domain.StatusRejectedByAPI),
			SentDate:    calledAt.UTC().Format(time.RFC3339),
			Attempts:    attempts,
			Error:       ue.Message,
			Response:    rawPayload(ue.Payload),
		}}, nil
	}

	slot := res.SimSlot
	return []domain.Record{{
		Success:     res.Success,
		Operation:   domain.OperationSendSMS,
		MessageID:   res.MessageID,
		PhoneNumber: res.PhoneNumber,
		Message:     res.Message,
		DeviceID:    res.DeviceID,
		SimSlot:     &slot,
		Status:      string(res.Status),
		SentDate:    res.SentDate,
		Attempts:    res.Attempts,
		Response:    res.Response,
	}}, nil
}

func (e *Executor) getMessages(ctx context.Context, creds domain.Credentials, item domain.Item) ([]domain.Record, error) {
	filter := domain.StatusFilter(strings.TrimSpace(item.MessageStatus))
	if filter == "" {
		filter = domain.FilterAll
	}

	messages, err := e.gateway.ListMessages(ctx, creds, filter)
	if err != nil {
		if ue, ok := domain.AsUpstream(err); ok && ue.Rejected {
			return []domain.Record{{
				Success:   false,
				Operation: domain.OperationGetMessages,
				Filter:    string(filter),
				Error:     ue.Message,
				Response:  rawPayload(ue.Payload),
			}}, nil
		}
		return nil, err
	}

	if len(messages) == 0 {
		zero := 0
		return []domain.Record{{
			Success:   true,
			Operation: domain.OperationGetMessages,
			Message:   noMessagesFound,
			Filter:    string(filter),
			Count:     &zero,
		}}, nil
	}

	records := make([]domain.Record, 0, len(messages))
	for _, m := range messages {
		id := m.ID
		slot := m.SimSlot
		records = append(records, domain.Record{
			Success:       true,
			Operation:     domain.OperationGetMessages,
			MessageID:     &id,
			PhoneNumber:   m.PhoneNumber,
			Message:       m.Message,
			DeviceID:      m.DeviceID,
			SimSlot:       &slot,
			Status:        string(m.Status),
			SentDate:      m.SentDate,
			DeliveredDate: m.DeliveredDate,
			Type:          m.Type,
		})
	}

	return records, nil
}

func (e *Executor) getDevices(ctx context.Context, creds domain.Credentials) ([]domain.Record, error) {
	devices, err := e.gateway.ListDevices(ctx, creds)
	if err != nil {
		if ue, ok := domain.AsUpstream(err); ok && ue.Rejected {
			return []domain.Record{{
				Success:   false,
				Operation: domain.OperationGetDevices,
				Error:     ue.Message,
				Response:  rawPayload(ue.Payload),
			}}, nil
		}
		return nil, err
	}

	if len(devices) == 0 {
		zero := 0
		return []domain.Record{{
			Success:      true,
			Operation:    domain.OperationGetDevices,
			Message:      noDevicesFound,
			DevicesCount: &zero,
		}}, nil
	}

	records := make([]domain.Record, 0, len(devices))
	for _, d := range devices {
		records = append(records, domain.Record{
			Success:        true,
			Operation:      domain.OperationGetDevices,
			DeviceID:       d.ID,
			DeviceName:     d.Name,
			Status:         string(d.Status),
			LastSeen:       d.LastSeen,
			Model:          d.Model,
			AndroidVersion: d.AndroidVersion,
			AppVersion:     d.AppVersion,
			SimCards:       d.SimCards,
		})
	}

	return records, nil
}

func (e *Executor) record(ctx context.Context, executionID string, index int, records []domain.Record) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(ctx, executionID, index, records); err != nil {
		logger.Warnf("[Execution %s] failed to record item %d: %v", executionID, index, err)
	}
}

// ParseSimSlot accepts the node's "0"/"1" option values (or numbers).
// An empty value selects SIM 1.
func ParseSimSlot(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	slot, err := cast.ToIntE(raw)
	if err != nil || !validator.ValidSimSlot(slot) {
		return 0, &domain.ValidationError{Field: "simSlot", Reason: "must be 0 or 1"}
	}

	return slot, nil
}

func rawPayload(b []byte) json.RawMessage {
	if len(b) == 0 || !json.Valid(b) {
		return nil
	}
	return json.RawMessage(b)
}

func newExecutionID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "unknown"
	}
	return id.String()
}
