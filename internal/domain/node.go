package domain

import (
	"encoding/json"
	"time"
)

type Operation string

const (
	OperationSendSMS     Operation = "sendSms"
	OperationGetMessages Operation = "getMessages"
	OperationGetDevices  Operation = "getDevices"
)

func (o Operation) Valid() bool {
	switch o {
	case OperationSendSMS, OperationGetMessages, OperationGetDevices:
		return true
	}
	return false
}

// ProcessingMode decides what a non-upstream failure does to the rest of a batch.
type ProcessingMode string

const (
	ModeFailFast      ProcessingMode = "failFast"
	ModeCollectErrors ProcessingMode = "collectErrors"
)

// Item is one batch input: node parameters plus the raw JSON the item came with.
type Item struct {
	PhoneNumber   string          `json:"phoneNumber,omitempty" validate:"omitempty,phone"`
	Message       string          `json:"message,omitempty"`
	DeviceID      string          `json:"deviceId,omitempty"`
	SimSlot       string          `json:"simSlot,omitempty" validate:"omitempty,simslot"`
	Prioritize    bool            `json:"prioritize,omitempty"`
	RetryAttempts *int            `json:"retryAttempts,omitempty" validate:"omitempty,min=0,max=5"`
	MessageStatus string          `json:"messageStatus,omitempty"`
	Input         json.RawMessage `json:"input,omitempty"`
}

// Record is one flat output item. Fields not relevant to an operation stay empty.
type Record struct {
	Success   bool      `json:"success"`
	Operation Operation `json:"operation"`

	MessageID     *string `json:"messageId,omitempty"`
	PhoneNumber   string  `json:"phoneNumber,omitempty"`
	Message       string  `json:"message,omitempty"`
	DeviceID      string  `json:"deviceId,omitempty"`
	SimSlot       *int    `json:"simSlot,omitempty"`
	Status        string  `json:"status,omitempty"`
	SentDate      string  `json:"sentDate,omitempty"`
	DeliveredDate string  `json:"deliveredDate,omitempty"`
	Type          string  `json:"type,omitempty"`
	Attempts      int     `json:"attempts,omitempty"`

	DeviceName     string    `json:"deviceName,omitempty"`
	LastSeen       string    `json:"lastSeen,omitempty"`
	Model          string    `json:"model,omitempty"`
	AndroidVersion string    `json:"androidVersion,omitempty"`
	AppVersion     string    `json:"appVersion,omitempty"`
	SimCards       []SimCard `json:"simCards,omitempty"`

	Filter       string `json:"filter,omitempty"`
	Count        *int   `json:"count,omitempty"`
	DevicesCount *int   `json:"devicesCount,omitempty"`

	Error    string          `json:"error,omitempty"`
	Input    json.RawMessage `json:"input,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

// MarshalJSON keeps messageId on send results as an explicit null when the
// gateway returned no ID. Collected error records and other operations omit it.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	if r.Operation != OperationSendSMS || r.Status == "" {
		return json.Marshal(plain(r))
	}

	return json.Marshal(struct {
		plain
		MessageID *string `json:"messageId"`
	}{
		plain:     plain(r),
		MessageID: r.MessageID,
	})
}

// Execution is one audited output record.
type Execution struct {
	ID          int64     `db:"id" json:"id"`
	ExecutionID string    `db:"execution_id" json:"executionId"`
	ItemIndex   int       `db:"item_index" json:"itemIndex"`
	Operation   string    `db:"operation" json:"operation"`
	Success     bool      `db:"success" json:"success"`
	MessageID   *string   `db:"message_id" json:"messageId,omitempty"`
	Attempts    int       `db:"attempts" json:"attempts"`
	Error       *string   `db:"error" json:"error,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
