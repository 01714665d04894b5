package domain

import (
	"encoding/json"
	"time"
)

type DeliveryStatus string

const (
	StatusQueued        DeliveryStatus = "Queued"
	StatusPending       DeliveryStatus = "Pending"
	StatusSent          DeliveryStatus = "Sent"
	StatusDelivered     DeliveryStatus = "Delivered"
	StatusFailed        DeliveryStatus = "Failed"
	StatusRejectedByAPI DeliveryStatus = "RejectedByAPI"
)

type DeviceStatus string

const (
	DeviceOnline  DeviceStatus = "Online"
	DeviceOffline DeviceStatus = "Offline"
)

// StatusFilter selects messages for ListMessages. FilterAll omits the upstream filter.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterPending   StatusFilter = "Pending"
	FilterSent      StatusFilter = "Sent"
	FilterDelivered StatusFilter = "Delivered"
	FilterFailed    StatusFilter = "Failed"
)

func (f StatusFilter) Valid() bool {
	switch f {
	case FilterAll, FilterPending, FilterSent, FilterDelivered, FilterFailed:
		return true
	}
	return false
}

const (
	MaxRetryAttempts     = 5
	DefaultRetryAttempts = 2
	UnknownValue         = "Unknown"
)

// Credentials are fixed for the lifetime of one invocation.
type Credentials struct {
	APIKey  string
	BaseURL string
}

type SendRequest struct {
	PhoneNumber   string `json:"phoneNumber" validate:"required,phone"`
	Message       string `json:"message" validate:"required"`
	DeviceID      string `json:"deviceId" validate:"required"`
	SimSlot       int    `json:"simSlot" validate:"simslot"`
	Prioritize    bool   `json:"prioritize"`
	RetryAttempts *int   `json:"retryAttempts,omitempty" validate:"omitempty,min=0,max=5"`
}

type SendResult struct {
	Success     bool            `json:"success"`
	MessageID   *string         `json:"messageId"`
	PhoneNumber string          `json:"phoneNumber"`
	Message     string          `json:"message"`
	DeviceID    string          `json:"deviceId"`
	SimSlot     int             `json:"simSlot"`
	Status      DeliveryStatus  `json:"status"`
	SentDate    string          `json:"sentDate"`
	Attempts    int             `json:"attempts"`
	Response    json.RawMessage `json:"response,omitempty"`
}

type MessageRecord struct {
	ID            string         `json:"messageId"`
	Status        DeliveryStatus `json:"status"`
	PhoneNumber   string         `json:"phoneNumber"`
	Message       string         `json:"message"`
	DeviceID      string         `json:"deviceId"`
	SimSlot       int            `json:"simSlot"`
	SentDate      string         `json:"sentDate"`
	DeliveredDate string         `json:"deliveredDate,omitempty"`
	Type          string         `json:"type"`
}

type SimCard struct {
	Slot     int    `json:"slot"`
	Operator string `json:"operator"`
	Number   string `json:"number"`
}

type DeviceRecord struct {
	ID             string       `json:"deviceId"`
	Name           string       `json:"deviceName"`
	Status         DeviceStatus `json:"status"`
	LastSeen       string       `json:"lastSeen"`
	Model          string       `json:"model"`
	AndroidVersion string       `json:"androidVersion"`
	AppVersion     string       `json:"appVersion"`
	SimCards       []SimCard    `json:"simCards"`
}

type SentMessageCache struct {
	MessageID   string         `json:"messageId"`
	PhoneNumber string         `json:"phoneNumber"`
	DeviceID    string         `json:"deviceId"`
	Status      DeliveryStatus `json:"status"`
	Attempts    int            `json:"attempts"`
	CachedAt    time.Time      `json:"cachedAt"`
}
