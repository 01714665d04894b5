package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// Envelope is the common shape of every SMS8 response.
type Envelope struct {
	Success *bool     `json:"success" validate:"required"`
	Data    *Data     `json:"data"`
	Error   *APIError `json:"error"`

	Raw json.RawMessage `json:"-"`
}

type Data struct {
	Messages []Message `json:"messages" validate:"dive"`
	Devices  []Device  `json:"devices" validate:"dive"`
}

// UnmarshalJSON treats an empty JSON array as empty data; PHP encodes an
// empty associative array that way.
func (d *Data) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.Join(bytes.Fields(b), nil), []byte("[]")) {
		*d = Data{}
		return nil
	}

	type plain Data
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}

	*d = Data(p)
	return nil
}

type APIError struct {
	Message string     `json:"message"`
	Code    FlexString `json:"code"`
}

type Message struct {
	ID            FlexString `json:"ID"`
	Status        string     `json:"status"`
	SentDate      string     `json:"sentDate"`
	Number        FlexString `json:"number"`
	Message       string     `json:"message"`
	DeviceID      FlexString `json:"deviceID"`
	SimSlot       FlexInt    `json:"simSlot"`
	DeliveredDate string     `json:"deliveredDate"`
	Type          string     `json:"type"`
}

type Device struct {
	ID             FlexString `json:"ID" validate:"required"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	LastSeen       string     `json:"lastSeen"`
	Model          string     `json:"model"`
	AndroidVersion FlexString `json:"androidVersion"`
	AppVersion     FlexString `json:"appVersion"`
	SimCards       []SimCard  `json:"simCards"`
}

type SimCard struct {
	Slot     FlexInt    `json:"slot"`
	Operator string     `json:"operator"`
	Number   FlexString `json:"number"`
}

// Messages returns the message list, or nil when data is absent.
func (e *Envelope) Messages() []Message {
	if e == nil || e.Data == nil {
		return nil
	}
	return e.Data.Messages
}

// Devices returns the device list, or nil when data is absent.
func (e *Envelope) Devices() []Device {
	if e == nil || e.Data == nil {
		return nil
	}
	return e.Data.Devices
}

// FlexString accepts a JSON string, number or bool. The gateway is not
// consistent about quoting identifiers.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}

	v, err := decodeScalar(b)
	if err != nil {
		return err
	}

	str, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Errorf("expected a scalar, got %s", string(b))
	}

	*s = FlexString(str)
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// FlexInt accepts a JSON number or a numeric string.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*n = 0
		return nil
	}

	v, err := decodeScalar(b)
	if err != nil {
		return err
	}

	i, err := cast.ToIntE(v)
	if err != nil {
		return fmt.Errorf("expected an integer, got %s", string(b))
	}

	*n = FlexInt(i)
	return nil
}

// decodeScalar keeps numbers as their literal text so large identifiers do
// not pass through float64.
func decodeScalar(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	if n, ok := v.(json.Number); ok {
		return n.String(), nil
	}
	return v, nil
}
