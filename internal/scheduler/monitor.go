package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/onurcolak/sms8-gateway-service/internal/domain"
	"github.com/onurcolak/sms8-gateway-service/pkg/logger"
)

// deviceLister matches GatewayService.ListDevices and lets us unit test the
// monitor with a small fake.
type deviceLister interface {
	ListDevices(ctx context.Context, creds domain.Credentials) ([]domain.DeviceRecord, error)
}

// DeviceMonitor polls the gateway's device list on a fixed interval and
// raises an alert when no device has been online for alertThreshold polls
// in a row. A failed poll counts as an offline poll.
type DeviceMonitor struct {
	devices        deviceLister
	credentials    domain.Credentials
	interval       time.Duration
	alertWebhook   string
	alertThreshold int
	alertClient    *resty.Client

	// Internal state
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
	mu       sync.RWMutex

	// Statistics
	lastRunAt       time.Time
	runsCount       int64
	lastOnline      int
	lastTotal       int
	lastError       string
	lastAlertSentAt time.Time

	consecutiveOfflineCount int
}

func NewDeviceMonitor(
	devices deviceLister,
	creds domain.Credentials,
	interval time.Duration,
	alertWebhook string,
	alertThreshold int,
) *DeviceMonitor {
	return &DeviceMonitor{
		devices:        devices,
		credentials:    creds,
		interval:       interval,
		alertWebhook:   alertWebhook,
		alertThreshold: alertThreshold,
		alertClient:    resty.New().SetTimeout(10 * time.Second),
	}
}

func (m *DeviceMonitor) StartWithParams(ctx context.Context, intervalSeconds int, alertThreshold *int) error {
	m.mu.Lock()
	if intervalSeconds > 0 {
		m.interval = time.Duration(intervalSeconds) * time.Second
	}
	if alertThreshold != nil {
		m.alertThreshold = *alertThreshold
	}
	m.consecutiveOfflineCount = 0
	m.mu.Unlock()

	return m.Start(ctx)
}

func (m *DeviceMonitor) Start(ctx context.Context) error {
	m.mu.Lock()

	if m.running {
		m.mu.Unlock()
		logger.Warnf("Device monitor is already running")
		return nil
	}

	if m.interval <= 0 {
		m.mu.Unlock()
		return fmt.Errorf("monitor interval must be positive, got %v", m.interval)
	}

	m.running = true
	m.stopChan = make(chan struct{})
	m.doneChan = make(chan struct{})
	m.mu.Unlock()

	logger.Infof("Starting device monitor with interval: %v", m.interval)

	go m.run(ctx)

	return nil
}

func (m *DeviceMonitor) run(ctx context.Context) {
	defer close(m.doneChan)

	m.poll(ctx)

	m.mu.RLock()
	interval := m.interval
	m.mu.RUnlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.poll(ctx)

		case <-m.stopChan:
			logger.Warnf("Device monitor received stop signal")
			return

		case <-ctx.Done():
			logger.Warnf("Device monitor context cancelled")
			return
		}
	}
}

func (m *DeviceMonitor) poll(ctx context.Context) {
	m.mu.Lock()
	m.lastRunAt = time.Now()
	m.runsCount++
	runNumber := m.runsCount
	m.mu.Unlock()

	devices, err := m.devices.ListDevices(ctx, m.credentials)

	online := 0
	for _, d := range devices {
		if d.Status == domain.DeviceOnline {
			online++
		}
	}

	m.mu.Lock()
	m.lastOnline = online
	m.lastTotal = len(devices)
	m.lastError = ""
	if err != nil {
		m.lastError = err.Error()
	}

	if online == 0 {
		m.consecutiveOfflineCount++
	} else {
		if m.consecutiveOfflineCount > 0 {
			logger.Debugf("[Poll #%d] Resetting consecutive offline count (was: %d)", runNumber, m.consecutiveOfflineCount)
		}
		m.consecutiveOfflineCount = 0
	}

	offlineCount := m.consecutiveOfflineCount
	alertWebhook := m.alertWebhook
	alertThreshold := m.alertThreshold
	m.mu.Unlock()

	switch {
	case err != nil:
		logger.Errorf("[Poll #%d] Failed to list devices: %v (consecutive offline polls: %d)", runNumber, err, offlineCount)
	case online == 0:
		logger.Warnf("[Poll #%d] No device online out of %d (consecutive offline polls: %d/%d)",
			runNumber, len(devices), offlineCount, alertThreshold)
	default:
		logger.Infof("[Poll #%d] %d/%d devices online", runNumber, online, len(devices))
	}

	if offlineCount == 0 || alertThreshold <= 0 || alertWebhook == "" {
		return
	}
	if offlineCount == alertThreshold {
		go m.sendAlert(alertWebhook, runNumber, offlineCount, len(devices), err)
	}
}

func (m *DeviceMonitor) Stop() error {
	m.mu.Lock()

	if !m.running {
		m.mu.Unlock()
		logger.Warnf("Device monitor is not running")
		return nil
	}

	m.running = false
	stopChan := m.stopChan
	doneChan := m.doneChan
	m.mu.Unlock()

	close(stopChan)
	<-doneChan

	logger.Infof("Device monitor stopped")
	return nil
}

func (m *DeviceMonitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *DeviceMonitor) GetStatus() MonitorStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := MonitorStatus{
		Running:                 m.running,
		LastRunAt:               m.lastRunAt,
		RunsCount:               m.runsCount,
		Interval:                m.interval,
		OnlineDevices:           m.lastOnline,
		TotalDevices:            m.lastTotal,
		LastError:               m.lastError,
		ConsecutiveOfflineCount: m.consecutiveOfflineCount,
		AlertThreshold:          m.alertThreshold,
		LastAlertSentAt:         m.lastAlertSentAt,
	}

	if m.running && !m.lastRunAt.IsZero() {
		status.NextRunAt = m.lastRunAt.Add(m.interval)
	}

	return status
}

func (m *DeviceMonitor) sendAlert(webhookURL string, runNumber int64, consecutive, totalDevices int, pollErr error) {
	payload := map[string]any{
		"alert":              "devices_offline",
		"runNumber":          runNumber,
		"consecutiveOffline": consecutive,
		"totalDevices":       totalDevices,
		"timestamp":          time.Now().Format(time.RFC3339),
		"message":            fmt.Sprintf("No SMS8 device online for %d consecutive polls", consecutive),
	}
	if pollErr != nil {
		payload["lastError"] = pollErr.Error()
	}

	resp, err := m.alertClient.R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(webhookURL)
	if err != nil {
		logger.Errorf("Failed to send alert to webhook: %v", err)
		return
	}

	if resp.StatusCode() == http.StatusOK || resp.StatusCode() == http.StatusNoContent {
		m.mu.Lock()
		m.lastAlertSentAt = time.Now()
		m.mu.Unlock()
		logger.Infof("Alert sent successfully to %s (consecutive offline polls: %d)", webhookURL, consecutive)
	} else {
		logger.Warnf("Alert webhook returned status %d", resp.StatusCode())
	}
}

type MonitorStatus struct {
	Running                 bool          `json:"running"`
	LastRunAt               time.Time     `json:"lastRunAt,omitempty"`
	NextRunAt               time.Time     `json:"nextRunAt,omitempty"`
	RunsCount               int64         `json:"runsCount"`
	Interval                time.Duration `json:"interval"`
	OnlineDevices           int           `json:"onlineDevices"`
	TotalDevices            int           `json:"totalDevices"`
	LastError               string        `json:"lastError,omitempty"`
	ConsecutiveOfflineCount int           `json:"consecutiveOfflineCount"`
	AlertThreshold          int           `json:"alertThreshold"`
	LastAlertSentAt         time.Time     `json:"lastAlertSentAt,omitempty"`
}
