package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"hub-ops-service/internal/platform/obs"
	"hub-ops-service/internal/services"
)

// TopicPattern matches driver badge scans from every handheld scanner.
const TopicPattern = "hub/scanners/+/driver"

type dwellScanner interface {
	Scan(ctx context.Context, channel, driverID string) (services.ScanResult, error)
}

type scanMessage struct {
	DriverID  string `json:"driver_id"`
	ScannerID string `json:"scanner_id"`
}

// DriverScanSubscriber feeds MQTT driver scans into the dwell tracker.
type DriverScanSubscriber struct {
	tracker dwellScanner

	// paho may deliver on several goroutines; scans are applied one at a time.
	mu sync.Mutex
}

func NewDriverScanSubscriber(tracker dwellScanner) *DriverScanSubscriber {
	return &DriverScanSubscriber{tracker: tracker}
}

// Start subscribes on client. It is safe to call again after a reconnect.
func (s *DriverScanSubscriber) Start(client mqtt.Client) error {
	token := client.Subscribe(TopicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *DriverScanSubscriber) Stop(client mqtt.Client) {
	if token := client.Unsubscribe(TopicPattern); token.Wait() && token.Error() != nil {
		log.Printf("op=scanner.unsubscribe err=%v", token.Error())
	}
}

func (s *DriverScanSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw scanMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("op=scanner.decode topic=%s err=%v", msg.Topic(), err)
		return
	}

	if raw.ScannerID == "" {
		raw.ScannerID = scannerFromTopic(msg.Topic())
	}
	if err := validateScanMessage(&raw); err != nil {
		log.Printf("op=scanner.validate topic=%s err=%v", msg.Topic(), err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := obs.WithRequestID(context.Background(), fmt.Sprintf("scanner-%s-%d", raw.ScannerID, msg.MessageID()))
	res, err := s.tracker.Scan(ctx, "scanner:"+raw.ScannerID, raw.DriverID)
	if err != nil {
		log.Printf("op=scanner.scan scanner_id=%s driver_id=%s err=%v", raw.ScannerID, raw.DriverID, err)
		return
	}
	log.Printf("op=scanner.scan scanner_id=%s driver_id=%s transition=%s duplicate=%t",
		raw.ScannerID, raw.DriverID, res.Transition, res.Duplicate)
}

func validateScanMessage(msg *scanMessage) error {
	msg.DriverID = strings.TrimSpace(msg.DriverID)
	msg.ScannerID = strings.TrimSpace(msg.ScannerID)
	if msg.DriverID == "" {
		return fmt.Errorf("driver_id: required")
	}
	if msg.ScannerID == "" {
		return fmt.Errorf("scanner_id: required")
	}
	return nil
}

// scannerFromTopic extracts the wildcard segment of hub/scanners/<id>/driver.
func scannerFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) == 4 && parts[0] == "hub" && parts[1] == "scanners" && parts[3] == "driver" {
		return parts[2]
	}
	return ""
}
