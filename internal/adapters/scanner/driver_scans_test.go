package scanner

import (
	"context"
	"errors"
	"testing"

	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/services"
)

type mockTracker struct {
	scanFn func(ctx context.Context, channel, driverID string) (services.ScanResult, error)
}

func (m *mockTracker) Scan(ctx context.Context, channel, driverID string) (services.ScanResult, error) {
	return m.scanFn(ctx, channel, driverID)
}

type fakeMQTTMessage struct {
	topic   string
	payload []byte
}

func (f *fakeMQTTMessage) Duplicate() bool   { return false }
func (f *fakeMQTTMessage) Qos() byte         { return 1 }
func (f *fakeMQTTMessage) Retained() bool    { return false }
func (f *fakeMQTTMessage) Topic() string     { return f.topic }
func (f *fakeMQTTMessage) MessageID() uint16 { return 7 }
func (f *fakeMQTTMessage) Payload() []byte   { return f.payload }
func (f *fakeMQTTMessage) Ack()              {}

func TestHandleMessage_Success(t *testing.T) {
	var gotChannel, gotDriver string
	tracker := &mockTracker{
		scanFn: func(_ context.Context, channel, driverID string) (services.ScanResult, error) {
			gotChannel, gotDriver = channel, driverID
			return services.ScanResult{Transition: domain.TransitionIn}, nil
		},
	}

	sub := &DriverScanSubscriber{tracker: tracker}
	sub.handleMessage(nil, &fakeMQTTMessage{
		topic:   "hub/scanners/gate-1/driver",
		payload: []byte(`{"driver_id":" D1 ","scanner_id":"gate-1"}`),
	})

	if gotDriver != "D1" {
		t.Errorf("driver_id = %q, want D1", gotDriver)
	}
	if gotChannel != "scanner:gate-1" {
		t.Errorf("channel = %q, want scanner:gate-1", gotChannel)
	}
}

func TestHandleMessage_ScannerIDFromTopic(t *testing.T) {
	var gotChannel string
	tracker := &mockTracker{
		scanFn: func(_ context.Context, channel, _ string) (services.ScanResult, error) {
			gotChannel = channel
			return services.ScanResult{}, nil
		},
	}

	sub := &DriverScanSubscriber{tracker: tracker}
	sub.handleMessage(nil, &fakeMQTTMessage{
		topic:   "hub/scanners/dock-3/driver",
		payload: []byte(`{"driver_id":"D1"}`),
	})

	if gotChannel != "scanner:dock-3" {
		t.Errorf("channel = %q, want scanner:dock-3", gotChannel)
	}
}

func TestHandleMessage_RejectsBadPayloads(t *testing.T) {
	tracker := &mockTracker{
		scanFn: func(_ context.Context, _, _ string) (services.ScanResult, error) {
			t.Fatal("Scan should not be called")
			return services.ScanResult{}, nil
		},
	}
	sub := &DriverScanSubscriber{tracker: tracker}

	sub.handleMessage(nil, &fakeMQTTMessage{topic: "hub/scanners/g/driver", payload: []byte("invalid")})
	sub.handleMessage(nil, &fakeMQTTMessage{topic: "hub/scanners/g/driver", payload: []byte(`{"driver_id":"  "}`)})
}

func TestHandleMessage_TrackerErrorIsLogged(t *testing.T) {
	called := false
	tracker := &mockTracker{
		scanFn: func(_ context.Context, _, _ string) (services.ScanResult, error) {
			called = true
			return services.ScanResult{}, errors.New("db down")
		},
	}
	sub := &DriverScanSubscriber{tracker: tracker}
	sub.handleMessage(nil, &fakeMQTTMessage{topic: "hub/scanners/g/driver", payload: []byte(`{"driver_id":"D1"}`)})

	if !called {
		t.Fatal("expected Scan to be called")
	}
}

func TestScannerFromTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"hub/scanners/gate-1/driver", "gate-1"},
		{"hub/scanners/driver", ""},
		{"other/scanners/x/driver", ""},
	}
	for _, tt := range tests {
		if got := scannerFromTopic(tt.topic); got != tt.want {
			t.Errorf("scannerFromTopic(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}
