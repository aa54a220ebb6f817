package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Frames below are byte-for-byte what the reader firmware sends.

func TestDecodeDeviceRegisterFrame(t *testing.T) {
	raw := []byte(`{
		"type": "device_register",
		"deviceId": "ESP32-ABC123",
		"deviceType": "hybrid_scanner",
		"ipAddress": "192.168.1.47",
		"macAddress": "24:6F:28:AE:52:7C",
		"capabilities": ["rfid_scan", "presence_detection"],
		"currentMode": "attendance"
	}`)

	var frame deviceFrame
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, TypeDeviceRegister, frame.Type)
	assert.Equal(t, "ESP32-ABC123", frame.DeviceID)
	assert.Equal(t, "hybrid_scanner", frame.DeviceType)
	assert.Equal(t, []string{"rfid_scan", "presence_detection"}, frame.Capabilities)
	assert.Equal(t, "attendance", frame.CurrentMode)
}

func TestDecodeHeartbeatFrame(t *testing.T) {
	raw := []byte(`{
		"type": "heartbeat",
		"deviceId": "ESP32-ABC123",
		"timestamp": 1284647,
		"mode": "attendance",
		"presenceDetected": true,
		"freeHeap": 153212
	}`)

	var frame deviceFrame
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, TypeHeartbeat, frame.Type)
	assert.Equal(t, int64(1284647), frame.Timestamp, "timestamp is a device tick counter, not wall time")
	require.NotNil(t, frame.PresenceDetected)
	assert.True(t, *frame.PresenceDetected)
	assert.Equal(t, int64(153212), frame.FreeHeap)
}

func TestDecodeHeartbeatWithoutPresence(t *testing.T) {
	raw := []byte(`{"type": "heartbeat", "deviceId": "ESP32-ABC123", "mode": "attendance"}`)

	var frame deviceFrame
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Nil(t, frame.PresenceDetected, "absent flag must stay distinguishable from false")
}

func TestDecodeRFIDScanFrame(t *testing.T) {
	raw := []byte(`{
		"type": "rfid_scan",
		"deviceId": "ESP32-ABC123",
		"rfidCardId": "RFID001",
		"timestamp": 1290031,
		"presenceDetected": false
	}`)

	var frame deviceFrame
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, TypeRFIDScan, frame.Type)
	assert.Equal(t, "RFID001", frame.RFIDCardID)
	require.NotNil(t, frame.PresenceDetected)
	assert.False(t, *frame.PresenceDetected)
}

func TestScanResultWireShape(t *testing.T) {
	payload, err := json.Marshal(scanResult{
		Type:        TypeScanResult,
		Status:      "checked_in",
		StudentName: "Juan Dela Cruz",
		IsLate:      true,
		MinutesLate: 12,
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "scan_result", decoded["type"])
	assert.Equal(t, "checked_in", decoded["status"])
	assert.Equal(t, "Juan Dela Cruz", decoded["studentName"])
	assert.Equal(t, true, decoded["isLate"])
	assert.Equal(t, float64(12), decoded["minutesLate"])
}

func TestScanResultOmitsEmptyFields(t *testing.T) {
	payload, err := json.Marshal(scanResult{Type: TypeScanResult, Status: "error", Message: "no student owns tag RFID999"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.NotContains(t, decoded, "studentName")
	assert.NotContains(t, decoded, "isLate")
	assert.Equal(t, "no student owns tag RFID999", decoded["message"])
}

func TestRegistrationSuccessWireShape(t *testing.T) {
	payload, err := json.Marshal(registrationSuccess{Type: TypeRegistrationSuccess, ClassroomName: "Lab 204"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"registration_success","classroomName":"Lab 204"}`, string(payload))

	bare, err := json.Marshal(registrationSuccess{Type: TypeRegistrationSuccess})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"registration_success"}`, string(bare))
}
