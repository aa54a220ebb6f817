package ws

// Device message contract. Inbound frames carry a type discriminator
// and are dispatched once, here at the boundary; fields are a superset
// of all inbound kinds.

const (
	// Inbound from devices.
	TypeDeviceRegister   = "device_register"
	TypeHeartbeat        = "heartbeat"
	TypeRFIDScan         = "rfid_scan"
	TypePresenceDetected = "presence_detected"

	// Outbound to devices.
	TypeWelcome             = "welcome"
	TypeRegistrationSuccess = "registration_success"
	TypeScanResult          = "scan_result"
	TypeError               = "error"
)

// deviceFrame is the decoded inbound envelope.
type deviceFrame struct {
	Type             string   `json:"type"`
	DeviceID         string   `json:"deviceId"`
	DeviceType       string   `json:"deviceType"`
	IPAddress        string   `json:"ipAddress"`
	MACAddress       string   `json:"macAddress"`
	Capabilities     []string `json:"capabilities"`
	CurrentMode      string   `json:"currentMode"`
	Mode             string   `json:"mode"`
	RFIDCardID       string   `json:"rfidCardId"`
	Timestamp        int64    `json:"timestamp"`
	PresenceDetected *bool    `json:"presenceDetected"`
	FreeHeap         int64    `json:"freeHeap"`
}

type welcomeMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type registrationSuccess struct {
	Type          string `json:"type"`
	ClassroomName string `json:"classroomName,omitempty"`
}

// scanResult mirrors the historical contract: engine failures surface
// as status "error" with a message, not as transport faults.
type scanResult struct {
	Type        string `json:"type"`
	Status      string `json:"status"`
	StudentName string `json:"studentName,omitempty"`
	Message     string `json:"message,omitempty"`
	IsLate      bool   `json:"isLate,omitempty"`
	MinutesLate int    `json:"minutesLate,omitempty"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
