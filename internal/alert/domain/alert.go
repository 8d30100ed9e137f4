package domain

import "time"

// Alert is a detection event captured by a field device. The assistant reads alerts by id only.
type Alert struct {
	ID             string
	RecordedAt     time.Time
	SentAt         time.Time
	ReceivedAt     time.Time
	DelayMs        int64
	DeviceID       string
	Location       string // empty when the device reported none
	Status         string
	PhotoURL       string
	VideoURL       string
	Notes          string
	AcknowledgedBy string
	ResolvedBy     string
}
