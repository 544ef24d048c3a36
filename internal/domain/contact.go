package domain

// Urgency levels accepted on a contact request.
const (
	UrgencyLow       = "low"
	UrgencyMedium    = "medium"
	UrgencyHigh      = "high"
	UrgencyEmergency = "emergency"
)

// ValidUrgency reports whether s is one of the accepted urgency levels.
func ValidUrgency(s string) bool {
	switch s {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency:
		return true
	}
	return false
}

// ContactRequest 患者联系医院的一次性请求（不持久化）
// Consumed once by the notification endpoint; no further lifecycle here.
type ContactRequest struct {
	HospitalID   string `json:"hospitalId"`
	PatientName  string `json:"patientName"`
	PatientPhone string `json:"patientPhone"`
	PatientEmail string `json:"patientEmail"`
	BedType      string `json:"bedType"`
	Urgency      string `json:"urgency"`
	Message      string `json:"message,omitempty"`
}

// ContactAck is the notification endpoint's acknowledgment. RequestID is
// opaque and not tracked afterwards.
type ContactAck struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}
