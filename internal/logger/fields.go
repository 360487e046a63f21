package logger

// Domain field keys shared by handlers and services so log queries stay stable.
const (
	keyReportID  = "report_id"
	keyStatus    = "status"
	keyDecision  = "decision"
	keyRequestID = "request_id"
)

// ReportID tags an entry with the report identifier.
func ReportID(id string) Field { return String(keyReportID, id) }

// Status tags an entry with a report status.
func Status(status string) Field { return String(keyStatus, status) }

// Decision tags an entry with a moderation decision.
func Decision(decision string) Field { return String(keyDecision, decision) }

// RequestID tags an entry with the HTTP request identifier.
func RequestID(id string) Field { return String(keyRequestID, id) }
