package audit

// Severity grades an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event is the status of one check, emitted to a Reporter. The engine never
// formats text itself.
type Event struct {
	Check    CheckName `json:"check"`
	Phase    int       `json:"phase"`
	Passed   bool      `json:"passed"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Kind     string    `json:"kind,omitempty"`
	Remedy   string    `json:"remedy,omitempty"`
	Detail   []string  `json:"detail,omitempty"`
}

// Reporter receives audit events in execution order.
type Reporter interface {
	BeginPhase(phase int, title string)
	Report(Event)
}

type nopReporter struct{}

func (nopReporter) BeginPhase(int, string) {}
func (nopReporter) Report(Event)           {}
