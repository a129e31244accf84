package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType names one kind of audit record.
type AuditEventType string

const (
	AuditOracleQuery   AuditEventType = "oracle_query"
	AuditBuildComplete AuditEventType = "build_complete"
	AuditBuildFailed   AuditEventType = "build_failed"
	AuditDecode        AuditEventType = "decode"
	AuditStateSaved    AuditEventType = "state_saved"
)

// AuditEvent is one JSON line in the audit log. Only metadata is recorded;
// plaintexts and ciphertexts never are.
type AuditEvent struct {
	Timestamp  int64                  `json:"ts"` // Unix milliseconds
	EventType  AuditEventType         `json:"event"`
	Category   string                 `json:"cat"`
	Identity   string                 `json:"identity,omitempty"`
	Phase      string                 `json:"phase,omitempty"` // map or matrix
	Success    bool                   `json:"success"`
	DurationMs int64                  `json:"dur_ms,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

var (
	auditFile   *os.File
	auditMu     sync.Mutex
	auditLogger *AuditLogger
)

// AuditLogger writes audit events to <logs>/<date>_audit.log in debug mode.
type AuditLogger struct {
	category Category
}

// InitAudit opens the audit log. It is a no-op outside debug mode.
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil
	}

	date := time.Now().Format("2006-01-02")
	auditPath := filepath.Join(logsDir, fmt.Sprintf("%s_audit.log", date))

	file, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file
	return nil
}

// CloseAudit closes the audit log file.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit returns the global audit logger.
func Audit() *AuditLogger {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditLogger == nil {
		auditLogger = &AuditLogger{}
	}
	return auditLogger
}

// AuditWithCategory returns an audit logger that tags events with category.
func AuditWithCategory(category Category) *AuditLogger {
	return &AuditLogger{category: category}
}

// Log writes an audit event.
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsDebugMode() {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.Category == "" && a.category != "" {
		event.Category = string(a.category)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	auditMu.Lock()
	defer auditMu.Unlock()
	if auditFile == nil {
		return
	}
	auditFile.Write(append(data, '\n'))
}

// OracleQuery records one oracle call by its position in the build.
func (a *AuditLogger) OracleQuery(phase, identity string, index, total int, dur time.Duration, err error) {
	event := AuditEvent{
		EventType:  AuditOracleQuery,
		Category:   string(CategoryOracle),
		Identity:   identity,
		Phase:      phase,
		Success:    err == nil,
		DurationMs: dur.Milliseconds(),
		Fields:     map[string]interface{}{"index": index, "total": total},
	}
	if err != nil {
		event.Error = err.Error()
	}
	a.Log(event)
}

// BuildComplete records a successful map or matrix build.
func (a *AuditLogger) BuildComplete(phase, identity string, chars, failures int) {
	a.Log(AuditEvent{
		EventType: AuditBuildComplete,
		Category:  string(CategorySession),
		Identity:  identity,
		Phase:     phase,
		Success:   true,
		Fields:    map[string]interface{}{"chars": chars, "failures": failures},
	})
}

// BuildFailed records a build that left the session unchanged.
func (a *AuditLogger) BuildFailed(phase, identity string, err error) {
	a.Log(AuditEvent{
		EventType: AuditBuildFailed,
		Category:  string(CategorySession),
		Identity:  identity,
		Phase:     phase,
		Error:     err.Error(),
	})
}

// Decode records a decode without its input or output.
func (a *AuditLogger) Decode(identity string, segments, unknown int) {
	a.Log(AuditEvent{
		EventType: AuditDecode,
		Category:  string(CategoryDecoder),
		Identity:  identity,
		Success:   true,
		Fields:    map[string]interface{}{"segments": segments, "unknown": unknown},
	})
}

// StateSaved records a session commit to the store.
func (a *AuditLogger) StateSaved(identity string, chars, matrixRows int) {
	a.Log(AuditEvent{
		EventType: AuditStateSaved,
		Category:  string(CategoryStore),
		Identity:  identity,
		Success:   true,
		Fields:    map[string]interface{}{"chars": chars, "matrix_rows": matrixRows},
	})
}
