package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func readAuditEvents(t *testing.T, dir string) []AuditEvent {
	t.Helper()
	logsPath := filepath.Join(dir, ".probe", "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), "_audit.log") {
			continue
		}
		f, err := os.Open(filepath.Join(logsPath, entry.Name()))
		if err != nil {
			t.Fatalf("open audit log: %v", err)
		}
		defer f.Close()

		var events []AuditEvent
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			var ev AuditEvent
			if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
				t.Fatalf("invalid audit line %q: %v", scanner.Text(), err)
			}
			events = append(events, ev)
		}
		return events
	}
	t.Fatal("No audit log found")
	return nil
}

func TestAuditWritesJSONLines(t *testing.T) {
	resetState()
	defer resetState()

	tempDir := t.TempDir()
	if err := Initialize(tempDir, Options{DebugMode: true}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	Audit().OracleQuery("map", "7", 1, 2, 15*time.Millisecond, nil)
	Audit().OracleQuery("map", "7", 2, 2, time.Millisecond, errors.New("status 500"))
	Audit().BuildComplete("map", "7", 1, 1)
	AuditWithCategory(CategoryDecoder).Decode("7", 3, 1)
	CloseAll()

	events := readAuditEvents(t, tempDir)
	if len(events) != 4 {
		t.Fatalf("Expected 4 audit events, got %d", len(events))
	}

	if events[0].EventType != AuditOracleQuery || !events[0].Success || events[0].DurationMs != 15 {
		t.Errorf("Unexpected first event: %+v", events[0])
	}
	if events[0].Fields["index"] != float64(1) || events[0].Fields["total"] != float64(2) {
		t.Errorf("Expected query position 1/2, got %+v", events[0].Fields)
	}
	if events[1].Success || events[1].Error != "status 500" {
		t.Errorf("Expected failed query event, got %+v", events[1])
	}
	if events[2].EventType != AuditBuildComplete || events[2].Fields["chars"] != float64(1) {
		t.Errorf("Unexpected build event: %+v", events[2])
	}
	if events[3].Category != string(CategoryDecoder) {
		t.Errorf("Expected decoder category, got %s", events[3].Category)
	}
}

func TestAuditOmitsPlaintext(t *testing.T) {
	resetState()
	defer resetState()

	tempDir := t.TempDir()
	if err := Initialize(tempDir, Options{DebugMode: true}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	Audit().OracleQuery("matrix", "secret-id", 3, 71, time.Millisecond, nil)
	CloseAll()

	logsPath := filepath.Join(tempDir, ".probe", "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), "_audit.log") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(logsPath, entry.Name()))
		if err != nil {
			t.Fatalf("read audit log: %v", err)
		}
		if strings.Contains(string(data), `"target"`) {
			t.Errorf("Audit line carries a target field: %s", data)
		}
	}
}

func TestAuditDisabledOutsideDebugMode(t *testing.T) {
	resetState()
	defer resetState()

	tempDir := t.TempDir()
	if err := Initialize(tempDir, Options{}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	Audit().StateSaved("7", 3, 0)
	CloseAll()

	if _, err := os.Stat(filepath.Join(tempDir, ".probe", "logs")); !os.IsNotExist(err) {
		t.Errorf("Expected no logs directory, got err=%v", err)
	}
}
