package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestStatus_Constants(t *testing.T) {
	if StatusHealthy != "healthy" {
		t.Errorf("StatusHealthy = %v, want healthy", StatusHealthy)
	}
	if StatusUnhealthy != "unhealthy" {
		t.Errorf("StatusUnhealthy = %v, want unhealthy", StatusUnhealthy)
	}
	if StatusDegraded != "degraded" {
		t.Errorf("StatusDegraded = %v, want degraded", StatusDegraded)
	}
}

func TestNewChecker(t *testing.T) {
	checker := NewChecker("test-checker", func(ctx context.Context) CheckResult {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "test passed",
		}
	})

	if checker.Name() != "test-checker" {
		t.Errorf("Name() = %v, want test-checker", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
	if result.Message != "test passed" {
		t.Errorf("Message = %v, want 'test passed'", result.Message)
	}
}

func TestRegistry_RegisterAndCheck(t *testing.T) {
	registry := NewRegistry("cellbot", "0.1.0")

	checker1 := NewChecker("history", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "history reachable"}
	})
	checker2 := NewChecker("cache", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "Cache available"}
	})

	registry.Register(checker1)
	registry.Register(checker2)

	report := registry.Check(context.Background())

	if report.Service != "cellbot" {
		t.Errorf("Service = %v, want cellbot", report.Service)
	}
	if report.Version != "0.1.0" {
		t.Errorf("Version = %v, want 0.1.0", report.Version)
	}
	if report.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Errorf("Checks count = %v, want 2", len(report.Checks))
	}
}

func TestRegistry_RegisterFunc(t *testing.T) {
	registry := NewRegistry("cellbot", "0.1.0")

	registry.RegisterFunc("memory", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "Memory OK"}
	})

	report := registry.Check(context.Background())

	if len(report.Checks) != 1 {
		t.Errorf("Checks count = %v, want 1", len(report.Checks))
	}
	if report.Checks[0].Name != "memory" {
		t.Errorf("Check name = %v, want memory", report.Checks[0].Name)
	}
}

func TestRegistry_OverallStatus_Unhealthy(t *testing.T) {
	registry := NewRegistry("cellbot", "0.1.0")

	registry.RegisterFunc("healthy-check", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	})
	registry.RegisterFunc("unhealthy-check", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusUnhealthy}
	})

	report := registry.Check(context.Background())

	if report.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", report.Status)
	}
}

func TestRegistry_OverallStatus_Degraded(t *testing.T) {
	registry := NewRegistry("cellbot", "0.1.0")

	registry.RegisterFunc("healthy-check", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	})
	registry.RegisterFunc("degraded-check", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusDegraded}
	})

	report := registry.Check(context.Background())

	if report.Status != StatusDegraded {
		t.Errorf("Status = %v, want degraded", report.Status)
	}
}

func TestRegistry_WorstStatusWins(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		expected Status
	}{
		{"All healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"Degraded", []Status{StatusDegraded, StatusHealthy}, StatusDegraded},
		{"Unhealthy beats degraded", []Status{StatusUnhealthy, StatusDegraded}, StatusUnhealthy},
		{"Unknown status counts as unhealthy", []Status{StatusDegraded, Status("")}, StatusUnhealthy},
		{"No checks", nil, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry("cellbot", "0.1.0")
			for i, st := range tt.statuses {
				st := st
				registry.RegisterFunc(string(rune('a'+i)), func(ctx context.Context) CheckResult {
					return CheckResult{Status: st}
				})
			}

			report := registry.Check(context.Background())
			if report.Status != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, report.Status)
			}
		})
	}
}

func TestRegistry_ChecksSortedByName(t *testing.T) {
	registry := NewRegistry("cellbot", "0.1.0")
	for _, name := range []string{"program_cache", "grpc", "history"} {
		registry.Register(AlwaysHealthy(name))
	}

	report := registry.Check(context.Background())
	var names []string
	for _, c := range report.Checks {
		names = append(names, c.Name)
	}
	if len(names) != 3 || names[0] != "grpc" || names[1] != "history" || names[2] != "program_cache" {
		t.Errorf("Expected [grpc history program_cache], got %v", names)
	}
}

func TestRegistry_ConcurrentChecks(t *testing.T) {
	registry := NewRegistry("cellbot", "0.1.0")

	var counter int32

	for i := 0; i < 5; i++ {
		registry.RegisterFunc("check"+string(rune('A'+i)), func(ctx context.Context) CheckResult {
			atomic.AddInt32(&counter, 1)
			time.Sleep(10 * time.Millisecond) // Simulate work
			return CheckResult{Status: StatusHealthy}
		})
	}

	start := time.Now()
	report := registry.Check(context.Background())
	duration := time.Since(start)

	if atomic.LoadInt32(&counter) != 5 {
		t.Errorf("Counter = %v, want 5", counter)
	}

	// Checks should run concurrently, so total time should be close to 10ms, not 50ms
	if duration > 100*time.Millisecond {
		t.Errorf("Duration = %v, expected concurrent execution", duration)
	}

	if len(report.Checks) != 5 {
		t.Errorf("Checks count = %v, want 5", len(report.Checks))
	}
}

func TestRegistry_Uptime(t *testing.T) {
	registry := NewRegistry("cellbot", "0.1.0")

	time.Sleep(10 * time.Millisecond)

	report := registry.Check(context.Background())

	if report.Uptime < 10*time.Millisecond {
		t.Errorf("Uptime = %v, expected >= 10ms", report.Uptime)
	}
}

func TestAlwaysHealthy(t *testing.T) {
	checker := AlwaysHealthy("always-healthy")

	if checker.Name() != "always-healthy" {
		t.Errorf("Name() = %v, want always-healthy", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
}

func TestTCPCheck(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := listener.Addr().String()

	checker := TCPCheck("tcp-test", addr, time.Second)
	if checker.Name() != "tcp-test" {
		t.Errorf("Name() = %v, want tcp-test", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy (%s)", result.Status, result.Message)
	}
	if result.Details["address"] != addr {
		t.Errorf("Details[address] = %v, want %v", result.Details["address"], addr)
	}

	listener.Close()
	result = checker.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("Status after close = %v, want unhealthy", result.Status)
	}
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

func TestPingCheck(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Status
	}{
		{"reachable", nil, StatusHealthy},
		{"unreachable", errors.New("database is locked"), StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PingCheck("history", fakePinger{tt.err}).Check(context.Background())
			if result.Status != tt.expected {
				t.Errorf("Status = %v, want %v", result.Status, tt.expected)
			}
		})
	}
}

func TestThresholdCheck(t *testing.T) {
	value := 3
	checker := ThresholdCheck("active-runs", 5, func() int { return value })

	if got := checker.Check(context.Background()).Status; got != StatusHealthy {
		t.Errorf("Status = %v, want healthy", got)
	}

	value = 6
	if got := checker.Check(context.Background()).Status; got != StatusDegraded {
		t.Errorf("Status = %v, want degraded", got)
	}
}

func TestRegistry_Handler(t *testing.T) {
	registry := NewRegistry("cellbot", "0.1.0")
	registry.Register(AlwaysHealthy("service"))

	rec := httptest.NewRecorder()
	registry.Handler(time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Code = %v, want 200", rec.Code)
	}

	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if report.Status != StatusHealthy || len(report.Checks) != 1 {
		t.Errorf("Report = %+v, want one healthy check", report)
	}

	registry.Register(PingCheck("history", fakePinger{errors.New("closed")}))
	rec = httptest.NewRecorder()
	registry.Handler(time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Code = %v, want 503", rec.Code)
	}
}
