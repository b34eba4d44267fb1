package schema

import (
	"testing"
	"time"
)

func TestOrderStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   OrderStatus
		terminal bool
	}{
		{OrderStatusPendingNew, false},
		{OrderStatusPartiallyFilled, false},
		{OrderStatusFilled, true},
		{OrderStatusCancelled, true},
		{OrderStatusRejected, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("IsTerminal(%s) = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestIntervalDelta_CoversAllIntervals(t *testing.T) {
	for _, iv := range []Interval{IntervalMinute, IntervalHour, IntervalDaily} {
		d, ok := IntervalDelta[iv]
		if !ok {
			t.Errorf("IntervalDelta missing entry for %s", iv)
			continue
		}
		if d <= 0 {
			t.Errorf("IntervalDelta[%s] = %v, want positive", iv, d)
		}
	}
	if IntervalDelta[IntervalDaily] != 24*time.Hour {
		t.Errorf("IntervalDelta[daily] = %v, want 24h", IntervalDelta[IntervalDaily])
	}
}
