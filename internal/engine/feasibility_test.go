package engine

import (
	"testing"

	"github.com/openimc/planserve/internal/models"
)

func TestAssess_Boundaries(t *testing.T) {
	eng := newTestEngine()

	tests := []struct {
		roas     string
		value    float64
		risk     string
		feasible bool
	}{
		{"well under realistic", 0.9, models.RiskLow, true},
		{"exactly realistic max", 5.0, models.RiskLow, true},
		{"just over realistic max", 5.01, models.RiskMedium, true},
		{"exactly optimistic max", 8.0, models.RiskMedium, true},
		{"just over optimistic max", 8.01, models.RiskHigh, false},
		{"exactly impossible threshold", 10.0, models.RiskHigh, false},
		{"over impossible threshold", 10.01, models.RiskImpossible, false},
	}

	for _, tt := range tests {
		t.Run(tt.roas, func(t *testing.T) {
			result := eng.Assess(tt.value)
			if result.RiskLevel != tt.risk {
				t.Errorf("Assess(%f) risk = %s, want %s", tt.value, result.RiskLevel, tt.risk)
			}
			if result.IsFeasible != tt.feasible {
				t.Errorf("Assess(%f) feasible = %v, want %v", tt.value, result.IsFeasible, tt.feasible)
			}
			if result.ImpliedROAS != tt.value {
				t.Errorf("Assess(%f) echoes roas %f", tt.value, result.ImpliedROAS)
			}
		})
	}
}

func TestAssess_MessagesPerTier(t *testing.T) {
	eng := newTestEngine()

	if msg := eng.Assess(2.0).WarningMessage; msg != "" {
		t.Errorf("low-risk verdicts carry no warning, got %q", msg)
	}
	for _, roas := range []float64{6.0, 9.0, 12.0} {
		result := eng.Assess(roas)
		if result.WarningMessage == "" {
			t.Errorf("Assess(%f) should carry a warning", roas)
		}
		if result.Recommendation == "" {
			t.Errorf("Assess(%f) should carry a recommendation", roas)
		}
	}
}
