package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func pct(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProperty_IsShared(t *testing.T) {
	tests := []struct {
		name string
		typ  PropertyType
		want bool
	}{
		{"sole", PropertySole, false},
		{"shared", PropertyShared, true},
		{"unset", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Property{Type: tt.typ}
			if got := p.IsShared(); got != tt.want {
				t.Errorf("IsShared() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSharesSumTo100(t *testing.T) {
	tests := []struct {
		name   string
		shares []string
		want   bool
	}{
		{"exact halves", []string{"50", "50"}, true},
		{"thirds within tolerance", []string{"33.333", "33.333", "33.334"}, true},
		{"rounding slack", []string{"33.33", "33.33", "33.33"}, true},
		{"short", []string{"60", "30"}, false},
		{"over", []string{"60", "40.02"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owners := make([]CoOwner, 0, len(tt.shares))
			for _, s := range tt.shares {
				owners = append(owners, CoOwner{Percentage: pct(s)})
			}
			if got := SharesSumTo100(owners); got != tt.want {
				t.Errorf("SharesSumTo100(%v) = %v, want %v", tt.shares, got, tt.want)
			}
		})
	}
}

func TestPayment_Outstanding(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		paid     string
		want     string
	}{
		{"nothing paid", "1000", "0", "1000"},
		{"partial", "1000", "400", "600"},
		{"overpaid", "1000", "1200", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Payment{ExpectedAmount: pct(tt.expected), PaidAmount: pct(tt.paid)}
			if got := p.Outstanding(); !got.Equal(pct(tt.want)) {
				t.Errorf("Outstanding() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPayment_IsSettled(t *testing.T) {
	p := &Payment{Status: PaymentPaid, ExpectedAmount: pct("1000"), PaidAmount: pct("1000")}
	if !p.IsSettled() {
		t.Error("expected settled payment")
	}
	p.Status = PaymentPartial
	if p.IsSettled() {
		t.Error("partial status must not count as settled")
	}
	p.Status = PaymentPaid
	p.PaidAmount = pct("999.99")
	if p.IsSettled() {
		t.Error("underpaid payment must not count as settled")
	}
}

func TestContract_IsActive(t *testing.T) {
	c := &Contract{Status: ContractActive}
	if !c.IsActive() {
		t.Error("expected active contract")
	}
	c.Status = ContractTerminated
	if c.IsActive() {
		t.Error("terminated contract reported active")
	}
}

func TestAll(t *testing.T) {
	if got := len(All()); got != 9 {
		t.Errorf("All() returned %d models, want 9", got)
	}
}
