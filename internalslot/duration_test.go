package internalslot

import (
	"testing"
	"time"

	"github.com/dragonation/rogiso-go/base"
)

func TestDurationComponents(t *testing.T) {
	d := NewDuration(base.MakeNull(), 90*time.Minute)
	if d.Hours() != 1.5 {
		t.Fatalf("expected 1.5 hours, got %f", d.Hours())
	}
	if d.Minutes() != 90 {
		t.Fatalf("expected 90 minutes, got %f", d.Minutes())
	}
}

func TestDurationSetters(t *testing.T) {
	d := NewDuration(base.MakeNull(), 0)
	d.SetDays(2)
	if d.Days() != 2 {
		t.Fatalf("expected 2 days, got %f", d.Days())
	}
	d.SetHours(3)
	if d.Hours() != 3 {
		t.Fatalf("expected 3 hours, got %f", d.Hours())
	}
}

func TestDurationAsNumberAndFromNumber(t *testing.T) {
	d := NewDuration(base.MakeNull(), 0)
	d.FromNumber(42)
	if d.AsNumber() != 42 {
		t.Fatalf("expected 42, got %f", d.AsNumber())
	}
}

func TestDurationAsString(t *testing.T) {
	d := NewDurationFromSeconds(base.MakeNull(), float64(secondsPerDay+3661))
	s := d.AsString()
	if s != "1 day 01:01:01" {
		t.Fatalf("unexpected formatted duration: %q", s)
	}
}

func TestDurationAsStringNegative(t *testing.T) {
	d := NewDurationFromSeconds(base.MakeNull(), -3661)
	s := d.AsString()
	if s != "-01:01:01" {
		t.Fatalf("unexpected formatted negative duration: %q", s)
	}
}

func TestDurationAddAndSub(t *testing.T) {
	a := NewDuration(base.MakeNull(), time.Hour)
	b := NewDuration(base.MakeNull(), 30*time.Minute)
	sum := a.Add(b)
	if sum.Hours() != 1.5 {
		t.Fatalf("expected 1.5 hours, got %f", sum.Hours())
	}
	diff := a.Sub(b)
	if diff.Minutes() != 30 {
		t.Fatalf("expected 30 minutes, got %f", diff.Minutes())
	}
}

func TestDurationAsTimeDuration(t *testing.T) {
	d := NewDuration(base.MakeNull(), 2*time.Hour)
	if d.AsTimeDuration() != 2*time.Hour {
		t.Fatalf("expected round-trip through time.Duration")
	}
}
