package internalslot

import (
	"testing"
	"time"

	"github.com/dragonation/rogiso-go/base"
)

func TestDateComponents(t *testing.T) {
	d := NewDate(base.MakeNull(), time.Date(2001, time.September, 9, 1, 46, 40, 0, time.UTC))
	if d.Year() != 2001 || d.Month() != 9 || d.Day() != 9 {
		t.Fatalf("unexpected date components: %d-%d-%d", d.Year(), d.Month(), d.Day())
	}
	if d.Hour() != 1 || d.Minute() != 46 || d.Second() != 40 {
		t.Fatalf("unexpected time components: %d:%d:%f", d.Hour(), d.Minute(), d.Second())
	}
}

func TestDateAsNumber(t *testing.T) {
	d := NewDate(base.MakeNull(), time.Date(2001, time.September, 9, 1, 46, 40, 0, time.UTC))
	if d.AsNumber() != 1000000000 {
		t.Fatalf("expected 1000000000, got %f", d.AsNumber())
	}
}

func TestDateSetters(t *testing.T) {
	d := NewDate(base.MakeNull(), time.Date(2001, time.September, 9, 1, 46, 40, 0, time.UTC))
	d.SetYear(2020)
	d.SetMonth(1)
	d.SetDay(2)
	d.SetHour(3)
	d.SetMinute(4)
	d.SetSecond(5)
	if d.Year() != 2020 || d.Month() != 1 || d.Day() != 2 {
		t.Fatalf("date setters did not apply")
	}
	if d.Hour() != 3 || d.Minute() != 4 || d.Second() != 5 {
		t.Fatalf("time setters did not apply")
	}
}

func TestDateAsStringExplicitFormat(t *testing.T) {
	d := NewDate(base.MakeNull(), time.Date(2001, time.September, 9, 1, 46, 40, 0, time.UTC))
	s := d.AsString("%Y-%m-%d %H:%M:%S")
	if s != "2001-09-09 01:46:40" {
		t.Fatalf("unexpected formatted date: %q", s)
	}
}

func TestDateFromString(t *testing.T) {
	d := NewDate(base.MakeNull(), time.Time{})
	if err := d.FromString("2001-09-09 01:46:40", "%Y-%m-%d %H:%M:%S"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2001 || d.Month() != 9 || d.Day() != 9 {
		t.Fatalf("parsed date mismatch: %v", d.Time())
	}
}

func TestDateFromStringInvalid(t *testing.T) {
	d := NewDate(base.MakeNull(), time.Time{})
	if err := d.FromString("not a date", "%Y-%m-%d"); err == nil {
		t.Fatalf("expected an error for an unparsable date string")
	}
}

func TestDateIsPast(t *testing.T) {
	past := NewDate(base.MakeNull(), time.Now().Add(-time.Hour))
	future := NewDate(base.MakeNull(), time.Now().Add(time.Hour))
	if !past.IsPast() {
		t.Fatalf("expected past date to be past")
	}
	if future.IsPast() {
		t.Fatalf("expected future date to not be past")
	}
}

func TestDateSecondsSince(t *testing.T) {
	earlier := NewDate(base.MakeNull(), time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC))
	later := NewDate(base.MakeNull(), time.Date(2001, time.January, 1, 0, 1, 0, 0, time.UTC))
	if later.SecondsSince(earlier) != 60 {
		t.Fatalf("expected 60 seconds, got %f", later.SecondsSince(earlier))
	}
}

func TestDateConvertToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*60*60)
	d := NewDate(base.MakeNull(), time.Date(2001, time.January, 1, 8, 0, 0, 0, loc))
	d.ConvertToUTC()
	if d.Hour() != 0 {
		t.Fatalf("expected conversion to UTC to normalize the hour, got %d", d.Hour())
	}
}

func TestDateAddAndSub(t *testing.T) {
	d := NewDate(base.MakeNull(), time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC))
	later := d.Add(time.Hour)
	if later.Hour() != 1 {
		t.Fatalf("expected Add to move the hour forward, got %d", later.Hour())
	}
	if later.Sub(d) != time.Hour {
		t.Fatalf("expected Sub to recover the added duration")
	}
}
