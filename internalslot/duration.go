package internalslot

import (
	"fmt"
	"strings"
	"time"

	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/ctx"
	"github.com/dragonation/rogiso-go/util"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	secondsPerYear   = 365 * secondsPerDay
)

// Duration is the internal slot backing every Duration value: a wrapped
// time.Duration with the component accessors and mutators the teacher's
// coreext/duration package exposes as Io methods, stripped down to plain Go
// calls since this layer has no message dispatch of its own. It holds no
// value or symbol references, so it embeds ctx.DefaultInternalSlot rather
// than tracking any.
type Duration struct {
	ctx.DefaultInternalSlot

	lock    *util.RwLock
	subject base.Value
	seconds float64
}

// NewDuration wraps d as a Duration internal slot owned by subject.
func NewDuration(subject base.Value, d time.Duration) *Duration {
	return &Duration{lock: util.NewRwLock(), subject: subject, seconds: d.Seconds()}
}

// NewDurationFromSeconds wraps a raw second count, bypassing time.Duration's
// range (years-scale durations overflow it).
func NewDurationFromSeconds(subject base.Value, seconds float64) *Duration {
	return &Duration{lock: util.NewRwLock(), subject: subject, seconds: seconds}
}

func (d *Duration) Subject() base.Value { return d.subject }

func (d *Duration) RefreshSubject(subject base.Value) {
	guard := d.lock.LockWrite()
	defer guard.Unlock()
	d.subject = subject
}

func (d *Duration) Seconds() float64 {
	guard := d.lock.LockRead()
	defer guard.Unlock()
	return d.seconds
}

func (d *Duration) SetSeconds(seconds float64) {
	guard := d.lock.LockWrite()
	defer guard.Unlock()
	d.seconds = seconds
}

// AsNumber returns the duration in seconds, including any fractional part.
func (d *Duration) AsNumber() float64 { return d.Seconds() }

// FromNumber replaces the wrapped duration with the given number of
// seconds.
func (d *Duration) FromNumber(seconds float64) { d.SetSeconds(seconds) }

func (d *Duration) Years() float64   { return d.Seconds() / secondsPerYear }
func (d *Duration) Days() float64    { return d.Seconds() / secondsPerDay }
func (d *Duration) Hours() float64   { return d.Seconds() / secondsPerHour }
func (d *Duration) Minutes() float64 { return d.Seconds() / secondsPerMinute }

func (d *Duration) SetYears(years float64)     { d.SetSeconds(years * secondsPerYear) }
func (d *Duration) SetDays(days float64)       { d.SetSeconds(days * secondsPerDay) }
func (d *Duration) SetHours(hours float64)     { d.SetSeconds(hours * secondsPerHour) }
func (d *Duration) SetMinutes(minutes float64) { d.SetSeconds(minutes * secondsPerMinute) }

// AsString formats the duration as "%Y years %d days %H:%M:%S", omitting
// the year and day components whenever they are zero, mirroring the teacher's
// coreext/duration presentation.
func (d *Duration) AsString() string {
	remaining := d.Seconds()
	negative := remaining < 0
	if negative {
		remaining = -remaining
	}

	years := int64(remaining / secondsPerYear)
	remaining -= float64(years) * secondsPerYear
	days := int64(remaining / secondsPerDay)
	remaining -= float64(days) * secondsPerDay
	hours := int64(remaining / secondsPerHour)
	remaining -= float64(hours) * secondsPerHour
	minutes := int64(remaining / secondsPerMinute)
	remaining -= float64(minutes) * secondsPerMinute
	seconds := remaining

	var parts []string
	if years != 0 {
		parts = append(parts, pluralize(years, "year"))
	}
	if days != 0 {
		parts = append(parts, pluralize(days, "day"))
	}
	parts = append(parts, fmt.Sprintf("%02d:%02d:%02d", hours, minutes, int64(seconds)))

	result := strings.Join(parts, " ")
	if negative {
		result = "-" + result
	}
	return result
}

func pluralize(count int64, unit string) string {
	if count == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", count, unit)
}

// Add returns a new Duration that is the sum of d and other.
func (d *Duration) Add(other *Duration) *Duration {
	return NewDurationFromSeconds(d.subject, d.Seconds()+other.Seconds())
}

// Sub returns a new Duration that is d minus other.
func (d *Duration) Sub(other *Duration) *Duration {
	return NewDurationFromSeconds(d.subject, d.Seconds()-other.Seconds())
}

// AsTimeDuration converts to a standard library duration, saturating at
// time.Duration's range rather than overflowing silently.
func (d *Duration) AsTimeDuration() time.Duration {
	seconds := d.Seconds()
	const max = float64(1<<63 - 1)
	if seconds*float64(time.Second) > max {
		return time.Duration(max)
	}
	if seconds*float64(time.Second) < -max {
		return time.Duration(-max)
	}
	return time.Duration(seconds * float64(time.Second))
}
