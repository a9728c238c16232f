package internalslot

import (
	"fmt"
	"math"
	"time"

	"gitlab.com/variadico/lctime"

	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/ctx"
	"github.com/dragonation/rogiso-go/util"
)

// Date is the internal slot backing every Date value: a wrapped time.Time
// with the component accessors and mutators the teacher's coreext/date
// package exposes as Io methods, stripped down to plain Go calls since this
// layer has no message dispatch of its own. It holds no value or symbol
// references, so it embeds ctx.DefaultInternalSlot rather than tracking any.
type Date struct {
	ctx.DefaultInternalSlot

	lock    *util.RwLock
	subject base.Value
	time    time.Time
}

// NewDate wraps t as a Date internal slot owned by subject.
func NewDate(subject base.Value, t time.Time) *Date {
	return &Date{lock: util.NewRwLock(), subject: subject, time: t}
}

func (d *Date) Subject() base.Value { return d.subject }

func (d *Date) RefreshSubject(subject base.Value) {
	guard := d.lock.LockWrite()
	defer guard.Unlock()
	d.subject = subject
}

func (d *Date) Time() time.Time {
	guard := d.lock.LockRead()
	defer guard.Unlock()
	return d.time
}

func (d *Date) SetTime(t time.Time) {
	guard := d.lock.LockWrite()
	defer guard.Unlock()
	d.time = t
}

// AsNumber converts the date into seconds since 1970-01-01 00:00:00 UTC.
func (d *Date) AsNumber() float64 {
	return float64(d.Time().UnixNano()) / 1e9
}

// AsString formats the date using ANSI C strftime directives (the default
// format is "%Y-%m-%d %H:%M:%S %Z"). See lctime.Strftime for the supported
// directive set.
func (d *Date) AsString(format string) string {
	if format == "" {
		format = "%Y-%m-%d %H:%M:%S %Z"
	}
	return lctime.Strftime(format, d.Time())
}

// FromString parses s against the given strftime format and replaces the
// wrapped time with the result.
func (d *Date) FromString(s, format string) error {
	longDate := time.Date(2006, time.January, 2, 15, 4, 5, 0, time.FixedZone("MST", -7*60*60))
	longForm := lctime.Strftime(format, longDate)

	t, err := time.Parse(longForm, s)
	if err != nil {
		return base.NewErrorf(base.TypeNotMatch, "argument is not a valid date string (%s)", longForm)
	}

	d.SetTime(t)
	return nil
}

func (d *Date) Year() int   { return d.Time().Year() }
func (d *Date) Month() int  { return int(d.Time().Month()) }
func (d *Date) Day() int    { return d.Time().Day() }
func (d *Date) Hour() int   { return d.Time().Hour() }
func (d *Date) Minute() int { return d.Time().Minute() }

// Second returns the fractional number of seconds within the minute.
func (d *Date) Second() float64 {
	t := d.Time()
	return float64(t.Second()) + float64(t.Nanosecond())/1e9
}

func (d *Date) SetYear(year int) {
	t := d.Time()
	d.SetTime(time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()))
}

func (d *Date) SetMonth(month int) {
	t := d.Time()
	d.SetTime(time.Date(t.Year(), time.Month(month), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()))
}

func (d *Date) SetDay(day int) {
	t := d.Time()
	d.SetTime(time.Date(t.Year(), t.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()))
}

func (d *Date) SetHour(hour int) {
	t := d.Time()
	d.SetTime(time.Date(t.Year(), t.Month(), t.Day(), hour, t.Minute(), t.Second(), t.Nanosecond(), t.Location()))
}

func (d *Date) SetMinute(minute int) {
	t := d.Time()
	d.SetTime(time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), minute, t.Second(), t.Nanosecond(), t.Location()))
}

// SetSecond sets the (fractional) second of the date.
func (d *Date) SetSecond(second float64) {
	t := d.Time()
	s := int(second)
	ns := int((second - math.Floor(second)) * 1e9)
	d.SetTime(time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), s, ns, t.Location()))
}

// GMTOffset returns the date's timezone offset to UTC as a string, using
// Io's minutes-west-of-UTC convention rather than Go's seconds-east.
func (d *Date) GMTOffset() string {
	_, offset := d.Time().Zone()
	return fmt.Sprintf("%+03d%02d", offset/-3600, offset/60%60)
}

func (d *Date) GMTOffsetSeconds() float64 {
	_, offset := d.Time().Zone()
	return -float64(offset)
}

// SetGMTOffset sets the timezone to a fixed zone the given number of
// minutes west of UTC.
func (d *Date) SetGMTOffset(minutesWest float64) {
	secondsWest := int(minutesWest * -60)
	var loc *time.Location
	if secondsWest == 0 {
		loc = time.FixedZone("UTC", 0)
	} else {
		mw := secondsWest / 60
		loc = time.FixedZone(fmt.Sprintf("UTC%+03d%02d", mw/-60, mw%60), secondsWest)
	}
	t := d.Time()
	d.SetTime(time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc))
}

func (d *Date) ConvertToUTC()   { d.SetTime(d.Time().UTC()) }
func (d *Date) ConvertToLocal() { d.SetTime(d.Time().Local()) }

func (d *Date) ConvertToLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return base.NewErrorf(base.TypeNotMatch, "unknown timezone %q", name)
	}
	d.SetTime(d.Time().In(loc))
	return nil
}

// IsDST reports whether the date falls within daylight saving time, by
// comparing its UTC offset against the offset six months away (there is no
// direct DST flag on time.Time).
func (d *Date) IsDST() bool {
	t := d.Time()
	year, month := t.Year(), t.Month()
	if month < time.July {
		month += 6
		year--
	} else {
		month -= 6
	}
	other := time.Date(year, month, t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	_, s1 := t.Zone()
	_, s2 := other.Zone()
	return s1 > s2
}

func (d *Date) IsPast() bool { return d.Time().Before(time.Now()) }

// SecondsSince returns the number of seconds between d and other, i.e.
// d - other.
func (d *Date) SecondsSince(other *Date) float64 {
	return d.Time().Sub(other.Time()).Seconds()
}

func (d *Date) SecondsSinceNow() float64 {
	return time.Since(d.Time()).Seconds()
}

// Add returns a new Date offset from d by dur.
func (d *Date) Add(dur time.Duration) *Date {
	return NewDate(d.subject, d.Time().Add(dur))
}

// Sub returns the duration between d and other, i.e. d - other.
func (d *Date) Sub(other *Date) time.Duration {
	return d.Time().Sub(other.Time())
}
