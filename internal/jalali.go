package courier

import (
	"fmt"
	"strings"
	"time"
)

const (
	CalendarPersian   = "persian"
	CalendarGregorian = "gregorian"
)

var persianMonths = [12]string{
	"فروردین", "اردیبهشت", "خرداد", "تیر", "مرداد", "شهریور",
	"مهر", "آبان", "آذر", "دی", "بهمن", "اسفند",
}

var persianDigits = strings.NewReplacer(
	"0", "۰", "1", "۱", "2", "۲", "3", "۳", "4", "۴",
	"5", "۵", "6", "۶", "7", "۷", "8", "۸", "9", "۹",
)

// Timestamp renders t in loc using the given calendar, e.g.
// "۴ اسفند ۱۴۰۴  ساعت ۱۷:۴۰:۱۵" for persian.
func Timestamp(t time.Time, loc *time.Location, calendar string) string {
	if loc != nil {
		t = t.In(loc)
	}
	if !strings.EqualFold(calendar, CalendarPersian) {
		return t.Format("2 January 2006 15:04:05 MST")
	}
	jy, jm, jd := toJalali(t.Year(), int(t.Month()), t.Day())
	date := fmt.Sprintf("%d %s %d", jd, persianMonths[jm-1], jy)
	return persianDigits.Replace(date + "  ساعت " + t.Format("15:04:05"))
}

// toJalali converts a proleptic Gregorian date to the Solar Hijri calendar
// using the 33-year arithmetic cycle.
func toJalali(gy, gm, gd int) (jy, jm, jd int) {
	cumulative := [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}
	gy2 := gy
	if gm > 2 {
		gy2 = gy + 1
	}
	days := 355666 + 365*gy + (gy2+3)/4 - (gy2+99)/100 + (gy2+399)/400 + gd + cumulative[gm-1]

	jy = -1595 + 33*(days/12053)
	days %= 12053
	jy += 4 * (days / 1461)
	days %= 1461
	if days > 365 {
		jy += (days - 1) / 365
		days = (days - 1) % 365
	}
	if days < 186 {
		return jy, 1 + days/31, 1 + days%31
	}
	return jy, 7 + (days-186)/30, 1 + (days-186)%30
}
