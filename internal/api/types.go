package api

import "strings"

// Response is the envelope of an Al Adhan timings reply. Only the fields a
// prayer provider reads are decoded; the rest of the payload is ignored.
type Response struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   Data   `json:"data"`
}

type Data struct {
	Timings Timings  `json:"timings"`
	Date    DateInfo `json:"date"`
	Meta    Meta     `json:"meta"`
}

// Timings holds each event as "HH:MM", sometimes followed by a zone label
// such as " (WIB)" that ParseTimings strips.
type Timings struct {
	Fajr       string `json:"Fajr"`
	Sunrise    string `json:"Sunrise"`
	Dhuhr      string `json:"Dhuhr"`
	Asr        string `json:"Asr"`
	Sunset     string `json:"Sunset"`
	Maghrib    string `json:"Maghrib"`
	Isha       string `json:"Isha"`
	Imsak      string `json:"Imsak"`
	Midnight   string `json:"Midnight"`
	Firstthird string `json:"Firstthird"`
	Lastthird  string `json:"Lastthird"`
}

// DateInfo carries the calendar labels shown beside the times.
type DateInfo struct {
	Hijri     HijriDate     `json:"hijri"`
	Gregorian GregorianDate `json:"gregorian"`
}

// Month is a month name in its English transliteration.
type Month struct {
	En string `json:"en"`
}

type HijriDate struct {
	Day         string      `json:"day"`
	Month       Month       `json:"month"`
	Year        string      `json:"year"`
	Designation Designation `json:"designation"`
}

type Designation struct {
	Abbreviated string `json:"abbreviated"`
}

// Format returns "21 Ramaḍān 1447 AH", or "" when a part is missing.
func (h HijriDate) Format() string {
	s := dayMonthYear(h.Day, h.Month, h.Year)
	if s == "" {
		return ""
	}
	if h.Designation.Abbreviated == "" {
		return s + " AH"
	}
	return s + " " + h.Designation.Abbreviated
}

type GregorianDate struct {
	Day   string `json:"day"`
	Month Month  `json:"month"`
	Year  string `json:"year"`
}

// Format returns "10 March 2026", or "" when a part is missing.
func (g GregorianDate) Format() string {
	return dayMonthYear(g.Day, g.Month, g.Year)
}

func dayMonthYear(day string, m Month, year string) string {
	if day == "" || m.En == "" || year == "" {
		return ""
	}
	return strings.Join([]string{day, m.En, year}, " ")
}

// Meta describes how the times were computed.
type Meta struct {
	Timezone string     `json:"timezone"`
	Method   MethodInfo `json:"method"`
}

type MethodInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
