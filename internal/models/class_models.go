package models

import (
	"strings"

	"golang.org/x/text/width"
)

// ClassCategory is the kind of class a member checks into.
type ClassCategory string

const (
	ClassGroup     ClassCategory = "group"
	ClassPrivate   ClassCategory = "private"
	ClassKidsGroup ClassCategory = "kids_group"
)

// Group class periods, derived from the time slot.
const (
	PeriodMorning = "morning"
	PeriodEvening = "evening"
)

// KidsGroupTimeSlot is the only slot offered for kids' group classes.
const KidsGroupTimeSlot = "10:30-12:00"

var (
	groupTimeSlots   = []string{"09:00-10:30", "17:00-18:30"}
	kidsTimeSlots    = []string{KidsGroupTimeSlot}
	privateTimeSlots = []string{
		"07:00-08:00",
		"08:00-09:00",
		"10:30-11:30",
		"14:00-15:00",
		"15:00-16:00",
		"16:00-17:00",
		"18:30-19:30",
	}
)

// ParseClassCategory maps a raw category (including the legacy "kids group"
// spelling) to a ClassCategory.
func ParseClassCategory(raw string) (ClassCategory, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "group", "class", "团课":
		return ClassGroup, true
	case "private", "私教", "私教课":
		return ClassPrivate, true
	case "kids_group", "kids group", "kids", "儿童团课":
		return ClassKidsGroup, true
	}
	return "", false
}

// IsValid reports whether c is one of the known class categories.
func (c ClassCategory) IsValid() bool {
	switch c {
	case ClassGroup, ClassPrivate, ClassKidsGroup:
		return true
	}
	return false
}

// TimeSlotsFor returns the fixed slots offered for a category.
func TimeSlotsFor(c ClassCategory) []string {
	var slots []string
	switch c {
	case ClassGroup:
		slots = groupTimeSlots
	case ClassKidsGroup:
		slots = kidsTimeSlots
	case ClassPrivate:
		slots = privateTimeSlots
	}
	return append([]string(nil), slots...)
}

// NormalizeTimeSlot folds full-width characters, drops whitespace and pads
// single-digit hours, so "9:00-10:30" becomes "09:00-10:30". Input that does
// not look like a slot is returned trimmed and otherwise untouched.
func NormalizeTimeSlot(raw string) string {
	s := width.Narrow.String(strings.TrimSpace(raw))
	s = strings.Join(strings.Fields(s), "")
	bounds := strings.Split(s, "-")
	if len(bounds) != 2 {
		return s
	}
	for i, b := range bounds {
		hm := strings.Split(b, ":")
		if len(hm) != 2 || len(hm[0]) == 0 || len(hm[0]) > 2 {
			return s
		}
		if len(hm[0]) == 1 {
			hm[0] = "0" + hm[0]
		}
		bounds[i] = hm[0] + ":" + hm[1]
	}
	return bounds[0] + "-" + bounds[1]
}

// IsValidTimeSlot reports whether slot (already normalized) is offered for c.
func IsValidTimeSlot(c ClassCategory, slot string) bool {
	for _, s := range TimeSlotsFor(c) {
		if s == slot {
			return true
		}
	}
	return false
}

// ClassPeriodFor returns the morning/evening period of a group class slot,
// or an empty string for other categories.
func ClassPeriodFor(c ClassCategory, slot string) string {
	if c != ClassGroup {
		return ""
	}
	switch slot {
	case "09:00-10:30":
		return PeriodMorning
	case "17:00-18:30":
		return PeriodEvening
	}
	return ""
}
