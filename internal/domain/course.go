package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrAlreadyEnrolled  = errors.New("user is already enrolled in this course")
	ErrNotEnrolled      = errors.New("user is not enrolled in this course")
	ErrCourseFull       = errors.New("course has no free slots")
	ErrInvalidStartTime = errors.New("start time must be HH:MM")
)

// Sunday is excluded from roster cleanup.
const Sunday = 6

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayIndex converts a time.Weekday to the course numbering (Monday = 0).
func WeekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func WeekdayName(idx int) string {
	if idx < 0 || idx >= len(weekdayNames) {
		return fmt.Sprintf("day %d", idx)
	}
	return weekdayNames[idx]
}

// ClockTime is a time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

func ParseClockTime(s string) (ClockTime, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return ClockTime{}, ErrInvalidStartTime
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

type Course struct {
	ID        int64
	Name      string
	StartTime *ClockTime
	Location  string
	Month     int
	Year      int
	DayWeek   int // 0 = Monday
	Slots     int // 0 = unlimited
}

// Schedule renders e.g. "Tuesday - 18:30".
func (c *Course) Schedule() string {
	s := WeekdayName(c.DayWeek)
	if c.StartTime != nil {
		s += " - " + c.StartTime.String()
	}
	return s
}

// RosterMember is the public view of an enrolled user.
type RosterMember struct {
	ID   int64
	Name string
}
