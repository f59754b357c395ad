package version

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Minter decides the token for a file with no previous token, and the next
// token after a previous one.
//
// Next must return a token strictly greater than prev or an overflow error.
type Minter interface {
	Initial(today time.Time) (Token, error)
	Next(prev Token, today time.Time) (Token, error)
}

// MaxDailySequence is the last sequence slot of a DateSerial day.
const MaxDailySequence = 99

// DateSerial mints YYYYMMDDnn zone serials.
//
//   - No previous token: today with sequence 00.
//   - Previous dated today: sequence + 1. Sequence 99 is an overflow error.
//   - Previous dated before today: today with sequence 00.
//   - Previous dated after today, or not date-shaped: previous + 1, so the
//     serial never goes backwards.
type DateSerial struct{}

// Initial returns today's first serial.
func (DateSerial) Initial(today time.Time) (Token, error) {
	return dateToken(today, 0)
}

// Next returns the serial following prev.
func (DateSerial) Next(prev Token, today time.Time) (Token, error) {
	day, ok := dayOf(today)
	if !ok {
		return 0, newOverflowError("date %s does not fit a serial", today.Format(time.DateOnly))
	}

	prevDay, seq, dated := SplitDateSerial(prev)
	switch {
	case dated && prevDay < day:
		return Token(day * 100), nil
	case dated:
		// Same day, or a previous serial from the future.
		if seq >= MaxDailySequence {
			return 0, newOverflowError("serial %s: daily sequence exhausted", prev)
		}
		return prev + 1, nil
	default:
		if prev == math.MaxUint32 {
			return 0, newOverflowError("serial %s: integer range exhausted", prev)
		}
		return prev + 1, nil
	}
}

// SplitDateSerial splits a YYYYMMDDnn token into its date and sequence.
// ok is false when the token does not carry a valid calendar date.
func SplitDateSerial(t Token) (day uint32, seq uint32, ok bool) {
	day = uint32(t) / 100
	seq = uint32(t) % 100
	if day < 10000101 {
		return 0, 0, false
	}
	if _, err := time.Parse("20060102", fmt.Sprintf("%08d", day)); err != nil {
		return 0, 0, false
	}
	return day, seq, true
}

func dayOf(t time.Time) (uint32, bool) {
	y, m, d := t.Date()
	if y < 1000 || y > 4294 {
		return 0, false
	}
	return uint32(y)*10000 + uint32(m)*100 + uint32(d), true
}

func dateToken(t time.Time, seq uint32) (Token, error) {
	day, ok := dayOf(t)
	if !ok {
		return 0, newOverflowError("date %s does not fit a serial", t.Format(time.DateOnly))
	}
	return Token(day*100 + seq), nil
}

// Counter mints a plain increasing integer, starting at 1.
type Counter struct{}

// Initial returns 1.
func (Counter) Initial(time.Time) (Token, error) {
	return 1, nil
}

// Next returns prev + 1.
func (Counter) Next(prev Token, _ time.Time) (Token, error) {
	if prev == math.MaxUint32 {
		return 0, newOverflowError("serial %s: integer range exhausted", prev)
	}
	return prev + 1, nil
}

// MinterByName resolves a minting scheme name: "date" (default) or "counter".
func MinterByName(name string) (Minter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "date":
		return DateSerial{}, nil
	case "counter":
		return Counter{}, nil
	default:
		return nil, fmt.Errorf("unknown serial scheme %q (want date or counter)", name)
	}
}
