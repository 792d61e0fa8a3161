// Package numbering renders and parses BAST and contract document numbers
package numbering

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Segment constants embedded in every issued number
const (
	BastSegment       = "BAST-BM"
	DepartmentSegment = "DISPUPR"
)

var (
	ErrInvalidSequence = errors.New("sequence must be at least 1")
	ErrInvalidMonth    = errors.New("month must be between 1 and 12")
	ErrMalformedNumber = errors.New("document number does not match the expected format")
)

var romanMonths = [...]string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}

var (
	bastPattern     = regexp.MustCompile(`^(\d+)/BAST-BM/([IVX]+)/(\d{4})$`)
	contractPattern = regexp.MustCompile(`^(\d{3})/DISPUPR/(BM|BM-KONS)/(SP|SPK)/(\d+)/([IVX]+)/(\d{4})$`)
)

// FormatSequence zero-pads sequences 1-9 to two digits and returns larger values as plain decimals
func FormatSequence(seq int64) (string, error) {
	if seq < 1 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidSequence, seq)
	}
	if seq <= 9 {
		return "0" + strconv.FormatInt(seq, 10), nil
	}
	return strconv.FormatInt(seq, 10), nil
}

// RomanMonth converts a month number (1-12) to its Roman numeral
func RomanMonth(month int) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}
	return romanMonths[month-1], nil
}

// monthFromRoman is the inverse of RomanMonth
func monthFromRoman(roman string) (int, bool) {
	for i, r := range romanMonths {
		if r == roman {
			return i + 1, true
		}
	}
	return 0, false
}

// BastNumber renders {seq}/BAST-BM/{romanMonth}/{year}
func BastNumber(seq int64, month, year int) (string, error) {
	s, err := FormatSequence(seq)
	if err != nil {
		return "", err
	}
	m, err := RomanMonth(month)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s/%d", s, BastSegment, m, year), nil
}

// ContractNumber renders {location}/DISPUPR/{workType}/{procurementType}/{seq}/{romanMonth}/{year}
func ContractNumber(location, workType, procurementType string, seq int64, month, year int) (string, error) {
	s, err := FormatSequence(seq)
	if err != nil {
		return "", err
	}
	m, err := RomanMonth(month)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s/%s/%d", location, DepartmentSegment, workType, procurementType, s, m, year), nil
}

// BastParts holds the segments of a parsed BAST number
type BastParts struct {
	Sequence int64
	Month    int
	Year     int
}

// ContractParts holds the segments of a parsed contract number
type ContractParts struct {
	LocationCode    string
	WorkType        string
	ProcurementType string
	Sequence        int64
	Month           int
	Year            int
}

// ParseBastNumber extracts the segments of a stored BAST number
func ParseBastNumber(number string) (*BastParts, error) {
	m := bastPattern.FindStringSubmatch(number)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedNumber, number)
	}
	seq, month, year, err := parseTail(m[1], m[2], m[3])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedNumber, number)
	}
	return &BastParts{Sequence: seq, Month: month, Year: year}, nil
}

// ParseContractNumber extracts the segments of a stored contract number
func ParseContractNumber(number string) (*ContractParts, error) {
	m := contractPattern.FindStringSubmatch(number)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedNumber, number)
	}
	seq, month, year, err := parseTail(m[4], m[5], m[6])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedNumber, number)
	}
	return &ContractParts{
		LocationCode:    m[1],
		WorkType:        m[2],
		ProcurementType: m[3],
		Sequence:        seq,
		Month:           month,
		Year:            year,
	}, nil
}

func parseTail(seqStr, roman, yearStr string) (int64, int, int, error) {
	seq, err := strconv.ParseInt(seqStr, 10, 64)
	if err != nil || seq < 1 {
		return 0, 0, 0, ErrInvalidSequence
	}
	month, ok := monthFromRoman(roman)
	if !ok {
		return 0, 0, 0, ErrInvalidMonth
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return 0, 0, 0, err
	}
	return seq, month, year, nil
}
