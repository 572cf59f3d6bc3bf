// scan_literals.go: numeric-family token conversion.
//
// A token that starts with a digit (or a sign, '$', or leading fraction
// point) can end up as any of: integer, decimal, percent, money, pair,
// tuple, time, date, email, or a based binary literal. The prescan
// fingerprint plus a couple of character probes settle which, then each
// dedicated parser validates the byte shape strictly.
package ren

import (
	"strconv"
	"strings"
)

// scanNumberish converts the numeric-family token under the cursor.
func (s *Scanner) scanNumberish() (tokenKind, error) {
	flags, err := s.prescan()
	if err != nil {
		return 0, err
	}
	text := s.tokenText()

	// Based binary: 2#{..} 16#{..} 64#{..}. The '#' ends the prefix and
	// the brace body follows immediately.
	if strings.HasSuffix(text, "#") && s.peek() == '{' {
		base, err := strconv.Atoi(text[:len(text)-1])
		if err != nil || (base != 2 && base != 16 && base != 64) {
			return 0, s.scanErr(ErrInvalid, "binary")
		}
		return s.scanBinary(base)
	}

	if flags&(1<<specAt) != 0 {
		return s.finishEmail(text)
	}

	if flags&(1<<specColon) != 0 {
		nano, err := parseTime(text)
		if err != nil {
			return 0, s.scanErr(ErrInvalid, "time")
		}
		s.val = TimeVal(nano)
		return tokTime, nil
	}

	if strings.ContainsAny(text, "xX") {
		p, err := parsePair(text)
		if err != nil {
			return 0, s.scanErr(ErrInvalid, "pair")
		}
		s.val = p
		return tokPair, nil
	}

	if strings.Count(text, ".") >= 2 {
		t, err := parseTuple(text)
		if err != nil {
			return 0, s.scanErr(ErrInvalid, "tuple")
		}
		s.val = t
		return tokTuple, nil
	}

	if flags&(1<<specDollar) != 0 || text[0] == '$' {
		m, err := parseMoney(text)
		if err != nil {
			return 0, s.scanErr(ErrInvalid, "money")
		}
		s.val = m
		return tokMoney, nil
	}

	if dash := dateDash(text); dash > 0 {
		d, err := parseDate(text)
		if err != nil {
			return 0, s.scanErr(ErrInvalid, "date")
		}
		// A slash after a date carries the time (and optional zone).
		if s.peek() == '/' && isDigit(s.peekAt(1)) {
			s.cur++
			tstart := s.cur
			if _, err := s.prescan(); err != nil {
				return 0, err
			}
			nano, zone, err := parseTimeZone(string(s.src[tstart:s.cur]))
			if err != nil {
				return 0, s.scanErr(ErrInvalid, "date")
			}
			d.Nano = nano
			d.Zone = zone
		}
		s.val = DateVal(d)
		return tokDate, nil
	}

	if strings.HasSuffix(text, "%") {
		f, err := parseFloatLit(text[:len(text)-1])
		if err != nil {
			return 0, s.scanErr(ErrInvalid, "percent")
		}
		s.val = Percent(f / 100)
		return tokPercent, nil
	}

	if strings.ContainsAny(text, ".,eE") {
		f, err := parseFloatLit(text)
		if err != nil {
			return 0, s.scanErr(ErrInvalid, "decimal")
		}
		s.val = Dec(f)
		return tokDecimal, nil
	}

	n, err := strconv.ParseInt(stripTicks(text), 10, 64)
	if err != nil {
		return 0, s.scanErr(ErrInvalid, "integer")
	}
	s.val = Int(n)
	return tokInteger, nil
}

// stripTicks drops digit-group ticks: 1'000'000.
func stripTicks(text string) string {
	if strings.IndexByte(text, '\'') < 0 {
		return text
	}
	return strings.ReplaceAll(text, "'", "")
}

// parseFloatLit parses a decimal literal. A comma is accepted as the
// fractional separator only when no dot is present.
func parseFloatLit(text string) (float64, error) {
	text = stripTicks(text)
	if i := strings.IndexByte(text, ','); i >= 0 {
		if strings.IndexByte(text, '.') >= 0 {
			return 0, strconv.ErrSyntax
		}
		text = strings.Replace(text, ",", ".", 1)
		if strings.IndexByte(text, ',') >= 0 {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseFloat(text, 64)
}

// dateDash finds the dash that separates date parts, skipping a leading
// sign and exponent minus signs. Returns 0 when the token is not date
// shaped.
func dateDash(text string) int {
	for i := 1; i < len(text); i++ {
		if text[i] != '-' {
			continue
		}
		prev := text[i-1]
		if prev == 'e' || prev == 'E' {
			continue
		}
		return i
	}
	return 0
}

var monthNames = [12]string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// monthNumber matches a month name or its 3-letter prefix, case-folded.
func monthNumber(part string) (int, bool) {
	if len(part) < 3 {
		return 0, false
	}
	low := strings.ToLower(part)
	for i, name := range monthNames {
		if len(low) <= len(name) && strings.HasPrefix(name, low) {
			return i + 1, true
		}
	}
	return 0, false
}

var daysInMonth = [12]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// parseDate parses d-m-y or y-m-d, with the month numeric or named.
func parseDate(text string) (Date, error) {
	parts := strings.Split(text, "-")
	if len(parts) != 3 {
		return Date{}, strconv.ErrSyntax
	}

	month, named := monthNumber(parts[1])
	if !named {
		m, err := strconv.Atoi(parts[1])
		if err != nil {
			return Date{}, strconv.ErrSyntax
		}
		month = m
	}

	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, strconv.ErrSyntax
	}
	b, err := strconv.Atoi(parts[2])
	if err != nil {
		return Date{}, strconv.ErrSyntax
	}

	day, year, yearStr := a, b, parts[2]
	if len(parts[0]) >= 4 || a > 31 {
		day, year, yearStr = b, a, parts[0]
	}
	if len(yearStr) == 2 {
		// Two-digit years pivot at 50.
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}

	if month < 1 || month > 12 || day < 1 || day > daysInMonth[month-1] {
		return Date{}, strconv.ErrSyntax
	}
	return Date{Year: year, Month: month, Day: day, Nano: -1}, nil
}

// parseTime parses [-]h:m, h:m:s or h:m:s.frac into nanoseconds.
func parseTime(text string) (int64, error) {
	neg := false
	if len(text) > 0 && (text[0] == '-' || text[0] == '+') {
		neg = text[0] == '-'
		text = text[1:]
	}
	parts := strings.Split(text, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, strconv.ErrSyntax
	}
	h, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, strconv.ErrSyntax
	}
	m, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || m < 0 || m > 59 {
		return 0, strconv.ErrSyntax
	}
	var secs float64
	if len(parts) == 3 {
		secs, err = parseFloatLit(parts[2])
		if err != nil || secs < 0 || secs >= 60 {
			return 0, strconv.ErrSyntax
		}
	}
	nano := h*3600*1e9 + m*60*1e9 + int64(secs*1e9)
	if neg {
		nano = -nano
	}
	return nano, nil
}

// parseTimeZone parses the time part after a date slash, with an optional
// +h:mm or -h:mm zone suffix. The zone is returned in minutes.
func parseTimeZone(text string) (int64, int, error) {
	zone := 0
	for i := 1; i < len(text); i++ {
		if text[i] != '+' && text[i] != '-' {
			continue
		}
		zparts := strings.Split(text[i+1:], ":")
		zh, err := strconv.Atoi(zparts[0])
		if err != nil {
			return 0, 0, strconv.ErrSyntax
		}
		zm := 0
		if len(zparts) == 2 {
			zm, err = strconv.Atoi(zparts[1])
			if err != nil {
				return 0, 0, strconv.ErrSyntax
			}
		} else if len(zparts) > 2 {
			return 0, 0, strconv.ErrSyntax
		}
		zone = zh*60 + zm
		if text[i] == '-' {
			zone = -zone
		}
		text = text[:i]
		break
	}
	nano, err := parseTime(text)
	if err != nil {
		return 0, 0, err
	}
	return nano, zone, nil
}

// parsePair parses AxB with decimal halves.
func parsePair(text string) (Value, error) {
	i := strings.IndexAny(text, "xX")
	if i <= 0 || i == len(text)-1 {
		return Void, strconv.ErrSyntax
	}
	x, err := parseFloatLit(text[:i])
	if err != nil {
		return Void, err
	}
	y, err := parseFloatLit(text[i+1:])
	if err != nil {
		return Void, err
	}
	return PairVal(float32(x), float32(y)), nil
}

// parseTuple parses dotted byte sequences like 1.2.3 or 255.255.255.0.
func parseTuple(text string) (Value, error) {
	parts := strings.Split(text, ".")
	if len(parts) < 3 || len(parts) > 10 {
		return Void, strconv.ErrSyntax
	}
	var t Tuple
	t.Len = len(parts)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return Void, strconv.ErrSyntax
		}
		t.Bytes[i] = byte(n)
	}
	return TupleVal(t), nil
}

// parseMoney parses [+-]$digits[.digits].
func parseMoney(text string) (Value, error) {
	neg := false
	if len(text) > 0 && (text[0] == '+' || text[0] == '-') {
		neg = text[0] == '-'
		text = text[1:]
	}
	if len(text) < 2 || text[0] != '$' {
		return Void, strconv.ErrSyntax
	}
	f, err := parseFloatLit(text[1:])
	if err != nil {
		return Void, err
	}
	if neg {
		f = -f
	}
	return Money(f), nil
}
