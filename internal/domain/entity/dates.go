package entity

import "time"

// DateLayout formato de fechas calendario en la API (ISO-8601).
const DateLayout = "2006-01-02"

// DateRange rango inclusivo de fechas calendario; un límite nil no restringe.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains indica si d cae dentro del rango.
func (r DateRange) Contains(d time.Time) bool {
	d = TruncateDate(d)
	if r.From != nil && d.Before(TruncateDate(*r.From)) {
		return false
	}
	if r.To != nil && d.After(TruncateDate(*r.To)) {
		return false
	}
	return true
}

// TruncateDate normaliza t a la medianoche UTC de su fecha calendario.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate compara solo la fecha calendario.
func SameDate(a, b time.Time) bool {
	return TruncateDate(a).Equal(TruncateDate(b))
}

// ParseDate interpreta "YYYY-MM-DD".
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
