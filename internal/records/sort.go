package records

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"health-portal/internal/models"
)

// Order selects the comparator applied after filtering.
type Order string

const (
	OrderNone     Order = ""
	OrderDateAsc  Order = "date"
	OrderDateDesc Order = "-date"
	OrderName     Order = "name"
)

// ParseOrder accepts "", "date", "-date" and "name".
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderNone, OrderDateAsc, OrderDateDesc, OrderName:
		return o, nil
	}
	return OrderNone, fmt.Errorf("unknown sort order %q", s)
}

// sortKeys extracts the comparison keys for one entity type.
type sortKeys[T any] struct {
	date func(*T) time.Time
	name func(*T) string
}

// sorted returns a stably sorted copy; ties keep input order.
func sorted[T any](items []*T, o Order, k sortKeys[T]) []*T {
	out := slices.Clone(items)
	switch o {
	case OrderDateAsc:
		slices.SortStableFunc(out, func(a, b *T) int { return k.date(a).Compare(k.date(b)) })
	case OrderDateDesc:
		slices.SortStableFunc(out, func(a, b *T) int { return k.date(b).Compare(k.date(a)) })
	case OrderName:
		slices.SortStableFunc(out, func(a, b *T) int {
			return strings.Compare(strings.ToLower(k.name(a)), strings.ToLower(k.name(b)))
		})
	}
	return out
}

// parseDay parses a calendar date, optionally followed by an HH:MM time.
// Unparseable values sort as the zero time.
func parseDay(date, clock string) time.Time {
	if clock != "" {
		if t, err := time.Parse(models.DateLayout+" 15:04", date+" "+clock); err == nil {
			return t
		}
	}
	t, _ := time.Parse(models.DateLayout, date)
	return t
}

// SortAppointments orders by date and time, or by the counterpart's name.
func SortAppointments(items []*models.Appointment, v Viewer, o Order) []*models.Appointment {
	return sorted(items, o, sortKeys[models.Appointment]{
		date: func(a *models.Appointment) time.Time { return parseDay(a.Date, a.Time) },
		name: func(a *models.Appointment) string { return counterpartName(v, a) },
	})
}

// SortMedicalRecords orders by record date, or by title.
func SortMedicalRecords(items []*models.MedicalRecord, o Order) []*models.MedicalRecord {
	return sorted(items, o, sortKeys[models.MedicalRecord]{
		date: func(r *models.MedicalRecord) time.Time { return parseDay(r.Date, "") },
		name: func(r *models.MedicalRecord) string { return r.Title },
	})
}

// SortPrescriptions orders by end date, or by medication.
func SortPrescriptions(items []*models.Prescription, o Order) []*models.Prescription {
	return sorted(items, o, sortKeys[models.Prescription]{
		date: func(p *models.Prescription) time.Time { return parseDay(p.EndDate, "") },
		name: func(p *models.Prescription) string { return p.Medication },
	})
}

// SortMessages orders by timestamp, or by the other party's name.
func SortMessages(items []*models.Message, v Viewer, o Order) []*models.Message {
	return sorted(items, o, sortKeys[models.Message]{
		date: func(m *models.Message) time.Time { return m.Timestamp },
		name: func(m *models.Message) string {
			if v != nil && m.SenderID == v.UserID() {
				return m.RecipientName
			}
			return m.SenderName
		},
	})
}
