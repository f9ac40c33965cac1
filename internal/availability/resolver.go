// Package availability holds the pure scheduling decisions: conflict
// detection, qualified-staff lookup, and open-slot suggestion over an
// immutable snapshot of the catalog and the appointment book.
//
// Nothing here touches storage and nothing here returns an error.
// Absent data (unknown service, no qualified staff, full day) comes
// back as empty results, and malformed date or clock input is treated
// as unavailable.
package availability

import "bookline/pkg/model"

const (
	// Daily suggestion grid: half-hour slots from 08:00 up to, not
	// including, 18:00. The grid is global and ignores individual
	// working hours; those are enforced at assignment time.
	gridStartMinutes = 8 * 60
	gridEndMinutes   = 18 * 60
	slotMinutes      = 30

	// Duration applied to an appointment whose service record no
	// longer exists. Keeps stale bookings blocking a sane window
	// instead of a zero-width one. Fixed at 60 and independent of the
	// configurable catalog default for new services.
	DefaultDurationMin = 60

	// DefaultMaxResults caps slot suggestions when the caller does
	// not ask for a specific number.
	DefaultMaxResults = 5
)

// Slot is one open suggestion: a grid time plus the first employee
// free to take it.
type Slot struct {
	Time         string `json:"time"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
}

// Availability is the assignment-time verdict for a concrete service,
// date and clock. When nobody qualifies, Suggestions carries the
// nearest open slots later the same day.
type Availability struct {
	Available   bool              `json:"available"`
	Employees   []*model.Employee `json:"employees"`
	Suggestions []Slot            `json:"suggestions,omitempty"`
}

// Snapshot is a point-in-time copy of the three collections the
// resolver decides over. Callers load it once per request and discard
// it; the resolver never mutates it.
type Snapshot struct {
	Services     []*model.Service
	Employees    []*model.Employee
	Appointments []*model.Appointment

	serviceByID map[string]*model.Service
}

// NewSnapshot indexes the services for duration lookups. The slices
// are kept by reference; the caller must not mutate them afterwards.
func NewSnapshot(services []*model.Service, employees []*model.Employee, appointments []*model.Appointment) *Snapshot {
	byID := make(map[string]*model.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}
	return &Snapshot{
		Services:     services,
		Employees:    employees,
		Appointments: appointments,
		serviceByID:  byID,
	}
}

// ServiceByID returns the service or nil.
func (s *Snapshot) ServiceByID(id string) *model.Service {
	return s.serviceByID[id]
}

// ServiceName resolves a service name for display, falling back to a
// placeholder for records that have been removed.
func (s *Snapshot) ServiceName(id string) string {
	if svc := s.serviceByID[id]; svc != nil {
		return svc.Name
	}
	return "Unknown service"
}

// EmployeeName resolves an employee name for display.
func (s *Snapshot) EmployeeName(id string) string {
	for _, e := range s.Employees {
		if e.ID == id {
			return e.Name
		}
	}
	return "Unassigned"
}

// IsEmployeeAvailable reports whether the employee has no active
// appointment intersecting [clock, clock+durationMin) on the date.
// Malformed date or clock input and non-positive durations read as
// unavailable.
func (s *Snapshot) IsEmployeeAvailable(employeeID string, date string, clock string, durationMin int) bool {
	if durationMin <= 0 || !ValidDate(date) {
		return false
	}
	start, ok := ClockToMinutes(clock)
	if !ok {
		return false
	}
	end := start + durationMin

	for _, appt := range s.Appointments {
		if appt.EmployeeID != employeeID || appt.Date != date || !appt.IsActive() {
			continue
		}
		existingStart, ok := ClockToMinutes(appt.Time)
		if !ok {
			continue
		}
		existingEnd := existingStart + s.serviceDuration(appt.ServiceID)
		if overlaps(start, end, existingStart, existingEnd) {
			return false
		}
	}
	return true
}

// FindAvailableEmployees returns every employee qualified for the
// service and free at the given moment, in catalog order. An unknown
// service yields an empty list.
func (s *Snapshot) FindAvailableEmployees(serviceID string, date string, clock string) []*model.Employee {
	svc := s.serviceByID[serviceID]
	if svc == nil {
		return nil
	}

	var free []*model.Employee
	for _, e := range s.Employees {
		if !e.CanPerform(serviceID) {
			continue
		}
		if s.IsEmployeeAvailable(e.ID, date, clock, svc.DurationMin) {
			free = append(free, e)
		}
	}
	return free
}

// SuggestSlots scans the daily grid for open slots strictly after
// fromClock and pairs each with the first free qualified employee.
// A fromClock that does not sit on the grid widens the scan to the
// whole day. Results are chronological and capped at maxResults
// (DefaultMaxResults when maxResults is not positive).
func (s *Snapshot) SuggestSlots(serviceID string, date string, fromClock string, maxResults int) []Slot {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	var suggestions []Slot
	for _, slotStart := range gridAfter(fromClock) {
		clock := MinutesToClock(slotStart)
		free := s.FindAvailableEmployees(serviceID, date, clock)
		if len(free) == 0 {
			continue
		}
		suggestions = append(suggestions, Slot{
			Time:         clock,
			EmployeeID:   free[0].ID,
			EmployeeName: free[0].Name,
		})
		if len(suggestions) == maxResults {
			break
		}
	}
	return suggestions
}

// CheckAvailability is the assignment-time check: on top of interval
// conflicts it enforces each employee's working hours (inclusive
// bounds) and daily active-appointment limit. When nobody qualifies
// it carries up to DefaultMaxResults later openings under the same
// rules.
func (s *Snapshot) CheckAvailability(serviceID string, date string, clock string) *Availability {
	result := &Availability{}

	svc := s.serviceByID[serviceID]
	if svc == nil || !ValidDate(date) {
		return result
	}
	if _, ok := ClockToMinutes(clock); !ok {
		return result
	}

	result.Employees = s.assignable(svc, date, clock)
	result.Available = len(result.Employees) > 0
	if result.Available {
		return result
	}

	for _, slotStart := range gridAfter(clock) {
		slotClock := MinutesToClock(slotStart)
		free := s.assignable(svc, date, slotClock)
		if len(free) == 0 {
			continue
		}
		result.Suggestions = append(result.Suggestions, Slot{
			Time:         slotClock,
			EmployeeID:   free[0].ID,
			EmployeeName: free[0].Name,
		})
		if len(result.Suggestions) == DefaultMaxResults {
			break
		}
	}
	return result
}

// assignable applies the full assignment rules: capability, working
// hours, daily limit, then interval conflicts.
func (s *Snapshot) assignable(svc *model.Service, date string, clock string) []*model.Employee {
	var free []*model.Employee
	for _, e := range s.Employees {
		if !e.CanPerform(svc.ID) {
			continue
		}
		if !withinWorkingHours(e, clock) {
			continue
		}
		if e.DailyLimit > 0 && s.activeCount(e.ID, date) >= e.DailyLimit {
			continue
		}
		if s.IsEmployeeAvailable(e.ID, date, clock, svc.DurationMin) {
			free = append(free, e)
		}
	}
	return free
}

func (s *Snapshot) activeCount(employeeID string, date string) int {
	count := 0
	for _, appt := range s.Appointments {
		if appt.EmployeeID == employeeID && appt.Date == date && appt.IsActive() {
			count++
		}
	}
	return count
}

func (s *Snapshot) serviceDuration(serviceID string) int {
	if svc := s.serviceByID[serviceID]; svc != nil {
		return svc.DurationMin
	}
	return DefaultDurationMin
}

// withinWorkingHours checks clock against the inclusive [start, end]
// window. Fixed-width "HH:mm" strings compare chronologically.
func withinWorkingHours(e *model.Employee, clock string) bool {
	return clock >= e.WorkingHours.Start && clock <= e.WorkingHours.End
}

// gridAfter builds the candidate slot starts in minutes. An aligned
// fromClock restricts the scan to strictly later slots; anything off
// the grid, malformed values included, falls back to the full day.
func gridAfter(fromClock string) []int {
	from, ok := ClockToMinutes(fromClock)
	aligned := ok && from >= gridStartMinutes && from < gridEndMinutes && (from-gridStartMinutes)%slotMinutes == 0

	var starts []int
	for t := gridStartMinutes; t < gridEndMinutes; t += slotMinutes {
		if aligned && t <= from {
			continue
		}
		starts = append(starts, t)
	}
	return starts
}
