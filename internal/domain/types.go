package domain

import (
	"fmt"
	"time"
)

// Layouts used by the breach source. AddedDate/ModifiedDate are second
// resolution UTC; BreachDate is a calendar date.
const (
	AddedDateLayout   = "2006-01-02T15:04:05Z"
	BreachDateLayout  = "2006-01-02"
	DisplayDateLayout = "02/01/2006"
)

// BreachRecord is one disclosed breach as reported by the source. Field
// names match the source's JSON so the same struct doubles as the
// watermark file format.
type BreachRecord struct {
	Name         string `json:"Name"`
	BreachDate   string `json:"BreachDate"`
	AddedDate    string `json:"AddedDate"`
	ModifiedDate string `json:"ModifiedDate"`
}

func (r BreachRecord) AddedTime() (time.Time, error) {
	return time.Parse(AddedDateLayout, r.AddedDate)
}

// AddedAfter reports whether r was added strictly after other.
func (r BreachRecord) AddedAfter(other BreachRecord) (bool, error) {
	a, err := r.AddedTime()
	if err != nil {
		return false, fmt.Errorf("added date %q: %w", r.AddedDate, err)
	}
	b, err := other.AddedTime()
	if err != nil {
		return false, fmt.Errorf("added date %q: %w", other.AddedDate, err)
	}
	return a.After(b), nil
}

// FormatBreachDate converts a source calendar date to display form.
func FormatBreachDate(breachDate string) (string, error) {
	t, err := time.Parse(BreachDateLayout, breachDate)
	if err != nil {
		return "", fmt.Errorf("breach date %q: %w", breachDate, err)
	}
	return t.Format(DisplayDateLayout), nil
}

// Membership is one durable fact: this email was found in this breach.
// BreachDate is already display-formatted.
type Membership struct {
	Email      string
	BreachName string
	BreachDate string
}

// Line is the membership's on-disk representation in the dedup log,
// without the trailing newline.
func (m Membership) Line() string {
	return fmt.Sprintf("%s - %s (%s)", m.Email, m.BreachName, m.BreachDate)
}

// Findings accumulates the memberships discovered during a single run.
// Email order follows insertion, which follows the monitored list.
type Findings struct {
	emails  []string
	byEmail map[string][]Membership
}

func NewFindings() *Findings {
	return &Findings{byEmail: make(map[string][]Membership)}
}

func (f *Findings) Add(m Membership) {
	if _, ok := f.byEmail[m.Email]; !ok {
		f.emails = append(f.emails, m.Email)
	}
	f.byEmail[m.Email] = append(f.byEmail[m.Email], m)
}

func (f *Findings) Empty() bool { return f == nil || len(f.emails) == 0 }

func (f *Findings) Emails() []string { return f.emails }

func (f *Findings) ForEmail(email string) []Membership { return f.byEmail[email] }

func (f *Findings) Total() int {
	n := 0
	for _, ms := range f.byEmail {
		n += len(ms)
	}
	return n
}
