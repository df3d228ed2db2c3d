// Package dataset holds the launch table loaded at startup.
// A Table is never mutated after New returns, so it is safe to share
// between concurrent requests without locking.
package dataset

import (
	"errors"
	"fmt"

	"github.com/launchdash/dashboard/internal/util"
	"github.com/launchdash/dashboard/pkg/core"
)

// ErrUnknownSite is returned when a site name is not present in the table.
var ErrUnknownSite = errors.New("unknown launch site")

// Table is an immutable, in-memory launch record table.
type Table struct {
	rows       []core.Launch
	sites      []string
	siteIndex  map[string]struct{}
	categories []string
	minPayload float64
	maxPayload float64
}

// New copies rows into a new Table and derives the site list, booster
// categories and payload bounds once.
func New(rows []core.Launch) *Table {
	t := &Table{
		rows:      make([]core.Launch, len(rows)),
		siteIndex: make(map[string]struct{}),
	}
	copy(t.rows, rows)

	seenCategory := make(map[string]struct{})
	bounded := false
	for _, r := range t.rows {
		if _, ok := t.siteIndex[r.LaunchSite]; !ok {
			t.siteIndex[r.LaunchSite] = struct{}{}
			t.sites = append(t.sites, r.LaunchSite)
		}
		if _, ok := seenCategory[r.BoosterCategory]; !ok {
			seenCategory[r.BoosterCategory] = struct{}{}
			t.categories = append(t.categories, r.BoosterCategory)
		}
		// bounds ignore non-finite payloads
		if !util.IsFinite(r.PayloadMassKg) {
			continue
		}
		if !bounded || r.PayloadMassKg < t.minPayload {
			t.minPayload = r.PayloadMassKg
		}
		if !bounded || r.PayloadMassKg > t.maxPayload {
			t.maxPayload = r.PayloadMassKg
		}
		bounded = true
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of every row.
func (t *Table) Rows() []core.Launch {
	out := make([]core.Launch, len(t.rows))
	copy(out, t.rows)
	return out
}

// Sites returns the distinct launch sites in first-appearance order.
func (t *Table) Sites() []string {
	return append([]string(nil), t.sites...)
}

// HasSite reports whether site occurs in the table.
func (t *Table) HasSite(site string) bool {
	_, ok := t.siteIndex[site]
	return ok
}

// Categories returns the distinct booster version categories in first-appearance order.
func (t *Table) Categories() []string {
	return append([]string(nil), t.categories...)
}

// PayloadBounds returns the smallest and largest payload mass. Both are zero
// for an empty table.
func (t *Table) PayloadBounds() (min, max float64) {
	return t.minPayload, t.maxPayload
}

// CheckSite validates a site selection. Empty and the All sentinel are accepted.
func (t *Table) CheckSite(site string) error {
	if site == "" || site == core.AllSites || t.HasSite(site) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownSite, site)
}

// FilterSite returns the rows launched from site. The All sentinel and the
// empty string select every row.
func (t *Table) FilterSite(site string) ([]core.Launch, error) {
	if err := t.CheckSite(site); err != nil {
		return nil, err
	}
	if site == "" || site == core.AllSites {
		return t.Rows(), nil
	}
	return t.where(func(r core.Launch) bool { return r.LaunchSite == site }), nil
}

// FilterPayload returns the rows with low <= payload <= high.
func (t *Table) FilterPayload(low, high float64) []core.Launch {
	return t.where(func(r core.Launch) bool {
		return r.PayloadMassKg >= low && r.PayloadMassKg <= high
	})
}

// Filter applies the payload bounds (inclusive) and the site selection together.
// Bounds given in reverse order are swapped.
func (t *Table) Filter(site string, low, high float64) ([]core.Launch, error) {
	if err := t.CheckSite(site); err != nil {
		return nil, err
	}
	if low > high {
		low, high = high, low
	}
	all := site == "" || site == core.AllSites
	return t.where(func(r core.Launch) bool {
		if r.PayloadMassKg < low || r.PayloadMassKg > high {
			return false
		}
		return all || r.LaunchSite == site
	}), nil
}

func (t *Table) where(keep func(core.Launch) bool) []core.Launch {
	out := []core.Launch{}
	for _, r := range t.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
