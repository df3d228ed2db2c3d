package dataset

import (
	"github.com/launchdash/dashboard/pkg/core"
)

// SiteCount is a per-site aggregate.
type SiteCount struct {
	Site  string
	Count int
}

// OutcomeCount is the number of rows with a given outcome.
type OutcomeCount struct {
	Outcome core.Outcome
	Count   int
}

// SuccessCountBySite sums the class column per site, in site order.
// Sites without a successful launch are reported with a zero count.
func (t *Table) SuccessCountBySite() []SiteCount {
	sums := make(map[string]int, len(t.sites))
	for _, r := range t.rows {
		sums[r.LaunchSite] += int(r.Class)
	}
	out := make([]SiteCount, 0, len(t.sites))
	for _, s := range t.sites {
		out = append(out, SiteCount{Site: s, Count: sums[s]})
	}
	return out
}

// TotalSuccesses returns the number of successful launches across all sites.
func (t *Table) TotalSuccesses() int {
	n := 0
	for _, r := range t.rows {
		n += int(r.Class)
	}
	return n
}

// OutcomeCounts returns the value counts of the class column for one site,
// largest count first. Outcomes that never occur are omitted; on a tie
// success sorts before failure.
func (t *Table) OutcomeCounts(site string) ([]OutcomeCount, error) {
	if err := t.CheckSite(site); err != nil {
		return nil, err
	}
	all := site == "" || site == core.AllSites

	var success, failure int
	for _, r := range t.rows {
		if !all && r.LaunchSite != site {
			continue
		}
		if r.Class == core.Success {
			success++
		} else {
			failure++
		}
	}

	out := []OutcomeCount{}
	if success >= failure {
		out = appendNonZero(out, core.Success, success)
		out = appendNonZero(out, core.Failure, failure)
	} else {
		out = appendNonZero(out, core.Failure, failure)
		out = appendNonZero(out, core.Success, success)
	}
	return out, nil
}

func appendNonZero(out []OutcomeCount, o core.Outcome, n int) []OutcomeCount {
	if n == 0 {
		return out
	}
	return append(out, OutcomeCount{Outcome: o, Count: n})
}
