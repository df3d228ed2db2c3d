package dataset

import (
	"github.com/launchdash/dashboard/internal/util"
	"github.com/launchdash/dashboard/pkg/core"
)

// AllSitesLabel is the dropdown label of the All sentinel.
const AllSitesLabel = "All Sites"

// maxMarks bounds the number of slider marks generated from the step.
const maxMarks = 50

// DropdownOption is one entry of the site selector.
type DropdownOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SliderConfig is the configured payload slider range.
type SliderConfig struct {
	Min  float64
	Max  float64
	Step float64
}

// SliderSettings is the payload slider as rendered on the page.
type SliderSettings struct {
	Min   float64           `json:"min"`
	Max   float64           `json:"max"`
	Step  float64           `json:"step"`
	Value core.PayloadRange `json:"value"`
	Marks map[string]string `json:"marks,omitempty"`
}

// SiteOptions returns "All Sites" followed by one option per distinct site.
func (t *Table) SiteOptions() []DropdownOption {
	out := make([]DropdownOption, 0, len(t.sites)+1)
	out = append(out, DropdownOption{Label: AllSitesLabel, Value: core.AllSites})
	for _, s := range t.sites {
		out = append(out, DropdownOption{Label: s, Value: s})
	}
	return out
}

// Slider returns the slider settings for cfg with the initial selection set to
// the payload bounds of the table.
func (t *Table) Slider(cfg SliderConfig) SliderSettings {
	s := SliderSettings{
		Min:   cfg.Min,
		Max:   cfg.Max,
		Step:  cfg.Step,
		Value: core.PayloadRange{t.minPayload, t.maxPayload},
	}
	if cfg.Step > 0 && cfg.Max > cfg.Min && (cfg.Max-cfg.Min)/cfg.Step <= maxMarks {
		s.Marks = make(map[string]string)
		for v := cfg.Min; v <= cfg.Max; v += cfg.Step {
			s.Marks[util.FormatKg(v)] = util.FormatKg(v)
		}
	}
	return s
}

// DefaultPayload is the slider value used when a client has not sent one.
func (t *Table) DefaultPayload() core.PayloadRange {
	return core.PayloadRange{t.minPayload, t.maxPayload}
}
