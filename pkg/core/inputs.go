// pkg/core/inputs.go
package core

// AllSites is the dropdown sentinel value selecting every launch site.
const AllSites = "All"

// Component IDs used by the page layout and the callback graph.
const (
	SiteDropdown        = "site-dropdown"
	PayloadSlider       = "payload-slider"
	SuccessPieChart     = "success-pie-chart"
	PayloadScatterChart = "success-payload-scatter-chart"
)

// PayloadRange is the two-element value of the payload slider.
type PayloadRange [2]float64

// Low returns the smaller bound.
func (r PayloadRange) Low() float64 {
	if r[0] > r[1] {
		return r[1]
	}
	return r[0]
}

// High returns the larger bound.
func (r PayloadRange) High() float64 {
	if r[0] > r[1] {
		return r[0]
	}
	return r[1]
}

// Normalized returns the range with Low first.
func (r PayloadRange) Normalized() PayloadRange {
	return PayloadRange{r.Low(), r.High()}
}

// Inputs is the current value of every input component on the page.
// A nil Payload means the slider has not reported a value yet.
type Inputs struct {
	Site    string        `json:"site"`
	Payload *PayloadRange `json:"payload,omitempty"`
}

// IsAllSites reports whether the site selection covers every site.
// An empty selection counts as all sites.
func (in Inputs) IsAllSites() bool {
	return in.Site == "" || in.Site == AllSites
}
