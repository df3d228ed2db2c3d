package dataset

import "github.com/launchdash/dashboard/pkg/core"

// Page text and style constants.
const (
	TitleColor          = "#503D36"
	TitleFontSize       = 40
	DropdownPlaceholder = "Select a Launch Site"
	PayloadLabel        = "Payload range (Kg):"
)

// Component kinds in the page layout.
const (
	KindTitle    = "title"
	KindDropdown = "dropdown"
	KindGraph    = "graph"
	KindLabel    = "label"
	KindSlider   = "range-slider"
)

// Component is one element of the page in display order.
type Component struct {
	ID   string `json:"id,omitempty"`
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
	// dropdown only
	Placeholder string           `json:"placeholder,omitempty"`
	Searchable  bool             `json:"searchable,omitempty"`
	Options     []DropdownOption `json:"options,omitempty"`
	Value       string           `json:"value,omitempty"`
	// slider only
	Slider *SliderSettings `json:"slider,omitempty"`
}

// Layout is the static page description.
type Layout struct {
	Title         string      `json:"title"`
	TitleColor    string      `json:"titleColor"`
	TitleFontSize int         `json:"titleFontSize"`
	Components    []Component `json:"components"`
}

// Layout derives the page description from the table.
func (t *Table) Layout(title string, slider SliderConfig) Layout {
	s := t.Slider(slider)
	return Layout{
		Title:         title,
		TitleColor:    TitleColor,
		TitleFontSize: TitleFontSize,
		Components: []Component{
			{Kind: KindTitle, Text: title},
			{
				ID:          core.SiteDropdown,
				Kind:        KindDropdown,
				Placeholder: DropdownPlaceholder,
				Searchable:  true,
				Options:     t.SiteOptions(),
				Value:       core.AllSites,
			},
			{ID: core.SuccessPieChart, Kind: KindGraph},
			{Kind: KindLabel, Text: PayloadLabel},
			{ID: core.PayloadSlider, Kind: KindSlider, Slider: &s},
			{ID: core.PayloadScatterChart, Kind: KindGraph},
		},
	}
}

// Component returns the component with id.
func (l Layout) Component(id string) (Component, bool) {
	for _, c := range l.Components {
		if c.ID == id {
			return c, true
		}
	}
	return Component{}, false
}
