package actions

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed seasonal.yaml
var seasonalYAML []byte

// Window is the time of year to plant or harvest one crop.
type Window struct {
	Crop   string `yaml:"crop" json:"crop"`
	Window string `yaml:"window" json:"window"`
	Note   string `yaml:"note" json:"note"`
}

// Calendar is the seasonal planting and harvest guide.
type Calendar struct {
	Planting []Window `yaml:"planting" json:"planting"`
	Harvest  []Window `yaml:"harvest" json:"harvest"`
}

var loadSeasonal = sync.OnceValues(func() (*Calendar, error) {
	return ParseCalendar(seasonalYAML)
})

// Seasonal returns the built-in calendar.
func Seasonal() (*Calendar, error) {
	return loadSeasonal()
}

// ParseCalendar decodes a calendar from YAML.
func ParseCalendar(data []byte) (*Calendar, error) {
	var c Calendar
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse seasonal calendar: %w", err)
	}
	return &c, nil
}

// ForCrop returns the planting and harvest windows of a crop, matched
// case-insensitively.
func (c *Calendar) ForCrop(crop string) (planting, harvest *Window) {
	for i := range c.Planting {
		if strings.EqualFold(c.Planting[i].Crop, crop) {
			planting = &c.Planting[i]
		}
	}
	for i := range c.Harvest {
		if strings.EqualFold(c.Harvest[i].Crop, crop) {
			harvest = &c.Harvest[i]
		}
	}
	return planting, harvest
}

// Markdown renders the calendar as two markdown tables.
func (c *Calendar) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# Seasonal Planning\n\n")
	writeTable(&sb, "Planting", c.Planting)
	sb.WriteString("\n")
	writeTable(&sb, "Harvest", c.Harvest)
	return sb.String()
}

func writeTable(sb *strings.Builder, title string, rows []Window) {
	fmt.Fprintf(sb, "## %s\n\n| Crop | Window | Note |\n|---|---|---|\n", title)
	for _, w := range rows {
		fmt.Fprintf(sb, "| %s | %s | %s |\n", w.Crop, w.Window, w.Note)
	}
}
