package content

import "fmt"

// LegendEntry maps a pattern symbol to a resource and per-slot quantity.
type LegendEntry struct {
	Key      string `yaml:"key" json:"key"`
	Quantity int    `yaml:"quantity" json:"quantity"`
}

// RecipeDef is a declarative craft recipe: a fixed-size pattern of symbols
// decoded through a legend. The engine only consumes aggregate totals; slot
// positions are a presentation concern.
type RecipeDef struct {
	ItemKey            string                 `yaml:"item_key" json:"item_key"`
	Label              string                 `yaml:"label" json:"label"`
	Location           string                 `yaml:"craft_location" json:"craft_location"`
	Pattern            []string               `yaml:"pattern" json:"pattern"`
	Legend             map[string]LegendEntry `yaml:"legend" json:"legend"`
	OutputQuantity     int                    `yaml:"output_quantity" json:"output_quantity"`
	CraftTimeSeconds   int                    `yaml:"craft_time_seconds" json:"craft_time_seconds"`
	RequiredTableLevel int                    `yaml:"required_table_level" json:"required_table_level"`
	MinLevel           int                    `yaml:"min_level" json:"min_level"`
}

// RequiredResources decodes the pattern against the legend and returns the
// aggregate input totals for crafting the recipe `times` times.
func (r RecipeDef) RequiredResources(times int) map[string]float64 {
	if times < 1 {
		times = 1
	}

	counts := map[string]int{}
	for _, line := range r.Pattern {
		for _, ch := range line {
			sym := string(ch)
			if sym == "." || sym == " " {
				continue
			}
			counts[sym]++
		}
	}

	required := map[string]float64{}
	for sym, n := range counts {
		entry, ok := r.Legend[sym]
		if !ok || entry.Key == "" {
			continue
		}
		qty := entry.Quantity
		if qty < 1 {
			qty = 1
		}
		required[entry.Key] += float64(n * qty * times)
	}
	return required
}

func (r RecipeDef) check() error {
	if r.Location == "" {
		return fmt.Errorf("craft_location is required")
	}
	if len(r.Pattern) == 0 {
		return fmt.Errorf("pattern is empty")
	}
	width := len(r.Pattern[0])
	for _, line := range r.Pattern {
		if len(line) != width {
			return fmt.Errorf("pattern lines must all have the same length")
		}
		for _, ch := range line {
			sym := string(ch)
			if sym == "." || sym == " " {
				continue
			}
			if _, ok := r.Legend[sym]; !ok {
				return fmt.Errorf("pattern symbol %q missing from legend", sym)
			}
		}
	}
	if r.OutputQuantity < 1 {
		return fmt.Errorf("output_quantity must be at least 1")
	}
	if r.CraftTimeSeconds < 0 {
		return fmt.Errorf("craft_time_seconds must not be negative")
	}
	return nil
}
