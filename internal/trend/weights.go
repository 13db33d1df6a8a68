package trend

import (
	"fmt"
	"math"
	"sort"
)

// weightTolerance is how far the configured weights may drift from summing
// to exactly 1.0 before the configuration is rejected.
const weightTolerance = 1e-6

// ComponentWeights maps component names to their share of the composite
// score. The set is a deployment configuration: a deployment may swap e.g.
// "inventory" for "social" as long as the weights still sum to 1.0.
type ComponentWeights map[string]float64

// DefaultWeights is the shipped five-component configuration.
func DefaultWeights() ComponentWeights {
	return ComponentWeights{
		ComponentRetail:    0.30,
		ComponentPrice:     0.20,
		ComponentInventory: 0.20,
		ComponentMedia:     0.20,
		ComponentSeasonal:  0.10,
	}
}

// Validate rejects unknown component names, non-positive weights and weight
// sets that do not sum to 1.0 within tolerance. Called once at startup.
func (w ComponentWeights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("trend weights: no components configured")
	}
	var sum float64
	for name, weight := range w {
		if _, ok := componentFuncs[name]; !ok {
			return fmt.Errorf("trend weights: unknown component %q", name)
		}
		if weight <= 0 {
			return fmt.Errorf("trend weights: component %q has non-positive weight %v", name, weight)
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("trend weights: weights sum to %v, expected 1.0", sum)
	}
	return nil
}

// Names returns the configured component names in stable order.
func (w ComponentWeights) Names() []string {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
