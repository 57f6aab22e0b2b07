package metrics

import "strings"

// Snapshot flattens the registry's counters and gauges into a plain map,
// keyed by bare metric name (namespace stripped). Histograms and the
// runtime collectors are skipped; the health rules only consume the store
// and sweeper series.
func (m *Metrics) Snapshot() map[string]float64 {
	out := make(map[string]float64)

	families, err := m.registry.Gather()
	if err != nil {
		return out
	}

	prefix := m.namespace + "_"
	for _, mf := range families {
		name, ok := strings.CutPrefix(mf.GetName(), prefix)
		if !ok {
			continue
		}
		for _, pm := range mf.GetMetric() {
			switch {
			case pm.GetCounter() != nil:
				out[name] += pm.GetCounter().GetValue()
			case pm.GetGauge() != nil:
				out[name] += pm.GetGauge().GetValue()
			}
		}
	}
	return out
}
