package values

// DistributorDefaults are the deployment-wide fallbacks a distributor
// entry inherits when it leaves a field unset.
type DistributorDefaults struct {
	DailyLimit      int     `yaml:"daily_limit"`
	BatchSize       int     `yaml:"batch_size"`
	MinDelaySeconds int     `yaml:"min_delay_seconds"`
	MaxDelaySeconds int     `yaml:"max_delay_seconds"`
	NoiseRatio      float64 `yaml:"noise_ratio"`
}

// Normalize fills zero fields with conservative stealth defaults.
func (d *DistributorDefaults) Normalize() {
	if d.DailyLimit <= 0 {
		d.DailyLimit = 500
	}
	if d.BatchSize <= 0 {
		d.BatchSize = 50
	}
	if d.MinDelaySeconds <= 0 {
		d.MinDelaySeconds = 2
	}
	if d.MaxDelaySeconds <= d.MinDelaySeconds {
		d.MaxDelaySeconds = d.MinDelaySeconds + 6
	}
	if d.NoiseRatio <= 0 {
		d.NoiseRatio = 0.15
	}
}
