package app

// Dhikr is a remembrance phrase with a target repetition count.
type Dhikr struct {
	ID          string `json:"id" yaml:"id"`
	Arabic      string `json:"arabic" yaml:"arabic"`
	Translation string `json:"translation" yaml:"translation"`
	Target      int    `json:"target" yaml:"target"`
	Current     int    `json:"current" yaml:"-"`
	IsCustom    bool   `json:"isCustom" yaml:"-"`
}

// Increment adds one repetition and reports whether the count changed.
// A complete dhikr is not incremented any further.
func (d *Dhikr) Increment() bool {
	if d.IsComplete() {
		d.Current = d.Target
		return false
	}
	d.Current++
	return true
}

// IsComplete reports whether the target count has been reached.
func (d Dhikr) IsComplete() bool {
	return d.Current >= d.Target
}

// Progress returns the completion ratio between 0 and 1.
func (d Dhikr) Progress() float64 {
	if d.Target <= 0 {
		return 0
	}
	return min(float64(d.Current)/float64(d.Target), 1)
}

// Reset sets the current count back to zero.
func (d *Dhikr) Reset() {
	d.Current = 0
}
