package stage

// Counter is one named tally in a stage summary.
type Counter struct {
	Name  string
	Value int
}

// Report summarizes one stage execution. Counters keep insertion order so
// summaries print in the order the stage defined them.
type Report struct {
	Stage    string
	Counters []Counter
	Outputs  []string
}

// NewReport returns a report with the named counters preset to zero.
func NewReport(stage string, counters ...string) Report {
	r := Report{Stage: stage}
	for _, name := range counters {
		r.Counters = append(r.Counters, Counter{Name: name})
	}
	return r
}

// Set overwrites the named counter.
func (r *Report) Set(name string, value int) {
	for i := range r.Counters {
		if r.Counters[i].Name == name {
			r.Counters[i].Value = value
			return
		}
	}
	r.Counters = append(r.Counters, Counter{Name: name, Value: value})
}

// Get returns the named counter, or zero.
func (r Report) Get(name string) int {
	for _, c := range r.Counters {
		if c.Name == name {
			return c.Value
		}
	}
	return 0
}

// Wrote records an output file.
func (r *Report) Wrote(path string) {
	r.Outputs = append(r.Outputs, path)
}
