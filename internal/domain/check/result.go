package check

// Result collects the field values produced for one target during one run.
// Only fields whose check ran are present.
type Result struct {
	row    int
	target string
	host   string
	values map[Field]any
}

// NewResult creates an empty result for the target stored at row.
func NewResult(row int, target, host string) *Result {
	return &Result{
		row:    row,
		target: target,
		host:   host,
		values: make(map[Field]any),
	}
}

// Set records the value of f. Values are strings or integers.
func (r *Result) Set(f Field, value any) {
	r.values[f] = value
}

// Value returns the value of f, if produced.
func (r *Result) Value(f Field) (any, bool) {
	v, ok := r.values[f]
	return v, ok
}

// Fields returns the produced fields in write order.
func (r *Result) Fields() []Field {
	out := make([]Field, 0, len(r.values))
	for _, f := range Fields {
		if _, ok := r.values[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

func (r *Result) Row() int {
	return r.row
}

func (r *Result) Target() string {
	return r.target
}

func (r *Result) Host() string {
	return r.host
}
