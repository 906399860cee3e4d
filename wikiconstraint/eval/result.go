package eval

// Evaluation is one constraint's contribution to a Result: zero-score
// evaluations are never recorded, only ones that actually moved the
// needle (spec.md §4.4's idempotence property: evaluate_change(rev,
// rev) yields score 0 and an empty Evaluated list).
type Evaluation struct {
	Constraint *Constraint
	Score      int
}

// Result is the outcome of one EvaluateChange call: the aggregate
// signed score plus every non-zero constraint contribution that
// produced it (spec.md §4.4).
type Result struct {
	Score     int
	Evaluated []Evaluation
}

func (r *Result) record(c *Constraint, score int) {
	if score == 0 {
		return
	}
	r.Score += score
	r.Evaluated = append(r.Evaluated, Evaluation{Constraint: c, Score: score})
}

// GetViolatedConstraints returns every constraint whose contribution
// was a positive score (a new or still-present violation).
func (r *Result) GetViolatedConstraints() []*Constraint {
	var out []*Constraint
	for _, e := range r.Evaluated {
		if e.Score > 0 {
			out = append(out, e.Constraint)
		}
	}
	return out
}

// GetFixedConstraints returns every constraint whose contribution was
// a negative score (a violation resolved by this change).
func (r *Result) GetFixedConstraints() []*Constraint {
	var out []*Constraint
	for _, e := range r.Evaluated {
		if e.Score < 0 {
			out = append(out, e.Constraint)
		}
	}
	return out
}
