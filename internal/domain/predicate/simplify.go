package predicate

// Simplify folds Pass and Never through the boolean structure.
//
// Pass terms are dropped from And and Or. Never makes an And never match and
// is dropped from an Or that has other terms. Single-term groups collapse.
func Simplify(p Predicate) Predicate {
	switch v := p.(type) {
	case nil:
		return Pass{}
	case And:
		terms := make([]Predicate, 0, len(v.Terms))
		for _, t := range v.Terms {
			switch s := Simplify(t).(type) {
			case Pass:
			case Never:
				return Never{}
			default:
				terms = append(terms, s)
			}
		}
		return collapse(terms, func(ts []Predicate) Predicate { return And{Terms: ts} })
	case Or:
		terms := make([]Predicate, 0, len(v.Terms))
		sawNever := false
		for _, t := range v.Terms {
			switch s := Simplify(t).(type) {
			case Pass:
			case Never:
				sawNever = true
			default:
				terms = append(terms, s)
			}
		}
		if len(terms) == 0 && sawNever {
			return Never{}
		}
		return collapse(terms, func(ts []Predicate) Predicate { return Or{Terms: ts} })
	case Not:
		switch s := Simplify(v.Term).(type) {
		case Pass, Never:
			return Pass{}
		case Not:
			return s.Term
		default:
			return Not{Term: s}
		}
	default:
		return p
	}
}

func collapse(terms []Predicate, group func([]Predicate) Predicate) Predicate {
	switch len(terms) {
	case 0:
		return Pass{}
	case 1:
		return terms[0]
	}
	return group(terms)
}

// IsPass reports whether p imposes no constraint.
func IsPass(p Predicate) bool {
	_, ok := Simplify(p).(Pass)
	return ok
}
