package scanner

// Inspect evaluates every exported top-level identifier of mod, in source
// definition order, and calls yield for each object accepted by pred.
//
// An identifier that cannot be evaluated, or a predicate that fails or
// panics, is passed to yield together with a *DiscoveryError; the remaining
// identifiers are still inspected. Inspect stops at the first error returned
// by yield.
func Inspect(mod *Module, pred Predicate, yield func(Object, error) error) error {
	if pred == nil {
		pred = MatchAll
	}
	for _, d := range mod.decls {
		obj, err := mod.resolve(d)
		if err != nil {
			derr := &DiscoveryError{Module: mod.Path, Name: d.name, Stage: stageResolve, Err: err}
			if yerr := yield(obj, derr); yerr != nil {
				return yerr
			}
			continue
		}
		ok, err := evaluate(pred, obj)
		if err != nil {
			derr := &DiscoveryError{Module: mod.Path, Name: d.name, Stage: stagePredicate, Err: err}
			if yerr := yield(obj, derr); yerr != nil {
				return yerr
			}
			continue
		}
		if !ok {
			continue
		}
		if err := yield(obj, nil); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(pred Predicate, obj Object) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = panicError(r)
		}
	}()
	return pred(obj)
}
