package types

// Builtins returns the checker-side term table for the prelude functions
// spec.md §4.6 requires. Arithmetic and comparison operators are given a
// fresh type variable signature per call site rather than a fixed Integer
// or Float constant: plain first-order unification has no type classes, so
// this is how `Basics.add` can check against both `1 + 1` and `1.0 + 1.0`
// without implementing overloading.
func Builtins() map[string]func(*Checker) Term {
	return map[string]func(*Checker) Term{
		"Basics.add": polyArith,
		"Basics.sub": polyArith,
		"Basics.mul": polyArith,
		"Basics.div": polyArith,

		"Basics.gt": polyCompare,
		"Basics.lt": polyCompare,
		"Basics.ge": polyCompare,
		"Basics.le": polyCompare,
		"Basics.eq": polyCompare,
		"Basics.neq": polyCompare,

		"Basics.and": func(c *Checker) Term {
			return CurriedFunction([]Term{&Constant{Bool}, &Constant{Bool}}, &Constant{Bool})
		},
		"Basics.or": func(c *Checker) Term {
			return CurriedFunction([]Term{&Constant{Bool}, &Constant{Bool}}, &Constant{Bool})
		},

		"Basics.append": func(c *Checker) Term {
			return CurriedFunction([]Term{&Constant{String}, &Constant{String}}, &Constant{String})
		},
		"Basics.cons": func(c *Checker) Term {
			a := c.fresh()
			return CurriedFunction([]Term{a, ListOf(a)}, ListOf(a))
		},
		"Basics.pipeRight": func(c *Checker) Term {
			a, b := c.fresh(), c.fresh()
			return CurriedFunction([]Term{a, &Function{From: a, To: b}}, b)
		},
		"Basics.pipeLeft": func(c *Checker) Term {
			a, b := c.fresh(), c.fresh()
			return CurriedFunction([]Term{&Function{From: a, To: b}, a}, b)
		},

		"String.fromInt": func(c *Checker) Term {
			return &Function{From: &Constant{Integer}, To: &Constant{String}}
		},
		"String.fromBool": func(c *Checker) Term {
			return &Function{From: &Constant{Bool}, To: &Constant{String}}
		},
		"String.append": func(c *Checker) Term {
			return CurriedFunction([]Term{&Constant{String}, &Constant{String}}, &Constant{String})
		},
		"String.join": func(c *Checker) Term {
			return CurriedFunction([]Term{&Constant{String}, ListOf(&Constant{String})}, &Constant{String})
		},

		"List.sum": func(c *Checker) Term {
			a := c.fresh()
			return &Function{From: ListOf(a), To: a}
		},
	}
}

func polyArith(c *Checker) Term {
	a := c.fresh()
	return CurriedFunction([]Term{a, a}, a)
}

func polyCompare(c *Checker) Term {
	a := c.fresh()
	return CurriedFunction([]Term{a, a}, &Constant{Bool})
}
