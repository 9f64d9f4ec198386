package uncaughtthrow

type MyError struct{}

func (MyError) Error() string { return "my" }

func caught() {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case error:
				_ = v
			}
		}
	}()
	panic(errFor())
}

func errFor() error {
	return nil
}

// A closure declares nothing of its own; whatever it throws must be caught
// right there, unlike a package-level func whose own inferred configuration
// already absorbs its immediate panics.
func escapesFromClosure() {
	f := func() {
		panic("boom") // want "uncaught thrown type string escapes without being declared or caught"
	}
	f()
}

// checkedexceptions:throws MyError
func risky() {
	panic(MyError{})
}

// checkedexceptions:neverThrows
func caller() {
	risky() // want "uncaught thrown type MyError escapes without being declared or caught"
}
