package unsafeassignment

type MyError struct{}

func (MyError) Error() string { return "my" }

type OtherError struct{}

func (OtherError) Error() string { return "other" }

// checkedexceptions:throws MyError
type handler func()

func run(h handler) {
	h()
}

func callerViolates() {
	run(func() { // want "argument 1's checked throws are not compatible with the parameter's declared configuration"
		panic(OtherError{})
	})
}

func callerOK() {
	run(func() {
		panic(MyError{})
	})
}

// checkedexceptions:throws MyError
var globalHandler handler

func assignViolates() {
	globalHandler = func() { // want "assigned value's checked throws are not compatible with globalHandler's declared configuration"
		panic(OtherError{})
	}
}
