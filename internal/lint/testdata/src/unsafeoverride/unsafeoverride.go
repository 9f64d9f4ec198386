package unsafeoverride

type MyError struct{}

func (MyError) Error() string { return "my" }

type OtherError struct{}

func (OtherError) Error() string { return "other" }

type Fetcher interface {
	// checkedexceptions:throws MyError
	Fetch() error
}

type impl struct {
	Fetcher
}

// checkedexceptions:throws OtherError
func (impl) Fetch() error { return nil } // want "Fetch's checked throws are wider than the member it overrides \\(Fetch\\)"

type Getter interface {
	// checkedexceptions:throws MyError
	Get() error
}

type narrower struct {
	Getter
}

// checkedexceptions:neverThrows
func (narrower) Get() error { return nil }

type Reader interface {
	// checkedexceptions:throws MyError
	Read() error
}

type wideReader struct {
	Reader
}

func (wideReader) Read() error { panic(OtherError{}) } // want "Read's checked throws are wider than the member it overrides \\(Read\\)"
