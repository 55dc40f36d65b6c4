package serviceiface

// Service is a long-running component managed by the app manager. Start must
// return once the component is running; listeners and schedulers run in their
// own goroutines. Stop releases what Start acquired.
type Service interface {
	Name() string
	Start() error
	Stop() error
}
