package ledger

// Observer is told the outcome of every Submit and Commit. err is nil on
// success.
type Observer interface {
	ObserveSubmit(err error)
	ObserveCommit(err error)
}

type nopObserver struct{}

func (nopObserver) ObserveSubmit(error) {}
func (nopObserver) ObserveCommit(error) {}
