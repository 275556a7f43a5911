package apiclient

import "time"

// Observer receives client events, e.g. to export metrics
type Observer interface {
	// Every http call made, status 0 means transport failure
	ObserveRequest(method string, status int, duration time.Duration)

	// Every refresh exchange with one of Refresh* outcomes
	ObserveRefresh(outcome string)

	// Every request replayed after refresh
	ObserveRetry()
}

type noopObserver struct{}

func (noopObserver) ObserveRequest(string, int, time.Duration) {}
func (noopObserver) ObserveRefresh(string)                     {}
func (noopObserver) ObserveRetry()                             {}
