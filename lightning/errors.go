package lightning

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the class of errors caused by missing or wrong preconditions, they are never retried
	ErrConfiguration = errors.New("configuration error")
	// ErrPaymentFailed means the node reported a definitive payment failure
	ErrPaymentFailed = errors.New("payment failed")
	// ErrPaymentTimeout means the payment did not settle before the deadline
	ErrPaymentTimeout = errors.New("payment timed out")
	// ErrInvalidResponse indicates a node reply that could not be interpreted
	ErrInvalidResponse = errors.New("invalid response")
)

// ConfigError is returned when an operation cannot even be attempted
type ConfigError struct {
	Op     string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) work
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// PaymentError carries the failure message supplied by the node
type PaymentError struct {
	ID      string
	Message string
}

func (e *PaymentError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrPaymentFailed) work
func (e *PaymentError) Is(target error) bool {
	return target == ErrPaymentFailed
}
