package fraud

import (
	// Go Internal Packages
	"fmt"

	// Local Packages
	errors "fraud-stream/errors"
	models "fraud-stream/models"
)

const DefaultThreshold int64 = 10000

// Predicate decides whether a transaction is fraudulent. Implementations may
// keep their own state, but Evaluate must run in bounded time per record.
type Predicate interface {
	Name() string
	Evaluate(tx models.Transaction) (bool, error)
}

var _ = (Predicate)(PredicateFunc(nil))

// PredicateFunc adapts a plain function to Predicate.
type PredicateFunc func(tx models.Transaction) (bool, error)

func (fn PredicateFunc) Name() string { return "func" }

func (fn PredicateFunc) Evaluate(tx models.Transaction) (bool, error) {
	return fn(tx)
}

// Threshold flags every transaction whose amount is strictly above Limit.
type Threshold struct {
	Limit int64
}

func NewThreshold(limit int64) *Threshold {
	return &Threshold{Limit: limit}
}

func (t *Threshold) Name() string { return "threshold" }

func (t *Threshold) Evaluate(tx models.Transaction) (bool, error) {
	return tx.Amount > t.Limit, nil
}

// Options carries the settings predicates can be built from.
type Options struct {
	Threshold int64
}

// New builds the predicate registered under name.
func New(name string, opts Options) (Predicate, error) {
	switch name {
	case "threshold", "":
		return NewThreshold(opts.Threshold), nil
	}
	return nil, errors.E(errors.Invalid, fmt.Sprintf("unknown predicate %q", name), nil)
}

// Evaluate runs p against tx, turning failures and panics into *errors.PredicateError.
func Evaluate(p Predicate, tx models.Transaction) (verdict bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			verdict = false
			err = &errors.PredicateError{Predicate: p.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	verdict, err = p.Evaluate(tx)
	if err != nil {
		return false, &errors.PredicateError{Predicate: p.Name(), Err: err}
	}
	return verdict, nil
}
