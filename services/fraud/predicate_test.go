package fraud

import (
	// Go Internal Packages
	"testing"

	// Local Packages
	errors "fraud-stream/errors"
	models "fraud-stream/models"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreshold(t *testing.T) {
	p := NewThreshold(DefaultThreshold)

	tests := []struct {
		amount int64
		want   bool
	}{
		{amount: 0, want: false},
		{amount: 500, want: false},
		{amount: 10000, want: false},
		{amount: 10001, want: true},
		{amount: 15000, want: true},
	}
	for _, tt := range tests {
		got, err := p.Evaluate(models.Transaction{UserID: "u", Amount: tt.amount})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "amount %d", tt.amount)
	}
}

func TestNew(t *testing.T) {
	p, err := New("threshold", Options{Threshold: 50})
	require.NoError(t, err)
	assert.Equal(t, "threshold", p.Name())
	assert.Equal(t, int64(50), p.(*Threshold).Limit)

	_, err = New("velocity", Options{})
	require.Error(t, err)
	assert.Equal(t, errors.Invalid, errors.KindOf(err))
}

func TestEvaluateFailures(t *testing.T) {
	tx := models.Transaction{UserID: "u", Amount: 99999}

	failing := PredicateFunc(func(models.Transaction) (bool, error) {
		return true, errors.New("model unavailable")
	})
	verdict, err := Evaluate(failing, tx)
	assert.False(t, verdict)
	var pe *errors.PredicateError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "func", pe.Predicate)

	panicking := PredicateFunc(func(models.Transaction) (bool, error) {
		panic("boom")
	})
	verdict, err = Evaluate(panicking, tx)
	assert.False(t, verdict)
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Error(), "panic: boom")
}
