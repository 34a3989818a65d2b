package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover(t *testing.T) {
	tests := []struct {
		name       string
		fn         func() (err error)
		wantNil    bool
		wantPanic  bool
		wantSubstr string
	}{
		{
			name: "panic is converted",
			fn: func() (err error) {
				defer Recover(&err, "SubSchema")
				panic("index 5 out of range [0, 3)")
			},
			wantPanic:  true,
			wantSubstr: "panic in SubSchema: index 5 out of range [0, 3)",
		},
		{
			name: "no panic keeps nil",
			fn: func() (err error) {
				defer Recover(&err, "SubSchema")
				return nil
			},
			wantNil: true,
		},
		{
			name: "existing error is wrapped",
			fn: func() (err error) {
				defer Recover(&err, "Encode")
				err = NewAttributeMissingError("sklearn.tree.DecisionTreeClassifier", "tree_")
				panic("late failure")
			},
			wantSubstr: "attribute 'tree_' is missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			if tt.wantNil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantSubstr)

			var panicErr *PanicError
			assert.Equal(t, tt.wantPanic, As(err, &panicErr))
			if tt.wantPanic {
				assert.NotEmpty(t, panicErr.StackTrace)
			}
		})
	}
}

func TestSafeExecute(t *testing.T) {
	t.Run("returns function error", func(t *testing.T) {
		want := fmt.Errorf("boom")
		err := SafeExecute("op", func() error { return want })
		assert.Equal(t, want, err)
	})

	t.Run("panic with error value unwraps", func(t *testing.T) {
		cause := NewSchemaSizeError("SubSchema", "features", 3, 5)
		err := SafeExecute("op", func() error { panic(cause) })
		require.Error(t, err)
		assert.Equal(t, KindSchemaSizeMismatch, KindOf(err))
	})
}
