package unitofwork

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingUoW struct {
	UnitOfWork
	calls    []string
	beginErr error
}

func (r *recordingUoW) Begin(ctx context.Context) error {
	r.calls = append(r.calls, "begin")
	return r.beginErr
}

func (r *recordingUoW) Commit() error {
	r.calls = append(r.calls, "commit")
	return nil
}

func (r *recordingUoW) Rollback() error {
	r.calls = append(r.calls, "rollback")
	return nil
}

func TestTransact(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		beginErr  error
		fnErr     error
		wantErr   error
		wantCalls []string
	}{
		{name: "commits on success", wantCalls: []string{"begin", "fn", "commit"}},
		{name: "rolls back on error", fnErr: boom, wantErr: boom, wantCalls: []string{"begin", "fn", "rollback"}},
		{name: "begin failure skips fn", beginErr: boom, wantErr: boom, wantCalls: []string{"begin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow := &recordingUoW{beginErr: tt.beginErr}
			err := Transact(context.Background(), uow, func() error {
				uow.calls = append(uow.calls, "fn")
				return tt.fnErr
			})
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, uow.calls)
		})
	}
}
