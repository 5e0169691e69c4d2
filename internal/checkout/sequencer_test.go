package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campuswear/uniform-orderflow/internal/orders"
)

type fakeCreator struct {
	failNumbers map[string]error
	submitted   []string // order numbers in submission order
}

func (f *fakeCreator) CreateOrder(ctx context.Context, studentID string, draft OrderDraft) error {
	f.submitted = append(f.submitted, draft.OrderNumber)
	if err, ok := f.failNumbers[draft.OrderNumber]; ok {
		return err
	}
	return nil
}

func TestSubmit_RegularBeforePreOrder(t *testing.T) {
	f := &fakeCreator{}
	s := NewSequencer(f, zerolog.Nop())

	drafts := []OrderDraft{
		{OrderNumber: "UNI-2", Type: orders.TypePreOrder},
		{OrderNumber: "UNI-1", Type: orders.TypeRegular},
	}
	out := s.Submit(context.Background(), "stu-1", drafts)

	require.Equal(t, []string{"UNI-1", "UNI-2"}, f.submitted)
	require.Len(t, out.Created, 2)
	require.Empty(t, out.Failed)
}

func TestSubmit_PartialFailure(t *testing.T) {
	boom := errors.New("persistence down")
	f := &fakeCreator{failNumbers: map[string]error{"UNI-2": boom}}
	s := NewSequencer(f, zerolog.Nop())

	drafts := []OrderDraft{
		{OrderNumber: "UNI-1", Type: orders.TypeRegular},
		{OrderNumber: "UNI-2", Type: orders.TypePreOrder},
	}
	out := s.Submit(context.Background(), "stu-1", drafts)

	require.Len(t, out.Created, 1)
	require.Equal(t, "UNI-1", out.Created[0].OrderNumber)
	require.Len(t, out.Failed, 1)
	require.Equal(t, "UNI-2", out.Failed[0].Draft.OrderNumber)
	require.ErrorIs(t, out.Failed[0].Err, boom)
}

func TestSubmit_RegularFailureDoesNotBlockPreOrder(t *testing.T) {
	f := &fakeCreator{failNumbers: map[string]error{"UNI-1": errors.New("nope")}}
	s := NewSequencer(f, zerolog.Nop())

	drafts := []OrderDraft{
		{OrderNumber: "UNI-1", Type: orders.TypeRegular},
		{OrderNumber: "UNI-2", Type: orders.TypePreOrder},
	}
	out := s.Submit(context.Background(), "stu-1", drafts)

	require.Equal(t, []string{"UNI-1", "UNI-2"}, f.submitted)
	require.Len(t, out.Created, 1)
	require.Equal(t, "UNI-2", out.Created[0].OrderNumber)
	require.Len(t, out.Failed, 1)
}
