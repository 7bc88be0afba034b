package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	entries []Entry
	nextID  int64
}

func (r *memoryRepo) List(ctx context.Context, filter Filter) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if filter.Kind != "" && e.Kind != filter.Kind {
			continue
		}
		if !filter.From.IsZero() && e.OccurredAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !e.OccurredAt.Before(filter.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Entry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrEntryNotFound
}

func (r *memoryRepo) InsertManual(ctx context.Context, input ManualInput) (Entry, error) {
	r.nextID++
	entry := Entry{
		ID:          r.nextID,
		Kind:        input.Kind,
		Amount:      input.Amount,
		Description: input.Description,
		ActorID:     input.ActorID,
		OccurredAt:  time.Now().UTC(),
	}
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *memoryRepo) Summary(ctx context.Context, from, to time.Time) (Summary, error) {
	var s Summary
	for _, e := range r.entries {
		if !from.IsZero() && e.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && !e.OccurredAt.Before(to) {
			continue
		}
		switch e.Kind {
		case KindSale, KindIncome:
			s.Income += e.Amount
		case KindExpense:
			s.Expense += e.Amount
		}
	}
	s.Net = s.Income - s.Expense
	return s, nil
}

const testActor = "5b1c9f80-2e47-44d2-90b7-6ad1c55d7c10"

func TestRecordManual(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil)
	ctx := context.Background()

	entry, err := svc.RecordManual(ctx, ManualInput{Kind: KindExpense, Amount: 50000, Description: "Beli gas", ActorID: testActor})
	require.NoError(t, err)
	require.EqualValues(t, 1, entry.ID)
	require.Equal(t, KindExpense, entry.Kind)
	require.False(t, entry.OccurredAt.IsZero())
}

func TestRecordManualValidation(t *testing.T) {
	svc := NewService(&memoryRepo{}, nil)
	ctx := context.Background()

	_, err := svc.RecordManual(ctx, ManualInput{Kind: KindSale, Amount: 1000, Description: "x", ActorID: testActor})
	require.ErrorIs(t, err, ErrInvalidKind)

	_, err = svc.RecordManual(ctx, ManualInput{Kind: KindIncome, Amount: 0, Description: "x", ActorID: testActor})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RecordManual(ctx, ManualInput{Kind: KindIncome, Amount: 1000, Description: "   ", ActorID: testActor})
	require.ErrorIs(t, err, ErrDescriptionRequired)
}

func TestSummary(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.RecordManual(ctx, ManualInput{Kind: KindIncome, Amount: 200000, Description: "Modal tambahan", ActorID: testActor})
	require.NoError(t, err)
	_, err = svc.RecordManual(ctx, ManualInput{Kind: KindExpense, Amount: 75000, Description: "Listrik", ActorID: testActor})
	require.NoError(t, err)
	repo.entries = append(repo.entries, Entry{ID: 99, Kind: KindSale, Amount: 120000, OccurredAt: time.Now().UTC()})

	summary, err := svc.Summary(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.EqualValues(t, 320000, summary.Income)
	require.EqualValues(t, 75000, summary.Expense)
	require.EqualValues(t, 245000, summary.Net)
}

func TestListRejectsUnknownKind(t *testing.T) {
	svc := NewService(&memoryRepo{}, nil)
	_, err := svc.List(context.Background(), Filter{Kind: Kind("REFUND")})
	require.ErrorIs(t, err, ErrInvalidKind)
}
