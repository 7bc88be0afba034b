package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/warungpos/warungpos/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service exposes read access to the ledger plus manual entry recording. The
// ledger is append-only: nothing here updates or deletes committed entries.
type Service struct {
	repo  Repository
	audit AuditPort
}

// NewService builds Service. audit may be nil.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Entry, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, ErrInvalidKind
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	if id <= 0 {
		return Entry{}, ErrEntryNotFound
	}
	return s.repo.Get(ctx, id)
}

// RecordManual appends a manual income or expense entry.
func (s *Service) RecordManual(ctx context.Context, input ManualInput) (Entry, error) {
	if input.Kind != KindIncome && input.Kind != KindExpense {
		return Entry{}, ErrInvalidKind
	}
	if input.Amount <= 0 {
		return Entry{}, ErrInvalidAmount
	}
	if strings.TrimSpace(input.Description) == "" {
		return Entry{}, ErrDescriptionRequired
	}

	entry, err := s.repo.InsertManual(ctx, input)
	if err != nil {
		return Entry{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ActorID,
			Action:   "ledger:manual",
			Entity:   "transaction",
			EntityID: strings.ToLower(string(input.Kind)),
			Meta: map[string]any{
				"entry_id": entry.ID,
				"amount":   entry.Amount,
			},
		})
	}
	return entry, nil
}

func (s *Service) Summary(ctx context.Context, from, to time.Time) (Summary, error) {
	return s.repo.Summary(ctx, from, to)
}
