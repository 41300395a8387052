package statementimport

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
)

type duplicateKind int

const (
	notDuplicate duplicateKind = iota
	duplicateInBatch
	duplicateInStorage
)

// duplicateMatch describes why a candidate collides and with what.
type duplicateMatch struct {
	kind     duplicateKind
	existing *entity.Transaction
	reason   string
}

// duplicateDetector correlates candidates by external reference, or by content fingerprint
// when the statement gives no reference. Storage is loaded once up front.
type duplicateDetector struct {
	storedByReference   map[string]*entity.Transaction
	storedByFingerprint map[string]*entity.Transaction

	batchReferences   map[string]int
	batchFingerprints map[string]int
	claimed           map[int64]int
}

func newDuplicateDetector(
	ctx context.Context,
	repo adapter.TransactionRepository,
	userID uuid.UUID,
	candidates []*candidate,
) (*duplicateDetector, error) {
	references := lo.Uniq(lo.FilterMap(candidates, func(c *candidate, _ int) (string, bool) {
		return c.entry.ExternalID, c.entry.ExternalID != ""
	}))
	fingerprints := lo.Uniq(lo.FilterMap(candidates, func(c *candidate, _ int) (string, bool) {
		return c.transaction.Fingerprint, c.entry.ExternalID == ""
	}))

	d := &duplicateDetector{
		storedByReference:   map[string]*entity.Transaction{},
		storedByFingerprint: map[string]*entity.Transaction{},
		batchReferences:     make(map[string]int),
		batchFingerprints:   make(map[string]int),
		claimed:             make(map[int64]int),
	}

	var err error
	if len(references) > 0 {
		if d.storedByReference, err = repo.FindByExternalReferences(ctx, userID, references); err != nil {
			return nil, fmt.Errorf("failed to load transactions by external reference: %w", err)
		}
	}
	if len(fingerprints) > 0 {
		if d.storedByFingerprint, err = repo.FindByFingerprints(ctx, userID, fingerprints); err != nil {
			return nil, fmt.Errorf("failed to load transactions by fingerprint: %w", err)
		}
	}

	return d, nil
}

// check classifies a candidate and records its keys so later candidates see it.
// Candidates must be checked in line order.
func (d *duplicateDetector) check(c *candidate) duplicateMatch {
	line := c.entry.LineNumber
	reference := c.entry.ExternalID
	fingerprint := c.transaction.Fingerprint

	defer func() {
		if reference != "" {
			if _, ok := d.batchReferences[reference]; !ok {
				d.batchReferences[reference] = line
			}
		}
		if _, ok := d.batchFingerprints[fingerprint]; !ok {
			d.batchFingerprints[fingerprint] = line
		}
	}()

	var existing *entity.Transaction
	if reference != "" {
		if earlier, ok := d.batchReferences[reference]; ok {
			return duplicateMatch{
				kind:   duplicateInBatch,
				reason: fmt.Sprintf("external id %q already appears on line %d", reference, earlier),
			}
		}
		existing = d.storedByReference[reference]
	} else {
		if earlier, ok := d.batchFingerprints[fingerprint]; ok {
			return duplicateMatch{
				kind:   duplicateInBatch,
				reason: fmt.Sprintf("same date, amount and description as line %d", earlier),
			}
		}
		existing = d.storedByFingerprint[fingerprint]
	}

	if existing == nil {
		return duplicateMatch{kind: notDuplicate}
	}

	if earlier, ok := d.claimed[existing.ID]; ok {
		return duplicateMatch{
			kind:   duplicateInBatch,
			reason: fmt.Sprintf("transaction %d already matched line %d", existing.ID, earlier),
		}
	}
	d.claimed[existing.ID] = line

	reason := fmt.Sprintf("matches existing transaction %d by content", existing.ID)
	if reference != "" {
		reason = fmt.Sprintf("external id %q was already imported as transaction %d", reference, existing.ID)
	}
	return duplicateMatch{kind: duplicateInStorage, existing: existing, reason: reason}
}
