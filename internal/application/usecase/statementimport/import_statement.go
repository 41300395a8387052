// Package statementimport contains the statement import use cases.
package statementimport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
)

// Defaults holds process-wide fallbacks applied when a configuration leaves them out.
type Defaults struct {
	Location *time.Location
	Locale   string
}

// ImportStatementInput represents the input for a statement import.
type ImportStatementInput struct {
	FileName string
	Content  []byte
	Config   *entity.ImportConfiguration
}

// candidate is an entry that passed parsing and mapping and is ready to become a transaction.
type candidate struct {
	entry       entity.ImportedEntry
	transaction *entity.Transaction
}

// ImportStatementUseCase parses a statement, resolves mappings, filters duplicates and
// commits the resulting transactions with their responsibility split.
type ImportStatementUseCase struct {
	detector        adapter.FormatDetector
	parsers         map[entity.ImportFormat]adapter.StatementParser
	catalog         adapter.CatalogLookup
	transactionRepo adapter.TransactionRepository
	batchRepo       adapter.ImportBatchRepository
	txManager       adapter.TransactionManager
	currentUser     adapter.CurrentUserProvider
	defaults        Defaults
}

// NewImportStatementUseCase creates a new ImportStatementUseCase instance.
func NewImportStatementUseCase(
	detector adapter.FormatDetector,
	parsers map[entity.ImportFormat]adapter.StatementParser,
	catalog adapter.CatalogLookup,
	transactionRepo adapter.TransactionRepository,
	batchRepo adapter.ImportBatchRepository,
	txManager adapter.TransactionManager,
	currentUser adapter.CurrentUserProvider,
	defaults Defaults,
) *ImportStatementUseCase {
	return &ImportStatementUseCase{
		detector:        detector,
		parsers:         parsers,
		catalog:         catalog,
		transactionRepo: transactionRepo,
		batchRepo:       batchRepo,
		txManager:       txManager,
		currentUser:     currentUser,
		defaults:        defaults,
	}
}

// Execute runs one import. Rejections and fatal parse errors are returned as *domainerror.ImportError
// before anything is written; a failed commit is rolled back and reported with a commit code.
func (uc *ImportStatementUseCase) Execute(ctx context.Context, input ImportStatementInput) (*entity.ImportResult, error) {
	cfg, err := uc.prepare(ctx, input.Config)
	if err != nil {
		return nil, err
	}

	if err := ValidateConfiguration(cfg); err != nil {
		return nil, err
	}

	if err := uc.ensureDefaultsExist(ctx, cfg); err != nil {
		return nil, err
	}

	format, err := uc.detector.Detect(cfg.Format, input.FileName, input.Content)
	if err != nil {
		return nil, err
	}

	if format == entity.ImportFormatCSV && (cfg.CSV == nil || !cfg.CSV.ContainsHeader) {
		return nil, domainerror.NewImportError(
			domainerror.ErrCodeMissingCSVConfiguration,
			"delimited-text import requires a csv configuration with containsHeader set",
			domainerror.ErrMissingCSVConfiguration,
		)
	}

	parser, ok := uc.parsers[format]
	if !ok {
		return nil, domainerror.NewImportError(
			domainerror.ErrCodeUnrecognizedFormat,
			fmt.Sprintf("no parser registered for format %s", format),
			domainerror.ErrUnrecognizedFormat,
		)
	}

	loc := cfg.Location(uc.defaults.Location)
	entries, err := parser.Parse(ctx, input.Content, cfg, loc)
	if err != nil {
		return nil, err
	}

	result := &entity.ImportResult{
		Format:       format,
		DryRun:       cfg.DryRun,
		TotalEntries: len(entries),
		Summaries:    []entity.TransactionSummary{},
		Issues:       []entity.ImportIssue{},
	}

	candidates, err := uc.buildCandidates(ctx, cfg, entries, result)
	if err != nil {
		return nil, err
	}

	creates, updates, err := uc.applyDuplicateStrategy(ctx, cfg, candidates, result)
	if err != nil {
		return nil, err
	}

	result.ProcessedEntries = len(creates) + len(updates)
	sort.SliceStable(result.Issues, func(i, j int) bool {
		return result.Issues[i].LineNumber < result.Issues[j].LineNumber
	})

	if cfg.DryRun {
		result.Summaries = summarize(creates)
		uc.logResult(cfg, input.FileName, result)
		return result, nil
	}

	if err := uc.commit(ctx, cfg, input.FileName, creates, updates, result); err != nil {
		return nil, err
	}

	result.Summaries = summarize(creates)
	uc.logResult(cfg, input.FileName, result)
	return result, nil
}

// prepare copies the configuration, fills defaults and resolves the acting user.
// The caller's configuration is never modified.
func (uc *ImportStatementUseCase) prepare(ctx context.Context, in *entity.ImportConfiguration) (*entity.ImportConfiguration, error) {
	if in == nil {
		return nil, domainerror.NewImportError(
			domainerror.ErrCodeInvalidImportConfig,
			"import configuration is required",
			domainerror.ErrInvalidImportConfiguration,
		)
	}

	cfg := WithDefaults(in, uc.defaults)

	if cfg.UserID == uuid.Nil && uc.currentUser != nil {
		userID, err := uc.currentUser.CurrentUserID(ctx)
		if err != nil && !errors.Is(err, domainerror.ErrUserNotResolved) {
			return nil, fmt.Errorf("failed to resolve current user: %w", err)
		}
		cfg.UserID = userID
	}
	if cfg.UserID == uuid.Nil {
		return nil, domainerror.NewImportError(
			domainerror.ErrCodeUserNotResolved,
			"target user is required",
			domainerror.ErrUserNotResolved,
		)
	}

	return cfg, nil
}

// WithDefaults returns a copy of in with the format, duplicate strategy and CSV locale filled in.
func WithDefaults(in *entity.ImportConfiguration, defaults Defaults) *entity.ImportConfiguration {
	cfg := *in
	if cfg.Format == "" {
		cfg.Format = entity.ImportFormatAuto
	}
	if cfg.DuplicateStrategy == "" {
		cfg.DuplicateStrategy = entity.DuplicateStrategySkip
	}
	if cfg.CSV != nil {
		csvCfg := *cfg.CSV
		if csvCfg.Locale == "" {
			csvCfg.Locale = defaults.Locale
		}
		cfg.CSV = &csvCfg
	}
	return &cfg
}

// buildCandidates drops ignored entries, reports unreadable and unmapped ones and turns the
// rest into transactions carrying the responsibility template.
func (uc *ImportStatementUseCase) buildCandidates(
	ctx context.Context,
	cfg *entity.ImportConfiguration,
	entries []entity.ImportedEntry,
	result *entity.ImportResult,
) ([]*candidate, error) {
	resolver := newMappingResolver(uc.catalog, cfg)
	candidates := make([]*candidate, 0, len(entries))

	for _, entry := range entries {
		if isIgnored(entry.Description, cfg.IgnoreDescriptions) {
			result.IgnoredEntries++
			continue
		}

		if entry.Date == nil {
			result.Issues = append(result.Issues, entity.ImportIssue{
				LineNumber:        entry.LineNumber,
				ExternalReference: entry.ExternalID,
				Message:           fmt.Sprintf("unparsable date %q", entry.RawDate),
				Type:              entity.IssueInvalidDate,
			})
			continue
		}
		if entry.Amount == nil {
			result.Issues = append(result.Issues, entity.ImportIssue{
				LineNumber:        entry.LineNumber,
				ExternalReference: entry.ExternalID,
				Message:           fmt.Sprintf("unparsable amount %q", entry.RawAmount),
				Type:              entity.IssueInvalidAmount,
			})
			continue
		}

		resolved, issue, err := resolver.resolve(ctx, entry)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve mappings for line %d: %w", entry.LineNumber, err)
		}
		if issue != nil {
			result.Issues = append(result.Issues, *issue)
			continue
		}

		transaction := entity.NewTransaction(
			cfg.UserID,
			*entry.Date,
			entry.Description,
			*entry.Amount,
			resolved.Type,
			resolved.Subtype,
			resolved.Source,
			resolved.CategoryID,
			cfg.Responsibilities,
		)
		transaction.SubcategoryID = resolved.SubcategoryID
		transaction.SourceEntityID = resolved.SourceEntityID
		if entry.ExternalID != "" {
			reference := entry.ExternalID
			transaction.ExternalReference = &reference
		}

		candidates = append(candidates, &candidate{entry: entry, transaction: transaction})
	}

	return candidates, nil
}

// applyDuplicateStrategy splits candidates into creations and overwrites.
func (uc *ImportStatementUseCase) applyDuplicateStrategy(
	ctx context.Context,
	cfg *entity.ImportConfiguration,
	candidates []*candidate,
	result *entity.ImportResult,
) ([]*candidate, []*entity.Transaction, error) {
	detector, err := newDuplicateDetector(ctx, uc.transactionRepo, cfg.UserID, candidates)
	if err != nil {
		return nil, nil, err
	}

	creates := make([]*candidate, 0, len(candidates))
	updates := make([]*entity.Transaction, 0)

	for _, c := range candidates {
		match := detector.check(c)
		if match.kind == notDuplicate {
			creates = append(creates, c)
			continue
		}

		if cfg.DuplicateStrategy == entity.DuplicateStrategyFail {
			return nil, nil, domainerror.NewImportError(
				domainerror.ErrCodeDuplicateUnderFail,
				fmt.Sprintf("duplicate entry on line %d: %s", c.entry.LineNumber, match.reason),
				domainerror.ErrDuplicateEntry,
			)
		}

		result.DuplicateEntries++

		if match.kind == duplicateInStorage && cfg.DuplicateStrategy == entity.DuplicateStrategyOverwrite {
			overwrite(match.existing, c.transaction, cfg.Responsibilities)
			updates = append(updates, match.existing)
			continue
		}

		result.Issues = append(result.Issues, entity.ImportIssue{
			LineNumber:        c.entry.LineNumber,
			ExternalReference: c.entry.ExternalID,
			Message:           match.reason,
			Type:              entity.IssueDuplicate,
		})
	}

	return creates, updates, nil
}

// commit writes creations, overwrites and the batch record in one database transaction.
func (uc *ImportStatementUseCase) commit(
	ctx context.Context,
	cfg *entity.ImportConfiguration,
	fileName string,
	creates []*candidate,
	updates []*entity.Transaction,
	result *entity.ImportResult,
) error {
	batchID := uuid.New()
	result.CreatedTransactions = len(creates)
	result.UpdatedTransactions = len(updates)

	err := uc.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, c := range creates {
			c.transaction.ImportBatchID = &batchID
			if err := uc.transactionRepo.Create(txCtx, c.transaction); err != nil {
				return fmt.Errorf("failed to create transaction for line %d: %w", c.entry.LineNumber, err)
			}
		}
		for _, transaction := range updates {
			if err := uc.transactionRepo.Update(txCtx, transaction); err != nil {
				return fmt.Errorf("failed to overwrite transaction %d: %w", transaction.ID, err)
			}
		}
		return uc.batchRepo.Create(txCtx, entity.NewImportBatch(batchID, cfg.UserID, fileName, result))
	})
	if err != nil {
		result.CreatedTransactions = 0
		result.UpdatedTransactions = 0

		slog.Error("Statement import rolled back",
			"userID", cfg.UserID,
			"fileName", fileName,
			"error", err,
		)

		code := domainerror.ErrCodeCommitFailed
		if errors.Is(err, domainerror.ErrDuplicateExternalReference) {
			code = domainerror.ErrCodeCommitConflict
		}
		return domainerror.NewImportError(
			code,
			"import was rolled back and no transactions were created",
			errors.Join(domainerror.ErrImportCommitFailed, err),
		)
	}

	result.BatchID = &batchID
	return nil
}

func (uc *ImportStatementUseCase) logResult(cfg *entity.ImportConfiguration, fileName string, result *entity.ImportResult) {
	slog.Info("Statement import completed",
		"userID", cfg.UserID,
		"fileName", fileName,
		"format", result.Format,
		"dryRun", result.DryRun,
		"totalEntries", result.TotalEntries,
		"processedEntries", result.ProcessedEntries,
		"createdTransactions", result.CreatedTransactions,
		"updatedTransactions", result.UpdatedTransactions,
		"duplicateEntries", result.DuplicateEntries,
		"ignoredEntries", result.IgnoredEntries,
		"issues", len(result.Issues),
	)
}

// overwrite copies the imported content onto a stored transaction and reapplies the split.
func overwrite(existing, incoming *entity.Transaction, allocations []entity.ResponsibilityAllocation) {
	existing.Date = incoming.Date
	existing.Description = incoming.Description
	existing.Amount = incoming.Amount
	existing.Type = incoming.Type
	existing.Subtype = incoming.Subtype
	existing.Source = incoming.Source
	existing.CategoryID = incoming.CategoryID
	existing.SubcategoryID = incoming.SubcategoryID
	existing.SourceEntityID = incoming.SourceEntityID
	if incoming.ExternalReference != nil {
		existing.ExternalReference = incoming.ExternalReference
	}
	existing.Fingerprint = incoming.Fingerprint
	existing.AssignResponsibilities(allocations)
	existing.UpdatedAt = time.Now().UTC()
}

func summarize(creates []*candidate) []entity.TransactionSummary {
	summaries := make([]entity.TransactionSummary, 0, len(creates))
	for _, c := range creates {
		t := c.transaction
		summary := entity.TransactionSummary{
			LineNumber:       c.entry.LineNumber,
			Date:             t.Date,
			Description:      t.Description,
			Amount:           t.Amount,
			Type:             t.Type,
			CategoryID:       t.CategoryID,
			Responsibilities: t.Responsibilities,
		}
		if t.ID != 0 {
			id := t.ID
			summary.ID = &id
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func isIgnored(description string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	lower := strings.ToLower(description)
	for _, pattern := range patterns {
		if p := strings.ToLower(strings.TrimSpace(pattern)); p != "" && strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
