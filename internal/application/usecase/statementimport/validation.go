package statementimport

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
	"github.com/finance-tracker/importer/internal/domain/valueobject"
)

var (
	formatValues   = []interface{}{entity.ImportFormatAuto, entity.ImportFormatOFX, entity.ImportFormatCSV}
	strategyValues = []interface{}{
		entity.DuplicateStrategySkip,
		entity.DuplicateStrategyOverwrite,
		entity.DuplicateStrategyFail,
	}
	typeValues    = []interface{}{entity.TransactionTypeIncome, entity.TransactionTypeExpense}
	subtypeValues = []interface{}{entity.TransactionSubtypeFixed, entity.TransactionSubtypeVariable}
	sourceValues  = []interface{}{
		entity.TransactionSourceCreditCard,
		entity.TransactionSourceDebitCard,
		entity.TransactionSourcePix,
		entity.TransactionSourceBankTransfer,
		entity.TransactionSourceBankSlip,
		entity.TransactionSourceCash,
		entity.TransactionSourceOther,
	}
)

// ValidateConfiguration checks everything that can be checked without touching storage or the file.
// It is shared by the HTTP and command-line entrypoints.
func ValidateConfiguration(cfg *entity.ImportConfiguration) error {
	err := validation.ValidateStruct(cfg,
		validation.Field(&cfg.Format, validation.Required, validation.In(formatValues...)),
		validation.Field(&cfg.DuplicateStrategy, validation.Required, validation.In(strategyValues...)),
		validation.Field(&cfg.DefaultType, validation.In(typeValues...)),
		validation.Field(&cfg.DefaultSubtype, validation.Required, validation.In(subtypeValues...)),
		validation.Field(&cfg.DefaultSource, validation.Required, validation.In(sourceValues...)),
		validation.Field(&cfg.TypeMapping, validation.Each(validation.In(typeValues...))),
		validation.Field(&cfg.SubtypeMapping, validation.Each(validation.In(subtypeValues...))),
		validation.Field(&cfg.SourceMapping, validation.Each(validation.In(sourceValues...))),
		validation.Field(&cfg.CategoryMapping, validation.Each(validation.Min(int64(1)))),
		validation.Field(&cfg.SubcategoryMapping, validation.Each(validation.Min(int64(1)))),
		validation.Field(&cfg.SourceEntityMapping, validation.Each(validation.Min(int64(1)))),
		validation.Field(&cfg.IgnoreDescriptions, validation.Each(validation.Required)),
	)
	if err == nil && cfg.CSV != nil {
		err = validateCSV(cfg.CSV)
	}
	if err != nil {
		return domainerror.NewImportError(
			domainerror.ErrCodeInvalidImportConfig,
			err.Error(),
			domainerror.ErrInvalidImportConfiguration,
		)
	}

	if err := validateResponsibilities(cfg.Responsibilities); err != nil {
		return err
	}

	if cfg.DefaultCategoryID == nil && len(cfg.CategoryMapping) == 0 {
		return domainerror.NewImportError(
			domainerror.ErrCodeNoCategoryPath,
			"a default category or a category mapping is required",
			domainerror.ErrNoCategoryPath,
		)
	}

	return nil
}

func validateCSV(c *entity.CSVConfiguration) error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Delimiter, validation.By(singleRuneOrTab)),
		validation.Field(&c.DecimalSeparator, validation.RuneLength(0, 1)),
		validation.Field(&c.GroupingSeparator, validation.RuneLength(0, 1)),
		validation.Field(&c.Encoding, validation.By(knownCharset)),
		validation.Field(&c.DatePatterns, validation.Each(validation.Required)),
	)
	if err != nil {
		return err
	}

	separators := valueobject.SeparatorsForLocale(c.Locale)
	if c.DecimalSeparator != "" {
		separators.Decimal = c.DecimalSeparator
	}
	if c.GroupingSeparator != "" {
		separators.Grouping = c.GroupingSeparator
	}
	if separators.Decimal == separators.Grouping {
		return errors.New("decimal and grouping separators must differ")
	}
	return nil
}

func singleRuneOrTab(value interface{}) error {
	s, _ := value.(string)
	if s == "" || s == `\t` || s == "tab" || s == "TAB" || utf8.RuneCountInString(s) == 1 {
		return nil
	}
	return errors.New("must be a single character")
}

func knownCharset(value interface{}) error {
	s, _ := value.(string)
	if _, err := valueobject.LookupCharset(s); err != nil {
		return fmt.Errorf("unknown charset %q", s)
	}
	return nil
}

// validateResponsibilities enforces the split template: at least one party, each share in
// [0, 100] with at most two decimals, no party twice, and an exact total of 100.00.
func validateResponsibilities(allocations []entity.ResponsibilityAllocation) error {
	if len(allocations) == 0 {
		return domainerror.NewImportError(
			domainerror.ErrCodeEmptyResponsibilities,
			"at least one responsible party is required",
			domainerror.ErrInvalidImportConfiguration,
		)
	}

	seen := make(map[int64]struct{}, len(allocations))
	percentages := make([]decimal.Decimal, 0, len(allocations))
	for _, allocation := range allocations {
		if allocation.ResponsibleID <= 0 {
			return domainerror.NewImportError(
				domainerror.ErrCodeInvalidImportConfig,
				"responsibleId is required for every responsibility",
				domainerror.ErrInvalidImportConfiguration,
			)
		}
		if !valueobject.IsPercentageInRange(allocation.Percentage) || !valueobject.HasPercentagePrecision(allocation.Percentage) {
			return domainerror.NewImportError(
				domainerror.ErrCodeInvalidPercentage,
				fmt.Sprintf("percentage %s for responsible %d must be between 0 and 100 with at most two decimals",
					allocation.Percentage.String(), allocation.ResponsibleID),
				domainerror.ErrInvalidResponsibilityPercentage,
			)
		}
		if _, dup := seen[allocation.ResponsibleID]; dup {
			return domainerror.NewImportError(
				domainerror.ErrCodeDuplicateResponsible,
				fmt.Sprintf("responsible %d is listed more than once", allocation.ResponsibleID),
				domainerror.ErrDuplicateResponsibleParty,
			)
		}
		seen[allocation.ResponsibleID] = struct{}{}
		percentages = append(percentages, allocation.Percentage)
	}

	if !valueobject.SumsToWhole(percentages) {
		return domainerror.NewImportError(
			domainerror.ErrCodePercentagesNotWhole,
			fmt.Sprintf("responsibility percentages sum to %s, expected 100.00",
				valueobject.PercentageTotal(percentages).StringFixed(valueobject.PercentageScale)),
			domainerror.ErrResponsibilitiesNotWhole,
		)
	}

	return nil
}

// ensureDefaultsExist rejects defaults that do not belong to the user.
func (uc *ImportStatementUseCase) ensureDefaultsExist(ctx context.Context, cfg *entity.ImportConfiguration) error {
	if cfg.DefaultCategoryID != nil {
		if _, err := uc.catalog.FindCategoryByID(ctx, cfg.UserID, *cfg.DefaultCategoryID); err != nil {
			return defaultLookupError("category", *cfg.DefaultCategoryID, err, domainerror.ErrCategoryNotFound)
		}
	}
	if cfg.DefaultSubcategoryID != nil {
		if _, err := uc.catalog.FindSubcategoryByID(ctx, cfg.UserID, *cfg.DefaultSubcategoryID); err != nil {
			return defaultLookupError("subcategory", *cfg.DefaultSubcategoryID, err, domainerror.ErrSubcategoryNotFound)
		}
	}
	if cfg.DefaultSourceEntityID != nil {
		if _, err := uc.catalog.FindSourceEntityByID(ctx, cfg.UserID, *cfg.DefaultSourceEntityID); err != nil {
			return defaultLookupError("source entity", *cfg.DefaultSourceEntityID, err, domainerror.ErrSourceEntityNotFound)
		}
	}
	return nil
}

func defaultLookupError(kind string, id int64, err, notFound error) error {
	if errors.Is(err, notFound) {
		return domainerror.NewImportError(
			domainerror.ErrCodeDefaultReferenceNotFound,
			fmt.Sprintf("default %s %d not found", kind, id),
			domainerror.ErrDefaultReferenceNotFound,
		)
	}
	return fmt.Errorf("failed to load default %s: %w", kind, err)
}
