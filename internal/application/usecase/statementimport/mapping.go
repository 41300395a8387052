package statementimport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
)

// resolvedEntry carries the internal references chosen for one entry.
type resolvedEntry struct {
	Type           entity.TransactionType
	Subtype        entity.TransactionSubtype
	Source         entity.TransactionSource
	CategoryID     int64
	SubcategoryID  *int64
	SourceEntityID *int64
}

// catalogRef is a cached lookup outcome: found reports whether the reference exists.
type catalogRef struct {
	id    int64
	found bool
}

// mappingResolver turns hint codes into ids and enums. Catalog lookups are cached for
// the lifetime of one import.
type mappingResolver struct {
	catalog adapter.CatalogLookup
	cfg     *entity.ImportConfiguration

	categoryIDs     map[int64]bool
	subcategoryIDs  map[int64]bool
	sourceEntityIDs map[int64]bool

	categoryNames     map[string]catalogRef
	subcategoryNames  map[string]catalogRef
	sourceEntityNames map[string]catalogRef
}

func newMappingResolver(catalog adapter.CatalogLookup, cfg *entity.ImportConfiguration) *mappingResolver {
	return &mappingResolver{
		catalog:           catalog,
		cfg:               cfg,
		categoryIDs:       make(map[int64]bool),
		subcategoryIDs:    make(map[int64]bool),
		sourceEntityIDs:   make(map[int64]bool),
		categoryNames:     make(map[string]catalogRef),
		subcategoryNames:  make(map[string]catalogRef),
		sourceEntityNames: make(map[string]catalogRef),
	}
}

// resolve returns either the resolved references or the issue that keeps the entry out.
// The error return is reserved for catalog failures.
func (r *mappingResolver) resolve(ctx context.Context, entry entity.ImportedEntry) (*resolvedEntry, *entity.ImportIssue, error) {
	resolved := &resolvedEntry{
		Type:    r.resolveType(entry),
		Subtype: resolveEnum(r.cfg.SubtypeMapping, entry.SubtypeCode, entity.ParseTransactionSubtype, r.cfg.DefaultSubtype),
		Source:  resolveEnum(r.cfg.SourceMapping, entry.SourceCode, entity.ParseTransactionSource, r.cfg.DefaultSource),
	}

	categoryID, issue, err := r.resolveCategory(ctx, entry)
	if err != nil || issue != nil {
		return nil, issue, err
	}
	resolved.CategoryID = categoryID

	resolved.SubcategoryID, issue, err = r.resolveOptional(ctx, entry, "subcategory", entry.SubcategoryCode,
		r.cfg.SubcategoryMapping, r.cfg.DefaultSubcategoryID, r.subcategoryIDs, r.subcategoryNames,
		r.subcategoryExists, r.subcategoryByName)
	if err != nil || issue != nil {
		return nil, issue, err
	}

	resolved.SourceEntityID, issue, err = r.resolveOptional(ctx, entry, "source entity", entry.SourceEntityCode,
		r.cfg.SourceEntityMapping, r.cfg.DefaultSourceEntityID, r.sourceEntityIDs, r.sourceEntityNames,
		r.sourceEntityExists, r.sourceEntityByName)
	if err != nil || issue != nil {
		return nil, issue, err
	}

	return resolved, nil, nil
}

// resolveType prefers the type mapping, then the configured default for inferred types,
// then whatever the parser decided.
func (r *mappingResolver) resolveType(entry entity.ImportedEntry) entity.TransactionType {
	if t, ok := lookupCode(r.cfg.TypeMapping, entry.TypeCode); ok {
		return t
	}
	if entry.TypeInferred && r.cfg.DefaultType != nil {
		return *r.cfg.DefaultType
	}
	return entry.Type
}

func resolveEnum[T ~string](mapping map[string]T, code string, parse func(string) (T, bool), fallback T) T {
	if v, ok := lookupCode(mapping, code); ok {
		return v
	}
	if v, ok := parse(code); ok {
		return v
	}
	return fallback
}

func (r *mappingResolver) resolveCategory(ctx context.Context, entry entity.ImportedEntry) (int64, *entity.ImportIssue, error) {
	code := strings.TrimSpace(entry.CategoryCode)

	if id, ok := lookupCode(r.cfg.CategoryMapping, code); ok {
		exists, err := cachedExists(ctx, r.categoryIDs, id, r.categoryExists)
		if err != nil {
			return 0, nil, err
		}
		if !exists {
			return 0, invalidMapping(entry, "category", code, id), nil
		}
		return id, nil, nil
	}

	if code != "" {
		ref, err := cachedByName(ctx, r.categoryNames, code, r.categoryByName)
		if err != nil {
			return 0, nil, err
		}
		if ref.found {
			return ref.id, nil, nil
		}
	}

	if r.cfg.DefaultCategoryID != nil {
		return *r.cfg.DefaultCategoryID, nil, nil
	}

	message := "no category mapping or default category for entry"
	if code != "" {
		message = fmt.Sprintf("no category mapping for code %q and no default category", code)
	}
	return 0, &entity.ImportIssue{
		LineNumber:        entry.LineNumber,
		ExternalReference: entry.ExternalID,
		Message:           message,
		Type:              entity.IssueMissingMapping,
	}, nil
}

// resolveOptional follows mapping, then catalog name, then default. Missing is not an issue.
func (r *mappingResolver) resolveOptional(
	ctx context.Context,
	entry entity.ImportedEntry,
	kind string,
	rawCode string,
	mapping map[string]int64,
	fallback *int64,
	idCache map[int64]bool,
	nameCache map[string]catalogRef,
	exists func(context.Context, int64) (bool, error),
	byName func(context.Context, string) (catalogRef, error),
) (*int64, *entity.ImportIssue, error) {
	code := strings.TrimSpace(rawCode)

	if id, ok := lookupCode(mapping, code); ok {
		found, err := cachedExists(ctx, idCache, id, exists)
		if err != nil {
			return nil, nil, err
		}
		if !found {
			return nil, invalidMapping(entry, kind, code, id), nil
		}
		return &id, nil, nil
	}

	if code != "" {
		ref, err := cachedByName(ctx, nameCache, code, byName)
		if err != nil {
			return nil, nil, err
		}
		if ref.found {
			id := ref.id
			return &id, nil, nil
		}
	}

	return fallback, nil, nil
}

func (r *mappingResolver) categoryExists(ctx context.Context, id int64) (bool, error) {
	_, err := r.catalog.FindCategoryByID(ctx, r.cfg.UserID, id)
	return existence(err, domainerror.ErrCategoryNotFound)
}

func (r *mappingResolver) subcategoryExists(ctx context.Context, id int64) (bool, error) {
	_, err := r.catalog.FindSubcategoryByID(ctx, r.cfg.UserID, id)
	return existence(err, domainerror.ErrSubcategoryNotFound)
}

func (r *mappingResolver) sourceEntityExists(ctx context.Context, id int64) (bool, error) {
	_, err := r.catalog.FindSourceEntityByID(ctx, r.cfg.UserID, id)
	return existence(err, domainerror.ErrSourceEntityNotFound)
}

func (r *mappingResolver) categoryByName(ctx context.Context, name string) (catalogRef, error) {
	category, err := r.catalog.FindCategoryByName(ctx, r.cfg.UserID, name)
	if err != nil || category == nil {
		return catalogRef{}, err
	}
	return refOf(category), nil
}

func (r *mappingResolver) subcategoryByName(ctx context.Context, name string) (catalogRef, error) {
	subcategory, err := r.catalog.FindSubcategoryByName(ctx, r.cfg.UserID, name)
	if err != nil || subcategory == nil {
		return catalogRef{}, err
	}
	return refOf(subcategory), nil
}

func (r *mappingResolver) sourceEntityByName(ctx context.Context, name string) (catalogRef, error) {
	sourceEntity, err := r.catalog.FindSourceEntityByName(ctx, r.cfg.UserID, name)
	if err != nil || sourceEntity == nil {
		return catalogRef{}, err
	}
	return refOf(sourceEntity), nil
}

func refOf(entry entity.CatalogEntry) catalogRef {
	return catalogRef{id: entry.EntryID(), found: true}
}

func existence(err, notFound error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, notFound):
		return false, nil
	default:
		return false, err
	}
}

func cachedExists(ctx context.Context, cache map[int64]bool, id int64, lookup func(context.Context, int64) (bool, error)) (bool, error) {
	if found, ok := cache[id]; ok {
		return found, nil
	}
	found, err := lookup(ctx, id)
	if err != nil {
		return false, err
	}
	cache[id] = found
	return found, nil
}

func cachedByName(ctx context.Context, cache map[string]catalogRef, name string, lookup func(context.Context, string) (catalogRef, error)) (catalogRef, error) {
	key := strings.ToLower(name)
	if ref, ok := cache[key]; ok {
		return ref, nil
	}
	ref, err := lookup(ctx, name)
	if err != nil {
		return catalogRef{}, err
	}
	cache[key] = ref
	return ref, nil
}

// lookupCode matches a code exactly first, then case-insensitively.
func lookupCode[V any](mapping map[string]V, code string) (V, bool) {
	var zero V
	code = strings.TrimSpace(code)
	if code == "" || len(mapping) == 0 {
		return zero, false
	}
	if v, ok := mapping[code]; ok {
		return v, true
	}
	for k, v := range mapping {
		if strings.EqualFold(strings.TrimSpace(k), code) {
			return v, true
		}
	}
	return zero, false
}

func invalidMapping(entry entity.ImportedEntry, kind, code string, id int64) *entity.ImportIssue {
	return &entity.ImportIssue{
		LineNumber:        entry.LineNumber,
		ExternalReference: entry.ExternalID,
		Message:           fmt.Sprintf("%s %d mapped from code %q does not exist", kind, id, code),
		Type:              entity.IssueInvalidMapping,
	}
}
