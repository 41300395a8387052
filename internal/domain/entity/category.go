package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Named is implemented by catalog entries that can be looked up by name.
type Named interface {
	DisplayName() string
}

// UserScoped is implemented by entries that belong to a single user.
type UserScoped interface {
	OwnerID() uuid.UUID
}

// CatalogEntry is a named, user-owned reference such as a category or a source entity.
type CatalogEntry interface {
	Named
	UserScoped
	EntryID() int64
}

// Category represents a transaction category in the Finance Tracker system.
type Category struct {
	ID            int64
	UserID        uuid.UUID
	Name          string
	Type          *TransactionType // Optional hint, a category may serve both directions
	Subcategories []*Subcategory
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewCategory creates a new Category entity.
func NewCategory(userID uuid.UUID, name string, categoryType *TransactionType) *Category {
	now := time.Now().UTC()

	return &Category{
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Type:      categoryType,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Category) DisplayName() string { return c.Name }
func (c *Category) OwnerID() uuid.UUID  { return c.UserID }
func (c *Category) EntryID() int64      { return c.ID }

// Subcategory refines a Category.
type Subcategory struct {
	ID         int64
	CategoryID int64
	UserID     uuid.UUID
	Name       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewSubcategory creates a new Subcategory entity under the given category.
func NewSubcategory(userID uuid.UUID, categoryID int64, name string) *Subcategory {
	now := time.Now().UTC()

	return &Subcategory{
		CategoryID: categoryID,
		UserID:     userID,
		Name:       strings.TrimSpace(name),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *Subcategory) DisplayName() string { return s.Name }
func (s *Subcategory) OwnerID() uuid.UUID  { return s.UserID }
func (s *Subcategory) EntryID() int64      { return s.ID }

// SourceEntity is the counterpart institution or account a transaction came from (a bank, a card issuer).
type SourceEntity struct {
	ID        int64
	UserID    uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSourceEntity creates a new SourceEntity.
func NewSourceEntity(userID uuid.UUID, name string) *SourceEntity {
	now := time.Now().UTC()

	return &SourceEntity{
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *SourceEntity) DisplayName() string { return s.Name }
func (s *SourceEntity) OwnerID() uuid.UUID  { return s.UserID }
func (s *SourceEntity) EntryID() int64      { return s.ID }
