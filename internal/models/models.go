// package models defines the data model for the linite catalog service
package models

import (
	"time"
)

// Model defines the base interface for all persistent models in the catalog service.
// Implementations include Source, Application, Distribution, etc.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Meta carries the identity and lifecycle fields shared by all persistent
// entities. Embedding it satisfies the identity portion of [Model]; each
// entity supplies its own Validate.
type Meta struct {
	id        string
	sequence  int
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewMeta returns entity metadata stamped with the current time.
func NewMeta(sequence int) Meta {
	now := time.Now()
	return Meta{sequence: sequence, createdAt: now, updatedAt: now}
}

// ID returns the unique identifier for this entity
func (m *Meta) ID() string { return m.id }

// SetID assigns the unique identifier, typically after generation by a repository
func (m *Meta) SetID(id string) { m.id = id }

// Sequence returns the monotonically increasing catalog sequence number
func (m *Meta) Sequence() int { return m.sequence }

// SetSequence assigns the catalog sequence number
func (m *Meta) SetSequence(sequence int) { m.sequence = sequence }

// CreatedAt returns when this entity was created
func (m *Meta) CreatedAt() time.Time { return m.createdAt }

// SetCreatedAt assigns the creation timestamp, used when hydrating from storage
func (m *Meta) SetCreatedAt(t time.Time) { m.createdAt = t }

// UpdatedAt returns when this entity was last updated
func (m *Meta) UpdatedAt() time.Time { return m.updatedAt }

// SetUpdatedAt assigns the last update timestamp
func (m *Meta) SetUpdatedAt(t time.Time) { m.updatedAt = t }

// DeletedAt returns the soft delete timestamp, or nil when the entity is live
func (m *Meta) DeletedAt() *time.Time { return m.deletedAt }

// SetDeletedAt marks the entity as soft deleted (or restores it with nil)
func (m *Meta) SetDeletedAt(t *time.Time) { m.deletedAt = t }
