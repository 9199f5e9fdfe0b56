package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Sagyam/linite-sub002/internal/models"
	"github.com/Sagyam/linite-sub002/internal/shared"
)

// DistributionRepository implements models.Repository[*models.Distribution] for distributions.
//
// Distributions carry ranked links to the sources they can use (distro_sources).
// Links are managed separately from the distribution row itself.
type DistributionRepository struct {
	db *sql.DB
}

// NewDistributionRepository creates a new DistributionRepository with the given database connection
func NewDistributionRepository(db *sql.DB) *DistributionRepository {
	return &DistributionRepository{db: db}
}

// Create inserts a new distribution into the database with generated ID and sequence
func (r *DistributionRepository) Create(distro *models.Distribution) error {
	sequence, err := NextSequence(r.db, "distributions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	distro.SetID(id)
	distro.SetSequence(sequence)

	if err := distro.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO distributions (
			id, sequence, slug, name, family, based_on, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		distro.Slug,
		distro.Name,
		string(distro.Family),
		distro.BasedOn,
		distro.CreatedAt(),
		distro.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert distribution: %w", err)
	}

	return nil
}

// Get retrieves a distribution by ID, excluding soft-deleted distributions
func (r *DistributionRepository) Get(id string) (*models.Distribution, error) {
	query := `
		SELECT id, sequence, slug, name, family, based_on, created_at, updated_at, deleted_at
		FROM distributions
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetBySlug retrieves a distribution by its unique slug
func (r *DistributionRepository) GetBySlug(slug string) (*models.Distribution, error) {
	query := `
		SELECT id, sequence, slug, name, family, based_on, created_at, updated_at, deleted_at
		FROM distributions
		WHERE slug = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, slug))
}

// Update modifies an existing distribution in the database
func (r *DistributionRepository) Update(distro *models.Distribution) error {
	if err := distro.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	distro.SetUpdatedAt(now)

	query := `
		UPDATE distributions
		SET slug = ?, name = ?, family = ?, based_on = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		distro.Slug,
		distro.Name,
		string(distro.Family),
		distro.BasedOn,
		now,
		distro.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update distribution: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("distribution not found or already deleted: %s", distro.ID())
	}

	return nil
}

// Delete soft-deletes a distribution by ID
func (r *DistributionRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE distributions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete distribution: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("distribution not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all distributions matching the given criteria, excluding soft-deleted distributions
func (r *DistributionRepository) List(criteria map[string]any) ([]*models.Distribution, error) {
	query := `
		SELECT id, sequence, slug, name, family, based_on, created_at, updated_at, deleted_at
		FROM distributions
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if family, ok := criteria["family"].(string); ok && family != "" {
		query += " AND family = ?"
		args = append(args, family)
	}

	query += " ORDER BY slug ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query distributions: %w", err)
	}
	defer rows.Close()

	var distros []*models.Distribution
	for rows.Next() {
		distro, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		distros = append(distros, distro)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return distros, nil
}

// LinkSource attaches a source to a distribution, updating the rank if the
// link already exists.
func (r *DistributionRepository) LinkSource(link models.DistroSource) error {
	query := `
		INSERT INTO distro_sources (distribution_id, source_id, priority, is_default)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (distribution_id, source_id) DO UPDATE SET
			priority = excluded.priority,
			is_default = excluded.is_default
	`

	_, err := r.db.Exec(query, link.DistributionID, link.SourceID, link.Priority, link.IsDefault)
	if err != nil {
		return fmt.Errorf("failed to link source: %w", err)
	}

	return nil
}

// UnlinkSource removes a source link from a distribution
func (r *DistributionRepository) UnlinkSource(distributionID, sourceID string) error {
	result, err := r.db.Exec(
		"DELETE FROM distro_sources WHERE distribution_id = ? AND source_id = ?",
		distributionID, sourceID,
	)
	if err != nil {
		return fmt.Errorf("failed to unlink source: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("source %s is not linked to distribution %s", sourceID, distributionID)
	}

	return nil
}

// GetSourceLinks retrieves a distribution's source links ranked by priority
func (r *DistributionRepository) GetSourceLinks(distributionID string) ([]models.DistroSource, error) {
	query := `
		SELECT distribution_id, source_id, priority, is_default
		FROM distro_sources
		WHERE distribution_id = ?
		ORDER BY priority DESC, source_id ASC
	`

	rows, err := r.db.Query(query, distributionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query source links: %w", err)
	}
	defer rows.Close()

	var links []models.DistroSource
	for rows.Next() {
		var link models.DistroSource
		if err := rows.Scan(&link.DistributionID, &link.SourceID, &link.Priority, &link.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan source link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return links, nil
}

// scanOne scans a single [sql.Row] into a [models.Distribution]
func (r *DistributionRepository) scanOne(row *sql.Row) (*models.Distribution, error) {
	var (
		id        string
		sequence  int
		slug      string
		name      string
		family    string
		basedOn   string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &slug, &name, &family, &basedOn, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("distribution not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan distribution: %w", err)
	}

	distro := models.NewDistribution(sequence, slug, name, models.Family(family))
	distro.SetID(id)
	distro.SetCreatedAt(createdAt)
	distro.SetUpdatedAt(updatedAt)
	distro.BasedOn = basedOn

	if deletedAt.Valid {
		distro.SetDeletedAt(&deletedAt.Time)
	}

	return distro, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Distribution]
func (r *DistributionRepository) scanRow(rows *sql.Rows) (*models.Distribution, error) {
	var (
		id        string
		sequence  int
		slug      string
		name      string
		family    string
		basedOn   string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &slug, &name, &family, &basedOn, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan distribution: %w", err)
	}

	distro := models.NewDistribution(sequence, slug, name, models.Family(family))
	distro.SetID(id)
	distro.SetCreatedAt(createdAt)
	distro.SetUpdatedAt(updatedAt)
	distro.BasedOn = basedOn

	if deletedAt.Valid {
		distro.SetDeletedAt(&deletedAt.Time)
	}

	return distro, nil
}
