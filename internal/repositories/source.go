package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Sagyam/linite-sub002/internal/models"
	"github.com/Sagyam/linite-sub002/internal/shared"
)

// SourceRepository implements models.Repository[*models.Source] for package manager sources.
//
// Sources own two kinds of child rows: setup/cleanup commands keyed by
// distribution family (source_commands) and install-method template overrides
// (source_method_templates). Both are written and loaded with the source.
type SourceRepository struct {
	db *sql.DB
}

// NewSourceRepository creates a new SourceRepository with the given database connection
func NewSourceRepository(db *sql.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// Create inserts a new source into the database with generated ID and sequence
func (r *SourceRepository) Create(source *models.Source) error {
	sequence, err := NextSequence(r.db, "sources")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	source.SetID(id)
	source.SetSequence(sequence)

	if err := source.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sources (
			id, sequence, slug, name, category, install_template,
			uninstall_template, dependency_cleanup, requires_sudo, priority,
			catalog_endpoint, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		id,
		sequence,
		source.Slug,
		source.Name,
		string(source.Category),
		source.InstallTemplate,
		source.UninstallTemplate,
		source.DependencyCleanup,
		source.RequiresSudo,
		source.Priority,
		source.CatalogEndpoint,
		source.CreatedAt(),
		source.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert source: %w", err)
	}

	if err := saveSourceChildren(tx, source); err != nil {
		return err
	}

	return tx.Commit()
}

// Get retrieves a source by ID, excluding soft-deleted sources
func (r *SourceRepository) Get(id string) (*models.Source, error) {
	query := `
		SELECT
			id, sequence, slug, name, category, install_template,
			uninstall_template, dependency_cleanup, requires_sudo, priority,
			catalog_endpoint, created_at, updated_at, deleted_at
		FROM sources
		WHERE id = ? AND deleted_at IS NULL
	`

	source, err := r.scanOne(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}

	if err := r.loadChildren(source); err != nil {
		return nil, err
	}

	return source, nil
}

// GetBySlug retrieves a source by its unique slug
func (r *SourceRepository) GetBySlug(slug string) (*models.Source, error) {
	query := `
		SELECT
			id, sequence, slug, name, category, install_template,
			uninstall_template, dependency_cleanup, requires_sudo, priority,
			catalog_endpoint, created_at, updated_at, deleted_at
		FROM sources
		WHERE slug = ? AND deleted_at IS NULL
	`

	source, err := r.scanOne(r.db.QueryRow(query, slug))
	if err != nil {
		return nil, err
	}

	if err := r.loadChildren(source); err != nil {
		return nil, err
	}

	return source, nil
}

// Update modifies an existing source, replacing its command and method template rows
func (r *SourceRepository) Update(source *models.Source) error {
	if err := source.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	source.SetUpdatedAt(now)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE sources
		SET slug = ?, name = ?, category = ?, install_template = ?,
			uninstall_template = ?, dependency_cleanup = ?, requires_sudo = ?,
			priority = ?, catalog_endpoint = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := tx.Exec(query,
		source.Slug,
		source.Name,
		string(source.Category),
		source.InstallTemplate,
		source.UninstallTemplate,
		source.DependencyCleanup,
		source.RequiresSudo,
		source.Priority,
		source.CatalogEndpoint,
		now,
		source.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("source not found or already deleted: %s", source.ID())
	}

	if _, err := tx.Exec("DELETE FROM source_commands WHERE source_id = ?", source.ID()); err != nil {
		return fmt.Errorf("failed to clear source commands: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM source_method_templates WHERE source_id = ?", source.ID()); err != nil {
		return fmt.Errorf("failed to clear method templates: %w", err)
	}

	if err := saveSourceChildren(tx, source); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete soft-deletes a source by ID
func (r *SourceRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE sources
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("source not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all sources matching the given criteria, excluding soft-deleted sources
func (r *SourceRepository) List(criteria map[string]any) ([]*models.Source, error) {
	query := `
		SELECT
			id, sequence, slug, name, category, install_template,
			uninstall_template, dependency_cleanup, requires_sudo, priority,
			catalog_endpoint, created_at, updated_at, deleted_at
		FROM sources
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if category, ok := criteria["category"].(string); ok && category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}

	query += " ORDER BY slug ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.Source
	for rows.Next() {
		source, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, source := range sources {
		if err := r.loadChildren(source); err != nil {
			return nil, err
		}
	}

	return sources, nil
}

// loadChildren populates a source's setup/cleanup commands and method templates
func (r *SourceRepository) loadChildren(source *models.Source) error {
	rows, err := r.db.Query(
		"SELECT family, setup_command, cleanup_command FROM source_commands WHERE source_id = ?",
		source.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to query source commands: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var family, setup, cleanup string
		if err := rows.Scan(&family, &setup, &cleanup); err != nil {
			return fmt.Errorf("failed to scan source command: %w", err)
		}
		if setup != "" {
			source.Setup.SetVariant(models.Family(family), setup)
		}
		if cleanup != "" {
			source.Cleanup.SetVariant(models.Family(family), cleanup)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}

	methodRows, err := r.db.Query(
		"SELECT method, install_template, uninstall_template, identifier_prefix FROM source_method_templates WHERE source_id = ? ORDER BY method ASC",
		source.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to query method templates: %w", err)
	}
	defer methodRows.Close()

	source.Methods = nil
	for methodRows.Next() {
		var tpl models.MethodTemplate
		var method string
		if err := methodRows.Scan(&method, &tpl.InstallTemplate, &tpl.UninstallTemplate, &tpl.IdentifierPrefix); err != nil {
			return fmt.Errorf("failed to scan method template: %w", err)
		}
		tpl.Method = models.InstallMethod(method)
		source.Methods = append(source.Methods, tpl)
	}
	if err := methodRows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}

	return nil
}

// saveSourceChildren inserts a source's command and method template rows inside a transaction
func saveSourceChildren(tx *sql.Tx, source *models.Source) error {
	setup := source.Setup.Variants()
	cleanup := source.Cleanup.Variants()

	families := make(map[models.Family]bool, len(setup)+len(cleanup))
	for family := range setup {
		families[family] = true
	}
	for family := range cleanup {
		families[family] = true
	}

	for family := range families {
		_, err := tx.Exec(
			"INSERT INTO source_commands (source_id, family, setup_command, cleanup_command) VALUES (?, ?, ?, ?)",
			source.ID(), string(family), setup[family], cleanup[family],
		)
		if err != nil {
			return fmt.Errorf("failed to insert source command for family %q: %w", family, err)
		}
	}

	for _, tpl := range source.Methods {
		_, err := tx.Exec(
			"INSERT INTO source_method_templates (source_id, method, install_template, uninstall_template, identifier_prefix) VALUES (?, ?, ?, ?, ?)",
			source.ID(), string(tpl.Method), tpl.InstallTemplate, tpl.UninstallTemplate, tpl.IdentifierPrefix,
		)
		if err != nil {
			return fmt.Errorf("failed to insert method template %s: %w", tpl.Method, err)
		}
	}

	return nil
}

// scanOne scans a single [sql.Row] into a [models.Source]
func (r *SourceRepository) scanOne(row *sql.Row) (*models.Source, error) {
	var (
		id                string
		sequence          int
		slug              string
		name              string
		category          string
		installTemplate   string
		uninstallTemplate string
		dependencyCleanup string
		requiresSudo      bool
		priority          int
		catalogEndpoint   string
		createdAt         time.Time
		updatedAt         time.Time
		deletedAt         sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &slug, &name, &category, &installTemplate,
		&uninstallTemplate, &dependencyCleanup, &requiresSudo, &priority,
		&catalogEndpoint, &createdAt, &updatedAt, &deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("source not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}

	source := models.NewSource(sequence, slug, name, models.Category(category))
	source.SetID(id)
	source.SetCreatedAt(createdAt)
	source.SetUpdatedAt(updatedAt)
	source.InstallTemplate = installTemplate
	source.UninstallTemplate = uninstallTemplate
	source.DependencyCleanup = dependencyCleanup
	source.RequiresSudo = requiresSudo
	source.Priority = priority
	source.CatalogEndpoint = catalogEndpoint

	if deletedAt.Valid {
		source.SetDeletedAt(&deletedAt.Time)
	}

	return source, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Source]
func (r *SourceRepository) scanRow(rows *sql.Rows) (*models.Source, error) {
	var (
		id                string
		sequence          int
		slug              string
		name              string
		category          string
		installTemplate   string
		uninstallTemplate string
		dependencyCleanup string
		requiresSudo      bool
		priority          int
		catalogEndpoint   string
		createdAt         time.Time
		updatedAt         time.Time
		deletedAt         sql.NullTime
	)

	err := rows.Scan(
		&id, &sequence, &slug, &name, &category, &installTemplate,
		&uninstallTemplate, &dependencyCleanup, &requiresSudo, &priority,
		&catalogEndpoint, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}

	source := models.NewSource(sequence, slug, name, models.Category(category))
	source.SetID(id)
	source.SetCreatedAt(createdAt)
	source.SetUpdatedAt(updatedAt)
	source.InstallTemplate = installTemplate
	source.UninstallTemplate = uninstallTemplate
	source.DependencyCleanup = dependencyCleanup
	source.RequiresSudo = requiresSudo
	source.Priority = priority
	source.CatalogEndpoint = catalogEndpoint

	if deletedAt.Valid {
		source.SetDeletedAt(&deletedAt.Time)
	}

	return source, nil
}
