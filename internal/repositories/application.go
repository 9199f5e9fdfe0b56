package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Sagyam/linite-sub002/internal/models"
	"github.com/Sagyam/linite-sub002/internal/shared"
)

// ApplicationRepository implements models.Repository[*models.Application] for catalog applications.
//
// It also manages the packages table linking applications to the sources that
// carry them. A package is unique per application and source pair.
type ApplicationRepository struct {
	db *sql.DB
}

// SourcePackage pairs a package row with its application's slug, used by the
// availability refresh pipeline to report progress per application.
type SourcePackage struct {
	Package models.Package
	AppSlug string
}

// NewApplicationRepository creates a new ApplicationRepository with the given database connection
func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application into the database with generated ID and sequence
func (r *ApplicationRepository) Create(app *models.Application) error {
	sequence, err := NextSequence(r.db, "applications")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	app.SetID(id)
	app.SetSequence(sequence)

	if err := app.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO applications (
			id, sequence, slug, name, category, description, install_notes,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		app.Slug,
		app.Name,
		app.Category,
		app.Description,
		app.InstallNotes,
		app.CreatedAt(),
		app.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}

	return nil
}

// Get retrieves an application by ID, excluding soft-deleted applications
func (r *ApplicationRepository) Get(id string) (*models.Application, error) {
	query := `
		SELECT id, sequence, slug, name, category, description, install_notes,
			created_at, updated_at, deleted_at
		FROM applications
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetBySlug retrieves an application by its unique slug
func (r *ApplicationRepository) GetBySlug(slug string) (*models.Application, error) {
	query := `
		SELECT id, sequence, slug, name, category, description, install_notes,
			created_at, updated_at, deleted_at
		FROM applications
		WHERE slug = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, slug))
}

// Update modifies an existing application in the database
func (r *ApplicationRepository) Update(app *models.Application) error {
	if err := app.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	app.SetUpdatedAt(now)

	query := `
		UPDATE applications
		SET slug = ?, name = ?, category = ?, description = ?, install_notes = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		app.Slug,
		app.Name,
		app.Category,
		app.Description,
		app.InstallNotes,
		now,
		app.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("application not found or already deleted: %s", app.ID())
	}

	return nil
}

// Delete soft-deletes an application by ID
func (r *ApplicationRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE applications
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("application not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all applications matching the given criteria, excluding soft-deleted applications
func (r *ApplicationRepository) List(criteria map[string]any) ([]*models.Application, error) {
	query := `
		SELECT id, sequence, slug, name, category, description, install_notes,
			created_at, updated_at, deleted_at
		FROM applications
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
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return apps, nil
}

// UpsertPackage inserts a package or updates the existing row for the same
// application and source pair.
func (r *ApplicationRepository) UpsertPackage(pkg *models.Package) error {
	if err := pkg.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "packages")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if pkg.ID() == "" {
		pkg.SetID(shared.GenerateID())
	}
	pkg.SetSequence(sequence)

	query := `
		INSERT INTO packages (
			id, sequence, application_id, source_id, identifier, available,
			version, size_mb, maintainer, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (application_id, source_id) DO UPDATE SET
			identifier = excluded.identifier,
			available = excluded.available,
			version = excluded.version,
			size_mb = excluded.size_mb,
			maintainer = excluded.maintainer,
			updated_at = excluded.updated_at
	`

	_, err = r.db.Exec(query,
		pkg.ID(),
		sequence,
		pkg.ApplicationID,
		pkg.SourceID,
		pkg.Identifier,
		pkg.Available,
		pkg.Version,
		pkg.SizeMB,
		pkg.Maintainer,
		pkg.CreatedAt(),
		pkg.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert package: %w", err)
	}

	return nil
}

// ListPackages retrieves all packages for an application, available or not
func (r *ApplicationRepository) ListPackages(applicationID string) ([]models.Package, error) {
	query := `
		SELECT id, sequence, application_id, source_id, identifier, available,
			version, size_mb, maintainer, created_at, updated_at
		FROM packages
		WHERE application_id = ?
		ORDER BY identifier ASC
	`

	rows, err := r.db.Query(query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query packages: %w", err)
	}
	defer rows.Close()

	var packages []models.Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return packages, nil
}

// ListPackagesBySource retrieves all packages carried by a source along with
// their application slugs.
func (r *ApplicationRepository) ListPackagesBySource(sourceID string) ([]SourcePackage, error) {
	query := `
		SELECT p.id, p.sequence, p.application_id, p.source_id, p.identifier,
			p.available, p.version, p.size_mb, p.maintainer, p.created_at,
			p.updated_at, a.slug
		FROM packages p
		JOIN applications a ON a.id = p.application_id
		WHERE p.source_id = ? AND a.deleted_at IS NULL
		ORDER BY a.slug ASC
	`

	rows, err := r.db.Query(query, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query packages for source: %w", err)
	}
	defer rows.Close()

	var packages []SourcePackage
	for rows.Next() {
		var (
			pkg       models.Package
			id        string
			sequence  int
			available bool
			createdAt time.Time
			updatedAt time.Time
			appSlug   string
		)
		err := rows.Scan(
			&id, &sequence, &pkg.ApplicationID, &pkg.SourceID, &pkg.Identifier,
			&available, &pkg.Version, &pkg.SizeMB, &pkg.Maintainer, &createdAt,
			&updatedAt, &appSlug,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		pkg.Meta = models.NewMeta(sequence)
		pkg.SetID(id)
		pkg.SetCreatedAt(createdAt)
		pkg.SetUpdatedAt(updatedAt)
		pkg.Available = available
		packages = append(packages, SourcePackage{Package: pkg, AppSlug: appSlug})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return packages, nil
}

// SetPackageAvailability updates a package's availability flag and, when the
// remote catalog reports one, its version.
func (r *ApplicationRepository) SetPackageAvailability(packageID string, available bool, version string) error {
	query := `
		UPDATE packages
		SET available = ?,
			version = CASE WHEN ? = '' THEN version ELSE ? END,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, available, version, version, time.Now(), packageID)
	if err != nil {
		return fmt.Errorf("failed to update package availability: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("package not found: %s", packageID)
	}

	return nil
}

// scanPackage scans a row from [sql.Rows] into a [models.Package]
func scanPackage(rows *sql.Rows) (models.Package, error) {
	var (
		pkg       models.Package
		id        string
		sequence  int
		available bool
		createdAt time.Time
		updatedAt time.Time
	)

	err := rows.Scan(
		&id, &sequence, &pkg.ApplicationID, &pkg.SourceID, &pkg.Identifier,
		&available, &pkg.Version, &pkg.SizeMB, &pkg.Maintainer, &createdAt, &updatedAt,
	)
	if err != nil {
		return models.Package{}, fmt.Errorf("failed to scan package: %w", err)
	}

	pkg.Meta = models.NewMeta(sequence)
	pkg.SetID(id)
	pkg.SetCreatedAt(createdAt)
	pkg.SetUpdatedAt(updatedAt)
	pkg.Available = available

	return pkg, nil
}

// scanOne scans a single [sql.Row] into a [models.Application]
func (r *ApplicationRepository) scanOne(row *sql.Row) (*models.Application, error) {
	var (
		id           string
		sequence     int
		slug         string
		name         string
		category     string
		description  string
		installNotes string
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &slug, &name, &category, &description, &installNotes,
		&createdAt, &updatedAt, &deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("application not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}

	app := models.NewApplication(sequence, slug, name)
	app.SetID(id)
	app.SetCreatedAt(createdAt)
	app.SetUpdatedAt(updatedAt)
	app.Category = category
	app.Description = description
	app.InstallNotes = installNotes

	if deletedAt.Valid {
		app.SetDeletedAt(&deletedAt.Time)
	}

	return app, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Application]
func (r *ApplicationRepository) scanRow(rows *sql.Rows) (*models.Application, error) {
	var (
		id           string
		sequence     int
		slug         string
		name         string
		category     string
		description  string
		installNotes string
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := rows.Scan(
		&id, &sequence, &slug, &name, &category, &description, &installNotes,
		&createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}

	app := models.NewApplication(sequence, slug, name)
	app.SetID(id)
	app.SetCreatedAt(createdAt)
	app.SetUpdatedAt(updatedAt)
	app.Category = category
	app.Description = description
	app.InstallNotes = installNotes

	if deletedAt.Valid {
		app.SetDeletedAt(&deletedAt.Time)
	}

	return app, nil
}
