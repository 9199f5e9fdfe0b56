package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Sagyam/linite-sub002/internal/models"
	"github.com/Sagyam/linite-sub002/internal/shared"
)

// CatalogStore is the read-only catalog view consumed by the resolution
// engine. Lookups are batched and context aware because they sit on the
// request path; writes stay with the entity repositories.
type CatalogStore struct {
	db *sql.DB
}

// NewCatalogStore creates a CatalogStore over the given database connection
func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// GetDistro looks up a live distribution by slug.
// Returns [shared.ErrDistroNotFound] when no such distribution exists.
func (s *CatalogStore) GetDistro(ctx context.Context, slug string) (*models.Distribution, error) {
	query := `
		SELECT id, sequence, slug, name, family, based_on, created_at, updated_at
		FROM distributions
		WHERE slug = ? AND deleted_at IS NULL
	`

	var (
		id        string
		sequence  int
		distSlug  string
		name      string
		family    string
		basedOn   string
		createdAt time.Time
		updatedAt time.Time
	)

	err := s.db.QueryRowContext(ctx, query, slug).Scan(
		&id, &sequence, &distSlug, &name, &family, &basedOn, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrDistroNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query distribution: %w", err)
	}

	distro := models.NewDistribution(sequence, distSlug, name, models.Family(family))
	distro.SetID(id)
	distro.SetCreatedAt(createdAt)
	distro.SetUpdatedAt(updatedAt)
	distro.BasedOn = basedOn

	return distro, nil
}

// GetDistroSources retrieves a distribution's source links ranked by priority
func (s *CatalogStore) GetDistroSources(ctx context.Context, distributionID string) ([]models.DistroSource, error) {
	query := `
		SELECT distribution_id, source_id, priority, is_default
		FROM distro_sources
		WHERE distribution_id = ?
		ORDER BY priority DESC, source_id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, distributionID)
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

// GetSources retrieves live sources by ID, with their setup/cleanup commands
// and method templates loaded.
func (s *CatalogStore) GetSources(ctx context.Context, ids []string) ([]*models.Source, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, sequence, slug, name, category, install_template,
			uninstall_template, dependency_cleanup, requires_sudo, priority,
			catalog_endpoint, created_at, updated_at
		FROM sources
		WHERE id IN (%s) AND deleted_at IS NULL
		ORDER BY slug ASC
	`, placeholders(len(ids)))

	rows, err := s.db.QueryContext(ctx, query, toArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.Source
	byID := make(map[string]*models.Source)
	for rows.Next() {
		source, err := scanStoreSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
		byID[source.ID()] = source
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if err := s.loadSourceChildren(ctx, byID); err != nil {
		return nil, err
	}

	return sources, nil
}

// GetSourceBySlug retrieves a single live source by slug.
// Returns [shared.ErrSourceNotFound] when no such source exists.
func (s *CatalogStore) GetSourceBySlug(ctx context.Context, slug string) (*models.Source, error) {
	query := `
		SELECT id, sequence, slug, name, category, install_template,
			uninstall_template, dependency_cleanup, requires_sudo, priority,
			catalog_endpoint, created_at, updated_at
		FROM sources
		WHERE slug = ? AND deleted_at IS NULL
	`

	var (
		id                string
		sequence          int
		srcSlug           string
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
	)

	err := s.db.QueryRowContext(ctx, query, slug).Scan(
		&id, &sequence, &srcSlug, &name, &category, &installTemplate,
		&uninstallTemplate, &dependencyCleanup, &requiresSudo, &priority,
		&catalogEndpoint, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrSourceNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query source: %w", err)
	}

	source := models.NewSource(sequence, srcSlug, name, models.Category(category))
	source.SetID(id)
	source.SetCreatedAt(createdAt)
	source.SetUpdatedAt(updatedAt)
	source.InstallTemplate = installTemplate
	source.UninstallTemplate = uninstallTemplate
	source.DependencyCleanup = dependencyCleanup
	source.RequiresSudo = requiresSudo
	source.Priority = priority
	source.CatalogEndpoint = catalogEndpoint

	if err := s.loadSourceChildren(ctx, map[string]*models.Source{source.ID(): source}); err != nil {
		return nil, err
	}

	return source, nil
}

// GetApplications retrieves live applications by slug. Unknown slugs are
// simply absent from the result; the caller decides how to report them.
func (s *CatalogStore) GetApplications(ctx context.Context, slugs []string) ([]*models.Application, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, sequence, slug, name, category, description, install_notes,
			created_at, updated_at
		FROM applications
		WHERE slug IN (%s) AND deleted_at IS NULL
		ORDER BY slug ASC
	`, placeholders(len(slugs)))

	rows, err := s.db.QueryContext(ctx, query, toArgs(slugs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
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
		)
		err := rows.Scan(&id, &sequence, &slug, &name, &category, &description, &installNotes, &createdAt, &updatedAt)
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
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return apps, nil
}

// GetAvailablePackages retrieves the available packages for the given
// applications, keyed by application ID.
func (s *CatalogStore) GetAvailablePackages(ctx context.Context, applicationIDs []string) (map[string][]models.Package, error) {
	packages := make(map[string][]models.Package)
	if len(applicationIDs) == 0 {
		return packages, nil
	}

	query := fmt.Sprintf(`
		SELECT id, sequence, application_id, source_id, identifier, available,
			version, size_mb, maintainer, created_at, updated_at
		FROM packages
		WHERE application_id IN (%s) AND available = 1
		ORDER BY identifier ASC
	`, placeholders(len(applicationIDs)))

	rows, err := s.db.QueryContext(ctx, query, toArgs(applicationIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query packages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages[pkg.ApplicationID] = append(packages[pkg.ApplicationID], pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return packages, nil
}

// loadSourceChildren batch loads setup/cleanup commands and method templates
// for the given sources.
func (s *CatalogStore) loadSourceChildren(ctx context.Context, sources map[string]*models.Source) error {
	if len(sources) == 0 {
		return nil
	}

	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}

	query := fmt.Sprintf(`
		SELECT source_id, family, setup_command, cleanup_command
		FROM source_commands
		WHERE source_id IN (%s)
	`, placeholders(len(ids)))

	rows, err := s.db.QueryContext(ctx, query, toArgs(ids)...)
	if err != nil {
		return fmt.Errorf("failed to query source commands: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sourceID, family, setup, cleanup string
		if err := rows.Scan(&sourceID, &family, &setup, &cleanup); err != nil {
			return fmt.Errorf("failed to scan source command: %w", err)
		}
		source := sources[sourceID]
		if source == nil {
			continue
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

	methodQuery := fmt.Sprintf(`
		SELECT source_id, method, install_template, uninstall_template, identifier_prefix
		FROM source_method_templates
		WHERE source_id IN (%s)
		ORDER BY method ASC
	`, placeholders(len(ids)))

	methodRows, err := s.db.QueryContext(ctx, methodQuery, toArgs(ids)...)
	if err != nil {
		return fmt.Errorf("failed to query method templates: %w", err)
	}
	defer methodRows.Close()

	for methodRows.Next() {
		var sourceID, method string
		var tpl models.MethodTemplate
		if err := methodRows.Scan(&sourceID, &method, &tpl.InstallTemplate, &tpl.UninstallTemplate, &tpl.IdentifierPrefix); err != nil {
			return fmt.Errorf("failed to scan method template: %w", err)
		}
		source := sources[sourceID]
		if source == nil {
			continue
		}
		tpl.Method = models.InstallMethod(method)
		source.Methods = append(source.Methods, tpl)
	}
	if err := methodRows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}

	return nil
}

// scanStoreSource scans a source row without soft-delete bookkeeping
func scanStoreSource(rows *sql.Rows) (*models.Source, error) {
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
	)

	err := rows.Scan(
		&id, &sequence, &slug, &name, &category, &installTemplate,
		&uninstallTemplate, &dependencyCleanup, &requiresSudo, &priority,
		&catalogEndpoint, &createdAt, &updatedAt,
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

	return source, nil
}

// placeholders returns n comma separated SQL parameter placeholders
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// toArgs widens a string slice for variadic query arguments
func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
