package repositories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Sagyam/linite-sub002/internal/models"
	"github.com/Sagyam/linite-sub002/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// aptSource builds a representative native source for tests
func aptSource() *models.Source {
	source := models.NewSource(0, "apt", "APT", models.CategoryNative)
	source.InstallTemplate = "apt-get install -y {packages}"
	source.UninstallTemplate = "apt-get remove -y {packages}"
	source.DependencyCleanup = "apt-get autoremove -y"
	source.RequiresSudo = true
	source.Priority = 80
	return source
}

func TestSourceRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSourceRepository(db)
		source := aptSource()

		if err := repo.Create(source); err != nil {
			t.Fatalf("failed to create source: %v", err)
		}

		if source.ID() == "" {
			t.Error("source ID should be set after creation")
		}
	})

	t.Run("Get round trips commands and method templates", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSourceRepository(db)
		source := models.NewSource(0, "nix", "Nix", models.CategoryDeclarative)
		source.InstallTemplate = "nix-shell -p {packages}"
		source.Setup = models.UniformCommand("sh <(curl -L https://nixos.org/nix/install) --daemon")
		source.Methods = []models.MethodTemplate{
			{Method: models.MethodEphemeral, InstallTemplate: "nix-shell -p {packages}"},
			{Method: models.MethodPersistent, InstallTemplate: "nix-env -iA {packages}", UninstallTemplate: "nix-env -e {packages}", IdentifierPrefix: "nixpkgs."},
		}

		if err := repo.Create(source); err != nil {
			t.Fatalf("failed to create source: %v", err)
		}

		retrieved, err := repo.Get(source.ID())
		if err != nil {
			t.Fatalf("failed to get source: %v", err)
		}

		if retrieved.Slug != "nix" {
			t.Errorf("expected slug nix, got %s", retrieved.Slug)
		}

		setup, ok := retrieved.Setup.Resolve(models.FamilyNix)
		if !ok || setup == "" {
			t.Error("expected setup command to survive the round trip")
		}

		if len(retrieved.Methods) != 2 {
			t.Fatalf("expected 2 method templates, got %d", len(retrieved.Methods))
		}

		persistent, ok := retrieved.MethodTemplate(models.MethodPersistent)
		if !ok {
			t.Fatal("expected persistent method template")
		}
		if persistent.IdentifierPrefix != "nixpkgs." {
			t.Errorf("expected identifier prefix nixpkgs., got %q", persistent.IdentifierPrefix)
		}
	})

	t.Run("GetBySlug", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSourceRepository(db)
		source := aptSource()

		if err := repo.Create(source); err != nil {
			t.Fatalf("failed to create source: %v", err)
		}

		retrieved, err := repo.GetBySlug("apt")
		if err != nil {
			t.Fatalf("failed to get source by slug: %v", err)
		}

		if retrieved.ID() != source.ID() {
			t.Errorf("expected ID %s, got %s", source.ID(), retrieved.ID())
		}

		if !retrieved.RequiresSudo {
			t.Error("expected apt to require sudo")
		}
	})

	t.Run("Update replaces family variants", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSourceRepository(db)
		source := models.NewSource(0, "flatpak", "Flatpak", models.CategorySandboxed)
		source.InstallTemplate = "flatpak install -y flathub {packages}"
		source.Setup = models.PerFamilyCommand(map[models.Family]string{
			models.FamilyDebian: "apt-get install -y flatpak",
		})

		if err := repo.Create(source); err != nil {
			t.Fatalf("failed to create source: %v", err)
		}

		retrieved, err := repo.Get(source.ID())
		if err != nil {
			t.Fatalf("failed to get source: %v", err)
		}

		retrieved.Setup.SetVariant(models.FamilyRHEL, "dnf install -y flatpak")
		if err := repo.Update(retrieved); err != nil {
			t.Fatalf("failed to update source: %v", err)
		}

		updated, err := repo.Get(source.ID())
		if err != nil {
			t.Fatalf("failed to get updated source: %v", err)
		}

		if _, ok := updated.Setup.Resolve(models.FamilyRHEL); !ok {
			t.Error("expected rhel setup variant after update")
		}
		if _, ok := updated.Setup.Resolve(models.FamilyDebian); !ok {
			t.Error("expected debian setup variant to survive update")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSourceRepository(db)
		source := aptSource()

		if err := repo.Create(source); err != nil {
			t.Fatalf("failed to create source: %v", err)
		}

		if err := repo.Delete(source.ID()); err != nil {
			t.Fatalf("failed to delete source: %v", err)
		}

		if _, err := repo.Get(source.ID()); err == nil {
			t.Error("expected error when getting deleted source")
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSourceRepository(db)

		apt := aptSource()
		flatpak := models.NewSource(0, "flatpak", "Flatpak", models.CategorySandboxed)
		flatpak.InstallTemplate = "flatpak install -y flathub {packages}"

		for _, source := range []*models.Source{apt, flatpak} {
			if err := repo.Create(source); err != nil {
				t.Fatalf("failed to create source: %v", err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list sources: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("expected 2 sources, got %d", len(all))
		}

		sandboxed, err := repo.List(map[string]any{"category": "sandboxed"})
		if err != nil {
			t.Fatalf("failed to list filtered sources: %v", err)
		}
		if len(sandboxed) != 1 || sandboxed[0].Slug != "flatpak" {
			t.Errorf("expected only flatpak in sandboxed, got %d sources", len(sandboxed))
		}
	})
}

func TestApplicationRepository(t *testing.T) {
	t.Run("Create & Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewApplicationRepository(db)
		app := models.NewApplication(0, "firefox", "Firefox")
		app.Category = "browsers"
		app.InstallNotes = "Available from most package managers."

		if err := repo.Create(app); err != nil {
			t.Fatalf("failed to create application: %v", err)
		}

		retrieved, err := repo.GetBySlug("firefox")
		if err != nil {
			t.Fatalf("failed to get application: %v", err)
		}

		if retrieved.Name != "Firefox" {
			t.Errorf("expected name Firefox, got %s", retrieved.Name)
		}

		if retrieved.InstallNotes == "" {
			t.Error("expected install notes to survive the round trip")
		}
	})

	t.Run("UpsertPackage", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		sourceRepo := NewSourceRepository(db)
		source := aptSource()
		if err := sourceRepo.Create(source); err != nil {
			t.Fatalf("failed to create source: %v", err)
		}

		repo := NewApplicationRepository(db)
		app := models.NewApplication(0, "firefox", "Firefox")
		if err := repo.Create(app); err != nil {
			t.Fatalf("failed to create application: %v", err)
		}

		pkg := models.NewPackage(0, app.ID(), source.ID(), "firefox")
		if err := repo.UpsertPackage(pkg); err != nil {
			t.Fatalf("failed to upsert package: %v", err)
		}

		// Same application and source pair updates in place
		pkg2 := models.NewPackage(0, app.ID(), source.ID(), "firefox-esr")
		pkg2.Version = "128.0"
		if err := repo.UpsertPackage(pkg2); err != nil {
			t.Fatalf("failed to upsert duplicate package: %v", err)
		}

		packages, err := repo.ListPackages(app.ID())
		if err != nil {
			t.Fatalf("failed to list packages: %v", err)
		}
		if len(packages) != 1 {
			t.Fatalf("expected 1 package after upsert, got %d", len(packages))
		}
		if packages[0].Identifier != "firefox-esr" {
			t.Errorf("expected identifier firefox-esr, got %s", packages[0].Identifier)
		}
		if packages[0].Version != "128.0" {
			t.Errorf("expected version 128.0, got %s", packages[0].Version)
		}
	})

	t.Run("SetPackageAvailability", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		sourceRepo := NewSourceRepository(db)
		source := aptSource()
		if err := sourceRepo.Create(source); err != nil {
			t.Fatalf("failed to create source: %v", err)
		}

		repo := NewApplicationRepository(db)
		app := models.NewApplication(0, "steam", "Steam")
		if err := repo.Create(app); err != nil {
			t.Fatalf("failed to create application: %v", err)
		}

		pkg := models.NewPackage(0, app.ID(), source.ID(), "steam")
		if err := repo.UpsertPackage(pkg); err != nil {
			t.Fatalf("failed to upsert package: %v", err)
		}

		if err := repo.SetPackageAvailability(pkg.ID(), false, ""); err != nil {
			t.Fatalf("failed to set availability: %v", err)
		}

		packages, err := repo.ListPackages(app.ID())
		if err != nil {
			t.Fatalf("failed to list packages: %v", err)
		}
		if len(packages) != 1 || packages[0].Available {
			t.Error("expected package to be unavailable")
		}
	})

	t.Run("ListPackagesBySource", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		sourceRepo := NewSourceRepository(db)
		source := aptSource()
		if err := sourceRepo.Create(source); err != nil {
			t.Fatalf("failed to create source: %v", err)
		}

		repo := NewApplicationRepository(db)
		for _, slug := range []string{"firefox", "vlc"} {
			app := models.NewApplication(0, slug, slug)
			if err := repo.Create(app); err != nil {
				t.Fatalf("failed to create application: %v", err)
			}
			pkg := models.NewPackage(0, app.ID(), source.ID(), slug)
			if err := repo.UpsertPackage(pkg); err != nil {
				t.Fatalf("failed to upsert package: %v", err)
			}
		}

		packages, err := repo.ListPackagesBySource(source.ID())
		if err != nil {
			t.Fatalf("failed to list packages by source: %v", err)
		}
		if len(packages) != 2 {
			t.Fatalf("expected 2 packages, got %d", len(packages))
		}
		if packages[0].AppSlug != "firefox" || packages[1].AppSlug != "vlc" {
			t.Errorf("expected slug ordered packages, got %s then %s", packages[0].AppSlug, packages[1].AppSlug)
		}
	})
}

func TestDistributionRepository(t *testing.T) {
	t.Run("Create & Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDistributionRepository(db)
		distro := models.NewDistribution(0, "ubuntu", "Ubuntu", models.FamilyDebian)
		distro.BasedOn = "debian"

		if err := repo.Create(distro); err != nil {
			t.Fatalf("failed to create distribution: %v", err)
		}

		retrieved, err := repo.GetBySlug("ubuntu")
		if err != nil {
			t.Fatalf("failed to get distribution: %v", err)
		}

		if retrieved.Family != models.FamilyDebian {
			t.Errorf("expected family debian, got %s", retrieved.Family)
		}
	})

	t.Run("LinkSource and GetSourceLinks order by priority", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		sourceRepo := NewSourceRepository(db)
		apt := aptSource()
		flatpak := models.NewSource(0, "flatpak", "Flatpak", models.CategorySandboxed)
		flatpak.InstallTemplate = "flatpak install -y flathub {packages}"
		for _, source := range []*models.Source{apt, flatpak} {
			if err := sourceRepo.Create(source); err != nil {
				t.Fatalf("failed to create source: %v", err)
			}
		}

		repo := NewDistributionRepository(db)
		distro := models.NewDistribution(0, "ubuntu", "Ubuntu", models.FamilyDebian)
		if err := repo.Create(distro); err != nil {
			t.Fatalf("failed to create distribution: %v", err)
		}

		links := []models.DistroSource{
			{DistributionID: distro.ID(), SourceID: flatpak.ID(), Priority: 50},
			{DistributionID: distro.ID(), SourceID: apt.ID(), Priority: 90, IsDefault: true},
		}
		for _, link := range links {
			if err := repo.LinkSource(link); err != nil {
				t.Fatalf("failed to link source: %v", err)
			}
		}

		ranked, err := repo.GetSourceLinks(distro.ID())
		if err != nil {
			t.Fatalf("failed to get source links: %v", err)
		}
		if len(ranked) != 2 {
			t.Fatalf("expected 2 links, got %d", len(ranked))
		}
		if ranked[0].SourceID != apt.ID() {
			t.Error("expected apt to rank first")
		}
		if !ranked[0].IsDefault {
			t.Error("expected apt link to be default")
		}

		// Relinking updates the rank in place
		if err := repo.LinkSource(models.DistroSource{DistributionID: distro.ID(), SourceID: flatpak.ID(), Priority: 95}); err != nil {
			t.Fatalf("failed to relink source: %v", err)
		}
		ranked, err = repo.GetSourceLinks(distro.ID())
		if err != nil {
			t.Fatalf("failed to get source links: %v", err)
		}
		if ranked[0].SourceID != flatpak.ID() {
			t.Error("expected flatpak to rank first after relink")
		}
	})

	t.Run("UnlinkSource", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		sourceRepo := NewSourceRepository(db)
		apt := aptSource()
		if err := sourceRepo.Create(apt); err != nil {
			t.Fatalf("failed to create source: %v", err)
		}

		repo := NewDistributionRepository(db)
		distro := models.NewDistribution(0, "debian", "Debian", models.FamilyDebian)
		if err := repo.Create(distro); err != nil {
			t.Fatalf("failed to create distribution: %v", err)
		}

		if err := repo.LinkSource(models.DistroSource{DistributionID: distro.ID(), SourceID: apt.ID(), Priority: 90}); err != nil {
			t.Fatalf("failed to link source: %v", err)
		}

		if err := repo.UnlinkSource(distro.ID(), apt.ID()); err != nil {
			t.Fatalf("failed to unlink source: %v", err)
		}

		if err := repo.UnlinkSource(distro.ID(), apt.ID()); err == nil {
			t.Error("expected error when unlinking a missing link")
		}
	})
}

func TestCatalogStore(t *testing.T) {
	seedCatalog := func(t *testing.T, db *sql.DB) (*models.Distribution, *models.Source, *models.Application) {
		t.Helper()

		sourceRepo := NewSourceRepository(db)
		apt := aptSource()
		if err := sourceRepo.Create(apt); err != nil {
			t.Fatalf("failed to create source: %v", err)
		}

		appRepo := NewApplicationRepository(db)
		app := models.NewApplication(0, "firefox", "Firefox")
		if err := appRepo.Create(app); err != nil {
			t.Fatalf("failed to create application: %v", err)
		}
		pkg := models.NewPackage(0, app.ID(), apt.ID(), "firefox")
		if err := appRepo.UpsertPackage(pkg); err != nil {
			t.Fatalf("failed to upsert package: %v", err)
		}

		distroRepo := NewDistributionRepository(db)
		distro := models.NewDistribution(0, "ubuntu", "Ubuntu", models.FamilyDebian)
		if err := distroRepo.Create(distro); err != nil {
			t.Fatalf("failed to create distribution: %v", err)
		}
		link := models.DistroSource{DistributionID: distro.ID(), SourceID: apt.ID(), Priority: 90, IsDefault: true}
		if err := distroRepo.LinkSource(link); err != nil {
			t.Fatalf("failed to link source: %v", err)
		}

		return distro, apt, app
	}

	t.Run("GetDistro", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()
		seedCatalog(t, db)

		store := NewCatalogStore(db)
		distro, err := store.GetDistro(context.Background(), "ubuntu")
		if err != nil {
			t.Fatalf("failed to get distro: %v", err)
		}
		if distro.Family != models.FamilyDebian {
			t.Errorf("expected family debian, got %s", distro.Family)
		}
	})

	t.Run("GetDistro unknown slug", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewCatalogStore(db)
		_, err := store.GetDistro(context.Background(), "templeos")
		if err == nil {
			t.Fatal("expected error for unknown distro")
		}
	})

	t.Run("GetSources loads children", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()
		distro, apt, _ := seedCatalog(t, db)

		store := NewCatalogStore(db)
		links, err := store.GetDistroSources(context.Background(), distro.ID())
		if err != nil {
			t.Fatalf("failed to get distro sources: %v", err)
		}
		if len(links) != 1 {
			t.Fatalf("expected 1 link, got %d", len(links))
		}

		sources, err := store.GetSources(context.Background(), []string{apt.ID()})
		if err != nil {
			t.Fatalf("failed to get sources: %v", err)
		}
		if len(sources) != 1 || sources[0].Slug != "apt" {
			t.Fatalf("expected apt source, got %d sources", len(sources))
		}
		if !sources[0].RequiresSudo {
			t.Error("expected apt to require sudo")
		}
	})

	t.Run("GetAvailablePackages skips unavailable rows", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()
		_, _, app := seedCatalog(t, db)

		appRepo := NewApplicationRepository(db)
		packages, err := appRepo.ListPackages(app.ID())
		if err != nil {
			t.Fatalf("failed to list packages: %v", err)
		}
		if err := appRepo.SetPackageAvailability(packages[0].ID(), false, ""); err != nil {
			t.Fatalf("failed to flip availability: %v", err)
		}

		store := NewCatalogStore(db)
		available, err := store.GetAvailablePackages(context.Background(), []string{app.ID()})
		if err != nil {
			t.Fatalf("failed to get available packages: %v", err)
		}
		if len(available[app.ID()]) != 0 {
			t.Errorf("expected no available packages, got %d", len(available[app.ID()]))
		}
	})

	t.Run("GetSourceBySlug", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()
		seedCatalog(t, db)

		store := NewCatalogStore(db)
		source, err := store.GetSourceBySlug(context.Background(), "apt")
		if err != nil {
			t.Fatalf("failed to get source by slug: %v", err)
		}
		if source.Category != models.CategoryNative {
			t.Errorf("expected native category, got %s", source.Category)
		}

		if _, err := store.GetSourceBySlug(context.Background(), "portage"); err == nil {
			t.Error("expected error for unknown source slug")
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seq1, err := NextSequence(db, "sources")
	if err != nil {
		t.Fatalf("failed to get first sequence: %v", err)
	}

	if seq1 != 1 {
		t.Errorf("expected first sequence to be 1, got %d", seq1)
	}

	// Get second sequence
	seq2, err := NextSequence(db, "sources")
	if err != nil {
		t.Fatalf("failed to get second sequence: %v", err)
	}

	if seq2 != 2 {
		t.Errorf("expected second sequence to be 2, got %d", seq2)
	}

	appSeq, err := NextSequence(db, "applications")
	if err != nil {
		t.Fatalf("failed to get application sequence: %v", err)
	}

	if appSeq != 1 {
		t.Errorf("expected first application sequence to be 1, got %d", appSeq)
	}
}
