package repositories

import (
	"testing"

	"github.com/Sagyam/linite-sub002/internal/models"
)

func TestSourceRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSourceRepository(db)
			source := models.NewSource(0, "apt", "APT", models.CategoryNative)
			source.InstallTemplate = "apt-get install -y"

			if err := repo.Create(source); err == nil {
				t.Fatal("expected validation error for template without placeholder")
			}
		})

		t.Run("DuplicateSlug", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSourceRepository(db)
			first := aptSource()
			if err := repo.Create(first); err != nil {
				t.Fatalf("failed to create first source: %v", err)
			}

			second := aptSource()
			if err := repo.Create(second); err == nil {
				t.Fatal("expected error when creating source with duplicate slug")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSourceRepository(db)

			if _, err := repo.Get("nonexistent-id"); err == nil {
				t.Fatal("expected error when getting nonexistent source")
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSourceRepository(db)
			source := aptSource()
			source.SetID("nonexistent-id")

			if err := repo.Update(source); err == nil {
				t.Fatal("expected error when updating nonexistent source")
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("AlreadyDeleted", func(t *testing.T) {
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

			if err := repo.Delete(source.ID()); err == nil {
				t.Fatal("expected error when deleting source twice")
			}
		})
	})
}

func TestApplicationRepositoryErrors(t *testing.T) {
	t.Run("DuplicateSlug", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewApplicationRepository(db)
		first := models.NewApplication(0, "firefox", "Firefox")
		if err := repo.Create(first); err != nil {
			t.Fatalf("failed to create first application: %v", err)
		}

		second := models.NewApplication(0, "firefox", "Firefox Again")
		if err := repo.Create(second); err == nil {
			t.Fatal("expected error when creating application with duplicate slug")
		}
	})

	t.Run("UpsertPackage rejects missing identifier", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewApplicationRepository(db)
		pkg := models.NewPackage(0, "app-id", "source-id", "")

		if err := repo.UpsertPackage(pkg); err == nil {
			t.Fatal("expected validation error for empty identifier")
		}
	})

	t.Run("SetPackageAvailability NotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewApplicationRepository(db)
		if err := repo.SetPackageAvailability("nonexistent-id", true, ""); err == nil {
			t.Fatal("expected error for nonexistent package")
		}
	})
}

func TestDistributionRepositoryErrors(t *testing.T) {
	t.Run("ValidationError", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDistributionRepository(db)
		distro := models.NewDistribution(0, "haiku", "Haiku", "beos")

		if err := repo.Create(distro); err == nil {
			t.Fatal("expected validation error for unknown family")
		}
	})

	t.Run("DuplicateSlug", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDistributionRepository(db)
		first := models.NewDistribution(0, "ubuntu", "Ubuntu", models.FamilyDebian)
		if err := repo.Create(first); err != nil {
			t.Fatalf("failed to create first distribution: %v", err)
		}

		second := models.NewDistribution(0, "ubuntu", "Ubuntu LTS", models.FamilyDebian)
		if err := repo.Create(second); err == nil {
			t.Fatal("expected error when creating distribution with duplicate slug")
		}
	})
}
