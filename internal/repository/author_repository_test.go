package repository

import (
	"testing"

	"github.com/google/uuid"

	"catalog-service/internal/model"
)

func TestAuthorListOrderAndSearch(t *testing.T) {
	repo := NewAuthorRepository(setupTestDB(t))

	for _, a := range []model.Author{
		{Name: "Julio", LastName: "Cortázar", IsActive: true},
		{Name: "Jane", LastName: "Austen", IsActive: true},
		{Name: "Gabriel", LastName: "García Márquez", IsActive: true},
	} {
		author := a
		if err := repo.Create(&author); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	authors, err := repo.List("")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(authors) != 3 {
		t.Fatalf("expected 3 authors, got %d", len(authors))
	}
	if authors[0].LastName != "Austen" {
		t.Errorf("expected Austen first, got %s", authors[0].LastName)
	}

	authors, err = repo.List("GARCÍA")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(authors) != 1 || authors[0].Name != "Gabriel" {
		t.Errorf("expected Gabriel only, got %+v", authors)
	}
}

func TestAuthorSoftDelete(t *testing.T) {
	repo := NewAuthorRepository(setupTestDB(t))

	author := model.Author{Name: "Jane", LastName: "Doe", IsActive: true}
	if err := repo.Create(&author); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.SoftDelete(author.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	if _, err := repo.FindByID(author.ID); err == nil {
		t.Error("expected FindByID to miss a soft-deleted author")
	}

	authors, err := repo.List("")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(authors) != 0 {
		t.Errorf("expected empty list, got %d authors", len(authors))
	}
}

func TestAuthorFindByIDMissing(t *testing.T) {
	repo := NewAuthorRepository(setupTestDB(t))

	if _, err := repo.FindByID(uuid.New()); err == nil {
		t.Error("expected an error for an unknown author")
	}
}
