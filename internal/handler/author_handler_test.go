package handler

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"catalog-service/internal/model"
)

func TestCreateAuthor(t *testing.T) {
	env := setupTestEnv(t)
	token := env.authToken(t)

	rec := env.request(t, http.MethodPost, "/api/authors", token, map[string]interface{}{
		"name":        "Gabriel",
		"lastName":    "García Márquez",
		"birthDate":   "1927-03-06",
		"nationality": "Colombian",
	})
	assertStatus(t, rec, http.StatusCreated)

	var resp model.Author
	decodeBody(t, rec, &resp)
	if resp.FullName() != "Gabriel García Márquez" {
		t.Errorf("unexpected full name %q", resp.FullName())
	}
	if resp.BirthDate == nil || resp.BirthDate.Format("2006-01-02") != "1927-03-06" {
		t.Errorf("unexpected birth date %v", resp.BirthDate)
	}
	if !resp.IsActive {
		t.Error("expected new author to default to active")
	}
}

func TestCreateAuthorRequiresLastName(t *testing.T) {
	env := setupTestEnv(t)
	token := env.authToken(t)

	rec := env.request(t, http.MethodPost, "/api/authors", token, map[string]interface{}{
		"name": "Solo",
	})
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestListAuthorsSearch(t *testing.T) {
	env := setupTestEnv(t)
	token := env.authToken(t)

	for _, a := range []model.Author{
		{Name: "Jane", LastName: "Austen", IsActive: true},
		{Name: "Julio", LastName: "Cortázar", IsActive: true},
	} {
		author := a
		if err := env.authors.Create(&author); err != nil {
			t.Fatalf("failed to seed author: %v", err)
		}
	}

	rec := env.request(t, http.MethodGet, "/api/authors?search=austen", token, nil)
	assertStatus(t, rec, http.StatusOK)

	var resp []model.Author
	decodeBody(t, rec, &resp)
	if len(resp) != 1 {
		t.Fatalf("expected 1 author, got %d", len(resp))
	}
	if resp[0].LastName != "Austen" {
		t.Errorf("expected Austen, got %s", resp[0].LastName)
	}
}

func TestGetAuthorWithBooks(t *testing.T) {
	env := setupTestEnv(t)
	token := env.authToken(t)
	author, publisher, genre := env.seedRelations(t)

	assertStatus(t, env.request(t, http.MethodPost, "/api/books", token, bookPayload(author, publisher, genre)), http.StatusCreated)

	rec := env.request(t, http.MethodGet, "/api/authors/"+author.ID.String(), token, nil)
	assertStatus(t, rec, http.StatusOK)

	var resp model.Author
	decodeBody(t, rec, &resp)
	if len(resp.Books) != 1 {
		t.Errorf("expected 1 book, got %d", len(resp.Books))
	}

	rec = env.request(t, http.MethodGet, "/api/authors/"+uuid.New().String(), token, nil)
	assertStatus(t, rec, http.StatusNotFound)
}

func TestUpdateAuthorPartial(t *testing.T) {
	env := setupTestEnv(t)
	token := env.authToken(t)

	author := model.Author{Name: "Jane", LastName: "Doe", Nationality: "British", IsActive: true}
	if err := env.authors.Create(&author); err != nil {
		t.Fatalf("failed to seed author: %v", err)
	}

	rec := env.request(t, http.MethodPut, "/api/authors/"+author.ID.String(), token, map[string]interface{}{
		"biography": "Wrote many books.",
	})
	assertStatus(t, rec, http.StatusOK)

	var resp model.Author
	decodeBody(t, rec, &resp)
	if resp.Biography != "Wrote many books." {
		t.Errorf("unexpected biography %q", resp.Biography)
	}
	if resp.Nationality != "British" {
		t.Errorf("nationality changed unexpectedly: %s", resp.Nationality)
	}
}

func TestDeleteAuthorInUse(t *testing.T) {
	env := setupTestEnv(t)
	token := env.authToken(t)
	author, publisher, genre := env.seedRelations(t)

	assertStatus(t, env.request(t, http.MethodPost, "/api/books", token, bookPayload(author, publisher, genre)), http.StatusCreated)

	rec := env.request(t, http.MethodDelete, "/api/authors/"+author.ID.String(), token, nil)
	assertStatus(t, rec, http.StatusConflict)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["error"] != "Cannot delete author that is being used by books" {
		t.Errorf("unexpected error %q", resp["error"])
	}
}

func TestDeleteAuthor(t *testing.T) {
	env := setupTestEnv(t)
	token := env.authToken(t)

	author := model.Author{Name: "Jane", LastName: "Doe", IsActive: true}
	if err := env.authors.Create(&author); err != nil {
		t.Fatalf("failed to seed author: %v", err)
	}

	rec := env.request(t, http.MethodDelete, "/api/authors/"+author.ID.String(), token, nil)
	assertStatus(t, rec, http.StatusOK)

	rec = env.request(t, http.MethodGet, "/api/authors/"+author.ID.String(), token, nil)
	assertStatus(t, rec, http.StatusNotFound)
}

func TestExportAuthorsCSV(t *testing.T) {
	env := setupTestEnv(t)
	token := env.authToken(t)

	author := model.Author{Name: "Jane", LastName: "Doe", Nationality: "British", IsActive: true}
	if err := env.authors.Create(&author); err != nil {
		t.Fatalf("failed to seed author: %v", err)
	}

	rec := env.request(t, http.MethodGet, "/api/authors/export/csv", token, nil)
	assertStatus(t, rec, http.StatusOK)

	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "authors.csv") {
		t.Errorf("expected authors.csv disposition, got %s", cd)
	}

	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d records", len(records))
	}
}
