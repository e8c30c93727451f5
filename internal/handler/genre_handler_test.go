package handler

import (
	"net/http"
	"testing"

	"catalog-service/internal/model"
)

func TestCreateGenre(t *testing.T) {
	env := setupTestEnv(t)
	token := env.authToken(t)

	rec := env.request(t, http.MethodPost, "/api/genres", token, map[string]interface{}{
		"name":        "Science Fiction",
		"description": "Speculative futures.",
	})
	assertStatus(t, rec, http.StatusCreated)

	var resp model.Genre
	decodeBody(t, rec, &resp)
	if resp.Name != "Science Fiction" {
		t.Errorf("expected name Science Fiction, got %s", resp.Name)
	}
	if !resp.IsActive {
		t.Error("expected new genre to default to active")
	}
}

func TestUpdateGenre(t *testing.T) {
	env := setupTestEnv(t)
	token := env.authToken(t)

	genre := model.Genre{Name: "Fiction", IsActive: true}
	if err := env.genres.Create(&genre); err != nil {
		t.Fatalf("failed to seed genre: %v", err)
	}

	rec := env.request(t, http.MethodPut, "/api/genres/"+genre.ID.String(), token, map[string]interface{}{
		"isActive": false,
	})
	assertStatus(t, rec, http.StatusOK)

	var resp model.Genre
	decodeBody(t, rec, &resp)
	if resp.IsActive {
		t.Error("expected genre to be deactivated")
	}
	if resp.Name != "Fiction" {
		t.Errorf("name changed unexpectedly: %s", resp.Name)
	}
}

func TestDeleteGenreInUse(t *testing.T) {
	env := setupTestEnv(t)
	token := env.authToken(t)
	author, publisher, genre := env.seedRelations(t)

	assertStatus(t, env.request(t, http.MethodPost, "/api/books", token, bookPayload(author, publisher, genre)), http.StatusCreated)

	rec := env.request(t, http.MethodDelete, "/api/genres/"+genre.ID.String(), token, nil)
	assertStatus(t, rec, http.StatusConflict)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["error"] != "Cannot delete genre that is being used by books" {
		t.Errorf("unexpected error %q", resp["error"])
	}
}

func TestDeleteGenre(t *testing.T) {
	env := setupTestEnv(t)
	token := env.authToken(t)

	genre := model.Genre{Name: "Fiction", IsActive: true}
	if err := env.genres.Create(&genre); err != nil {
		t.Fatalf("failed to seed genre: %v", err)
	}

	rec := env.request(t, http.MethodDelete, "/api/genres/"+genre.ID.String(), token, nil)
	assertStatus(t, rec, http.StatusOK)

	rec = env.request(t, http.MethodGet, "/api/genres/"+genre.ID.String(), token, nil)
	assertStatus(t, rec, http.StatusNotFound)
}
