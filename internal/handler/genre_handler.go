package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"catalog-service/internal/export"
	"catalog-service/internal/model"
	"catalog-service/internal/repository"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"
)

// GenreRequest defines the structure for genre creation requests
type GenreRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

// GenreUpdateRequest defines a partial update for a genre.
type GenreUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// GenreHandler serves CRUD and CSV export for genres.
type GenreHandler struct {
	genres *repository.GenreRepository
	books  *repository.BookRepository
}

func NewGenreHandler(genres *repository.GenreRepository, books *repository.BookRepository) *GenreHandler {
	return &GenreHandler{genres: genres, books: books}
}

// Create handles creating a new genre
func (h *GenreHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req GenreRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Genre validation failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	genre := model.Genre{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		genre.IsActive = *req.IsActive
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.genres.Create(&genre); err != nil {
		log.Error("Failed to create genre", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create genre"})
	}

	prometheus.RecordEntityOperation("genre", "create")
	log.Info("Genre created",
		zap.String("genre_id", genre.ID.String()),
		zap.String("name", genre.Name))
	return c.JSON(http.StatusCreated, genre)
}

// List handles retrieving genres, optionally filtered by a search term
func (h *GenreHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	genres, err := h.genres.List(c.QueryParam("search"))
	if err != nil {
		log.Error("Failed to list genres", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve genres"})
	}

	return c.JSON(http.StatusOK, genres)
}

// Get handles retrieving a single genre with its books
func (h *GenreHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid genre ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid genre ID"})
	}

	genre, err := h.genres.FindByIDWithBooks(id)
	if err != nil {
		log.Warn("Genre not found", zap.String("genre_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Genre not found"})
	}

	return c.JSON(http.StatusOK, genre)
}

// Update handles a partial update of an existing genre
func (h *GenreHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid genre ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid genre ID"})
	}

	var req GenreUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	genre, err := h.genres.FindByID(id)
	if err != nil {
		log.Warn("Genre not found for update", zap.String("genre_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Genre not found"})
	}

	if req.Name != nil {
		genre.Name = *req.Name
	}
	if req.Description != nil {
		genre.Description = *req.Description
	}
	if req.IsActive != nil {
		genre.IsActive = *req.IsActive
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.genres.Update(genre); err != nil {
		log.Error("Failed to update genre", zap.String("genre_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update genre"})
	}

	prometheus.RecordEntityOperation("genre", "update")
	log.Info("Genre updated", zap.String("genre_id", id.String()))
	return c.JSON(http.StatusOK, genre)
}

// Delete handles soft-deleting a genre, refusing while books reference it
func (h *GenreHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid genre ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid genre ID"})
	}

	if _, err := h.genres.FindByID(id); err != nil {
		log.Warn("Genre not found for deletion", zap.String("genre_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Genre not found"})
	}

	count, err := h.books.CountByGenre(id)
	if err != nil {
		log.Error("Failed to count genre books", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete genre"})
	}
	if count > 0 {
		log.Warn("Genre still referenced by books",
			zap.String("genre_id", id.String()),
			zap.Int64("books", count))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Cannot delete genre that is being used by books"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.genres.SoftDelete(id); err != nil {
		log.Error("Failed to delete genre", zap.String("genre_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete genre"})
	}

	prometheus.RecordEntityOperation("genre", "delete")
	log.Info("Genre deleted", zap.String("genre_id", id.String()))
	return c.JSON(http.StatusOK, echo.Map{"message": "Genre deleted successfully"})
}

// ExportCSV streams all genres as CSV
func (h *GenreHandler) ExportCSV(c echo.Context) error {
	log := logger.FromContext(c)

	genres, err := h.genres.List(c.QueryParam("search"))
	if err != nil {
		log.Error("Failed to list genres for export", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to export genres"})
	}

	data, err := export.WriteCSV(export.GenreHeaders, export.GenreRows(genres))
	if err != nil {
		log.Error("Failed to encode genres CSV", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to export genres"})
	}

	prometheus.RecordExport("genres")
	log.Info("Genres exported", zap.Int("count", len(genres)))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="genres.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}
