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

// AuthorRequest defines the structure for author creation requests
type AuthorRequest struct {
	Name        string      `json:"name" validate:"required"`
	LastName    string      `json:"lastName" validate:"required"`
	BirthDate   *model.Date `json:"birthDate"`
	Biography   string      `json:"biography"`
	Nationality string      `json:"nationality"`
	IsActive    *bool       `json:"isActive"`
}

// AuthorUpdateRequest defines a partial update for an author.
type AuthorUpdateRequest struct {
	Name        *string     `json:"name"`
	LastName    *string     `json:"lastName"`
	BirthDate   *model.Date `json:"birthDate"`
	Biography   *string     `json:"biography"`
	Nationality *string     `json:"nationality"`
	IsActive    *bool       `json:"isActive"`
}

// AuthorHandler serves CRUD and CSV export for authors.
type AuthorHandler struct {
	authors *repository.AuthorRepository
	books   *repository.BookRepository
}

func NewAuthorHandler(authors *repository.AuthorRepository, books *repository.BookRepository) *AuthorHandler {
	return &AuthorHandler{authors: authors, books: books}
}

// Create handles creating a new author
func (h *AuthorHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req AuthorRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Author validation failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	author := model.Author{
		Name:        req.Name,
		LastName:    req.LastName,
		Biography:   req.Biography,
		Nationality: req.Nationality,
		IsActive:    true,
	}
	if req.BirthDate != nil && !req.BirthDate.IsZero() {
		t := req.BirthDate.Time
		author.BirthDate = &t
	}
	if req.IsActive != nil {
		author.IsActive = *req.IsActive
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.authors.Create(&author); err != nil {
		log.Error("Failed to create author", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create author"})
	}

	prometheus.RecordEntityOperation("author", "create")
	log.Info("Author created",
		zap.String("author_id", author.ID.String()),
		zap.String("name", author.FullName()))
	return c.JSON(http.StatusCreated, author)
}

// List handles retrieving authors, optionally filtered by a search term
func (h *AuthorHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	authors, err := h.authors.List(c.QueryParam("search"))
	if err != nil {
		log.Error("Failed to list authors", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve authors"})
	}

	return c.JSON(http.StatusOK, authors)
}

// Get handles retrieving a single author with their books
func (h *AuthorHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid author ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid author ID"})
	}

	author, err := h.authors.FindByIDWithBooks(id)
	if err != nil {
		log.Warn("Author not found", zap.String("author_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Author not found"})
	}

	return c.JSON(http.StatusOK, author)
}

// Update handles a partial update of an existing author
func (h *AuthorHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid author ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid author ID"})
	}

	var req AuthorUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	author, err := h.authors.FindByID(id)
	if err != nil {
		log.Warn("Author not found for update", zap.String("author_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Author not found"})
	}

	if req.Name != nil {
		author.Name = *req.Name
	}
	if req.LastName != nil {
		author.LastName = *req.LastName
	}
	if req.BirthDate != nil {
		if req.BirthDate.IsZero() {
			author.BirthDate = nil
		} else {
			t := req.BirthDate.Time
			author.BirthDate = &t
		}
	}
	if req.Biography != nil {
		author.Biography = *req.Biography
	}
	if req.Nationality != nil {
		author.Nationality = *req.Nationality
	}
	if req.IsActive != nil {
		author.IsActive = *req.IsActive
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.authors.Update(author); err != nil {
		log.Error("Failed to update author", zap.String("author_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update author"})
	}

	prometheus.RecordEntityOperation("author", "update")
	log.Info("Author updated", zap.String("author_id", id.String()))
	return c.JSON(http.StatusOK, author)
}

// Delete handles soft-deleting an author, refusing while books reference it
func (h *AuthorHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid author ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid author ID"})
	}

	if _, err := h.authors.FindByID(id); err != nil {
		log.Warn("Author not found for deletion", zap.String("author_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Author not found"})
	}

	count, err := h.books.CountByAuthor(id)
	if err != nil {
		log.Error("Failed to count author books", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete author"})
	}
	if count > 0 {
		log.Warn("Author still referenced by books",
			zap.String("author_id", id.String()),
			zap.Int64("books", count))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Cannot delete author that is being used by books"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.authors.SoftDelete(id); err != nil {
		log.Error("Failed to delete author", zap.String("author_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete author"})
	}

	prometheus.RecordEntityOperation("author", "delete")
	log.Info("Author deleted", zap.String("author_id", id.String()))
	return c.JSON(http.StatusOK, echo.Map{"message": "Author deleted successfully"})
}

// ExportCSV streams all authors as CSV
func (h *AuthorHandler) ExportCSV(c echo.Context) error {
	log := logger.FromContext(c)

	authors, err := h.authors.List(c.QueryParam("search"))
	if err != nil {
		log.Error("Failed to list authors for export", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to export authors"})
	}

	data, err := export.WriteCSV(export.AuthorHeaders, export.AuthorRows(authors))
	if err != nil {
		log.Error("Failed to encode authors CSV", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to export authors"})
	}

	prometheus.RecordExport("authors")
	log.Info("Authors exported", zap.Int("count", len(authors)))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="authors.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}
