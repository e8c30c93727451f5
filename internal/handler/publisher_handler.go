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

// PublisherRequest defines the structure for publisher creation requests
type PublisherRequest struct {
	Name           string `json:"name" validate:"required"`
	Country        string `json:"country"`
	FoundationYear *int   `json:"foundationYear"`
	Description    string `json:"description"`
	Website        string `json:"website" validate:"omitempty,url"`
	IsActive       *bool  `json:"isActive"`
}

// PublisherUpdateRequest defines a partial update for a publisher.
type PublisherUpdateRequest struct {
	Name           *string `json:"name"`
	Country        *string `json:"country"`
	FoundationYear *int    `json:"foundationYear"`
	Description    *string `json:"description"`
	Website        *string `json:"website" validate:"omitempty,url"`
	IsActive       *bool   `json:"isActive"`
}

// PublisherHandler serves CRUD and CSV export for publishers.
type PublisherHandler struct {
	publishers *repository.PublisherRepository
	books      *repository.BookRepository
}

func NewPublisherHandler(publishers *repository.PublisherRepository, books *repository.BookRepository) *PublisherHandler {
	return &PublisherHandler{publishers: publishers, books: books}
}

// Create handles creating a new publisher
func (h *PublisherHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req PublisherRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Publisher validation failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	publisher := model.Publisher{
		Name:           req.Name,
		Country:        req.Country,
		FoundationYear: req.FoundationYear,
		Description:    req.Description,
		Website:        req.Website,
		IsActive:       true,
	}
	if req.IsActive != nil {
		publisher.IsActive = *req.IsActive
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.publishers.Create(&publisher); err != nil {
		log.Error("Failed to create publisher", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create publisher"})
	}

	prometheus.RecordEntityOperation("publisher", "create")
	log.Info("Publisher created",
		zap.String("publisher_id", publisher.ID.String()),
		zap.String("name", publisher.Name))
	return c.JSON(http.StatusCreated, publisher)
}

// List handles retrieving publishers, optionally filtered by a search term
func (h *PublisherHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	publishers, err := h.publishers.List(c.QueryParam("search"))
	if err != nil {
		log.Error("Failed to list publishers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve publishers"})
	}

	return c.JSON(http.StatusOK, publishers)
}

// Get handles retrieving a single publisher with its books
func (h *PublisherHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid publisher ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid publisher ID"})
	}

	publisher, err := h.publishers.FindByIDWithBooks(id)
	if err != nil {
		log.Warn("Publisher not found", zap.String("publisher_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Publisher not found"})
	}

	return c.JSON(http.StatusOK, publisher)
}

// Update handles a partial update of an existing publisher
func (h *PublisherHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid publisher ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid publisher ID"})
	}

	var req PublisherUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Publisher validation failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	publisher, err := h.publishers.FindByID(id)
	if err != nil {
		log.Warn("Publisher not found for update", zap.String("publisher_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Publisher not found"})
	}

	if req.Name != nil {
		publisher.Name = *req.Name
	}
	if req.Country != nil {
		publisher.Country = *req.Country
	}
	if req.FoundationYear != nil {
		publisher.FoundationYear = req.FoundationYear
	}
	if req.Description != nil {
		publisher.Description = *req.Description
	}
	if req.Website != nil {
		publisher.Website = *req.Website
	}
	if req.IsActive != nil {
		publisher.IsActive = *req.IsActive
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.publishers.Update(publisher); err != nil {
		log.Error("Failed to update publisher", zap.String("publisher_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update publisher"})
	}

	prometheus.RecordEntityOperation("publisher", "update")
	log.Info("Publisher updated", zap.String("publisher_id", id.String()))
	return c.JSON(http.StatusOK, publisher)
}

// Delete handles soft-deleting a publisher, refusing while books reference it
func (h *PublisherHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid publisher ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid publisher ID"})
	}

	if _, err := h.publishers.FindByID(id); err != nil {
		log.Warn("Publisher not found for deletion", zap.String("publisher_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Publisher not found"})
	}

	count, err := h.books.CountByPublisher(id)
	if err != nil {
		log.Error("Failed to count publisher books", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete publisher"})
	}
	if count > 0 {
		log.Warn("Publisher still referenced by books",
			zap.String("publisher_id", id.String()),
			zap.Int64("books", count))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Cannot delete publisher that is being used by books"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.publishers.SoftDelete(id); err != nil {
		log.Error("Failed to delete publisher", zap.String("publisher_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete publisher"})
	}

	prometheus.RecordEntityOperation("publisher", "delete")
	log.Info("Publisher deleted", zap.String("publisher_id", id.String()))
	return c.JSON(http.StatusOK, echo.Map{"message": "Publisher deleted successfully"})
}

// ExportCSV streams all publishers as CSV
func (h *PublisherHandler) ExportCSV(c echo.Context) error {
	log := logger.FromContext(c)

	publishers, err := h.publishers.List(c.QueryParam("search"))
	if err != nil {
		log.Error("Failed to list publishers for export", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to export publishers"})
	}

	data, err := export.WriteCSV(export.PublisherHeaders, export.PublisherRows(publishers))
	if err != nil {
		log.Error("Failed to encode publishers CSV", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to export publishers"})
	}

	prometheus.RecordExport("publishers")
	log.Info("Publishers exported", zap.Int("count", len(publishers)))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="publishers.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}
