package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"catalog-service/internal/export"
	"catalog-service/internal/model"
	"catalog-service/internal/repository"
	"catalog-service/pkg/config"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"
)

// Image upload restrictions.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// BookRequest defines the structure for book creation requests
type BookRequest struct {
	Title           string    `json:"title" validate:"required"`
	Description     string    `json:"description"`
	ISBN            *string   `json:"isbn"`
	PublicationYear *int      `json:"publicationYear"`
	Price           float64   `json:"price" validate:"gte=0"`
	StockQuantity   int       `json:"stockQuantity" validate:"gte=0"`
	ImageURL        string    `json:"imageUrl"`
	IsAvailable     *bool     `json:"isAvailable"`
	AuthorID        uuid.UUID `json:"authorId" validate:"required"`
	PublisherID     uuid.UUID `json:"publisherId" validate:"required"`
	GenreID         uuid.UUID `json:"genreId" validate:"required"`
}

// BookUpdateRequest defines a partial update: only fields present in the
// request body overwrite the stored value.
type BookUpdateRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	ISBN            *string    `json:"isbn"`
	PublicationYear *int       `json:"publicationYear"`
	Price           *float64   `json:"price" validate:"omitempty,gte=0"`
	StockQuantity   *int       `json:"stockQuantity" validate:"omitempty,gte=0"`
	ImageURL        *string    `json:"imageUrl"`
	IsAvailable     *bool      `json:"isAvailable"`
	AuthorID        *uuid.UUID `json:"authorId"`
	PublisherID     *uuid.UUID `json:"publisherId"`
	GenreID         *uuid.UUID `json:"genreId"`
}

// BookResponse projects a book with denormalized relation names. The relation
// sub-objects are present only when the relation was actually loaded.
type BookResponse struct {
	ID              uuid.UUID          `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description,omitempty"`
	ISBN            *string            `json:"isbn,omitempty"`
	PublicationYear *int               `json:"publicationYear,omitempty"`
	Price           float64            `json:"price"`
	StockQuantity   int                `json:"stockQuantity"`
	ImageURL        string             `json:"imageUrl,omitempty"`
	IsAvailable     bool               `json:"isAvailable"`
	AuthorID        uuid.UUID          `json:"authorId"`
	PublisherID     uuid.UUID          `json:"publisherId"`
	GenreID         uuid.UUID          `json:"genreId"`
	AuthorName      string             `json:"authorName,omitempty"`
	PublisherName   string             `json:"publisherName,omitempty"`
	GenreName       string             `json:"genreName,omitempty"`
	Author          *BookAuthorRef     `json:"author,omitempty"`
	Publisher       *BookPublisherRef  `json:"publisher,omitempty"`
	Genre           *BookGenreRef      `json:"genre,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

type BookAuthorRef struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
}

type BookPublisherRef struct {
	Name string `json:"name"`
}

type BookGenreRef struct {
	Name string `json:"name"`
}

// BookListResponse is one page of a filtered listing.
type BookListResponse struct {
	Data       []BookResponse `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
}

// BookHandler serves catalog CRUD, CSV export and image upload for books.
type BookHandler struct {
	books      *repository.BookRepository
	authors    *repository.AuthorRepository
	publishers *repository.PublisherRepository
	genres     *repository.GenreRepository
	upload     config.UploadConfig
}

func NewBookHandler(
	books *repository.BookRepository,
	authors *repository.AuthorRepository,
	publishers *repository.PublisherRepository,
	genres *repository.GenreRepository,
	upload config.UploadConfig,
) *BookHandler {
	return &BookHandler{
		books:      books,
		authors:    authors,
		publishers: publishers,
		genres:     genres,
		upload:     upload,
	}
}

// validateRelations checks that the referenced author, publisher and genre
// exist, in that order, stopping at the first missing one. The returned
// message names the missing relation.
func (h *BookHandler) validateRelations(authorID, publisherID, genreID uuid.UUID) (string, error) {
	if _, err := h.authors.FindByID(authorID); err != nil {
		return "Author not found", err
	}
	if _, err := h.publishers.FindByID(publisherID); err != nil {
		return "Publisher not found", err
	}
	if _, err := h.genres.FindByID(genreID); err != nil {
		return "Genre not found", err
	}
	return "", nil
}

// Create handles creating a new book
func (h *BookHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new book")

	var req BookRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Book validation failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if msg, err := h.validateRelations(req.AuthorID, req.PublisherID, req.GenreID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Book relation missing", zap.String("relation", msg))
			return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
		}
		log.Error("Failed to validate book relations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create book"})
	}

	// ISBN uniqueness covers soft-deleted books too.
	if req.ISBN != nil && *req.ISBN != "" {
		exists, err := h.books.ISBNExistsIncludingDeleted(*req.ISBN, nil)
		if err != nil {
			log.Error("Failed to check ISBN", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create book"})
		}
		if exists {
			log.Warn("ISBN already registered", zap.String("isbn", *req.ISBN))
			return c.JSON(http.StatusConflict, echo.Map{"error": "ISBN already registered"})
		}
	}

	book := model.Book{
		Title:           req.Title,
		Description:     req.Description,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		Price:           req.Price,
		StockQuantity:   req.StockQuantity,
		ImageURL:        req.ImageURL,
		IsAvailable:     true,
		AuthorID:        req.AuthorID,
		PublisherID:     req.PublisherID,
		GenreID:         req.GenreID,
	}
	if req.IsAvailable != nil {
		book.IsAvailable = *req.IsAvailable
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.books.Create(&book); err != nil {
		log.Error("Failed to create book", zap.String("title", req.Title), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create book"})
	}

	// Re-read with relations so the response carries the display names even
	// though the insert did not need them.
	full, err := h.books.FindByID(book.ID)
	if err != nil {
		log.Error("Failed to reload created book", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create book"})
	}

	prometheus.RecordEntityOperation("book", "create")
	log.Info("Book created",
		zap.String("book_id", book.ID.String()),
		zap.String("title", book.Title))
	return c.JSON(http.StatusCreated, toBookResponse(full))
}

// bookListParamsFromQuery reads the filter set from the query string.
// Unparseable values are logged and ignored, matching the lenient handling
// of optional filters elsewhere in the service.
func bookListParamsFromQuery(c echo.Context) repository.BookListParams {
	log := logger.FromContext(c)

	params := repository.BookListParams{
		Search:    c.QueryParam("search"),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}

	parseUUID := func(name string) *uuid.UUID {
		v := c.QueryParam(name)
		if v == "" {
			return nil
		}
		id, err := uuid.Parse(v)
		if err != nil {
			log.Warn("Invalid filter parameter", zap.String("param", name), zap.String("value", v))
			return nil
		}
		return &id
	}
	parseFloat := func(name string) *float64 {
		v := c.QueryParam(name)
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Warn("Invalid filter parameter", zap.String("param", name), zap.String("value", v))
			return nil
		}
		return &f
	}
	parseInt := func(name string) *int {
		v := c.QueryParam(name)
		if v == "" {
			return nil
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Warn("Invalid filter parameter", zap.String("param", name), zap.String("value", v))
			return nil
		}
		return &i
	}

	params.AuthorID = parseUUID("authorId")
	params.PublisherID = parseUUID("publisherId")
	params.GenreID = parseUUID("genreId")
	params.MinPrice = parseFloat("minPrice")
	params.MaxPrice = parseFloat("maxPrice")
	params.MinPublicationYear = parseInt("minPublicationYear")
	params.MaxPublicationYear = parseInt("maxPublicationYear")

	if v := c.QueryParam("availableOnly"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			params.AvailableOnly = b
		} else {
			log.Warn("Invalid availableOnly parameter", zap.String("value", v))
		}
	}

	if v := parseInt("page"); v != nil {
		params.Page = *v
	}
	if v := parseInt("limit"); v != nil {
		params.Limit = *v
		if params.Limit > repository.MaxPageSize {
			params.Limit = repository.MaxPageSize
		}
	}

	return params
}

// List handles retrieving books with filtering, sorting and pagination
func (h *BookHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	params := bookListParamsFromQuery(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	result, err := h.books.List(params)
	if err != nil {
		log.Error("Failed to list books", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve books"})
	}

	data := make([]BookResponse, 0, len(result.Books))
	for i := range result.Books {
		data = append(data, toBookResponse(&result.Books[i]))
	}

	log.Info("Books retrieved",
		zap.Int("count", len(data)),
		zap.Int64("total", result.Total),
		zap.Int("page", result.Page))
	return c.JSON(http.StatusOK, BookListResponse{
		Data:       data,
		Total:      result.Total,
		Page:       result.Page,
		TotalPages: result.TotalPages,
	})
}

// Get handles retrieving a single book by ID
func (h *BookHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid book ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book ID"})
	}

	book, err := h.books.FindByID(id)
	if err != nil {
		log.Warn("Book not found", zap.String("book_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Book not found"})
	}

	return c.JSON(http.StatusOK, toBookResponse(book))
}

// Update handles a partial update of an existing book
func (h *BookHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid book ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book ID"})
	}
	log.Info("Updating book", zap.String("book_id", id.String()))

	var req BookUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Book validation failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	book, err := h.books.FindByIDBare(id)
	if err != nil {
		log.Warn("Book not found for update", zap.String("book_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Book not found"})
	}

	// Re-validate relations whenever any foreign key changes; the merged
	// values are checked so a stale reference is caught as well.
	if req.AuthorID != nil || req.PublisherID != nil || req.GenreID != nil {
		authorID := book.AuthorID
		publisherID := book.PublisherID
		genreID := book.GenreID
		if req.AuthorID != nil {
			authorID = *req.AuthorID
		}
		if req.PublisherID != nil {
			publisherID = *req.PublisherID
		}
		if req.GenreID != nil {
			genreID = *req.GenreID
		}
		if msg, err := h.validateRelations(authorID, publisherID, genreID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warn("Book relation missing", zap.String("relation", msg))
				return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
			}
			log.Error("Failed to validate book relations", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update book"})
		}
		book.AuthorID = authorID
		book.PublisherID = publisherID
		book.GenreID = genreID
	}

	// An ISBN change conflicts only when a different row holds the value.
	if req.ISBN != nil && *req.ISBN != "" && (book.ISBN == nil || *req.ISBN != *book.ISBN) {
		exists, err := h.books.ISBNExistsIncludingDeleted(*req.ISBN, &book.ID)
		if err != nil {
			log.Error("Failed to check ISBN", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update book"})
		}
		if exists {
			log.Warn("ISBN already registered", zap.String("isbn", *req.ISBN))
			return c.JSON(http.StatusConflict, echo.Map{"error": "ISBN already registered"})
		}
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.ISBN != nil {
		if *req.ISBN == "" {
			book.ISBN = nil
		} else {
			book.ISBN = req.ISBN
		}
	}
	if req.PublicationYear != nil {
		book.PublicationYear = req.PublicationYear
	}
	if req.Price != nil {
		book.Price = *req.Price
	}
	if req.StockQuantity != nil {
		book.StockQuantity = *req.StockQuantity
	}
	if req.ImageURL != nil {
		book.ImageURL = *req.ImageURL
	}
	if req.IsAvailable != nil {
		book.IsAvailable = *req.IsAvailable
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.books.Update(book); err != nil {
		log.Error("Failed to update book", zap.String("book_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update book"})
	}

	full, err := h.books.FindByID(book.ID)
	if err != nil {
		log.Error("Failed to reload updated book", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update book"})
	}

	prometheus.RecordEntityOperation("book", "update")
	log.Info("Book updated", zap.String("book_id", id.String()), zap.String("title", full.Title))
	return c.JSON(http.StatusOK, toBookResponse(full))
}

// Delete handles soft-deleting a book
func (h *BookHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid book ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book ID"})
	}

	if _, err := h.books.FindByIDBare(id); err != nil {
		log.Warn("Book not found for deletion", zap.String("book_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Book not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.books.SoftDelete(id); err != nil {
		log.Error("Failed to delete book", zap.String("book_id", id.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete book"})
	}

	prometheus.RecordEntityOperation("book", "delete")
	log.Info("Book deleted", zap.String("book_id", id.String()))
	return c.JSON(http.StatusOK, echo.Map{"message": "Book deleted successfully"})
}

// ExportCSV streams every book matching the current filters as CSV
func (h *BookHandler) ExportCSV(c echo.Context) error {
	log := logger.FromContext(c)

	params := bookListParamsFromQuery(c)
	params.Page = 1
	params.Limit = repository.ExportPageSize

	result, err := h.books.List(params)
	if err != nil {
		log.Error("Failed to list books for export", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to export books"})
	}

	data, err := export.WriteCSV(export.BookHeaders, export.BookRows(result.Books))
	if err != nil {
		log.Error("Failed to encode books CSV", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to export books"})
	}

	prometheus.RecordExport("books")
	log.Info("Books exported", zap.Int("count", len(result.Books)))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="books.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}

// UploadImage stores a cover image and records its access path on the book
func (h *BookHandler) UploadImage(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid book ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book ID"})
	}

	book, err := h.books.FindByIDBare(id)
	if err != nil {
		log.Warn("Book not found for image upload", zap.String("book_id", id.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Book not found"})
	}

	file, err := c.FormFile("image")
	if err != nil {
		log.Warn("Missing image file", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file is required"})
	}

	if file.Size > h.upload.MaxSizeBytes() {
		log.Warn("Image too large", zap.Int64("size", file.Size))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": fmt.Sprintf("image exceeds the %dMB limit", h.upload.MaxSizeMB),
		})
	}

	contentType := file.Header.Get("Content-Type")
	if !allowedImageTypes[strings.ToLower(contentType)] {
		log.Warn("Unsupported image type", zap.String("content_type", contentType))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only jpeg, png and gif images are allowed"})
	}

	src, err := file.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store image"})
	}
	defer src.Close()

	dir := filepath.Join(h.upload.Dir, "books")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error("Failed to create upload directory", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store image"})
	}

	fileName := fmt.Sprintf("%s-%d%s", id, time.Now().UnixNano(), filepath.Ext(file.Filename))
	dst, err := os.Create(filepath.Join(dir, fileName))
	if err != nil {
		log.Error("Failed to create image file", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store image"})
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		log.Error("Failed to write image file", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store image"})
	}

	book.ImageURL = "/uploads/books/" + fileName
	if err := h.books.Update(book); err != nil {
		log.Error("Failed to record image URL", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store image"})
	}

	prometheus.RecordEntityOperation("book", "upload_image")
	log.Info("Book image uploaded",
		zap.String("book_id", id.String()),
		zap.String("image_url", book.ImageURL))
	return c.JSON(http.StatusOK, echo.Map{"imageUrl": book.ImageURL})
}

func toBookResponse(b *model.Book) BookResponse {
	resp := BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Description:     b.Description,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		Price:           b.Price,
		StockQuantity:   b.StockQuantity,
		ImageURL:        b.ImageURL,
		IsAvailable:     b.IsAvailable,
		AuthorID:        b.AuthorID,
		PublisherID:     b.PublisherID,
		GenreID:         b.GenreID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	if b.Author != nil {
		resp.AuthorName = b.Author.FullName()
		resp.Author = &BookAuthorRef{Name: b.Author.Name, LastName: b.Author.LastName}
	}
	if b.Publisher != nil {
		resp.PublisherName = b.Publisher.Name
		resp.Publisher = &BookPublisherRef{Name: b.Publisher.Name}
	}
	if b.Genre != nil {
		resp.GenreName = b.Genre.Name
		resp.Genre = &BookGenreRef{Name: b.Genre.Name}
	}

	return resp
}
