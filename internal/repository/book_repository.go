package repository

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-service/internal/model"
)

// List limits.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	ExportPageSize  = 10000
)

// BookListParams describes a filtered, sorted, paginated book listing.
// Zero values mean "no filter"; pointer fields distinguish absent from zero.
type BookListParams struct {
	Search             string
	AuthorID           *uuid.UUID
	PublisherID        *uuid.UUID
	GenreID            *uuid.UUID
	MinPrice           *float64
	MaxPrice           *float64
	MinPublicationYear *int
	MaxPublicationYear *int
	AvailableOnly      bool
	SortBy             string
	SortOrder          string
	Page               int
	Limit              int
}

// BookListResult is one page of a filtered listing. Total and TotalPages
// reflect the same filter predicate as Books, independent of Page/Limit.
type BookListResult struct {
	Books      []model.Book
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// predicate is one self-contained WHERE fragment. The listing assembles all
// applicable fragments into a slice and applies them once, to the count query
// and the page query alike, so both always see the same filter.
type predicate struct {
	expr string
	args []interface{}
}

func (p BookListParams) predicates() []predicate {
	var preds []predicate

	if p.Search != "" {
		term := "%" + strings.ToLower(p.Search) + "%"
		preds = append(preds, predicate{
			expr: "(LOWER(books.title) LIKE ? OR LOWER(books.isbn) LIKE ? OR LOWER(authors.name) LIKE ? OR LOWER(authors.last_name) LIKE ?)",
			args: []interface{}{term, term, term, term},
		})
	}
	if p.AuthorID != nil {
		preds = append(preds, predicate{expr: "books.author_id = ?", args: []interface{}{*p.AuthorID}})
	}
	if p.PublisherID != nil {
		preds = append(preds, predicate{expr: "books.publisher_id = ?", args: []interface{}{*p.PublisherID}})
	}
	if p.GenreID != nil {
		preds = append(preds, predicate{expr: "books.genre_id = ?", args: []interface{}{*p.GenreID}})
	}
	if p.MinPrice != nil {
		preds = append(preds, predicate{expr: "books.price >= ?", args: []interface{}{*p.MinPrice}})
	}
	if p.MaxPrice != nil {
		preds = append(preds, predicate{expr: "books.price <= ?", args: []interface{}{*p.MaxPrice}})
	}
	if p.MinPublicationYear != nil {
		preds = append(preds, predicate{expr: "books.publication_year >= ?", args: []interface{}{*p.MinPublicationYear}})
	}
	if p.MaxPublicationYear != nil {
		preds = append(preds, predicate{expr: "books.publication_year <= ?", args: []interface{}{*p.MaxPublicationYear}})
	}
	if p.AvailableOnly {
		preds = append(preds, predicate{expr: "books.is_available = ?", args: []interface{}{true}})
	}

	return preds
}

// sortColumns maps the public sort keys to book columns. Unknown keys fall
// back to created_at.
var sortColumns = map[string]string{
	"title":           "books.title",
	"price":           "books.price",
	"publicationYear": "books.publication_year",
	"createdAt":       "books.created_at",
}

func (p BookListParams) orderClause() string {
	column, ok := sortColumns[p.SortBy]
	if !ok {
		column = "books.created_at"
	}
	order := "DESC"
	if strings.EqualFold(p.SortOrder, "ASC") {
		order = "ASC"
	}
	return column + " " + order
}

func (p BookListParams) page() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

func (p BookListParams) limit() int {
	if p.Limit < 1 {
		return DefaultPageSize
	}
	return p.Limit
}

// BookRepository persists books. Default reads never see soft-deleted rows;
// the only unscoped access is the explicitly named ISBNExistsIncludingDeleted.
type BookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) *BookRepository {
	return &BookRepository{db: db}
}

func (r *BookRepository) Create(book *model.Book) error {
	return r.db.Create(book).Error
}

// joined returns a fresh book query with the relation tables joined. The
// joins are always present so the search predicate can reference author
// columns regardless of which filters are set.
func (r *BookRepository) joined(preds []predicate) *gorm.DB {
	q := r.db.Model(&model.Book{}).
		Joins("LEFT JOIN authors ON authors.id = books.author_id").
		Joins("LEFT JOIN publishers ON publishers.id = books.publisher_id").
		Joins("LEFT JOIN genres ON genres.id = books.genre_id")
	for _, p := range preds {
		q = q.Where(p.expr, p.args...)
	}
	return q
}

// List resolves a filtered listing into one bounded result page.
func (r *BookRepository) List(params BookListParams) (BookListResult, error) {
	preds := params.predicates()
	page := params.page()
	limit := params.limit()

	var total int64
	if err := r.joined(preds).Count(&total).Error; err != nil {
		return BookListResult{}, err
	}

	var books []model.Book
	err := r.joined(preds).
		Select("books.*").
		Order(params.orderClause()).
		Offset((page - 1) * limit).
		Limit(limit).
		Preload("Author").
		Preload("Publisher").
		Preload("Genre").
		Find(&books).Error
	if err != nil {
		return BookListResult{}, err
	}

	return BookListResult{
		Books:      books,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// FindByID returns a non-deleted book with its relations loaded.
func (r *BookRepository) FindByID(id uuid.UUID) (*model.Book, error) {
	var book model.Book
	err := r.db.
		Preload("Author").
		Preload("Publisher").
		Preload("Genre").
		First(&book, "books.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// FindByIDBare returns a non-deleted book without loading relations.
func (r *BookRepository) FindByIDBare(id uuid.UUID) (*model.Book, error) {
	var book model.Book
	if err := r.db.First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// ISBNExistsIncludingDeleted reports whether any book, soft-deleted rows
// included, holds the ISBN. excludeID, when non-nil, ignores that book so an
// update does not conflict with its own unchanged value.
func (r *BookRepository) ISBNExistsIncludingDeleted(isbn string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.Unscoped().Model(&model.Book{}).Where("isbn = ?", isbn)
	if excludeID != nil {
		q = q.Where("id != ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *BookRepository) Update(book *model.Book) error {
	return r.db.Save(book).Error
}

func (r *BookRepository) SoftDelete(id uuid.UUID) error {
	return r.db.Delete(&model.Book{}, "id = ?", id).Error
}

// CountByAuthor counts non-deleted books referencing the author.
func (r *BookRepository) CountByAuthor(authorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Book{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// CountByPublisher counts non-deleted books referencing the publisher.
func (r *BookRepository) CountByPublisher(publisherID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Book{}).Where("publisher_id = ?", publisherID).Count(&count).Error
	return count, err
}

// CountByGenre counts non-deleted books referencing the genre.
func (r *BookRepository) CountByGenre(genreID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Book{}).Where("genre_id = ?", genreID).Count(&count).Error
	return count, err
}
