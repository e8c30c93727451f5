package export

import (
	"strconv"
	"time"

	"catalog-service/internal/model"
)

// Column labels and yes/no tokens keep the catalog's Spanish-facing CSV
// contract: headers are what librarians see when they open the file.

const dateLayout = "2006-01-02"

// BookHeaders is the column order of a book export.
var BookHeaders = []string{
	"Título",
	"Autor",
	"Editorial",
	"Género",
	"ISBN",
	"Año de Publicación",
	"Precio",
	"Stock",
	"Disponible",
	"Fecha de Creación",
}

// AuthorHeaders is the column order of an author export.
var AuthorHeaders = []string{
	"Nombre",
	"Apellido",
	"Fecha de Nacimiento",
	"Biografía",
	"Nacionalidad",
	"Fecha de Creación",
}

// PublisherHeaders is the column order of a publisher export.
var PublisherHeaders = []string{
	"Nombre",
	"País",
	"Año de Fundación",
	"Descripción",
	"Sitio Web",
	"Fecha de Creación",
}

// GenreHeaders is the column order of a genre export.
var GenreHeaders = []string{
	"Nombre",
	"Descripción",
	"Fecha de Creación",
}

// BookRows renders books, relation names included, for WriteCSV.
func BookRows(books []model.Book) []Row {
	rows := make([]Row, 0, len(books))
	for _, b := range books {
		var authorName, publisherName, genreName string
		if b.Author != nil {
			authorName = b.Author.FullName()
		}
		if b.Publisher != nil {
			publisherName = b.Publisher.Name
		}
		if b.Genre != nil {
			genreName = b.Genre.Name
		}

		rows = append(rows, Row{
			"Título":             b.Title,
			"Autor":              authorName,
			"Editorial":          publisherName,
			"Género":             genreName,
			"ISBN":               stringOrEmpty(b.ISBN),
			"Año de Publicación": intOrEmpty(b.PublicationYear),
			"Precio":             strconv.FormatFloat(b.Price, 'f', 2, 64),
			"Stock":              strconv.Itoa(b.StockQuantity),
			"Disponible":         yesNo(b.IsAvailable),
			"Fecha de Creación":  b.CreatedAt.Format(dateLayout),
		})
	}
	return rows
}

// AuthorRows renders authors for WriteCSV.
func AuthorRows(authors []model.Author) []Row {
	rows := make([]Row, 0, len(authors))
	for _, a := range authors {
		rows = append(rows, Row{
			"Nombre":              a.Name,
			"Apellido":            a.LastName,
			"Fecha de Nacimiento": dateOrEmpty(a.BirthDate),
			"Biografía":           a.Biography,
			"Nacionalidad":        a.Nationality,
			"Fecha de Creación":   a.CreatedAt.Format(dateLayout),
		})
	}
	return rows
}

// PublisherRows renders publishers for WriteCSV.
func PublisherRows(publishers []model.Publisher) []Row {
	rows := make([]Row, 0, len(publishers))
	for _, p := range publishers {
		rows = append(rows, Row{
			"Nombre":            p.Name,
			"País":              p.Country,
			"Año de Fundación":  intOrEmpty(p.FoundationYear),
			"Descripción":       p.Description,
			"Sitio Web":         p.Website,
			"Fecha de Creación": p.CreatedAt.Format(dateLayout),
		})
	}
	return rows
}

// GenreRows renders genres for WriteCSV.
func GenreRows(genres []model.Genre) []Row {
	rows := make([]Row, 0, len(genres))
	for _, g := range genres {
		rows = append(rows, Row{
			"Nombre":            g.Name,
			"Descripción":       g.Description,
			"Fecha de Creación": g.CreatedAt.Format(dateLayout),
		})
	}
	return rows
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrEmpty(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
