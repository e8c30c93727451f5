package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"catalog-service/internal/model"
)

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	return records
}

func TestWriteCSVHeaderOnly(t *testing.T) {
	data, err := WriteCSV(GenreHeaders, nil)
	if err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records := parseCSV(t, data)
	if len(records) != 1 {
		t.Fatalf("expected header only, got %d records", len(records))
	}
	if records[0][0] != "Nombre" {
		t.Errorf("expected Nombre header, got %s", records[0][0])
	}
}

func TestBookRows(t *testing.T) {
	isbn := "978-1-83921-994-0"
	year := 2019
	created := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)

	books := []model.Book{
		{
			Title:           "The Go Workshop",
			ISBN:            &isbn,
			PublicationYear: &year,
			Price:           39.9,
			StockQuantity:   12,
			IsAvailable:     true,
			Author:          &model.Author{Name: "Jane", LastName: "Doe"},
			Publisher:       &model.Publisher{Name: "Acme Press"},
			Genre:           &model.Genre{Name: "Fiction"},
			CreatedAt:       created,
		},
		{
			Title:     "Bare Minimum",
			CreatedAt: created,
		},
	}

	data, err := WriteCSV(BookHeaders, BookRows(books))
	if err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records := parseCSV(t, data)
	if len(records) != 3 {
		t.Fatalf("expected header plus two rows, got %d records", len(records))
	}

	full := records[1]
	if full[0] != "The Go Workshop" {
		t.Errorf("unexpected title %q", full[0])
	}
	if full[1] != "Jane Doe" {
		t.Errorf("unexpected author %q", full[1])
	}
	if full[6] != "39.90" {
		t.Errorf("expected price 39.90, got %q", full[6])
	}
	if full[8] != "Sí" {
		t.Errorf("expected Sí, got %q", full[8])
	}
	if full[9] != "2024-05-17" {
		t.Errorf("expected 2024-05-17, got %q", full[9])
	}

	bare := records[2]
	if bare[4] != "" || bare[5] != "" {
		t.Errorf("expected empty optional cells, got isbn %q year %q", bare[4], bare[5])
	}
	if bare[8] != "No" {
		t.Errorf("expected No for unavailable book, got %q", bare[8])
	}
}

func TestAuthorRows(t *testing.T) {
	birth := time.Date(1927, 3, 6, 0, 0, 0, 0, time.UTC)
	authors := []model.Author{
		{Name: "Gabriel", LastName: "García Márquez", BirthDate: &birth, Nationality: "Colombian"},
		{Name: "Jane", LastName: "Doe"},
	}

	data, err := WriteCSV(AuthorHeaders, AuthorRows(authors))
	if err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records := parseCSV(t, data)
	if records[1][2] != "1927-03-06" {
		t.Errorf("expected birth date 1927-03-06, got %q", records[1][2])
	}
	if records[2][2] != "" {
		t.Errorf("expected empty birth date, got %q", records[2][2])
	}
}
