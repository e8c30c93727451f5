package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"catalog-service/internal/middleware"
	"catalog-service/internal/model"
	"catalog-service/internal/repository"
	"catalog-service/internal/validation"
	"catalog-service/pkg/config"
	"catalog-service/pkg/database"
	"catalog-service/pkg/jwtutil"
	"catalog-service/prometheus"
)

var initOnce sync.Once

// initGlobals wires the package-level JWT and metrics state exactly once so
// repeated test setups do not re-register Prometheus collectors.
func initGlobals() {
	initOnce.Do(func() {
		jwtutil.Initialize(&config.JWTConfig{
			SigningKey:      "test-signing-key",
			ExpirationHours: 1,
		})
		prometheus.InitMetrics(&config.Config{
			Metrics: config.MetricsConfig{Prefix: "catalogtest"},
		})
	})
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:testdb_" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

type testEnv struct {
	e          *echo.Echo
	db         *gorm.DB
	users      *repository.UserRepository
	books      *repository.BookRepository
	authors    *repository.AuthorRepository
	publishers *repository.PublisherRepository
	genres     *repository.GenreRepository
}

// setupTestEnv builds the full routing table against a fresh database.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	initGlobals()

	db := setupTestDB(t)
	users := repository.NewUserRepository(db)
	books := repository.NewBookRepository(db)
	authors := repository.NewAuthorRepository(db)
	publishers := repository.NewPublisherRepository(db)
	genres := repository.NewGenreRepository(db)

	upload := config.UploadConfig{Dir: t.TempDir(), MaxSizeMB: 5}

	authHandler := NewAuthHandler(users)
	bookHandler := NewBookHandler(books, authors, publishers, genres, upload)
	authorHandler := NewAuthorHandler(authors, books)
	publisherHandler := NewPublisherHandler(publishers, books)
	genreHandler := NewGenreHandler(genres, books)

	e := echo.New()
	e.Validator = validation.New()

	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/profile", authHandler.GetProfile, middleware.AuthMiddleware)

	api := e.Group("/api", middleware.AuthMiddleware)

	bookAPI := api.Group("/books")
	bookAPI.GET("", bookHandler.List)
	bookAPI.GET("/export/csv", bookHandler.ExportCSV)
	bookAPI.POST("", bookHandler.Create)
	bookAPI.POST("/upload-image/:id", bookHandler.UploadImage)
	bookAPI.GET("/:id", bookHandler.Get)
	bookAPI.PATCH("/:id", bookHandler.Update)
	bookAPI.DELETE("/:id", bookHandler.Delete)

	authorAPI := api.Group("/authors")
	authorAPI.GET("", authorHandler.List)
	authorAPI.GET("/export/csv", authorHandler.ExportCSV)
	authorAPI.POST("", authorHandler.Create)
	authorAPI.GET("/:id", authorHandler.Get)
	authorAPI.PUT("/:id", authorHandler.Update)
	authorAPI.DELETE("/:id", authorHandler.Delete)

	publisherAPI := api.Group("/publishers")
	publisherAPI.GET("", publisherHandler.List)
	publisherAPI.GET("/export/csv", publisherHandler.ExportCSV)
	publisherAPI.POST("", publisherHandler.Create)
	publisherAPI.GET("/:id", publisherHandler.Get)
	publisherAPI.PUT("/:id", publisherHandler.Update)
	publisherAPI.DELETE("/:id", publisherHandler.Delete)

	genreAPI := api.Group("/genres")
	genreAPI.GET("", genreHandler.List)
	genreAPI.GET("/export/csv", genreHandler.ExportCSV)
	genreAPI.POST("", genreHandler.Create)
	genreAPI.GET("/:id", genreHandler.Get)
	genreAPI.PUT("/:id", genreHandler.Update)
	genreAPI.DELETE("/:id", genreHandler.Delete)

	return &testEnv{
		e:          e,
		db:         db,
		users:      users,
		books:      books,
		authors:    authors,
		publishers: publishers,
		genres:     genres,
	}
}

// authToken creates an active user directly and returns a bearer token.
func (env *testEnv) authToken(t *testing.T) string {
	t.Helper()

	hash, err := model.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := model.User{
		Email:        "tester-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := env.users.Create(&user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

// request performs a JSON request against the test router.
func (env *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// seedRelations creates one author, publisher and genre for book tests.
func (env *testEnv) seedRelations(t *testing.T) (model.Author, model.Publisher, model.Genre) {
	t.Helper()

	author := model.Author{Name: "Jane", LastName: "Doe", IsActive: true}
	if err := env.authors.Create(&author); err != nil {
		t.Fatalf("failed to seed author: %v", err)
	}
	publisher := model.Publisher{Name: "Acme Press", Country: "Spain", IsActive: true}
	if err := env.publishers.Create(&publisher); err != nil {
		t.Fatalf("failed to seed publisher: %v", err)
	}
	genre := model.Genre{Name: "Fiction", IsActive: true}
	if err := env.genres.Create(&genre); err != nil {
		t.Fatalf("failed to seed genre: %v", err)
	}
	return author, publisher, genre
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}
