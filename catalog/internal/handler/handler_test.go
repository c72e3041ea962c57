package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spiritus-lectoris/catalog-service/catalog/internal/errs"
	"github.com/spiritus-lectoris/catalog-service/catalog/internal/handler"
	"github.com/spiritus-lectoris/catalog-service/catalog/internal/model"
	service_mocks "github.com/spiritus-lectoris/catalog-service/catalog/internal/handler/mocks"
	"github.com/spiritus-lectoris/catalog-service/pkg/validate"
)

const sessionCookieName = "catalog_session"

var (
	t1 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 = time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
)

func newTestHandler(t *testing.T) (*handler.Handler, *service_mocks.MockCatalogService, *service_mocks.MockAuthService) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	catalogSvc := service_mocks.NewMockCatalogService(c)
	authSvc := service_mocks.NewMockAuthService(c)
	log := zap.NewExample().Named("test")
	h := handler.New(catalogSvc, authSvc, handler.Config{SessionTTL: 24 * time.Hour}, log)
	return h, catalogSvc, authSvc
}

func newEcho(log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(log)
	return e
}

func TestHandler_ListBooks(t *testing.T) {
	t.Parallel()
	type input struct {
		search string
		cookie string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService, inp input)

	books := []model.Book{
		{ID: 2, Name: "O Alquimista", Author: "Paulo Coelho", ISBN: "978-0061122415", CreatedAt: t2, UpdatedAt: t2},
		{ID: 1, Name: "Dom Casmurro", Author: "Machado de Assis", ISBN: "978-8535910663", CreatedAt: t1, UpdatedAt: t1},
	}

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService, inp input) {
				auth.EXPECT().IsAuthenticated(context.Background(), inp.cookie).Return(true, nil)
				svc.EXPECT().ListBooks(context.Background(), inp.search).Return(books, nil)
			},
			input: input{search: "", cookie: "tok-1"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[{"id":2,"name":"O Alquimista","author":"Paulo Coelho","isbn":"978-0061122415","createdAt":"2024-05-02T10:00:00Z","updatedAt":"2024-05-02T10:00:00Z"},{"id":1,"name":"Dom Casmurro","author":"Machado de Assis","isbn":"978-8535910663","createdAt":"2024-05-01T10:00:00Z","updatedAt":"2024-05-01T10:00:00Z"}]`,
			},
		},
		{
			name: "ok. search narrows",
			mockBehavior: func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService, inp input) {
				auth.EXPECT().IsAuthenticated(context.Background(), inp.cookie).Return(true, nil)
				svc.EXPECT().ListBooks(context.Background(), inp.search).Return(books[:1], nil)
			},
			input: input{search: "alquimista", cookie: "tok-1"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[{"id":2,"name":"O Alquimista","author":"Paulo Coelho","isbn":"978-0061122415","createdAt":"2024-05-02T10:00:00Z","updatedAt":"2024-05-02T10:00:00Z"}]`,
			},
		},
		{
			name:         "err. no session cookie",
			mockBehavior: func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService, inp input) {},
			input:        input{search: ""},
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"Authentication required"}`,
			},
		},
		{
			name: "err. stale session",
			mockBehavior: func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService, inp input) {
				auth.EXPECT().IsAuthenticated(context.Background(), inp.cookie).Return(false, nil)
			},
			input: input{search: "", cookie: "tok-stale"},
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"Authentication required"}`,
			},
		},
		{
			name: "err. internal",
			mockBehavior: func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService, inp input) {
				auth.EXPECT().IsAuthenticated(context.Background(), inp.cookie).Return(true, nil)
				svc.EXPECT().ListBooks(context.Background(), inp.search).Return(nil, errors.New("db internal"))
			},
			input: input{search: "", cookie: "tok-1"},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"Internal Server Error"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, svc, auth := newTestHandler(t)
			e := newEcho(zap.NewExample())
			e.GET("/api/books", h.ListBooks, h.SessionAuth())

			r := httptest.NewRequest(http.MethodGet, "/api/books?search="+tt.input.search, http.NoBody)
			if tt.input.cookie != "" {
				r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: tt.input.cookie})
			}
			w := httptest.NewRecorder()

			tt.mockBehavior(svc, auth, tt.input)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CreateBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"name":"O Alquimista","author":"Paulo Coelho","isbn":"978-0061122415"}`,
			mockBehavior: func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService) {
				auth.EXPECT().IsAuthenticated(context.Background(), "tok-1").Return(true, nil)
				svc.EXPECT().
					CreateBook(context.Background(), model.CreateBookRequest{
						Name:   "O Alquimista",
						Author: "Paulo Coelho",
						ISBN:   "978-0061122415",
					}).
					Return(model.Book{
						ID:        1,
						Name:      "O Alquimista",
						Author:    "Paulo Coelho",
						ISBN:      "978-0061122415",
						CreatedAt: t1,
						UpdatedAt: t1,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":1,"name":"O Alquimista","author":"Paulo Coelho","isbn":"978-0061122415","createdAt":"2024-05-01T10:00:00Z","updatedAt":"2024-05-01T10:00:00Z"}`,
			},
		},
		{
			name: "err. isbn pattern",
			body: `{"name":"O Alquimista","author":"Paulo Coelho","isbn":"abc"}`,
			mockBehavior: func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService) {
				auth.EXPECT().IsAuthenticated(context.Background(), "tok-1").Return(true, nil)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Validation failed","errors":{"isbn":"isbn must contain only digits and hyphens (10-17 characters)"}}`,
			},
		},
		{
			name: "err. empty name",
			body: `{"name":"","author":"Paulo Coelho","isbn":"978-0061122415"}`,
			mockBehavior: func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService) {
				auth.EXPECT().IsAuthenticated(context.Background(), "tok-1").Return(true, nil)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Validation failed","errors":{"name":"name is required"}}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, svc, auth := newTestHandler(t)
			e := newEcho(zap.NewExample())
			e.POST("/api/books", h.CreateBook, h.SessionAuth())

			r := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "tok-1"})
			w := httptest.NewRecorder()

			tt.mockBehavior(svc, auth)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService)

	var tests = []struct {
		name         string
		target       string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "ok",
			target: "/api/books/1",
			mockBehavior: func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService) {
				auth.EXPECT().IsAuthenticated(context.Background(), "tok-1").Return(true, nil)
				svc.EXPECT().
					GetBook(context.Background(), 1).
					Return(model.Book{
						ID:        1,
						Name:      "O Alquimista",
						Author:    "Paulo Coelho",
						ISBN:      "978-0061122415",
						CreatedAt: t1,
						UpdatedAt: t1,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":1,"name":"O Alquimista","author":"Paulo Coelho","isbn":"978-0061122415","createdAt":"2024-05-01T10:00:00Z","updatedAt":"2024-05-01T10:00:00Z"}`,
			},
		},
		{
			name:   "err. not found",
			target: "/api/books/99",
			mockBehavior: func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService) {
				auth.EXPECT().IsAuthenticated(context.Background(), "tok-1").Return(true, nil)
				svc.EXPECT().
					GetBook(context.Background(), 99).
					Return(model.Book{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"Book not found"}`,
			},
		},
		{
			name:   "err. invalid id",
			target: "/api/books/abc",
			mockBehavior: func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService) {
				auth.EXPECT().IsAuthenticated(context.Background(), "tok-1").Return(true, nil)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"invalid book id"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, svc, auth := newTestHandler(t)
			e := newEcho(zap.NewExample())
			e.GET("/api/books/:id", h.GetBook, h.SessionAuth())

			r := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "tok-1"})
			w := httptest.NewRecorder()

			tt.mockBehavior(svc, auth)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_UpdateBook(t *testing.T) {
	t.Parallel()
	name := "Updated"

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService)

	var tests = []struct {
		name         string
		target       string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "ok. partial patch",
			target: "/api/books/1",
			body:   `{"name":"Updated"}`,
			mockBehavior: func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService) {
				auth.EXPECT().IsAuthenticated(context.Background(), "tok-1").Return(true, nil)
				svc.EXPECT().
					UpdateBook(context.Background(), 1, model.UpdateBookRequest{Name: &name}).
					Return(model.Book{
						ID:        1,
						Name:      "Updated",
						Author:    "Paulo Coelho",
						ISBN:      "978-0061122415",
						CreatedAt: t1,
						UpdatedAt: t2,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":1,"name":"Updated","author":"Paulo Coelho","isbn":"978-0061122415","createdAt":"2024-05-01T10:00:00Z","updatedAt":"2024-05-02T10:00:00Z"}`,
			},
		},
		{
			name:   "err. not found",
			target: "/api/books/99",
			body:   `{"name":"Updated"}`,
			mockBehavior: func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService) {
				auth.EXPECT().IsAuthenticated(context.Background(), "tok-1").Return(true, nil)
				svc.EXPECT().
					UpdateBook(context.Background(), 99, model.UpdateBookRequest{Name: &name}).
					Return(model.Book{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"Book not found"}`,
			},
		},
		{
			name:   "err. invalid id",
			target: "/api/books/abc",
			body:   `{"name":"Updated"}`,
			mockBehavior: func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService) {
				auth.EXPECT().IsAuthenticated(context.Background(), "tok-1").Return(true, nil)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"invalid book id"}`,
			},
		},
		{
			name:   "err. isbn pattern",
			target: "/api/books/1",
			body:   `{"isbn":"abc"}`,
			mockBehavior: func(svc *service_mocks.MockCatalogService, auth *service_mocks.MockAuthService) {
				auth.EXPECT().IsAuthenticated(context.Background(), "tok-1").Return(true, nil)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Validation failed","errors":{"isbn":"isbn must contain only digits and hyphens (10-17 characters)"}}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, svc, auth := newTestHandler(t)
			e := newEcho(zap.NewExample())
			e.PUT("/api/books/:id", h.UpdateBook, h.SessionAuth())

			r := httptest.NewRequest(http.MethodPut, tt.target, strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "tok-1"})
			w := httptest.NewRecorder()

			tt.mockBehavior(svc, auth)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_DeleteBook(t *testing.T) {
	t.Parallel()

	t.Run("ok then not found", func(t *testing.T) {
		t.Parallel()
		h, svc, auth := newTestHandler(t)
		e := newEcho(zap.NewExample())
		e.DELETE("/api/books/:id", h.DeleteBook, h.SessionAuth())

		auth.EXPECT().IsAuthenticated(context.Background(), "tok-1").Return(true, nil).Times(2)
		gomock.InOrder(
			svc.EXPECT().DeleteBook(context.Background(), 1).Return(nil),
			svc.EXPECT().DeleteBook(context.Background(), 1).Return(errs.ErrNotFound),
		)

		r := httptest.NewRequest(http.MethodDelete, "/api/books/1", http.NoBody)
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "tok-1"})
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)
		require.Equal(t, http.StatusNoContent, w.Code)

		r = httptest.NewRequest(http.MethodDelete, "/api/books/1", http.NoBody)
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "tok-1"})
		w = httptest.NewRecorder()
		e.ServeHTTP(w, r)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, `{"message":"Book not found"}`, strings.Trim(w.Body.String(), "\n"))
	})
}

func TestHandler_ExportBooks(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		h, svc, auth := newTestHandler(t)
		e := newEcho(zap.NewExample())
		e.GET("/api/books/export", h.ExportBooks, h.SessionAuth())

		csvBody := "id,name,author,isbn,createdAt,updatedAt\n" +
			"1,A,X,1111111111,2024-05-01T10:00:00Z,2024-05-01T10:00:00Z\n"
		auth.EXPECT().IsAuthenticated(context.Background(), "tok-1").Return(true, nil)
		svc.EXPECT().ExportCSV(context.Background(), gomock.Any()).DoAndReturn(
			func(_ context.Context, w io.Writer) error {
				_, err := w.Write([]byte(csvBody))
				return err
			})

		r := httptest.NewRequest(http.MethodGet, "/api/books/export", http.NoBody)
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "tok-1"})
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "text/csv", w.Header().Get(echo.HeaderContentType))
		require.Contains(t, w.Header().Get(echo.HeaderContentDisposition), "books.csv")
		require.Equal(t, csvBody, w.Body.String())
	})

	t.Run("err. storage failure stays a 500", func(t *testing.T) {
		t.Parallel()
		h, svc, auth := newTestHandler(t)
		e := newEcho(zap.NewExample())
		e.GET("/api/books/export", h.ExportBooks, h.SessionAuth())

		auth.EXPECT().IsAuthenticated(context.Background(), "tok-1").Return(true, nil)
		svc.EXPECT().ExportCSV(context.Background(), gomock.Any()).Return(errors.New("db internal"))

		r := httptest.NewRequest(http.MethodGet, "/api/books/export", http.NoBody)
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "tok-1"})
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Equal(t, `{"message":"Internal Server Error"}`, strings.Trim(w.Body.String(), "\n"))
	})
}

func TestHandler_Stats(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		h, svc, auth := newTestHandler(t)
		e := newEcho(zap.NewExample())
		e.GET("/api/books/stats", h.Stats, h.SessionAuth())

		auth.EXPECT().IsAuthenticated(context.Background(), "tok-1").Return(true, nil)
		svc.EXPECT().Stats(context.Background()).Return(model.Stats{
			TotalBooks:    4,
			UniqueAuthors: 2,
			TodayBooks:    1,
			UniqueISBNs:   4,
			FrequentAuthors: []model.AuthorCount{
				{Author: "X", Count: 3},
				{Author: "Y", Count: 1},
			},
			RecentBooks: []model.Book{
				{ID: 2, Name: "B", Author: "X", ISBN: "1111111111", CreatedAt: t2, UpdatedAt: t2},
			},
		}, nil)

		r := httptest.NewRequest(http.MethodGet, "/api/books/stats", http.NoBody)
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "tok-1"})
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t,
			`{"totalBooks":4,"uniqueAuthors":2,"todayBooks":1,"uniqueISBNs":4,"frequentAuthors":[{"author":"X","count":3},{"author":"Y","count":1}],"recentBooks":[{"id":2,"name":"B","author":"X","isbn":"1111111111","createdAt":"2024-05-02T10:00:00Z","updatedAt":"2024-05-02T10:00:00Z"}]}`,
			strings.Trim(w.Body.String(), "\n"))
	})

	t.Run("err. unauthenticated", func(t *testing.T) {
		t.Parallel()
		h, _, _ := newTestHandler(t)
		e := newEcho(zap.NewExample())
		e.GET("/api/books/stats", h.Stats, h.SessionAuth())

		r := httptest.NewRequest(http.MethodGet, "/api/books/stats", http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
