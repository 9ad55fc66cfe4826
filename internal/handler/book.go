package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/booklist-service/internal/middleware"
	"github.com/iliyamo/booklist-service/internal/model"
	"github.com/iliyamo/booklist-service/internal/repository"
	"github.com/iliyamo/booklist-service/internal/service"
)

// BookHandler serves the public catalog reads and the token-gated update.
type BookHandler struct {
	Catalog *service.CatalogService
	Log     logrus.FieldLogger
}

func NewBookHandler(catalog *service.CatalogService, log logrus.FieldLogger) *BookHandler {
	return &BookHandler{Catalog: catalog, Log: log}
}

// bookPatchReq mirrors model.Book with every field optional. ISBN is
// accepted but ignored; the path decides which record changes. Price is
// kept raw because form-driven clients send it as a string.
type bookPatchReq struct {
	ISBN            *string         `json:"ISBN"`
	Title           *string         `json:"Title"`
	Author          *string         `json:"Author"`
	Genre           *string         `json:"Genre"`
	Publisher       *string         `json:"Publisher"`
	PublicationYear *string         `json:"PublicationYear"`
	Language        *string         `json:"Language"`
	Format          *string         `json:"Format"`
	Edition         *string         `json:"Edition"`
	Price           json.RawMessage `json:"Price"`
}

func (r bookPatchReq) toPatch() (model.BookPatch, error) {
	price, err := parsePrice(r.Price)
	if err != nil {
		return model.BookPatch{}, err
	}
	return model.BookPatch{
		Title:           r.Title,
		Author:          r.Author,
		Genre:           r.Genre,
		Publisher:       r.Publisher,
		PublicationYear: r.PublicationYear,
		Language:        r.Language,
		Format:          r.Format,
		Edition:         r.Edition,
		Price:           price,
	}, nil
}

// parsePrice accepts a JSON number or a numeric string. null and the
// empty string mean "not supplied".
func parsePrice(raw json.RawMessage) (*float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("price %q is not a number", s)
	}
	return &f, nil
}

// List returns every book.
func (h *BookHandler) List(c echo.Context) error {
	books, err := h.Catalog.ListAll(c.Request().Context())
	if err != nil {
		return h.fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *BookHandler) ByAuthor(c echo.Context) error {
	return h.byField(c, repository.FieldAuthor, c.Param("author"))
}

func (h *BookHandler) ByTitle(c echo.Context) error {
	return h.byField(c, repository.FieldTitle, c.Param("title"))
}

func (h *BookHandler) ByISBN(c echo.Context) error {
	return h.byField(c, repository.FieldISBN, c.Param("isbn"))
}

func (h *BookHandler) byField(c echo.Context, field repository.BookField, value string) error {
	books, err := h.Catalog.QueryByField(c.Request().Context(), field, value)
	if err != nil {
		return h.fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

// Get returns the single record an edit form is pre-filled from.
func (h *BookHandler) Get(c echo.Context) error {
	b, err := h.Catalog.GetByISBN(c.Request().Context(), c.Param("isbn"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Book not found"})
		}
		return h.fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Update merges the JSON body into the book at :isbn. The token is
// checked again by the catalog service, so the route stays safe even if
// it is mounted without JWTAuth.
func (h *BookHandler) Update(c echo.Context) error {
	token, _ := middleware.BearerToken(c)

	var req bookPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	patch, err := req.toPatch()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid Price"})
	}

	b, err := h.Catalog.UpdateByISBN(c.Request().Context(), c.Param("isbn"), patch, token)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, b)
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Access denied"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Book not found"})
	default:
		h.Log.WithError(err).WithField("isbn", c.Param("isbn")).Error("update book failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update book"})
	}
}

func (h *BookHandler) fetchFailed(c echo.Context, err error) error {
	h.Log.WithError(err).WithField("path", c.Request().URL.Path).Error("fetch books failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch books"})
}
