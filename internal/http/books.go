package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/covers"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/books"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/metadata"
)

// BooksController handles the catalog endpoints. The lookup client and
// cover cache are optional; their endpoints respond 503 when unset.
type BooksController struct {
	store      BookStore
	lookup     *metadata.OpenLibraryClient
	coverCache *covers.Cache
}

func NewBooksController(store BookStore, lookup *metadata.OpenLibraryClient, coverCache *covers.Cache) *BooksController {
	return &BooksController{store: store, lookup: lookup, coverCache: coverCache}
}

type createBookRequest struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	AccessionNo string `json:"accession_no" binding:"required"`
	ClassName   string `json:"class_name"`
	ISBN        string `json:"isbn"`
}

// CreateBook catalogues a new book. Accession numbers are unique.
func (controller *BooksController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title, author and accession_no are required")
		return
	}

	created, err := controller.store.CreateBook(&entities.Book{
		Title:       req.Title,
		Author:      req.Author,
		AccessionNo: req.AccessionNo,
		ClassName:   req.ClassName,
		ISBN:        req.ISBN,
	})
	if err != nil {
		if errors.Is(err, books.ErrMissingFields) {
			respondBadRequest(c, err.Error())
			return
		}
		if errors.Is(err, books.ErrDuplicateAccession) {
			respondError(c, http.StatusConflict, err.Error())
			return
		}
		respondInternalError(c, err, "create book")
		return
	}
	respondCreated(c, created)
}

// GetBook fetches a book by its numeric ID.
func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := controller.store.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// GetBookByAccessionNo looks a book up by its accession number.
func (controller *BooksController) GetBookByAccessionNo(c *gin.Context) {
	accessionNo := c.Param("accession_no")
	book, err := controller.store.GetBookByAccessionNo(accessionNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book by accession number")
		return
	}
	c.JSON(http.StatusOK, book)
}

// ListBooks returns the catalog, optionally filtered by search term or
// restricted to available copies.
func (controller *BooksController) ListBooks(c *gin.Context) {
	var (
		result []entities.Book
		err    error
	)
	switch {
	case c.Query("search") != "":
		result, err = controller.store.SearchBooks(c.Query("search"))
	case c.Query("available") == "true":
		result, err = controller.store.GetAvailableBooks()
	default:
		result, err = controller.store.GetAllBooks()
	}
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": result, "count": len(result)})
}

type updateBookRequest struct {
	Title     *string `json:"title"`
	Author    *string `json:"author"`
	ClassName *string `json:"class_name"`
	ISBN      *string `json:"isbn"`
}

// UpdateBook applies a partial update. Accession number and availability are
// not editable here; availability flips only through borrow and return.
func (controller *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Author != nil {
		updates["author"] = *req.Author
	}
	if req.ClassName != nil {
		updates["class_name"] = *req.ClassName
	}
	if req.ISBN != nil {
		updates["isbn"] = *req.ISBN
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no updatable fields provided")
		return
	}

	book, err := controller.store.UpdateBook(id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook removes a book. Refused when any borrow history exists.
func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := controller.store.DeleteBook(id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, books.ErrHasBorrowHistory):
			respondError(c, http.StatusConflict, err.Error())
		default:
			respondInternalError(c, err, "delete book")
		}
		return
	}
	respondSuccess(c, "book deleted")
}

// LookupISBN fetches catalog details for an ISBN from Open Library so
// the accession form can be pre-filled.
func (controller *BooksController) LookupISBN(c *gin.Context) {
	if controller.lookup == nil {
		respondError(c, http.StatusServiceUnavailable, "catalog lookup is not configured")
		return
	}

	isbn := metadata.NormalizeISBN(c.Query("isbn"))
	if isbn == "" {
		respondBadRequest(c, "a valid isbn query parameter is required")
		return
	}

	meta, err := controller.lookup.SearchByISBN(c.Request.Context(), isbn)
	if err != nil {
		if errors.Is(err, metadata.ErrISBNNotFound) {
			respondNotFound(c, "ISBN")
			return
		}
		respondInternalError(c, err, "isbn lookup")
		return
	}
	c.JSON(http.StatusOK, meta)
}

// GetBookCover serves the cover image for a book, fetched by ISBN and
// cached on disk.
func (controller *BooksController) GetBookCover(c *gin.Context) {
	if controller.coverCache == nil {
		respondError(c, http.StatusServiceUnavailable, "cover cache is not configured")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := controller.store.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	path, err := controller.coverCache.GetCover(book.ISBN)
	if err != nil {
		if errors.Is(err, covers.ErrNoCover) {
			respondNotFound(c, "cover")
			return
		}
		respondInternalError(c, err, "fetch cover")
		return
	}
	c.File(path)
}

// GetCatalogStats returns catalog totals.
func (controller *BooksController) GetCatalogStats(c *gin.Context) {
	total, available, err := controller.store.GetCatalogStats()
	if err != nil {
		respondInternalError(c, err, "catalog stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"available": available,
		"on_loan":   total - available,
	})
}
