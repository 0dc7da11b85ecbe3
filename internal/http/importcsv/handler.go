package importcsv

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/caixa/internal/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/importer"
)

type Handler struct {
	importSvc *importer.Service
	dst       importer.Catalog
}

func NewHandler(importSvc *importer.Service, dst importer.Catalog) *Handler {
	return &Handler{
		importSvc: importSvc,
		dst:       dst,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCatalog)
}

type productResponse struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	CategoryID int64  `json:"category_id"`
	Active     bool   `json:"active"`
}

type importResponse struct {
	Imported int               `json:"imported"`
	Products []productResponse `json:"products"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) importCatalog(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to parse form: " + err.Error()})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "file field is required"})
		return
	}
	defer file.Close()

	format := importer.Format(r.FormValue("format"))

	listings, err := h.importSvc.Import(format, file)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	categories, err := h.dst.ListCategories(r.Context())
	if err != nil {
		slog.Error("failed to list categories", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})

		return
	}

	products := importer.Resolve(listings, categories)

	if err := h.dst.SaveProducts(r.Context(), products); err != nil {
		slog.Error("failed to save imported products", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})

		return
	}

	slog.Info("catalog imported", "format", format, "products", len(products))

	writeJSON(w, http.StatusCreated, toImportResponse(products))
}

func toImportResponse(products []catalog.Product) importResponse {
	resp := importResponse{
		Imported: len(products),
		Products: make([]productResponse, 0, len(products)),
	}

	for _, p := range products {
		resp.Products = append(resp.Products, productResponse{
			Code:       p.Code,
			Name:       p.Name,
			Price:      p.Price,
			CategoryID: p.CategoryID,
			Active:     p.Active,
		})
	}

	return resp
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
