package httptransport

import (
	"net/http"

	"doctemplates/internal/config"
	"doctemplates/internal/httpx"

	"github.com/gorilla/mux"
)

func Router(templateService TemplateServices, cfg *config.Config) *mux.Router {
	router := mux.NewRouter()

	h := NewTemplateHandlers(templateService, cfg.Storage.MaxUploadBytes())
	protect := httpx.Protected(cfg.JWT.Secret)
	write := func(f http.HandlerFunc) http.Handler {
		return protect(f)
	}

	api := router.PathPrefix(cfg.Server.APIPrefix).Subrouter()
	api.HandleFunc("/health", Health).Methods(http.MethodGet)

	templates := api.PathPrefix("/templates").Subrouter()
	templates.HandleFunc("", h.ListTemplates).Methods(http.MethodGet)
	templates.Handle("", write(h.CreateTemplate)).Methods(http.MethodPost)
	templates.Handle("/zip", write(h.ImportTemplate)).Methods(http.MethodPost)
	templates.HandleFunc("/{id}", h.GetTemplate).Methods(http.MethodGet)
	templates.Handle("/{id}", write(h.UpdateTemplate)).Methods(http.MethodPatch)
	templates.HandleFunc("/{id}/zip", h.ExportTemplate).Methods(http.MethodGet)

	versions := templates.PathPrefix("/{id}/versions").Subrouter()
	versions.HandleFunc("", h.ListVersions).Methods(http.MethodGet)
	versions.Handle("", write(h.CreateVersion)).Methods(http.MethodPost)
	versions.Handle("/zip", write(h.ImportVersion)).Methods(http.MethodPost)
	versions.HandleFunc("/{tag}", h.GetVersion).Methods(http.MethodGet)
	versions.Handle("/{tag}", write(h.UpdateVersion)).Methods(http.MethodPatch)
	versions.HandleFunc("/{tag}/docx", h.DownloadDocx).Methods(http.MethodGet)
	versions.HandleFunc("/{tag}/json", h.DownloadJSON).Methods(http.MethodGet)
	versions.HandleFunc("/{tag}/zip", h.ExportVersion).Methods(http.MethodGet)

	process := api.PathPrefix("/docx").Subrouter()
	process.HandleFunc("/{id}/validate", h.ValidatePayload).Methods(http.MethodPost)
	process.HandleFunc("/{id}/{tag}/validate", h.ValidatePayload).Methods(http.MethodPost)

	return router
}
