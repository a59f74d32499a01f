package handlers

import (
	_ "embed"
	"net/http"

	"github.com/gorilla/mux"
)

//go:embed web/index.html
var indexPage []byte

type UIHandler struct{}

func NewUIHandler() *UIHandler {
	return &UIHandler{}
}

func (h *UIHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Index).Methods("GET")
}

func (h *UIHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexPage)
}
