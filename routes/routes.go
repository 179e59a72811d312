package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/swaggo/swag"

	_ "p9e.in/procurement/docs"
	"p9e.in/procurement/config"
	"p9e.in/procurement/handlers"
	"p9e.in/procurement/middleware"
	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/lifecycle"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(e *handlers.Engine) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Metrics)

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/healthz", handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/swagger/doc.json", handleSwagger).Methods("GET")

	public := r.PathPrefix("/api/v1").Subrouter()
	public.HandleFunc("/auth/register", e.Register).Methods("POST")
	public.HandleFunc("/auth/login", e.Login).Methods("POST")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/me", e.Me).Methods("GET")
	api.HandleFunc("/summary", e.Summary).Methods("GET")
	api.HandleFunc("/companies", e.ListCompanies).Methods("GET")

	registerDocumentRoutes(api, e)

	return cors.New(cors.Options{
		AllowedOrigins:   config.App.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
	}).Handler(r)
}

// writes pairs the create and update handlers of one document type
type writes struct {
	create http.HandlerFunc
	update http.HandlerFunc
}

func registerDocumentRoutes(api *mux.Router, e *handlers.Engine) {
	collection[models.RFQ](api, e, "/rfqs", lifecycle.RFQ, writes{e.CreateRFQ, e.UpdateRFQ})
	collection[models.Quotation](api, e, "/quotations", lifecycle.Quotation, writes{e.CreateQuotation, e.UpdateQuotation})
	collection[models.Contract](api, e, "/contracts", lifecycle.Contract, writes{e.CreateContract, e.UpdateContract})
	collection[models.PurchaseOrder](api, e, "/purchase-orders", lifecycle.PurchaseOrder, writes{e.CreatePurchaseOrder, e.UpdatePurchaseOrder})
	collection[models.SalesOrder](api, e, "/sales-orders", lifecycle.SalesOrder, writes{e.CreateSalesOrder, e.UpdateSalesOrder})
	collection[models.DeliveryNote](api, e, "/delivery-notes", lifecycle.DeliveryNote, writes{e.CreateDeliveryNote, e.UpdateDeliveryNote})
	collection[models.PackingList](api, e, "/packing-lists", lifecycle.PackingList, writes{e.CreatePackingList, e.UpdatePackingList})
	collection[models.Invoice](api, e, "/invoices", lifecycle.Invoice, writes{e.CreateInvoice, e.UpdateInvoice})

	api.HandleFunc("/purchase-orders/{id}/deliverable", e.Deliverable).Methods("GET")
}

// collection mounts the routes every document type shares. Creation is
// limited to companies on the issuing side.
func collection[T any, P interface {
	*T
	models.Document
}](api *mux.Router, e *handlers.Engine, path string, t lifecycle.DocType, w writes) {
	issuer := lifecycle.IssuerSide(t)

	api.HandleFunc(path, handlers.List[T, P](e)).Methods("GET")
	api.Handle(path, middleware.RequireCompanyType(issuer, w.create)).Methods("POST")
	api.HandleFunc(path+"/{id}", handlers.Get[T, P](e)).Methods("GET")
	api.HandleFunc(path+"/{id}", w.update).Methods("PUT")
	api.HandleFunc(path+"/{id}", handlers.Delete[T, P](e)).Methods("DELETE")
	api.HandleFunc(path+"/{id}/status", handlers.Transition[T, P](e)).Methods("PATCH")
	api.HandleFunc(path+"/{id}/transitions", handlers.History[T, P](e)).Methods("GET")
	api.HandleFunc(path+"/{id}/export", handlers.Export[T, P](e)).Methods("GET")
	api.HandleFunc(path+"/{id}/archive", handlers.Archive[T, P](e)).Methods("POST")
	api.HandleFunc(path+"/{id}/archive/{file}", handlers.ArchivedFile[T, P](e)).Methods("GET")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleSwagger(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		http.Error(w, "api documentation unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}
