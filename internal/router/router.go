package router

import (
	"net/http"

	"partsrfq/internal/controller"
)

func NewRouter(c *controller.Controller) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", c.Ping)
	mux.HandleFunc("POST /api/procurement/sweep", c.Sweep)
	mux.HandleFunc("GET /api/requests", c.GetRequests)
	mux.HandleFunc("GET /api/requests/{requestId}", c.GetRequest)
	mux.HandleFunc("PUT /api/requests/{requestId}/award", c.AwardRequest)
	mux.HandleFunc("PUT /api/requests/{requestId}/cancel", c.CancelRequest)
	mux.HandleFunc("PUT /api/requests/{requestId}/lines/{lineId}/cancel", c.CancelLine)
	mux.HandleFunc("GET /api/orders", c.GetOrders)
	mux.HandleFunc("GET /api/orders/{orderId}", c.GetOrder)
	mux.HandleFunc("GET /offer/{token}", c.Offer)
	mux.HandleFunc("POST /offer/{token}", c.SubmitOffer)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("page not found"))
	})

	cors := http.NewServeMux()
	cors.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Accept", "*/*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
		} else {
			mux.ServeHTTP(w, r)
		}
	})

	return cors
}
