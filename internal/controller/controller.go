package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"partsrfq/internal/models"
)

type Service interface {
	Sweep(ctx context.Context, username string) ([]models.QuoteRequest, error)

	PublicOffer(ctx context.Context, token string) (models.QuoteRequest, error)
	SubmitOffer(ctx context.Context, token string, sub models.OfferSubmission) (models.QuoteRequest, error)

	GetQuoteRequests(ctx context.Context, username string, limit, offset int, supplierId string, statuses []models.QuoteRequestStatus) ([]models.QuoteRequest, error)
	GetQuoteRequest(ctx context.Context, username, requestId string) (models.QuoteRequest, error)
	AwardRequest(ctx context.Context, username, requestId string) (models.PurchaseOrder, error)
	CancelRequest(ctx context.Context, username, requestId string) (models.QuoteRequest, error)
	CancelLine(ctx context.Context, username, requestId, lineId string) (models.QuoteRequest, error)

	GetPurchaseOrders(ctx context.Context, username string, limit, offset int, supplierId string) ([]models.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, username, orderId string) (models.PurchaseOrder, error)
}

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

//// Procurement

// GET /api/ping
func (c *Controller) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

// POST /api/procurement/sweep
func (c *Controller) Sweep(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if len(username) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty username supplied")
		return
	}

	requests, err := c.service.Sweep(r.Context(), username)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, requests)
}

//// Supplier offer portal

// GET /offer/{token}
func (c *Controller) Offer(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if len(token) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty token supplied")
		return
	}

	req, err := c.service.PublicOffer(r.Context(), token)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, req)
}

// POST /offer/{token}
func (c *Controller) SubmitOffer(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if len(token) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty token supplied")
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	sub, err := ParseSubmitOfferReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := c.service.SubmitOffer(r.Context(), token, sub)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, req)
}

//// Quote requests

// GET /api/requests
func (c *Controller) GetRequests(w http.ResponseWriter, r *http.Request) {
	var statuses []models.QuoteRequestStatus

	query := r.URL.Query()

	username := query.Get("username")
	if len(username) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty username supplied")
		return
	}

	limit, err := c.getQueryInt(query, "limit")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'limit' query parameter: "+query.Get("limit"))
		return
	}

	offset, err := c.getQueryInt(query, "offset")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'offset' query parameter: "+query.Get("offset"))
		return
	}

	for _, str := range query["status"] {
		s := models.QuoteRequestStatus(str)
		if models.ValidQuoteRequestStatus(s) {
			statuses = append(statuses, s)
			continue
		}
		c.errorResponse(w, http.StatusBadRequest, "invalid status supplied: "+str)
		return
	}

	requests, err := c.service.GetQuoteRequests(r.Context(), username, limit, offset, query.Get("supplierId"), statuses)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, requests)
}

// GET /api/requests/{requestId}
func (c *Controller) GetRequest(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if len(username) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty username supplied")
		return
	}

	requestId := r.PathValue("requestId")
	if len(requestId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty requestId supplied")
		return
	}

	req, err := c.service.GetQuoteRequest(r.Context(), username, requestId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, req)
}

// PUT /api/requests/{requestId}/award
func (c *Controller) AwardRequest(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if len(username) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty username supplied")
		return
	}

	requestId := r.PathValue("requestId")
	if len(requestId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty requestId supplied")
		return
	}

	order, err := c.service.AwardRequest(r.Context(), username, requestId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, order)
}

// PUT /api/requests/{requestId}/cancel
func (c *Controller) CancelRequest(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if len(username) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty username supplied")
		return
	}

	requestId := r.PathValue("requestId")
	if len(requestId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty requestId supplied")
		return
	}

	req, err := c.service.CancelRequest(r.Context(), username, requestId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, req)
}

// PUT /api/requests/{requestId}/lines/{lineId}/cancel
func (c *Controller) CancelLine(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if len(username) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty username supplied")
		return
	}

	requestId := r.PathValue("requestId")
	if len(requestId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty requestId supplied")
		return
	}

	lineId := r.PathValue("lineId")
	if len(lineId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty lineId supplied")
		return
	}

	req, err := c.service.CancelLine(r.Context(), username, requestId, lineId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, req)
}

//// Purchase orders

// GET /api/orders
func (c *Controller) GetOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	username := query.Get("username")
	if len(username) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty username supplied")
		return
	}

	limit, err := c.getQueryInt(query, "limit")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'limit' query parameter: "+query.Get("limit"))
		return
	}

	offset, err := c.getQueryInt(query, "offset")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'offset' query parameter: "+query.Get("offset"))
		return
	}

	orders, err := c.service.GetPurchaseOrders(r.Context(), username, limit, offset, query.Get("supplierId"))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, orders)
}

// GET /api/orders/{orderId}
func (c *Controller) GetOrder(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if len(username) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty username supplied")
		return
	}

	orderId := r.PathValue("orderId")
	if len(orderId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty orderId supplied")
		return
	}

	order, err := c.service.GetPurchaseOrder(r.Context(), username, orderId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, order)
}

// Service

type ErrorResponse struct {
	Reason string `json:"reason"`
}

func (c *Controller) getQueryInt(query url.Values, key string) (int, error) {
	strs, ok := query[key]
	if ok && len(strs) > 0 {
		return strconv.Atoi(strs[0])
	}
	return 0, nil
}

func (c *Controller) errorResponse(w http.ResponseWriter, status int, text string) {
	w.WriteHeader(status)

	data, err := json.Marshal(ErrorResponse{Reason: text})
	if err != nil {
		log.Printf("controller.Controller.errorResponse: %s", err)
		return
	}

	_, err = w.Write(data)
	if err != nil {
		log.Printf("controller.Controller.errorResponse: %s", err)
		return
	}
}

func (c *Controller) serviceErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidUser):
		c.errorResponse(w, http.StatusUnauthorized, "user does not exist or has no rights for requested action")
	case errors.Is(err, models.ErrForeignLine):
		c.errorResponse(w, http.StatusForbidden, "quote line does not belong to this quote request")
	case errors.Is(err, models.ErrNoRequest):
		c.errorResponse(w, http.StatusNotFound, "requested quote request does not exist or unaccessible")
	case errors.Is(err, models.ErrNoLine):
		c.errorResponse(w, http.StatusNotFound, "requested quote line does not exist or unaccessible")
	case errors.Is(err, models.ErrNoOrder):
		c.errorResponse(w, http.StatusNotFound, "requested purchase order does not exist or unaccessible")
	case errors.Is(err, models.ErrNoToken):
		c.errorResponse(w, http.StatusNotFound, "no quote request matches the provided link")
	case errors.Is(err, models.ErrRequestProcessed):
		c.errorResponse(w, http.StatusGone, "quote request has already been submitted or closed")
	case errors.Is(err, models.ErrRequestNotReady):
		c.errorResponse(w, http.StatusConflict, "quote request has no submitted offer yet")
	case errors.Is(err, models.ErrRequestFinalized):
		c.errorResponse(w, http.StatusConflict, "quote request is already in a terminal state")
	case errors.Is(err, models.ErrLineFinalized):
		c.errorResponse(w, http.StatusConflict, "quote line is already in a terminal state")
	case errors.Is(err, models.ErrNoOfferedLines):
		c.errorResponse(w, http.StatusUnprocessableEntity, "quote request has no offered lines to award")
	case errors.Is(err, models.ErrValidation):
		c.errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		log.Println("controller:", err)
		c.errorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}

func (c *Controller) marshalResponse(w http.ResponseWriter, data any) {
	d, err := json.Marshal(data)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not marshal response data")
		return
	}

	_, err = w.Write(d)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not write response data")
		return
	}
}

func (c *Controller) readBody(src io.ReadCloser) ([]byte, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	src.Close()
	return data, nil
}
