package controller

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"partsrfq/internal/models"
)

// Offer submission request

const deliveryDateLayout = "2006-01-02"

type SubmitOfferReq struct {
	DeliveryDate string         `json:"deliveryDate"`
	Lines        []OfferLineReq `json:"lines"`
}

type OfferLineReq struct {
	LineId    string           `json:"lineId"`
	Available bool             `json:"available"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
	Quantity  *int             `json:"quantity"`
}

func ParseSubmitOfferReq(data []byte) (models.OfferSubmission, error) {
	req := SubmitOfferReq{}
	sub := models.OfferSubmission{}

	err := json.Unmarshal(data, &req)
	if err != nil {
		return sub, fmt.Errorf("could not parse json: %w", err)
	}

	sub.DeliveryDate, err = time.Parse(deliveryDateLayout, req.DeliveryDate)
	if err != nil {
		return sub, fmt.Errorf("invalid deliveryDate supplied: %s, expected format %s", req.DeliveryDate, deliveryDateLayout)
	}

	if len(req.Lines) == 0 {
		return sub, fmt.Errorf("no lines supplied")
	}

	for _, line := range req.Lines {
		if len(line.LineId) == 0 {
			return sub, fmt.Errorf("empty lineId supplied")
		}

		offer := models.OfferLine{
			LineId:    line.LineId,
			Available: line.Available,
			Quantity:  line.Quantity,
		}
		if line.UnitPrice != nil {
			offer.UnitPrice = decimal.NewNullDecimal(*line.UnitPrice)
		}
		sub.Lines = append(sub.Lines, offer)
	}

	return sub, nil
}
