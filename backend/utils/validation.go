package utils

import (
	"regexp"

	"github.com/ellavondegurechaff/progression/backend/models"
)

var (
	// ValidItemIDRegex validates purchasable item identifiers
	ValidItemIDRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_:.]+$`)

	// MaxEventDelta caps a single activity report
	MaxEventDelta = 1000
)

// ValidateQuestEventRequest fills the default delta and validates the request
func ValidateQuestEventRequest(req *models.QuestEventRequest) []models.ValidationError {
	var errs []models.ValidationError

	if req.QuestType == "" {
		errs = append(errs, models.ValidationError{Field: "quest_type", Description: "Quest type is required"})
	}
	if req.Delta == 0 {
		req.Delta = 1
	}
	if req.Delta < 0 || req.Delta > MaxEventDelta {
		errs = append(errs, models.ValidationError{Field: "delta", Description: "Delta must be between 1 and 1000"})
	}

	return errs
}

// ValidatePurchaseRequest validates a purchase request
func ValidatePurchaseRequest(req *models.PurchaseRequest) []models.ValidationError {
	var errs []models.ValidationError

	if req.ItemID == "" {
		errs = append(errs, models.ValidationError{Field: "item_id", Description: "Item ID is required"})
	} else if len(req.ItemID) > 64 || !ValidItemIDRegex.MatchString(req.ItemID) {
		errs = append(errs, models.ValidationError{Field: "item_id", Description: "Item ID contains invalid characters"})
	}
	if req.Price <= 0 {
		errs = append(errs, models.ValidationError{Field: "price", Description: "Price must be positive"})
	}

	return errs
}
