package models

// QuestEventRequest reports activity for one quest type.
type QuestEventRequest struct {
	QuestType string `json:"quest_type"`
	// Delta defaults to 1 when omitted.
	Delta int `json:"delta"`
}

type PurchaseRequest struct {
	ItemID string `json:"item_id"`
	Price  int64  `json:"price"`
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}
