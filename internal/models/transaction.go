package models

type BrandRecord struct {
	Brand     string  `json:"brand"`
	Value     float64 `json:"value"`
	PctChange float64 `json:"pct_change"`
}

type TransactionTrend struct {
	Date      string  `json:"date"`
	Volume    int     `json:"volume"`
	PesoValue float64 `json:"peso_value"`
	Duration  int     `json:"duration"`
	Units     int     `json:"units"`
	Brand     string  `json:"brand"`
	Category  string  `json:"category"`
}

type ConsumerProfile struct {
	Gender   string `json:"gender"`
	Age      int    `json:"age"`
	Location string `json:"location"`
}

type BasketRecord struct {
	BasketID   string  `json:"basket_id"`
	Brand      string  `json:"brand"`
	ItemCount  int     `json:"item_count"`
	TotalValue float64 `json:"total_value"`
}

type SubstitutionPair struct {
	Original     string `json:"original"`
	Substitution string `json:"substitution"`
	Count        int    `json:"count"`
	Reason       string `json:"reason"`
}

type BrandTrend struct {
	Brand     string  `json:"brand"`
	Category  string  `json:"category"`
	Value     float64 `json:"value"`
	PctChange float64 `json:"pct_change"`
}
