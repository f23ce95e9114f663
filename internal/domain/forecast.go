package domain

// Forecast types mirror the ML service wire format, which is snake_case.

type ForecastRequest struct {
	ProductID string `json:"productId"`
	Days      int    `json:"days"`
}

type BatchForecastRequest struct {
	ProductIDs []string `json:"productIds"`
	Days       int      `json:"days"`
}

type ForecastPoint struct {
	Date              string   `json:"date"`
	PredictedQuantity float64  `json:"predicted_quantity"`
	ConfidenceLevel   float64  `json:"confidence_level"`
	LowerBound        *float64 `json:"lower_bound,omitempty"`
	UpperBound        *float64 `json:"upper_bound,omitempty"`
}

type Forecast struct {
	ProductID       string          `json:"product_id"`
	Predictions     []ForecastPoint `json:"predictions"`
	ModelUsed       string          `json:"model_used"`
	AccuracyScore   *float64        `json:"accuracy_score,omitempty"`
	GeneratedAt     string          `json:"generated_at"`
	Recommendations []string        `json:"recommendations"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
}

type ForecastBatch struct {
	Predictions   []Forecast `json:"predictions"`
	TotalProducts int        `json:"total_products"`
	GeneratedAt   string     `json:"generated_at"`
}

type ModelInfo struct {
	Name        string  `json:"name"`
	Version     string  `json:"version"`
	Accuracy    float64 `json:"accuracy"`
	LastTrained string  `json:"last_trained"`
	Status      string  `json:"status"`
}

type ModelCatalog struct {
	Models []ModelInfo `json:"models"`
	Total  int         `json:"total"`
}
