package models

type Outcome string

const (
	OutcomeAccepted    Outcome = "accepted"
	OutcomeRejected    Outcome = "rejected"
	OutcomeNegotiating Outcome = "negotiating"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Metrics is the aggregate KPI snapshot computed server-side over call sessions.
type Metrics struct {
	TotalCalls           int            `json:"total_calls"`
	ConversionRate       float64        `json:"conversion_rate"`
	AvgNegotiationRounds float64        `json:"avg_negotiation_rounds"`
	Outcomes             map[string]int `json:"outcomes"`
	Sentiment            map[string]int `json:"sentiment"`
	TotalRevenue         float64        `json:"total_revenue"`
}

// Load is a freight listing. Nil optional fields mean "not applicable".
type Load struct {
	LoadID           string   `json:"load_id"`
	Origin           string   `json:"origin"`
	Destination      string   `json:"destination"`
	PickupDatetime   string   `json:"pickup_datetime"`
	DeliveryDatetime string   `json:"delivery_datetime"`
	EquipmentType    string   `json:"equipment_type"`
	LoadboardRate    float64  `json:"loadboard_rate"`
	Notes            *string  `json:"notes,omitempty"`
	Weight           *float64 `json:"weight,omitempty"`
	CommodityType    *string  `json:"commodity_type,omitempty"`
	NumOfPieces      *int     `json:"num_of_pieces,omitempty"`
	Miles            *float64 `json:"miles,omitempty"`
	Dimensions       *string  `json:"dimensions,omitempty"`
	Score            float64  `json:"score"`
}

// CallSession records one carrier negotiation call. NegotiatedRate is nil
// when no agreement was reached.
type CallSession struct {
	SessionID         string    `json:"session_id"`
	CarrierMC         string    `json:"carrier_mc"`
	CarrierName       string    `json:"carrier_name"`
	LoadID            string    `json:"load_id"`
	InitialRate       float64   `json:"initial_rate"`
	NegotiatedRate    *float64  `json:"negotiated_rate"`
	NegotiationRounds int       `json:"negotiation_rounds"`
	Outcome           Outcome   `json:"outcome"`
	Sentiment         Sentiment `json:"sentiment"`
	CallDuration      int       `json:"call_duration"`
	CreatedAt         string    `json:"created_at"`
}

// LoadFilter narrows a load search. Empty strings and a non-positive
// MaxResults are left off the query string.
type LoadFilter struct {
	Origin        string
	Destination   string
	EquipmentType string
	PickupFrom    string
	PickupTo      string
	MaxResults    int
}

type HealthStatus map[string]any

type CarrierVerification struct {
	Eligible  bool     `json:"eligible"`
	LegalName *string  `json:"legalName"`
	Status    *string  `json:"status"`
	RiskNotes []string `json:"riskNotes"`
}

type OfferEvaluationRequest struct {
	LoadID            string   `json:"load_id"`
	InitialRate       float64  `json:"initial_rate"`
	AgreedRate        *float64 `json:"agreed_rate,omitempty"`
	NegotiationRounds *int     `json:"negotiation_rounds,omitempty"`
}

type OfferEvaluation struct {
	Decision string   `json:"decision"`
	Rate     *float64 `json:"rate"`
	Floor    float64  `json:"floor"`
	Reason   string   `json:"reason"`
}
