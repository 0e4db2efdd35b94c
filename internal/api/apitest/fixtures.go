package apitest

import "github.com/felixggj/happy-robot-fde/internal/models"

func FixtureMetrics() models.Metrics {
	return models.Metrics{
		TotalCalls:           12,
		ConversionRate:       41.67,
		AvgNegotiationRounds: 1.83,
		Outcomes:             map[string]int{"accepted": 5, "rejected": 4, "negotiating": 3},
		Sentiment:            map[string]int{"positive": 6, "neutral": 4, "negative": 2},
		TotalRevenue:         13250.5,
	}
}

func FixtureLoads() []models.Load {
	weight1, miles1 := 35000.0, 715.0
	weight2, miles2 := 45000.0, 887.0
	commodity1, commodity2 := "General Freight", "Steel Coils"
	pieces := 24
	notes := "Tarps required"
	return []models.Load{
		{
			LoadID:           "LOAD001",
			Origin:           "Chicago, IL",
			Destination:      "Atlanta, GA",
			PickupDatetime:   "2024-01-15 08:00",
			DeliveryDatetime: "2024-01-16 18:00",
			EquipmentType:    "Dry Van",
			LoadboardRate:    2500,
			Weight:           &weight1,
			CommodityType:    &commodity1,
			Miles:            &miles1,
			Score:            40,
		},
		{
			LoadID:           "LOAD002",
			Origin:           "Dallas, TX",
			Destination:      "Phoenix, AZ",
			PickupDatetime:   "2024-01-16T10:00:00Z",
			DeliveryDatetime: "2024-01-17T16:00:00Z",
			EquipmentType:    "Flatbed",
			LoadboardRate:    2800,
			Notes:            &notes,
			Weight:           &weight2,
			CommodityType:    &commodity2,
			NumOfPieces:      &pieces,
			Miles:            &miles2,
			Score:            10,
		},
		{
			LoadID:           "LOAD003",
			Origin:           "Miami, FL",
			Destination:      "New York, NY",
			PickupDatetime:   "2024-01-17 06:00",
			DeliveryDatetime: "2024-01-19 14:00",
			EquipmentType:    "Reefer",
			LoadboardRate:    3200,
			Score:            10,
		},
	}
}

func FixtureCalls() []models.CallSession {
	agreed := 2400.0
	return []models.CallSession{
		{
			SessionID:         "call_003",
			CarrierMC:         "MC-123456",
			CarrierName:       "Acme Freight LLC",
			LoadID:            "LOAD001",
			InitialRate:       2300,
			NegotiatedRate:    &agreed,
			NegotiationRounds: 2,
			Outcome:           models.OutcomeAccepted,
			Sentiment:         models.SentimentPositive,
			CallDuration:      245,
			CreatedAt:         "2024-01-15T14:05:00Z",
		},
		{
			SessionID:         "call_002",
			CarrierMC:         "MC-654321",
			CarrierName:       "Lone Star Haulers",
			LoadID:            "LOAD002",
			InitialRate:       2500,
			NegotiationRounds: 3,
			Outcome:           models.OutcomeRejected,
			Sentiment:         models.SentimentNegative,
			CallDuration:      410,
			CreatedAt:         "2024-01-15T11:30:00Z",
		},
		{
			SessionID:         "call_001",
			CarrierMC:         "MC-777001",
			CarrierName:       "Coastal Reefer Co",
			LoadID:            "LOAD003",
			InitialRate:       2900,
			NegotiationRounds: 1,
			Outcome:           models.OutcomeNegotiating,
			Sentiment:         models.SentimentNeutral,
			CallDuration:      95,
			CreatedAt:         "2024-01-14T16:45:00Z",
		},
	}
}
