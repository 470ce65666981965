package pipeline

// BatchStats summarizes one tenant's prediction batch. Reported at the
// end of each run so operators can spot systemic failures.
type BatchStats struct {
	TenantID        string `json:"tenant_id"`
	TotalProducts   int    `json:"total_products"`
	Seasonal        int    `json:"seasonal"`
	WeightedAverage int    `json:"weighted_average"`
	Skipped         int    `json:"skipped"`
	Failed          int    `json:"failed"`
	CriticalAlerts  int    `json:"critical_alerts"`
}
