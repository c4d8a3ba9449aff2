package dashboard

// Stats es el contrato de los gráficos del dashboard.
type Stats struct {
	Totals        Totals         `json:"totals"`
	Prescriptions map[string]int `json:"prescriptionsByStatus"`
	LabOrders     map[string]int `json:"labOrdersByStatus"`
	VisitsByMonth []MonthCount   `json:"visitsByMonth"`
}

type Totals struct {
	Clients           int `json:"clients"`
	Programs          int `json:"programs"`
	ActiveEnrollments int `json:"activeEnrollments"`
}

// MonthCount: Month en formato YYYY-MM.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}
