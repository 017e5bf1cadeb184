package storage

// Row types mirroring the tables in migrations/.
type (
	Building struct {
		ID          string
		Position    int64
		OrgID       string
		Name        string
		City        string
		Address     string
		TotalUnits  int64
		ReserveFund int64
		Manager     string
	}

	Resident struct {
		BuildingID  string
		ID          string
		Position    int64
		Unit        string
		Name        string
		Phone       string
		Floor       int64
		Type        string
		Since       string
		PaidThrough string
	}

	Expense struct {
		Seq         int64
		BuildingID  string
		ID          string
		Date        string
		Category    string
		Vendor      string
		Amount      int64
		Description string
		HasInvoice  bool
	}

	CategoryShare struct {
		BuildingID string
		Position   int64
		Category   string
		Amount     int64
		Percentage int64
	}

	Payment struct {
		Seq           int64
		ID            string
		BuildingID    string
		ResidentID    string
		Amount        int64
		MonthsCovered int64
		Method        string
		Date          string
		Reference     string
		PaidThrough   string
	}
)
