package dto

// BastCounterResponse reports the counter for one BAST year
type BastCounterResponse struct {
	Year         int   `json:"year"`
	Counter      int64 `json:"counter"`
	NextSequence int64 `json:"next_sequence"`
}

// ContractCounterRequest identifies a contract counter scope
type ContractCounterRequest struct {
	LocationCode    string `query:"location_code" validate:"required,oneof=621 622"`
	WorkType        string `query:"work_type" validate:"required,oneof=BM BM-KONS"`
	ProcurementType string `query:"procurement_type" validate:"required,oneof=SP SPK"`
	Year            int    `query:"year" validate:"required,min=1900,max=9999"`
}

// ContractCounterResponse reports the counter for one contract scope
type ContractCounterResponse struct {
	LocationCode    string `json:"location_code"`
	WorkType        string `json:"work_type"`
	ProcurementType string `json:"procurement_type"`
	Year            int    `json:"year"`
	Counter         int64  `json:"counter"`
	NextSequence    int64  `json:"next_sequence"`
}

// ExportFile is a rendered spreadsheet ready to be written to a response or disk
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}
