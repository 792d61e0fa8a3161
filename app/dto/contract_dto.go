package dto

// GenerateContractRequest carries the category and metadata for a new contract number
type GenerateContractRequest struct {
	ProjectName     string  `json:"project_name" validate:"required,max=500"`
	ContractDate    string  `json:"contract_date" validate:"required,iso_date"`
	Location        string  `json:"location" validate:"required,oneof=621 622"`
	WorkType        string  `json:"work_type" validate:"required,oneof=BM BM-KONS"`
	ProcurementType string  `json:"procurement_type" validate:"required,oneof=SP SPK"`
	Budget          *string `json:"budget,omitempty" validate:"omitempty,max=100"`
	CompanyName     *string `json:"company_name,omitempty" validate:"omitempty,max=255"`
}

// GenerateContractResponse returns the minted number and the stored record
type GenerateContractResponse struct {
	Message              string `json:"message"`
	ID                   uint   `json:"id"`
	UUID                 string `json:"uuid"`
	ContractNumber       string `json:"contract_number"`
	Sequence             int64  `json:"sequence"`
	ProjectName          string `json:"project_name"`
	ContractDate         string `json:"contract_date"`
	LocationCode         string `json:"location_code"`
	WorkType             string `json:"work_type"`
	ProcurementType      string `json:"procurement_type"`
	RegistrationDatetime string `json:"registration_datetime"`
}

// UpdateContractRequest corrects an existing record
// The category may change; the sequence of the stored number is kept
type UpdateContractRequest struct {
	ID              uint    `json:"id" validate:"required,min=1"`
	ProjectName     string  `json:"project_name" validate:"required,max=500"`
	ContractDate    string  `json:"contract_date" validate:"required,iso_date"`
	Location        string  `json:"location" validate:"required,oneof=621 622"`
	WorkType        string  `json:"work_type" validate:"required,oneof=BM BM-KONS"`
	ProcurementType string  `json:"procurement_type" validate:"required,oneof=SP SPK"`
	Budget          *string `json:"budget,omitempty" validate:"omitempty,max=100"`
	CompanyName     *string `json:"company_name,omitempty" validate:"omitempty,max=255"`
}

// UpdateContractResponse returns the re-rendered number
type UpdateContractResponse struct {
	Message         string `json:"message"`
	ID              uint   `json:"id"`
	ContractNumber  string `json:"contract_number"`
	ProjectName     string `json:"project_name"`
	ContractDate    string `json:"contract_date"`
	LocationCode    string `json:"location_code"`
	WorkType        string `json:"work_type"`
	ProcurementType string `json:"procurement_type"`
}

// ListContractRecordsRequest filters the contract history
type ListContractRecordsRequest struct {
	Year            *int    `query:"year" validate:"omitempty,min=1900,max=9999"`
	LocationCode    *string `query:"location_code" validate:"omitempty,oneof=621 622"`
	WorkType        *string `query:"work_type" validate:"omitempty,oneof=BM BM-KONS"`
	ProcurementType *string `query:"procurement_type" validate:"omitempty,oneof=SP SPK"`
	Limit           int     `query:"limit" validate:"omitempty,min=1"`
	Offset          int     `query:"offset" validate:"omitempty,min=0"`
}

// ContractRecordItem represents a contract record row in listings
type ContractRecordItem struct {
	ID                   uint    `json:"id"`
	UUID                 string  `json:"uuid"`
	ContractNumber       string  `json:"contract_number"`
	ProjectName          string  `json:"project_name"`
	ContractDate         string  `json:"contract_date"`
	LocationCode         string  `json:"location_code"`
	WorkType             string  `json:"work_type"`
	ProcurementType      string  `json:"procurement_type"`
	Budget               *string `json:"budget,omitempty"`
	CompanyName          *string `json:"company_name,omitempty"`
	RegistrationDatetime string  `json:"registration_datetime"`
	UserID               *string `json:"user_id,omitempty"`
	CreatedAt            string  `json:"created_at"`
}

// ListContractRecordsResponse returns one page of contract records
type ListContractRecordsResponse struct {
	Records []ContractRecordItem `json:"records"`
	Total   int64                `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}
