package dto

// GenerateBastRequest carries the metadata for a new BAST number
// BastDate is YYYY-MM-DD; the year and month of the number are taken from it
type GenerateBastRequest struct {
	ProjectName string  `json:"project_name" validate:"required,max=500"`
	BastDate    string  `json:"bast_date" validate:"required,iso_date"`
	Budget      *string `json:"budget,omitempty" validate:"omitempty,max=100"`
	CompanyName *string `json:"company_name,omitempty" validate:"omitempty,max=255"`
}

// GenerateBastResponse returns the minted number and the stored record
type GenerateBastResponse struct {
	Message              string `json:"message"`
	ID                   uint   `json:"id"`
	UUID                 string `json:"uuid"`
	BastNumber           string `json:"bast_number"`
	Sequence             int64  `json:"sequence"`
	ProjectName          string `json:"project_name"`
	BastDate             string `json:"bast_date"`
	RegistrationDatetime string `json:"registration_datetime"`
}

// UpdateBastRequest corrects an existing record; the sequence of its number is kept
type UpdateBastRequest struct {
	ID          uint    `json:"id" validate:"required,min=1"`
	ProjectName string  `json:"project_name" validate:"required,max=500"`
	BastDate    string  `json:"bast_date" validate:"required,iso_date"`
	Budget      *string `json:"budget,omitempty" validate:"omitempty,max=100"`
	CompanyName *string `json:"company_name,omitempty" validate:"omitempty,max=255"`
}

// UpdateBastResponse returns the re-rendered number
type UpdateBastResponse struct {
	Message     string `json:"message"`
	ID          uint   `json:"id"`
	BastNumber  string `json:"bast_number"`
	ProjectName string `json:"project_name"`
	BastDate    string `json:"bast_date"`
}

// ListBastRecordsRequest filters the BAST history
type ListBastRecordsRequest struct {
	Year   *int `query:"year" validate:"omitempty,min=1900,max=9999"`
	Limit  int  `query:"limit" validate:"omitempty,min=1"`
	Offset int  `query:"offset" validate:"omitempty,min=0"`
}

// BastRecordItem represents a BAST record row in listings
type BastRecordItem struct {
	ID                   uint    `json:"id"`
	UUID                 string  `json:"uuid"`
	BastNumber           string  `json:"bast_number"`
	ProjectName          string  `json:"project_name"`
	BastDate             string  `json:"bast_date"`
	Budget               *string `json:"budget,omitempty"`
	CompanyName          *string `json:"company_name,omitempty"`
	RegistrationDatetime string  `json:"registration_datetime"`
	UserID               *string `json:"user_id,omitempty"`
	CreatedAt            string  `json:"created_at"`
}

// ListBastRecordsResponse returns one page of BAST records
type ListBastRecordsResponse struct {
	Records []BastRecordItem `json:"records"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}
