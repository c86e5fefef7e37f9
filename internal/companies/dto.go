package companies

// CreateCompanyRequest carries the fields accepted on creation.
type CreateCompanyRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=200"`
	Industry string `json:"industry" validate:"max=100"`
	Website  string `json:"website" validate:"omitempty,url"`
}

// UpdateCompanyRequest carries the fields accepted on update. Nil means
// leave unchanged.
type UpdateCompanyRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=200"`
	Industry *string `json:"industry" validate:"omitempty,max=100"`
	Website  *string `json:"website" validate:"omitempty,url"`
}

// ListFilters narrows and pages company listings.
type ListFilters struct {
	Search   string
	IsActive *bool
	Page     int
	PerPage  int
}
