package dto

type CreateDriverRequest struct {
	DisplayName   string `json:"display_name" validate:"required,notblank,max=100"`
	Phone         string `json:"phone" validate:"required,phone"`
	LicenseNumber string `json:"license_number" validate:"required,notblank,max=32"`
}

type UpdateDriverRequest struct {
	DisplayName   *string `json:"display_name" validate:"omitempty,notblank,max=100"`
	Phone         *string `json:"phone" validate:"omitempty,phone"`
	LicenseNumber *string `json:"license_number" validate:"omitempty,notblank,max=32"`
	Available     *bool   `json:"available"`
}

type CreateCustomerRequest struct {
	DisplayName string `json:"display_name" validate:"required,notblank,max=100"`
	Phone       string `json:"phone" validate:"required,phone"`
	HomeAddress string `json:"home_address" validate:"required,notblank,max=255"`
}

type UpdateCustomerRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,notblank,max=100"`
	Phone       *string `json:"phone" validate:"omitempty,phone"`
	HomeAddress *string `json:"home_address" validate:"omitempty,notblank,max=255"`
}
