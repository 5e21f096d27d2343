package entity

const (
	ModuleName = "vip"
)

type DefaultResponse struct {
	Code    string `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewSuccessResponse() *DefaultResponse {
	return &DefaultResponse{
		Message: "success",
		Code:    "200",
		Status:  "success",
	}
}
