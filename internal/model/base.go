package model

// ListParams are the list pipeline query parameters shared by every
// collection endpoint. Categorical filters are read separately by field name.
type ListParams struct {
	Search   string `json:"search" form:"search"`
	Page     int    `json:"page" form:"page"`
	PageSize int    `json:"page_size" form:"page_size"`
	ShowAll  bool   `json:"show_all" form:"show_all"`
}

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}
