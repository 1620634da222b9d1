package xiq

import "encoding/json"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type accountResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type pageEnvelope[T any] struct {
	Page       int `json:"page"`
	Count      int `json:"count"`
	TotalPages int `json:"total_pages"`
	TotalCount int `json:"total_count"`
	Data       []T `json:"data"`
}

type locationResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID int64  `json:"parent_id"`
}

type deviceResponse struct {
	ID           int64  `json:"id"`
	Hostname     string `json:"hostname"`
	Connected    bool   `json:"connected"`
	SerialNumber string `json:"serial_number"`
	ProductType  string `json:"product_type"`
	IPAddress    string `json:"ip_address"`
	LocationID   int64  `json:"location_id"`
}

type cliRequest struct {
	Devices cliDevices `json:"devices"`
	Clis    []string   `json:"clis"`
}

type cliDevices struct {
	IDs []int64 `json:"ids"`
}

type operationResponse struct {
	ID       string            `json:"id"`
	Metadata operationMetadata `json:"metadata"`
	Done     bool              `json:"done"`
	Response json.RawMessage   `json:"response"`
}

type operationMetadata struct {
	Status string `json:"status"`
}
