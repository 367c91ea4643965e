package shares

type ShareRequest struct {
	Mode       string         `json:"mode" binding:"required,oneof=compare judge research"`
	Title      string         `json:"title"`
	ResultData map[string]any `json:"result_data" binding:"required"`
}

type ShareResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
