package telegram

// apiResponse Bot API 统一响应外层
type apiResponse struct {
	Ok          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

type getMeResponse struct {
	apiResponse
	Result User `json:"result"`
}

type Message struct {
	MessageID int64 `json:"message_id"`
	Date      int64 `json:"date"`
}

type sendMessageResponse struct {
	apiResponse
	Result Message `json:"result"`
}

// sendMessageRequest sendMessage 请求体
type sendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}
