package request

type PublishPanelRequest struct {
	Message string `json:"message"`
}

type PausePanelRequest struct {
	Message string `json:"message"`
	// ReopenAfterMinutes, when set, arms the auto-reopen timer.
	ReopenAfterMinutes *int `json:"reopen_after_minutes,omitempty" binding:"omitempty,min=1"`
}
