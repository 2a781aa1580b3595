package server

// CreateCaptureRequest represents the payload required to capture a page.
// Zero-valued optional fields take the service defaults.
type CreateCaptureRequest struct {
	URL          string `json:"url" example:"https://example.com"`
	Width        int    `json:"width,omitempty" example:"1024"`
	Height       int    `json:"height,omitempty" example:"768"`
	DelaySeconds int    `json:"delaySeconds,omitempty" example:"2"`
	FullPage     bool   `json:"fullPage,omitempty" example:"false"`
}

// DriversResponse lists the browser drivers this build can run.
type DriversResponse struct {
	Drivers []string `json:"drivers" example:"chromedp,playwright"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
