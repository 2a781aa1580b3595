package browser

// Importing this package registers both built-in drivers. Registration is
// cheap; the expensive parts (playwright.Run, Chrome exec) happen at driver
// construction and session acquire respectively.
func init() {
	RegisterDefaultDrivers()
}

// RegisterDefaultDrivers registers the chromedp and playwright drivers.
// Idempotent; tests that reset the registry can call it again.
func RegisterDefaultDrivers() {
	Register("chromedp", NewChromedpDriver)
	Register("playwright", NewPlaywrightDriver)
}
