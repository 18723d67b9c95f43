package popup

// View is everything the controller needs from a front-end. Implementations
// must tolerate Elapsed being called from the timer goroutine.
type View interface {
	// SettingsVisible shows or hides the settings panel.
	SettingsVisible(visible bool)
	// Status shows a transient confirmation; "" clears it.
	Status(text string)
	// Trigger enables or disables the submit control and sets its label.
	Trigger(enabled bool, label string)
	// Elapsed shows the MM:SS wait time; "" hides the display.
	Elapsed(text string)
	// Alert presents a blocking error message.
	Alert(message string)
	// Open shows html in a new window. The HTML is rendered as returned by
	// the configured endpoint, without sanitization.
	Open(html string) error
}

// Form is the content of the popup's input fields.
type Form struct {
	APIKey   string
	APIURL   string
	ArxivURL string
}
