package types

// ActivityType discriminates activity events in persisted batches.
// The string values are the on-disk JSON contract.
type ActivityType string

// Activity type constants.
const (
	ActivityKeyboardInput   ActivityType = "KeyboardInput"
	ActivityMouseClick      ActivityType = "MouseClick"
	ActivityMouseScroll     ActivityType = "MouseScroll"
	ActivityWindowFocus     ActivityType = "WindowFocus"
	ActivityBrowserActivity ActivityType = "BrowserActivity"
)

// Activity is one coalesced activity event.
type Activity struct {
	// Timestamp is the flush time in RFC 3339 format.
	Timestamp string `json:"timestamp"`
	// Type is the event discriminator.
	Type ActivityType `json:"activity_type"`
	// Details is the human-readable event content (typed text, counts,
	// or focus description).
	Details string `json:"details"`
	// WindowTitle is the window the event belongs to, when known.
	WindowTitle *string `json:"window_title,omitempty"`
	// AppName is the owning application, when known.
	AppName *string `json:"app_name,omitempty"`
}

// ActivityBatch is the persisted payload of one activity artifact.
type ActivityBatch struct {
	Activities []Activity `json:"activities"`
}
