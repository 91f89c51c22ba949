package player

// Profile is the Mojang profile record for a player name.
// Legacy and Demo are omitted from the API response when false.
type Profile struct {
	UUID   string `json:"id"`
	Name   string `json:"name"`
	Legacy bool   `json:"legacy,omitempty"`
	Demo   bool   `json:"demo,omitempty"`
}
