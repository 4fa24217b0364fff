package model

// TabID is the host browser's tab identifier. Opaque to the core: it is only
// used as a map key and echoed back on the suspend action.
type TabID int64

// Tab is the snapshot of a browser tab as reported by the host. The core never
// owns a tab's lifecycle, it only observes these fields.
type Tab struct {
	ID        TabID
	Active    bool
	Pinned    bool
	Audible   bool
	Discarded bool
	URL       string
	Title     string
}

// TabChange is the delta carried by an update event. Nil fields were not part
// of the update.
type TabChange struct {
	Audible *bool
	URL     *string
}
