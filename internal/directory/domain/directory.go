package directory

// Reference collections fetched once per session. They are read-only after
// load: no push event mutates them, but they flow through the same stores
// so the screens observe them uniformly.

// Protocol is an ordered emergency response checklist.
type Protocol struct {
	ID    string   `json:"id"`
	Type  string   `json:"type"`
	Steps []string `json:"steps"`
}

// EntityID implements the store identity contract.
func (p Protocol) EntityID() string { return p.ID }

// Region is a broadcast targeting area.
type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EntityID implements the store identity contract.
func (r Region) EntityID() string { return r.ID }

// Contact is a single emergency phone entry.
type Contact struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	Status string `json:"status"`
}

// ContactGroup bundles contacts under a heading (police, medical, ...).
type ContactGroup struct {
	ID       string    `json:"id"`
	Group    string    `json:"group"`
	Contacts []Contact `json:"contacts"`
}

// EntityID implements the store identity contract.
func (g ContactGroup) EntityID() string { return g.ID }

// Translator is an on-call interpreter.
type Translator struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Name     string `json:"name"`
	Status   string `json:"status"`
}

// EntityID implements the store identity contract.
func (t Translator) EntityID() string { return t.ID }
