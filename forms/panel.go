package forms

import "encoding/json"

// Mode is which sub-form of a screen is open. Only one can be.
type Mode int

const (
	Viewing Mode = iota
	Adding
	Editing
)

func (m Mode) String() string {
	switch m {
	case Adding:
		return "adding"
	case Editing:
		return "editing"
	default:
		return "viewing"
	}
}

// Panel replaces separate "show add form" and "show edit form" flags.
// Opening one form closes the other.
type Panel struct {
	mode Mode
	id   string
}

func (p *Panel) OpenAdd() {
	p.mode, p.id = Adding, ""
}

func (p *Panel) OpenEdit(id string) {
	p.mode, p.id = Editing, id
}

func (p *Panel) Close() {
	p.mode, p.id = Viewing, ""
}

func (p Panel) Mode() Mode   { return p.mode }
func (p Panel) ID() string   { return p.id }
func (p Panel) IsOpen() bool { return p.mode != Viewing }

func (p Panel) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Mode string `json:"mode"`
		ID   string `json:"id,omitempty"`
	}{p.mode.String(), p.id})
}
