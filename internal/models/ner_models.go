package models

// EntityRequest is the body sent to a remote entity extraction service.
type EntityRequest struct {
	Inputs string `json:"inputs"`
}

// EntityResponse is what the remote service and the LLM prompt both return.
type EntityResponse struct {
	People  []string `json:"people"`
	Places  []string `json:"places"`
	Symbols []string `json:"symbols"`
}

func (r EntityResponse) Entities() Entities {
	return Entities{
		People:  r.People,
		Places:  r.Places,
		Symbols: r.Symbols,
	}
}
