package models

// Fortune — короткое предсказание для чека
type Fortune struct {
	ID      string `json:"id"`
	Fortune string `json:"fortune"`
	Author  string `json:"author,omitempty"`
}
