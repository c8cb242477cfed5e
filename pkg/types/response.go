package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ListEnvelope is returned for collection endpoints.
type ListEnvelope struct {
	Data any      `json:"data"`
	Meta ListMeta `json:"meta"`
}

type ListMeta struct {
	Count  int    `json:"count"`
	Filter string `json:"filter,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
