package cpfauth

import "encoding/json"

// DecodeFunc unmarshals JSON. fiber's Config.JSONDecoder has this shape.
type DecodeFunc func(data []byte, v interface{}) error

type requestBody struct {
	CPF interface{} `json:"cpf"`
}

// ParseRequest extracts the CPF from a JSON body. An unparseable body, a
// missing or empty cpf, or a cpf that is not a JSON string all yield
// ErrCPFRequired. The value is otherwise taken verbatim.
func ParseRequest(body []byte, decode DecodeFunc) (AuthRequest, error) {
	if decode == nil {
		decode = json.Unmarshal
	}

	var b requestBody
	if err := decode(body, &b); err != nil {
		return AuthRequest{}, ErrRegistry.NewWithCause(CodeCPFRequired, err)
	}

	cpf, ok := b.CPF.(string)
	if !ok || cpf == "" {
		return AuthRequest{}, ErrCPFRequired()
	}
	return AuthRequest{CPF: cpf}, nil
}
