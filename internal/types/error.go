package types

type ErrorKind string

const (
	ErrorKindValidation       ErrorKind = "validation"
	ErrorKindMalformed        ErrorKind = "malformed"
	ErrorKindRemote           ErrorKind = "remote"
	ErrorKindUnexpected       ErrorKind = "unexpected"
	ErrorKindMethodNotAllowed ErrorKind = "method_not_allowed"
)

type (
	// Body for every non 2xx response. Error is always set, the rest depends on Kind.
	ErrorResponse struct {
		Error        string    `json:"error"`
		Kind         ErrorKind `json:"kind,omitempty"`
		Field        string    `json:"field,omitempty"`
		Reason       string    `json:"reason,omitempty"`
		Filename     string    `json:"filename,omitempty"`
		RemoteStatus int       `json:"remote_status,omitempty"`
	}
)

func StringError(err string) ErrorResponse {
	return ErrorResponse{Error: err}
}

func KindError(kind ErrorKind, err string) ErrorResponse {
	return ErrorResponse{Error: err, Kind: kind}
}
