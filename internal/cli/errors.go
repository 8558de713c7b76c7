package cli

// ArgumentError reports inputs that could not be turned into a RequestSpec.
// No request is sent when it occurs.
type ArgumentError struct {
	Detail string
}

func (e *ArgumentError) Error() string {
	return "invalid_args: " + e.Detail
}
