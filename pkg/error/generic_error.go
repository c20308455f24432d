package error

// GenericError is implemented by every error type in this package so the
// recovery middleware can map a panic back to an HTTP status and code.
type GenericError interface {
	error
	ErrCode() string
	StatusCode() int
}
