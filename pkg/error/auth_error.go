package error

import "net/http"

type AuthError string

func (err AuthError) Error() string {
	return string(err)
}

func (err AuthError) ErrCode() string {
	return "AUTH_ERROR"
}

func (err AuthError) StatusCode() int {
	return http.StatusForbidden
}
