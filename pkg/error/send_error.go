package error

import "net/http"

type SendError string

func (err SendError) Error() string {
	return string(err)
}

func (err SendError) ErrCode() string {
	return "SEND_ERROR"
}

func (err SendError) StatusCode() int {
	return http.StatusInternalServerError
}
