package error

import "net/http"

// GatewayError covers failures talking to the OpenClaw gateway. It is
// never surfaced to webhook callers; the background relay logs and
// swallows it.
type GatewayError string

func (err GatewayError) Error() string {
	return string(err)
}

func (err GatewayError) ErrCode() string {
	return "GATEWAY_ERROR"
}

func (err GatewayError) StatusCode() int {
	return http.StatusBadGateway
}
