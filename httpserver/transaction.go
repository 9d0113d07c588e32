package httpserver

import "net/http"

// transaction adapts one inbound GET request to the service.Transaction
// surface a GetHandler consumes.
type transaction struct {
	route string
	w     http.ResponseWriter
}

func (t *transaction) GetRoute() string { return t.route }

func (t *transaction) SetContentType(ct string) {
	t.w.Header().Set("Content-Type", ct)
}

func (t *transaction) Send(body []byte) {
	_, _ = t.w.Write(body)
}
