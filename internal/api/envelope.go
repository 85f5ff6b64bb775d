// Package api provides typed client modules for each backend resource group:
// auth, analysis control/status/history, economic indicators, news, portfolio
// optimization, and stock lookups. Modules are stateless wrappers over
// rest.Client; they build query parameters, unwrap the {success, message,
// data} envelope, and nothing else.
package api

import "fmt"

// envelope is the JSON wrapper convention used by most backend responses.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// unwrap returns the payload of a successful envelope, or an error carrying
// the server's message (with a generic fallback) when success is false.
func unwrap[T any](env envelope[T], op string) (T, error) {
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return env.Data, fmt.Errorf("%s: %s", op, msg)
	}
	return env.Data, nil
}
