package main

// General API documentation for swaggo. Run `swag init -g cmd/braind/docs.go`
// to regenerate.
//
// @title           braind API
// @version         1.0
// @description     HTTP API for capability routing and backend lifecycle management.
//
// @contact.name   braind maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
