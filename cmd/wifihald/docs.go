package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           wifihal API
// @version         1.0
// @description     HTTP API for the Wi-Fi HAL device manager.
//
// @contact.name   wifihal maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
