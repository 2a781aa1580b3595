package server

//go:generate swag init -g internal/server/swagger.go -o docs --parseDependency --parseInternal

// @title Webshot API
// @version 0.3
// @description Interactive documentation for the Webshot capture API surface.
// @contact.name Webshot Maintainers
// @contact.url https://github.com/raysh454/webshot
// @BasePath /
