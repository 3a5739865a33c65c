// Package docs provides generated OpenAPI documentation.
//
// PromptVault API
//
//	@title			PromptVault API
//	@version		1.0
//	@description	Prompt library API for managing prompt templates, rendering, cost estimation, and usage tracking.
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.url	https://github.com/promptvault/promptvault
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token, prefixed with "Bearer "
package docs

//go:generate swag init -g ../cmd/promptvault/serve.go -o ./swagger --parseDependency --parseInternal
