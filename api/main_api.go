package main

import (
	"github.com/CPU-commits/Intranet_BCourses/api/server"
)

// @title          English Center Courses API
// @version        1.0
// @description    API Server for the course directory of the english center
// @termsOfService http://swagger.io/terms/

// @contact.name  API Support
// @contact.url   http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url  http://www.apache.org/licenses/LICENSE-2.0.html

// @tag.name        courses
// @tag.description Course directory and registrations

// @host     localhost:5000
// @BasePath /api/courses

// @securityDefinitions.apikey ApiKeyAuth
// @in                         header
// @name                       Authorization
// @description                BearerJWTToken in Authorization Header

// @accept  json
// @produce json
func main() {
	server.Init()
}
