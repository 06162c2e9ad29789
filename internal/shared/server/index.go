package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"news-classifier/internal/news"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type indexPage struct {
	Field     string
	MinLength int
	MaxLength int
}

func indexHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", indexPage{
		Field:     news.FormField,
		MinLength: news.MinTextLength,
		MaxLength: news.MaxTextLength,
	})
}
