package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var brochureTemplate *template.Template

func init() {
	funcMap := template.FuncMap{
		"lower": strings.ToLower,
		"formatDate": func(t time.Time, layout string) string {
			return t.Format(layout)
		},
		"formatPrice": FormatPrice,
		"safeURL": func(s string) template.URL {
			return template.URL(s)
		},
	}

	templateContent, err := templateFS.ReadFile("templates/brochure.html")
	if err != nil {
		// Fallback to built-in template if file not found
		brochureTemplate = template.Must(template.New("brochure").Funcs(funcMap).Parse(fallbackTemplate))
		return
	}

	brochureTemplate = template.Must(template.New("brochure").Funcs(funcMap).Parse(string(templateContent)))
}

// FormatPrice renders a price with thousands separators.
func FormatPrice(v float64) string {
	whole := strconv.FormatInt(int64(v), 10)
	neg := strings.HasPrefix(whole, "-")
	if neg {
		whole = whole[1:]
	}
	var grouped strings.Builder
	for i, d := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(d)
	}
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s$%s", sign, grouped.String())
}

// TemplateData holds listing data for brochure rendering. Only
// public-facing fields belong here; acquisition price and margins
// never appear on a brochure.
type TemplateData struct {
	Title       string
	Description string
	Location    string
	Type        string
	Status      string
	Price       float64
	Size        float64
	Bedrooms    int
	Bathrooms   int
	IsHotDeal   bool
	Images      []string
	GeneratedAt time.Time
	AgencyName  string
}

// RenderBrochureHTML renders the brochure template with provided data.
func RenderBrochureHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := brochureTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fallbackTemplate is used if the embedded template fails to load.
const fallbackTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 2rem auto; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    .price { font-size: 1.4em; font-weight: bold; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">{{.Type}} | {{.Location}} | {{.Status}}</div>
  <p class="price">{{formatPrice .Price}}</p>
  <p>{{.Description}}</p>
  <div class="meta">{{.AgencyName}} | {{.GeneratedAt.Format "Jan 2, 2006"}}</div>
</body>
</html>`
