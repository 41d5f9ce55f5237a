// Package render turns the processed snapshot into the static HTML report.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"

	"meli-trends/models"
	"meli-trends/storage"
	"meli-trends/utils"
)

// Renderer builds the report document.
type Renderer struct {
	logger   *utils.Logger
	minifier *minify.M
	defaults models.FieldDefaults
}

// NewRenderer creates a Renderer. When minified is true the output is
// passed through an HTML/CSS minifier before it is written.
func NewRenderer(logger *utils.Logger, minified bool) *Renderer {
	r := &Renderer{logger: logger, defaults: models.DefaultFieldDefaults()}
	if minified {
		m := minify.New()
		m.AddFunc("text/css", css.Minify)
		m.Add("text/html", &html.Minifier{KeepDocumentTags: true, KeepEndTags: true, KeepQuotes: true})
		r.minifier = m
	}
	return r
}

type card struct {
	Rank          int
	Title         string
	Price         string
	Sales         string
	Rating        string
	FreeShipping  bool
	OfficialStore bool
	URL           string
}

type page struct {
	Updated string
	Cards   []card
}

// Render produces the report for listings. An empty slice gives the
// "no data today" document.
func (r *Renderer) Render(listings []*models.Listing, now time.Time) ([]byte, error) {
	p := page{Updated: now.Format("02/01/2006")}
	for i, l := range listings {
		url := l.URL
		if url == "" {
			url = r.defaults.URL
		}
		p.Cards = append(p.Cards, card{
			Rank:          i + 1,
			Title:         l.Title,
			Price:         humanize.FormatFloat("#,###.##", l.Price),
			Sales:         humanize.Comma(int64(l.SalesCount)),
			Rating:        humanize.FtoaWithDigits(l.Rating, 1),
			FreeShipping:  l.FreeShipping,
			OfficialStore: l.OfficialStore,
			URL:           url,
		})
	}

	tpl := reportTemplate
	if len(p.Cards) == 0 {
		tpl = emptyTemplate
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("render: execute template: %w", err)
	}
	if r.minifier == nil {
		return buf.Bytes(), nil
	}

	out, err := r.minifier.Bytes("text/html", buf.Bytes())
	if err != nil {
		r.logger.Warn("[render] Minify failed, writing unminified report: %v", err)
		return buf.Bytes(), nil
	}
	return out, nil
}

// RenderFile reads the processed snapshot, renders it and replaces the report
// at reportPath. A missing or unreadable snapshot renders the empty report;
// only a failure to write the report is returned.
func (r *Renderer) RenderFile(processedPath, reportPath string, now time.Time) (int, error) {
	listings := r.load(processedPath)

	doc, err := r.Render(listings, now)
	if err != nil {
		return 0, err
	}
	if err := storage.WriteFileAtomic(reportPath, doc); err != nil {
		return 0, fmt.Errorf("render: write report: %w", err)
	}
	r.logger.Info("[render] Report with %d listings written to %s", len(listings), reportPath)
	return len(listings), nil
}

func (r *Renderer) load(path string) []*models.Listing {
	records, stats, err := storage.ReadRecords(path)
	switch {
	case errors.Is(err, storage.ErrSnapshotMissing):
		r.logger.Warn("[render] No processed snapshot at %s, rendering empty report", path)
		return nil
	case err != nil:
		r.logger.Error("[render] Reading %s: %v", path, err)
		return nil
	case stats.FileError != nil:
		r.logger.Error("[render] Unreadable snapshot, rendering empty report: %v", stats.FileError)
		return nil
	}

	listings := make([]*models.Listing, 0, len(records))
	for i, rec := range records {
		l, err := storage.DecodeListing(rec, r.defaults)
		if err != nil {
			r.logger.Warn("[render] Skipping row %d: %v", i+1, err)
			continue
		}
		listings = append(listings, l)
	}
	return listings
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Top Productos - MercadoLibre Venezuela</title>
<style>` + styles + `</style>
</head>
<body>
<div class="container">
<header>
<h1>🔥 Top {{len .Cards}} Productos en Tendencia</h1>
<p class="subtitle">MercadoLibre Venezuela - Reporte diario</p>
<p class="subtitle">Actualizado: {{.Updated}}</p>
</header>
{{range .Cards}}
<div class="producto">
<div class="titulo">#{{.Rank}} {{.Title}}</div>
<div class="precio">Bs. {{.Price}}</div>
<div class="badges">
{{- if .FreeShipping}}<span class="badge envio">🚚 Envío Gratis</span>{{end -}}
{{- if .OfficialStore}}<span class="badge oficial">🏬 Tienda Oficial</span>{{end -}}
</div>
<div class="stats">
<div class="stat"><div class="stat-value">{{.Sales}}</div><div class="stat-label">Ventas</div></div>
<div class="stat"><div class="stat-value">{{.Rating}}/5</div><div class="stat-label">Rating</div></div>
</div>
<div class="why"><strong>💡 Por qué destaca:</strong> Mejor relación precio-calidad en su categoría</div>
<a href="{{.URL}}" class="btn" target="_blank" rel="noopener">Ver producto en MercadoLibre</a>
</div>
{{end}}
` + footer + `
</div>
</body>
</html>
`))

var emptyTemplate = template.Must(template.New("empty").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Top Productos - MercadoLibre Venezuela</title>
<style>` + styles + `</style>
</head>
<body>
<div class="container">
<header>
<h1>Sin datos hoy</h1>
<p class="subtitle">No hay productos disponibles para el reporte de hoy.</p>
<p class="subtitle">Actualizado: {{.Updated}}</p>
</header>
` + footer + `
</div>
</body>
</html>
`))

const footer = `<footer>
<p>Reporte generado automáticamente - Actualizado diariamente</p>
<p>⚠️ Este es un proyecto de automatización, no afiliado a MercadoLibre</p>
</footer>`

const styles = `
* { box-sizing: border-box; margin: 0; padding: 0; }
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; background-color: #f8f9fa; color: #333; }
.container { max-width: 800px; margin: 20px auto; padding: 20px; background: white; border-radius: 10px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
header { text-align: center; margin-bottom: 30px; }
h1 { color: #2c3e50; }
.subtitle { color: #7f8c8d; margin-bottom: 20px; }
.producto { border: 1px solid #e1e4e8; border-radius: 8px; padding: 20px; margin-bottom: 20px; transition: transform 0.3s; }
.producto:hover { transform: translateY(-5px); box-shadow: 0 5px 15px rgba(0,0,0,0.1); }
.titulo { font-size: 1.4rem; margin-bottom: 10px; color: #2c3e50; }
.precio { font-size: 1.8rem; color: #27ae60; font-weight: bold; margin-bottom: 10px; }
.badges { display: flex; gap: 10px; margin-bottom: 15px; }
.badge { display: inline-block; padding: 5px 12px; border-radius: 20px; font-size: 0.85rem; font-weight: 500; }
.envio { background-color: #e1f0fa; color: #2980b9; }
.oficial { background-color: #e8f5e9; color: #2ecc71; }
.stats { display: flex; gap: 20px; margin: 15px 0; }
.stat { background: #f8f9fa; padding: 12px; border-radius: 8px; flex: 1; text-align: center; }
.stat-value { font-size: 1.4rem; font-weight: bold; color: #2c3e50; }
.stat-label { font-size: 0.9rem; color: #7f8c8d; }
.why { background: #fef9e7; padding: 15px; border-radius: 8px; margin: 15px 0; }
.btn { display: inline-block; background: #3498db; color: white; padding: 10px 20px; border-radius: 5px; text-decoration: none; font-weight: 500; margin-top: 10px; }
.btn:hover { background: #2980b9; }
footer { text-align: center; margin-top: 30px; color: #7f8c8d; font-size: 0.9rem; }
`
