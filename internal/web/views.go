package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"mfgtrack/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"dashboard", "orders", "order_new", "order_detail", "customers", "products", "error"}

type views struct {
	pages    map[string]*template.Template
	partials *template.Template
}

func mustParseViews() *views {
	v, err := parseViews(templateFS)
	if err != nil {
		panic(err)
	}
	return v
}

// parseViews builds one template set per page, each holding the layout, the
// shared partials and the page body.
func parseViews(fsys fs.FS) (*views, error) {
	partials, err := template.New("partials").Funcs(funcs).ParseFS(fsys, "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parsing partials: %w", err)
	}

	v := &views{pages: make(map[string]*template.Template, len(pageNames)), partials: partials}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(fsys,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parsing page %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

func (v *views) page(w io.Writer, name string, data interface{}) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

func (v *views) partial(w io.Writer, name string, data interface{}) error {
	return v.partials.ExecuteTemplate(w, name, data)
}

var funcs = template.FuncMap{
	"money":    money,
	"count":    func(n int) string { return humanize.Comma(int64(n)) },
	"ago":      humanize.Time,
	"ordinal":  humanize.Ordinal,
	"inc":      func(n int) int { return n + 1 },
	"dec":      func(n int) int { return n - 1 },
	"datetime": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	"stageClass": func(st domain.Stage) string {
		if st.IsCompleted() {
			return "stage done"
		}
		return "stage"
	},
	"stages": domain.Stages,
	"banner": func(msg string) bannerView { return bannerView{Message: msg} },
	"json": func(v interface{}) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// money renders an amount with thousands separators and two decimals.
func money(d decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
}
