package web

import (
	"fmt"
	"html/template"
	"math"
	"net/url"
	"strconv"

	"github.com/starford/scenaview/internal/viewstate"
)

var funcMap = template.FuncMap{
	"count": viewstate.FormatCount,
	"pct": func(f float64) string {
		return fmt.Sprintf("%.1f%%", f)
	},
	"confidence": func(c float64) string {
		return fmt.Sprintf("%.0f%%", c*100)
	},
	"px": func(f float64) string {
		return strconv.FormatFloat(f, 'f', -1, 64) + "px"
	},
	"width": func(f float64) string {
		return strconv.FormatFloat(f, 'f', 4, 64) + "%"
	},
	// link renders "/?" plus base with the given key/value pairs applied.
	// An empty value removes the key.
	"link": func(base url.Values, kv ...string) string {
		out := clone(base)
		for i := 0; i+1 < len(kv); i += 2 {
			if kv[i+1] == "" {
				out.Del(kv[i])
			} else {
				out.Set(kv[i], kv[i+1])
			}
		}
		return "/?" + out.Encode()
	},
	"itoa": strconv.Itoa,
	"zoomStep": func(z float64, dir int) string {
		next := z + float64(dir)*viewstate.ZoomStep
		next = math.Max(viewstate.TimelineMinZoom, math.Min(viewstate.TimelineMaxZoom, next))
		return strconv.FormatFloat(next, 'f', -1, 64)
	},
}
