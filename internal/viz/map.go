// Package viz renders scored areas as a standalone Leaflet choropleth map.
package viz

import (
	"bytes"
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	geojson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/geofile"
)

// MapOptions controls the rendered map.
type MapOptions struct {
	Title         string
	ScoreProperty string // feature property used for choropleth colors
	CenterLat     float64
	CenterLon     float64
	Zoom          int
}

// DefaultMapOptions renders the composite walkability index centered on
// the collection's mean centroid.
func DefaultMapOptions() MapOptions {
	return MapOptions{
		Title:         "Walkability Index",
		ScoreProperty: "walkability_index",
		Zoom:          11,
	}
}

type mapData struct {
	Title         string
	ScoreProperty string
	CenterLat     float64
	CenterLon     float64
	Zoom          int
	GapBands      bool
	GeoJSON       template.JS
}

// WriteMap reads a scored GeoJSON snapshot and writes a self-contained
// HTML choropleth. When no center is given it is derived from feature
// centroids.
func WriteMap(geojsonPath, htmlPath string, opts MapOptions) error {
	fc, err := geofile.ReadCollection(geojsonPath)
	if err != nil {
		return err
	}
	if len(fc.Features) == 0 {
		return eris.Errorf("viz: no features in %s", geojsonPath)
	}

	if opts.CenterLat == 0 && opts.CenterLon == 0 {
		opts.CenterLat, opts.CenterLon = meanCenter(fc)
	}
	if opts.Zoom == 0 {
		opts.Zoom = 11
	}
	if opts.ScoreProperty == "" {
		opts.ScoreProperty = "walkability_index"
	}

	raw, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrap(err, "viz: marshal feature collection")
	}

	var buf bytes.Buffer
	data := mapData{
		Title:         opts.Title,
		ScoreProperty: opts.ScoreProperty,
		CenterLat:     opts.CenterLat,
		CenterLon:     opts.CenterLon,
		Zoom:          opts.Zoom,
		GapBands:      strings.HasSuffix(opts.ScoreProperty, "_gap_score"),
		GeoJSON:       template.JS(raw),
	}
	if err := mapTemplate.Execute(&buf, data); err != nil {
		return eris.Wrap(err, "viz: render template")
	}

	if err := os.MkdirAll(filepath.Dir(htmlPath), 0o755); err != nil {
		return eris.Wrapf(err, "viz: create output dir for %s", htmlPath)
	}
	if err := os.WriteFile(htmlPath, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "viz: write %s", htmlPath)
	}

	zap.L().Info("viz: map written",
		zap.String("path", htmlPath),
		zap.Int("features", len(fc.Features)),
	)
	return nil
}

func meanCenter(fc *geojson.FeatureCollection) (lat, lon float64) {
	var n int
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		c, err := geofile.CentroidOf(f.Geometry)
		if err != nil {
			continue
		}
		lon += c[0]
		lat += c[1]
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return lat / float64(n), lon / float64(n)
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  html, body, #map { height: 100%; margin: 0; }
  .legend { background: white; padding: 8px 12px; line-height: 1.5; border-radius: 4px; box-shadow: 0 1px 4px rgba(0,0,0,0.3); }
  .legend i { display: inline-block; width: 14px; height: 14px; margin-right: 6px; vertical-align: middle; }
</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);

var scoreProperty = {{.ScoreProperty}};
var data = {{.GeoJSON}};

{{if .GapBands}}
function color(v) {
  if (v === null || v === undefined) return '#999999';
  if (v >= 0.7) return '#d73027';
  if (v >= 0.5) return '#fc8d59';
  if (v >= 0.35) return '#fee08b';
  if (v >= 0.2) return '#91cf60';
  return '#1a9850';
}
{{else}}
function color(v) {
  if (v === null || v === undefined) return '#999999';
  if (v >= 80) return '#1a9850';
  if (v >= 65) return '#91cf60';
  if (v >= 50) return '#fee08b';
  if (v >= 35) return '#fc8d59';
  return '#d73027';
}
{{end}}

L.geoJSON(data, {
  style: function (f) {
    return {
      fillColor: color(f.properties[scoreProperty]),
      fillOpacity: 0.65,
      color: '#555',
      weight: 1
    };
  },
  onEachFeature: function (f, layer) {
    var p = f.properties || {};
    var name = p.neighborhood_name || p.NAME || p.GEOID || 'Area';
    var score = p[scoreProperty];
    layer.bindPopup('<b>' + name + '</b><br>' + scoreProperty + ': ' +
      (score === null || score === undefined ? 'n/a' : score));
  }
}).addTo(map);

var legend = L.control({position: 'bottomright'});
legend.onAdd = function () {
  var div = L.DomUtil.create('div', 'legend');
{{if .GapBands}}
  div.innerHTML =
    '<i style="background:#d73027"></i>Severe gap (0.70+)<br>' +
    '<i style="background:#fc8d59"></i>High gap (0.50-0.69)<br>' +
    '<i style="background:#fee08b"></i>Moderate gap (0.35-0.49)<br>' +
    '<i style="background:#91cf60"></i>Low gap (0.20-0.34)<br>' +
    '<i style="background:#1a9850"></i>Minimal gap (&lt;0.20)';
{{else}}
  div.innerHTML =
    '<i style="background:#1a9850"></i>Excellent (80+)<br>' +
    '<i style="background:#91cf60"></i>Good (65-79)<br>' +
    '<i style="background:#fee08b"></i>Moderate (50-64)<br>' +
    '<i style="background:#fc8d59"></i>Poor (35-49)<br>' +
    '<i style="background:#d73027"></i>Very Poor (&lt;35)';
{{end}}
  return div;
};
legend.addTo(map);
</script>
</body>
</html>
`))
