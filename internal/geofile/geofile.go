// Package geofile reads and writes the GeoJSON snapshots passed between
// pipeline stages. Each stage loads one snapshot, enriches it in memory, and
// writes a new snapshot; writes are atomic so a failed stage never corrupts
// an existing file.
package geofile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	geojson "github.com/twpayne/go-geom/encoding/geojson"
)

// ReadCollection loads a GeoJSON FeatureCollection from disk.
func ReadCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geofile: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "geofile: parse %s", path)
	}
	return &fc, nil
}

// WriteCollection writes a FeatureCollection to disk atomically: the payload
// is written to a temp file in the target directory and renamed into place.
func WriteCollection(path string, fc *geojson.FeatureCollection) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrap(err, "geofile: marshal collection")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "geofile: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.geojson")
	if err != nil {
		return eris.Wrap(err, "geofile: create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "geofile: write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "geofile: close %s", tmpName)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "geofile: rename into %s", path)
	}
	return nil
}

// Schema identifies which property keys carry area identity in a snapshot.
// Census tract snapshots use GEOID/NAME, neighborhood snapshots use
// neighborhood_id/neighborhood_name.
type Schema struct {
	IDProperty   string
	NameProperty string
}

// TractSchema is the property schema for census tract snapshots.
var TractSchema = Schema{IDProperty: "GEOID", NameProperty: "NAME"}

// NeighborhoodSchema is the property schema for neighborhood snapshots.
var NeighborhoodSchema = Schema{IDProperty: "neighborhood_id", NameProperty: "neighborhood_name"}

// DetectSchema inspects the first feature of a collection and returns the
// matching schema. Tract snapshots win when both key sets are present.
func DetectSchema(fc *geojson.FeatureCollection) (Schema, error) {
	if fc == nil || len(fc.Features) == 0 {
		return Schema{}, eris.New("geofile: empty feature collection")
	}
	props := fc.Features[0].Properties
	if _, ok := props[TractSchema.IDProperty]; ok {
		return TractSchema, nil
	}
	if _, ok := props[NeighborhoodSchema.IDProperty]; ok {
		return NeighborhoodSchema, nil
	}
	return Schema{}, eris.New("geofile: no GEOID or neighborhood_id property found")
}
