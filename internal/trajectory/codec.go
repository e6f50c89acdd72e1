package trajectory

import (
	"encoding/json"
	"fmt"

	"github.com/retrace-io/retrace/internal/geom"
)

// Wire representation of the persisted document. Field names are part of
// the on-disk format; do not rename.
type document struct {
	Objects []objectEntry `json:"objects"`
	Cameras []cameraEntry `json:"cameras"`
	Charts  []chartEntry  `json:"charts,omitempty"`
}

type objectEntry struct {
	ObjectName string           `json:"objectName"`
	Samples    []positionSample `json:"samples"`
}

type positionSample struct {
	Position geom.Vec3 `json:"position"`
	TimeMs   int64     `json:"timeMs"`
}

type cameraEntry struct {
	CameraName string         `json:"cameraName"`
	Samples    []cameraSample `json:"samples"`
}

type cameraSample struct {
	Position geom.Vec3 `json:"position"`
	Forward  geom.Vec3 `json:"forward"`
	TimeMs   int64     `json:"timeMs"`
}

type chartEntry struct {
	ChartName  string       `json:"chartName"`
	SerieIndex int          `json:"serieIndex"`
	Points     []chartPoint `json:"points"`
}

type chartPoint struct {
	DataIndex int            `json:"dataIndex"`
	Samples   []scalarSample `json:"samples"`
}

type scalarSample struct {
	Value  float64 `json:"value"`
	TimeMs int64   `json:"timeMs"`
}

// Encode serializes a store to the persisted JSON document. Tracks appear
// in insertion order, so encoding the same store twice yields identical
// bytes. Scalar tracks group into one chart entry per (chart, serie) pair,
// again in first-seen order.
func Encode(s *Store) ([]byte, error) {
	doc := document{
		Objects: []objectEntry{},
		Cameras: []cameraEntry{},
	}

	chartIndex := make(map[string]int) // "chart#serie" -> index into doc.Charts

	for _, t := range s.Tracks() {
		switch t.Kind {
		case KindPosition:
			entry := objectEntry{ObjectName: t.Name, Samples: []positionSample{}}
			for i := 0; i < t.Len(); i++ {
				sm := t.At(i)
				entry.Samples = append(entry.Samples, positionSample{Position: sm.Position, TimeMs: sm.TimeMs})
			}
			doc.Objects = append(doc.Objects, entry)

		case KindCamera:
			entry := cameraEntry{CameraName: t.Name, Samples: []cameraSample{}}
			for i := 0; i < t.Len(); i++ {
				sm := t.At(i)
				entry.Samples = append(entry.Samples, cameraSample{Position: sm.Position, Forward: sm.Forward, TimeMs: sm.TimeMs})
			}
			doc.Cameras = append(doc.Cameras, entry)

		case KindScalar:
			key := fmt.Sprintf("%s#%d", t.Chart, t.Serie)
			idx, ok := chartIndex[key]
			if !ok {
				idx = len(doc.Charts)
				chartIndex[key] = idx
				doc.Charts = append(doc.Charts, chartEntry{ChartName: t.Chart, SerieIndex: t.Serie})
			}
			point := chartPoint{DataIndex: t.DataIndex, Samples: []scalarSample{}}
			for i := 0; i < t.Len(); i++ {
				sm := t.At(i)
				point.Samples = append(point.Samples, scalarSample{Value: sm.Value, TimeMs: sm.TimeMs})
			}
			doc.Charts[idx].Points = append(doc.Charts[idx].Points, point)

		default:
			return nil, fmt.Errorf("track %q: unknown kind %v", t.Name, t.Kind)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses and validates a persisted document into a Store.
//
// Validation is strict: the document must match the embedded CUE schema,
// every samples array must be in strictly increasing timestamp order, and
// track names must be unique after NFC normalization. Out-of-order input
// is rejected, never resorted. Any failure returns a DocumentError and a
// nil store.
func Decode(data []byte) (*Store, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		// Schema validation already parsed the JSON, so this only fires
		// on type mismatches the schema missed.
		return nil, &DocumentError{Code: ErrCodeSyntax, Message: err.Error()}
	}

	store := NewStore()

	for oi, obj := range doc.Objects {
		path := fmt.Sprintf("objects[%d]", oi)
		track := NewTrack(obj.ObjectName, KindPosition)
		for si, sm := range obj.Samples {
			err := track.Append(Sample{TimeMs: sm.TimeMs, Position: sm.Position})
			if err != nil {
				return nil, unorderedErr(path, si, err)
			}
		}
		if err := store.Add(track); err != nil {
			return nil, &DocumentError{Code: ErrCodeDuplicateTrack, Path: path, Message: err.Error()}
		}
	}

	for ci, cam := range doc.Cameras {
		path := fmt.Sprintf("cameras[%d]", ci)
		track := NewTrack(cam.CameraName, KindCamera)
		for si, sm := range cam.Samples {
			err := track.Append(Sample{TimeMs: sm.TimeMs, Position: sm.Position, Forward: sm.Forward})
			if err != nil {
				return nil, unorderedErr(path, si, err)
			}
		}
		if err := store.Add(track); err != nil {
			return nil, &DocumentError{Code: ErrCodeDuplicateTrack, Path: path, Message: err.Error()}
		}
	}

	for ci, chart := range doc.Charts {
		for pi, point := range chart.Points {
			path := fmt.Sprintf("charts[%d].points[%d]", ci, pi)
			track := NewScalarTrack(chart.ChartName, chart.SerieIndex, point.DataIndex)
			for si, sm := range point.Samples {
				err := track.Append(Sample{TimeMs: sm.TimeMs, Value: sm.Value})
				if err != nil {
					return nil, unorderedErr(path, si, err)
				}
			}
			if err := store.Add(track); err != nil {
				return nil, &DocumentError{Code: ErrCodeDuplicateTrack, Path: path, Message: err.Error()}
			}
		}
	}

	return store, nil
}

func unorderedErr(path string, sampleIndex int, cause error) *DocumentError {
	return &DocumentError{
		Code:    ErrCodeUnordered,
		Path:    fmt.Sprintf("%s.samples[%d]", path, sampleIndex),
		Message: cause.Error(),
	}
}
