package threemf

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"

	"spool/internal/services"
)

const (
	sliceInfoPath = "Metadata/slice_info.config"
	modelPath     = "3D/3dmodel.model"
)

type sliceInfoDoc struct {
	Plates []sliceInfoPlate `xml:"plate"`
}

type sliceInfoPlate struct {
	Metadata  []sliceInfoMetadata `xml:"metadata"`
	Objects   []sliceInfoObject   `xml:"object"`
	Filaments []sliceInfoFilament `xml:"filament"`
}

type sliceInfoMetadata struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}

type sliceInfoObject struct {
	IdentifyID string `xml:"identify_id,attr"`
	Skipped    string `xml:"skipped,attr"`
}

type sliceInfoFilament struct {
	ID    string `xml:"id,attr"`
	Type  string `xml:"type,attr"`
	Color string `xml:"color,attr"`
	UsedG string `xml:"used_g,attr"`
}

type modelDoc struct {
	Build modelBuild `xml:"build"`
}

type modelBuild struct {
	Items []struct {
		ObjectID string `xml:"objectid,attr"`
	} `xml:"item"`
}

// Parse opens a 3MF container and returns its plates. Containers without
// slice metadata parse to a single plate with no filament declarations.
func Parse(path string) (*Container, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "model", "open container",
			"file is not a readable 3MF archive", err)
	}
	defer reader.Close()

	container := &Container{SourcePath: path}

	if file := findEntry(&reader.Reader, sliceInfoPath); file != nil {
		plates, err := parseSliceInfo(file)
		if err != nil {
			return nil, err
		}
		container.Plates = plates
		return container, nil
	}

	// Geometry-only container: derive a single plate from the build items so
	// callers still get an object count. No filament metadata is knowable.
	file := findEntry(&reader.Reader, modelPath)
	if file == nil {
		return nil, services.Wrap(services.ErrParse, "model", "locate payload",
			"container has neither slice metadata nor a 3D model payload", nil)
	}
	objects, err := parseModelObjectCount(file)
	if err != nil {
		return nil, err
	}
	container.Plates = []Plate{{Index: 1, Objects: objects}}
	return container, nil
}

func findEntry(reader *zip.Reader, name string) *zip.File {
	for _, file := range reader.File {
		if strings.EqualFold(strings.TrimPrefix(file.Name, "/"), name) {
			return file
		}
	}
	return nil
}

func parseSliceInfo(file *zip.File) ([]Plate, error) {
	doc, err := decodeEntry[sliceInfoDoc](file)
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "model", "parse slice metadata",
			"slice_info.config is malformed", err)
	}

	plates := make([]Plate, 0, len(doc.Plates))
	for position, rawPlate := range doc.Plates {
		plate := Plate{Index: position + 1}
		for _, meta := range rawPlate.Metadata {
			value := strings.TrimSpace(meta.Value)
			switch strings.ToLower(strings.TrimSpace(meta.Key)) {
			case "index":
				if parsed, err := strconv.Atoi(value); err == nil {
					plate.Index = parsed
				}
			case "prediction":
				if parsed, err := strconv.ParseFloat(value, 64); err == nil {
					plate.PredictionSeconds = &parsed
				}
			case "weight":
				if parsed, err := strconv.ParseFloat(value, 64); err == nil {
					plate.WeightGrams = &parsed
				}
			case "support_used":
				plate.HasSupport = strings.EqualFold(value, "true")
			}
		}
		for _, object := range rawPlate.Objects {
			if strings.EqualFold(strings.TrimSpace(object.Skipped), "true") {
				continue
			}
			plate.Objects++
		}
		for _, filament := range rawPlate.Filaments {
			entry := PlateFilament{
				Type:  strings.TrimSpace(filament.Type),
				Color: strings.TrimSpace(filament.Color),
			}
			if parsed, err := strconv.Atoi(strings.TrimSpace(filament.ID)); err == nil {
				entry.ID = parsed
			}
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(filament.UsedG), 64); err == nil {
				entry.UsedGrams = parsed
			}
			plate.Filaments = append(plate.Filaments, entry)
		}
		// Requirement order is the model's filament-index order; the config
		// file is not required to list filaments sorted.
		sort.SliceStable(plate.Filaments, func(i, j int) bool {
			return plate.Filaments[i].ID < plate.Filaments[j].ID
		})
		plates = append(plates, plate)
	}
	return plates, nil
}

func parseModelObjectCount(file *zip.File) (int, error) {
	doc, err := decodeEntry[modelDoc](file)
	if err != nil {
		return 0, services.Wrap(services.ErrParse, "model", "parse 3D payload",
			"3dmodel.model is malformed", err)
	}
	return len(doc.Build.Items), nil
}

func decodeEntry[T any](file *zip.File) (*T, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	var decoded T
	if err := xml.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}
	return &decoded, nil
}
