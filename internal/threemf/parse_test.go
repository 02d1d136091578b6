package threemf_test

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"spool/internal/services"
	"spool/internal/threemf"
)

const sliceInfoTwoPlates = `<?xml version="1.0" encoding="UTF-8"?>
<config>
  <plate>
    <metadata key="index" value="1"/>
    <metadata key="prediction" value="5381"/>
    <metadata key="weight" value="20.91"/>
    <metadata key="support_used" value="true"/>
    <object identify_id="101" skipped="false"/>
    <object identify_id="102" skipped="false"/>
    <object identify_id="103" skipped="true"/>
    <filament id="2" type="PETG" color="#00FF00" used_g="4.2"/>
    <filament id="1" type="PLA" color="#FF0000" used_g="12.5"/>
  </plate>
  <plate>
    <metadata key="index" value="2"/>
    <object identify_id="201" skipped="false"/>
    <filament id="1" type="PLA" color="#FF0000" used_g="3.1"/>
  </plate>
</config>`

const modelOnly = `<?xml version="1.0" encoding="UTF-8"?>
<model unit="millimeter">
  <resources>
    <object id="1" type="model"/>
    <object id="2" type="model"/>
  </resources>
  <build>
    <item objectid="1"/>
    <item objectid="2"/>
  </build>
</model>`

func writeContainer(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.3mf")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create container: %v", err)
	}
	writer := zip.NewWriter(file)
	for name, content := range entries {
		entry, err := writer.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestParseSlicedContainer(t *testing.T) {
	path := writeContainer(t, map[string]string{
		"Metadata/slice_info.config": sliceInfoTwoPlates,
		"3D/3dmodel.model":           modelOnly,
	})

	container, err := threemf.Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(container.Plates) != 2 {
		t.Fatalf("expected 2 plates, got %d", len(container.Plates))
	}

	first := container.Plates[0]
	if first.Index != 1 || first.Objects != 2 || !first.HasSupport {
		t.Fatalf("unexpected first plate: %+v", first)
	}
	if first.PredictionSeconds == nil || *first.PredictionSeconds != 5381 {
		t.Fatalf("expected prediction 5381, got %v", first.PredictionSeconds)
	}
	if first.WeightGrams == nil || *first.WeightGrams != 20.91 {
		t.Fatalf("expected weight 20.91, got %v", first.WeightGrams)
	}
	// Filaments are ordered by model filament index regardless of file order.
	if first.Filaments[0].Type != "PLA" || first.Filaments[1].Type != "PETG" {
		t.Fatalf("expected PLA then PETG, got %+v", first.Filaments)
	}

	second := container.Plates[1]
	if second.Index != 2 || second.Objects != 1 || second.HasSupport {
		t.Fatalf("unexpected second plate: %+v", second)
	}
	if second.PredictionSeconds != nil || second.WeightGrams != nil {
		t.Fatalf("expected no estimates for second plate, got %+v", second)
	}
}

func TestParseGeometryOnlyContainer(t *testing.T) {
	path := writeContainer(t, map[string]string{"3D/3dmodel.model": modelOnly})

	container, err := threemf.Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(container.Plates) != 1 {
		t.Fatalf("expected one plate, got %d", len(container.Plates))
	}
	plate := container.Plates[0]
	if plate.Objects != 2 || len(plate.Filaments) != 0 {
		t.Fatalf("unexpected plate for geometry-only container: %+v", plate)
	}
}

func TestParseRejectsCorruptArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.3mf")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	_, err := threemf.Parse(path)
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestParseRejectsMalformedSliceInfo(t *testing.T) {
	path := writeContainer(t, map[string]string{
		"Metadata/slice_info.config": "<config><plate>",
	})
	_, err := threemf.Parse(path)
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestParseRejectsEmptyArchive(t *testing.T) {
	path := writeContainer(t, map[string]string{"Metadata/readme.txt": "hi"})
	_, err := threemf.Parse(path)
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected parse error for payload-less archive, got %v", err)
	}
}

func TestExtractRequirements(t *testing.T) {
	path := writeContainer(t, map[string]string{
		"Metadata/slice_info.config": sliceInfoTwoPlates,
	})
	container, err := threemf.Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	requirements, infos := threemf.ExtractRequirements(container)
	if len(requirements) != 2 || len(infos) != 2 {
		t.Fatalf("expected 2 plates of output, got %d/%d", len(requirements), len(infos))
	}
	if !requirements[0].HasMulticolor {
		t.Fatal("first plate uses two distinct filaments; expected multicolor")
	}
	if requirements[1].HasMulticolor {
		t.Fatal("second plate uses one filament; expected no multicolor")
	}
	if infos[0].ObjectCount != 2 || infos[1].ObjectCount != 1 {
		t.Fatalf("unexpected object counts: %+v", infos)
	}
}

func TestExtractRequirementsIdempotent(t *testing.T) {
	path := writeContainer(t, map[string]string{
		"Metadata/slice_info.config": sliceInfoTwoPlates,
	})
	container, err := threemf.Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	firstReqs, firstInfos := threemf.ExtractRequirements(container)
	secondReqs, secondInfos := threemf.ExtractRequirements(container)
	if !reflect.DeepEqual(firstReqs, secondReqs) || !reflect.DeepEqual(firstInfos, secondInfos) {
		t.Fatal("extraction is not idempotent")
	}
}

func TestModelRequirementsMergesSharedFilaments(t *testing.T) {
	path := writeContainer(t, map[string]string{
		"Metadata/slice_info.config": sliceInfoTwoPlates,
	})
	container, err := threemf.Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	flat := threemf.ModelRequirements(container)
	want := []threemf.FilamentRequirement{
		{Type: "PLA", Color: "#FF0000"},
		{Type: "PETG", Color: "#00FF00"},
	}
	if !reflect.DeepEqual(flat, want) {
		t.Fatalf("unexpected model requirements: %+v", flat)
	}
}
