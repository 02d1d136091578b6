package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, source_url, model_title, submission_id, status, model_file, gcode_file, remote_name, plate_index, build_plate, mapping_json, requirements_json, error_message, created_at, updated_at, progress_stage, progress_percent, progress_message, last_heartbeat, needs_review, review_reason"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id               int64
		sourceURL        string
		modelTitle       sql.NullString
		submissionID     sql.NullString
		statusStr        string
		modelFile        sql.NullString
		gcodeFile        sql.NullString
		remoteName       sql.NullString
		plateIndex       sql.NullInt64
		buildPlate       sql.NullString
		mappingJSON      sql.NullString
		requirementsJSON sql.NullString
		errorMessage     sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		lastHeartbeatRaw sql.NullString
		needsReview      sql.NullInt64
		reviewReason     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourceURL,
		&modelTitle,
		&submissionID,
		&statusStr,
		&modelFile,
		&gcodeFile,
		&remoteName,
		&plateIndex,
		&buildPlate,
		&mappingJSON,
		&requirementsJSON,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&lastHeartbeatRaw,
		&needsReview,
		&reviewReason,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:               id,
		SourceURL:        sourceURL,
		ModelTitle:       modelTitle.String,
		SubmissionID:     submissionID.String,
		Status:           Status(statusStr),
		ModelFile:        modelFile.String,
		GcodeFile:        gcodeFile.String,
		RemoteName:       remoteName.String,
		BuildPlate:       buildPlate.String,
		MappingJSON:      mappingJSON.String,
		RequirementsJSON: requirementsJSON.String,
		ErrorMessage:     errorMessage.String,
		ProgressStage:    progressStage.String,
		ProgressPercent:  progressPercent.Float64,
		ProgressMessage:  progressMessage.String,
		ReviewReason:     reviewReason.String,
	}
	if plateIndex.Valid {
		value := int(plateIndex.Int64)
		item.PlateIndex = &value
	}
	if needsReview.Valid {
		item.NeedsReview = needsReview.Int64 != 0
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			item.LastHeartbeat = &heartbeat
		}
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
