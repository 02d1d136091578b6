package workflow

import (
	"spool/internal/queue"
	"spool/internal/stage"
)

// StageSet bundles the concrete workflow handlers the manager orchestrates.
type StageSet struct {
	Downloader stage.Handler
	Slicer     stage.Handler
	Uploader   stage.Handler
	Printer    stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// ConfigureStages registers the concrete stage handlers the workflow will run.
func (m *Manager) ConfigureStages(set StageSet) {
	var stages []pipelineStage

	if set.Downloader != nil {
		stages = append(stages, pipelineStage{
			name:             "downloader",
			handler:          set.Downloader,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusDownloading,
			doneStatus:       queue.StatusDownloaded,
		})
	}
	if set.Slicer != nil {
		stages = append(stages, pipelineStage{
			name:             "slicer",
			handler:          set.Slicer,
			startStatus:      queue.StatusDownloaded,
			processingStatus: queue.StatusSlicing,
			doneStatus:       queue.StatusSliced,
		})
	}
	if set.Uploader != nil {
		stages = append(stages, pipelineStage{
			name:             "uploader",
			handler:          set.Uploader,
			startStatus:      queue.StatusSliced,
			processingStatus: queue.StatusUploading,
			doneStatus:       queue.StatusUploaded,
		})
	}
	if set.Printer != nil {
		stages = append(stages, pipelineStage{
			name:             "printer",
			handler:          set.Printer,
			startStatus:      queue.StatusUploaded,
			processingStatus: queue.StatusPrinting,
			doneStatus:       queue.StatusCompleted,
		})
	}

	stageByStart := make(map[queue.Status]pipelineStage, len(stages))
	statusOrder := make([]queue.Status, 0, len(stages))
	var processing []queue.Status
	seenProcessing := make(map[queue.Status]struct{})
	for _, stg := range stages {
		stageByStart[stg.startStatus] = stg
		statusOrder = append(statusOrder, stg.startStatus)
		if stg.processingStatus != "" {
			if _, ok := seenProcessing[stg.processingStatus]; !ok {
				processing = append(processing, stg.processingStatus)
				seenProcessing[stg.processingStatus] = struct{}{}
			}
		}
	}

	m.mu.Lock()
	m.stages = stages
	m.stageByStart = stageByStart
	m.statusOrder = statusOrder
	m.processingStatuses = processing
	m.mu.Unlock()
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stg, ok := m.stageByStart[status]
	return stg, ok
}
