// Package metrics exposes Prometheus counters for the extraction and
// cleaning pipelines. Registration uses promauto on the default registry;
// the serve command mounts promhttp to publish them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HoursFetched counts archive hours fetched successfully.
	HoursFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gharvest",
		Subsystem: "archive",
		Name:      "hours_fetched_total",
		Help:      "Archive hour partitions fetched successfully.",
	})

	// HoursSkipped counts hours skipped after a transport failure.
	HoursSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gharvest",
		Subsystem: "archive",
		Name:      "hours_skipped_total",
		Help:      "Archive hour partitions skipped due to fetch errors.",
	})

	// LinesMalformed counts undecodable archive lines.
	LinesMalformed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gharvest",
		Subsystem: "archive",
		Name:      "lines_malformed_total",
		Help:      "Archive lines that failed to decode and were skipped.",
	})

	// EventsMatched counts records that survived the streaming filter.
	EventsMatched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gharvest",
		Subsystem: "archive",
		Name:      "events_matched_total",
		Help:      "Events matching the repository/kind filter.",
	})

	// RowsUpserted counts rows written through batch upserts.
	RowsUpserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gharvest",
		Subsystem: "store",
		Name:      "rows_upserted_total",
		Help:      "Rows written via INSERT OR REPLACE, by table.",
	}, []string{"table"})

	// RecordsCleaned counts records that passed the full transform workflow.
	RecordsCleaned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gharvest",
		Subsystem: "clean",
		Name:      "records_written_total",
		Help:      "Records that survived the workflow and were written.",
	})

	// RecordsDropped counts records dropped by a workflow step.
	RecordsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gharvest",
		Subsystem: "clean",
		Name:      "records_dropped_total",
		Help:      "Records dropped by the transform workflow.",
	})

	// RecordsDuplicate counts read-time duplicate ids.
	RecordsDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gharvest",
		Subsystem: "clean",
		Name:      "records_duplicate_total",
		Help:      "Raw records skipped as duplicates before the workflow.",
	})
)
